package bookmarks

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kuttab/kuttab/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := "./test_bookmarks_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Bookmark{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func seedBookmark(t *testing.T, repo *Repository, userID, bookID uint, page int, tags ...string) *entities.Bookmark {
	t.Helper()
	bookmark := &entities.Bookmark{UserID: userID, BookID: bookID, PageNumber: page, Tags: tags}
	require.NoError(t, repo.Create(bookmark))
	return bookmark
}

func TestRepository_CreateAndListForBook(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedBookmark(t, repo, 1, 10, 42)
	seedBookmark(t, repo, 1, 10, 7, "revisit")
	seedBookmark(t, repo, 2, 10, 7)

	bookmarks, err := repo.ListForBook(1, 10)
	require.NoError(t, err)
	require.Len(t, bookmarks, 2)
	assert.Equal(t, 7, bookmarks[0].PageNumber, "ordered by page")
	assert.Equal(t, entities.StringList{"revisit"}, bookmarks[0].Tags)
}

func TestRepository_Create_RejectsDuplicatePage(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedBookmark(t, repo, 1, 10, 7)

	err := repo.Create(&entities.Bookmark{UserID: 1, BookID: 10, PageNumber: 7})
	assert.Error(t, err)

	// Same page is fine for another user or another book
	assert.NoError(t, repo.Create(&entities.Bookmark{UserID: 2, BookID: 10, PageNumber: 7}))
	assert.NoError(t, repo.Create(&entities.Bookmark{UserID: 1, BookID: 11, PageNumber: 7}))
}

func TestRepository_Create_RejectsPageBelowOne(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Create(&entities.Bookmark{UserID: 1, BookID: 10, PageNumber: 0})
	assert.Error(t, err)
}

func TestRepository_HasBookmarkOnPage(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedBookmark(t, repo, 1, 10, 7)

	has, err := repo.HasBookmarkOnPage(1, 10, 7)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasBookmarkOnPage(1, 10, 8)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRepository_ListForUserByTag(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedBookmark(t, repo, 1, 10, 3, "important", "exam")
	seedBookmark(t, repo, 1, 11, 9, "exam")
	seedBookmark(t, repo, 1, 12, 2, "later")
	seedBookmark(t, repo, 2, 10, 4, "exam")

	tagged, err := repo.ListForUserByTag(1, "exam")
	require.NoError(t, err)
	assert.Len(t, tagged, 2)
}

func TestRepository_Update(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	bookmark := seedBookmark(t, repo, 1, 10, 3)
	bookmark.Tags = entities.StringList{"reread"}

	require.NoError(t, repo.Update(1, bookmark))

	reloaded, err := repo.GetByID(1, bookmark.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StringList{"reread"}, reloaded.Tags)

	assert.ErrorIs(t, repo.Update(2, bookmark), gorm.ErrRecordNotFound)
}

func TestRepository_DeleteAndDeleteForBook(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	bookmark := seedBookmark(t, repo, 1, 10, 3)
	seedBookmark(t, repo, 1, 10, 4)
	kept := seedBookmark(t, repo, 1, 11, 5)

	require.NoError(t, repo.Delete(1, bookmark.ID))
	assert.ErrorIs(t, repo.Delete(1, bookmark.ID), gorm.ErrRecordNotFound)

	require.NoError(t, repo.DeleteForBook(10))

	remaining, err := repo.ListForBook(1, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = repo.GetByID(1, kept.ID)
	assert.NoError(t, err)
}
