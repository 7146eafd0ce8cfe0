package books

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
	dbPath := "./test_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func seedBook(t *testing.T, repo *Repository, userID uint, title, author, category string) *entities.Book {
	t.Helper()
	book := &entities.Book{UserID: userID, Title: title, Author: author, Category: category}
	require.NoError(t, repo.Create(book))
	return book
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := seedBook(t, repo, 1, "Al-Muqaddimah", "Ibn Khaldun", "History")

	book, err := repo.GetByID(1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Al-Muqaddimah", book.Title)
	assert.Equal(t, "Ibn Khaldun", book.Author)
}

func TestRepository_Create_RequiresTitle(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Create(&entities.Book{UserID: 1, Author: "Anonymous"})
	assert.Error(t, err)
}

func TestRepository_GetByID_ScopedToOwner(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created := seedBook(t, repo, 1, "Kitab al-Hayawan", "Al-Jahiz", "")

	_, err := repo.GetByID(2, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListForUser_FiltersByCategory(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedBook(t, repo, 1, "Book A", "X", "Fiqh")
	seedBook(t, repo, 1, "Book B", "Y", "History")
	seedBook(t, repo, 1, "Book C", "Z", "Fiqh")
	seedBook(t, repo, 2, "Book D", "W", "Fiqh")

	all, err := repo.ListForUser(1, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	fiqh, err := repo.ListForUser(1, "Fiqh")
	require.NoError(t, err)
	assert.Len(t, fiqh, 2)
}

func TestRepository_Search(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedBook(t, repo, 1, "The Sealed Nectar", "Mubarakpuri", "")
	seedBook(t, repo, 1, "Riyad as-Salihin", "An-Nawawi", "")

	byTitle, err := repo.Search(1, "sealed")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "The Sealed Nectar", byTitle[0].Title)

	byAuthor, err := repo.Search(1, "nawawi")
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)
}

func TestRepository_Categories(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedBook(t, repo, 1, "A", "X", "History")
	seedBook(t, repo, 1, "B", "Y", "Fiqh")
	seedBook(t, repo, 1, "C", "Z", "Fiqh")
	seedBook(t, repo, 1, "D", "W", "")

	categories, err := repo.Categories(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fiqh", "History"}, categories)
}

func TestRepository_Update(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, repo, 1, "Draft Title", "Author", "")
	book.Title = "Final Title"
	book.TotalPages = 320

	require.NoError(t, repo.Update(1, book))

	reloaded, err := repo.GetByID(1, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final Title", reloaded.Title)
	assert.Equal(t, 320, reloaded.TotalPages)
}

func TestRepository_Update_ScopedToOwner(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, repo, 1, "Mine", "Author", "")
	book.Title = "Hijacked"

	err := repo.Update(2, book)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_SetTotalPages(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, repo, 1, "Uncounted", "Author", "")
	require.NoError(t, repo.SetTotalPages(book.ID, 412))

	reloaded, err := repo.GetByID(1, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 412, reloaded.TotalPages)
}

func TestRepository_Delete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := seedBook(t, repo, 1, "Doomed", "Author", "")

	require.NoError(t, repo.Delete(1, book.ID))

	_, err := repo.GetByID(1, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Delete(1, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_CountForUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedBook(t, repo, 1, "A", "X", "")
	seedBook(t, repo, 1, "B", "Y", "")
	seedBook(t, repo, 2, "C", "Z", "")

	count, err := repo.CountForUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
