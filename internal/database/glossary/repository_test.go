package glossary

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
	dbPath := "./test_glossary_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.GlossaryTerm{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func seedTerm(t *testing.T, repo *Repository, userID, bookID uint, word, definition string) *entities.GlossaryTerm {
	t.Helper()
	term := &entities.GlossaryTerm{UserID: userID, BookID: bookID, Word: word, Definition: definition}
	require.NoError(t, repo.Create(term))
	return term
}

func TestRepository_CreateAndListForBook(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedTerm(t, repo, 1, 10, "zakat", "obligatory almsgiving")
	seedTerm(t, repo, 1, 10, "Adab", "manners and etiquette")
	seedTerm(t, repo, 1, 11, "fiqh", "jurisprudence")

	terms, err := repo.ListForBook(1, 10)
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "Adab", terms[0].Word, "alphabetical, case-insensitive")
}

func TestRepository_Create_Validation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.Error(t, repo.Create(&entities.GlossaryTerm{UserID: 1, BookID: 10, Definition: "d"}))
	assert.Error(t, repo.Create(&entities.GlossaryTerm{UserID: 1, BookID: 10, Word: "w"}))
}

func TestRepository_Search(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	seedTerm(t, repo, 1, 10, "tafsir", "exegesis")
	seedTerm(t, repo, 1, 11, "tajwid", "recitation rules")
	seedTerm(t, repo, 1, 10, "hadith", "prophetic report")

	terms, err := repo.Search(1, "ta")
	require.NoError(t, err)
	assert.Len(t, terms, 2)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	term := seedTerm(t, repo, 1, 10, "sabr", "draft")
	term.Definition = "patience and perseverance"
	require.NoError(t, repo.Update(1, term))

	reloaded, err := repo.GetByID(1, term.ID)
	require.NoError(t, err)
	assert.Equal(t, "patience and perseverance", reloaded.Definition)

	assert.ErrorIs(t, repo.Delete(2, term.ID), gorm.ErrRecordNotFound)
	require.NoError(t, repo.Delete(1, term.ID))

	require.NoError(t, repo.DeleteForBook(10))
	terms, err := repo.ListForBook(1, 10)
	require.NoError(t, err)
	assert.Empty(t, terms)
}
