package sessions

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kuttab/kuttab/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()
	dbPath := "./test_sessions_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.ReadingSession{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func countRows(t *testing.T, repo *Repository) int64 {
	t.Helper()
	var count int64
	require.NoError(t, repo.db.Model(&entities.ReadingSession{}).Count(&count).Error)
	return count
}

func TestRepository_SaveProgress_InsertsWhenMissing(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	err := repo.SaveProgress(context.Background(), 1, 10, 5, 2.5, now)
	require.NoError(t, err)

	session, err := repo.LatestForBook(context.Background(), 1, 10)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, 5, session.CurrentPage)
	assert.InDelta(t, 2.5, session.DurationMinutes, 1e-9)
}

func TestRepository_SaveProgress_UpdatesExistingRow(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Now()
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 10, 5, 2, base))
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 10, 9, 1.5, base.Add(time.Minute)))

	session, err := repo.LatestForBook(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 9, session.CurrentPage)
	assert.InDelta(t, 3.5, session.DurationMinutes, 1e-9)
	assert.Equal(t, int64(1), countRows(t, repo))
}

func TestRepository_SaveProgress_Idempotent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Now()
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 10, 7, 1, base))
	// Immediate re-save with the same page and no new reading time
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 10, 7, 0, base.Add(time.Second)))

	session, err := repo.LatestForBook(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, session.CurrentPage)
	assert.InDelta(t, 1.0, session.DurationMinutes, 1e-9)
	assert.Equal(t, int64(1), countRows(t, repo))
}

func TestRepository_SaveProgress_StaleWriterDoesNotRollBackPage(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Now()
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 10, 20, 1, base.Add(time.Minute)))
	// A slow in-flight save carrying an older timestamp and page
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 10, 12, 0.5, base))

	session, err := repo.LatestForBook(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 20, session.CurrentPage, "stale writer must not clobber the newer page")
	assert.InDelta(t, 1.5, session.DurationMinutes, 1e-9, "stale writer's minutes still accumulate")
}

func TestRepository_SaveProgress_DurationNeverDecreases(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Now()
	var last float64
	for i := 0; i < 5; i++ {
		err := repo.SaveProgress(context.Background(), 1, 10, i+1, float64(i)*0.3, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)

		session, err := repo.LatestForBook(context.Background(), 1, 10)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, session.DurationMinutes, last)
		last = session.DurationMinutes
	}
}

func TestRepository_SaveProgress_RejectsPageBelowOne(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.SaveProgress(context.Background(), 1, 10, 0, 1, time.Now())
	assert.Error(t, err)
}

func TestRepository_LatestForBook_NilWhenMissing(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	session, err := repo.LatestForBook(context.Background(), 1, 999)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestRepository_LatestForBook_PicksNewestRow(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Now()
	// Simulate historical rows left behind by older writers
	rows := []entities.ReadingSession{
		{UserID: 1, BookID: 10, CurrentPage: 3, DurationMinutes: 1, UpdatedAt: base.Add(-time.Hour)},
		{UserID: 1, BookID: 10, CurrentPage: 8, DurationMinutes: 4, UpdatedAt: base},
		{UserID: 1, BookID: 10, CurrentPage: 5, DurationMinutes: 2, UpdatedAt: base.Add(-time.Minute)},
	}
	for i := range rows {
		require.NoError(t, repo.db.Create(&rows[i]).Error)
	}

	session, err := repo.LatestForBook(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 8, session.CurrentPage)
}

func TestRepository_TotalDurationForUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 10, 5, 2, now))
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 11, 3, 1.5, now))
	require.NoError(t, repo.SaveProgress(context.Background(), 2, 10, 9, 7, now))

	total, err := repo.TotalDurationForUser(1)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, total, 1e-9)

	empty, err := repo.TotalDurationForUser(42)
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestRepository_PruneHistory(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Now()
	rows := []entities.ReadingSession{
		{UserID: 1, BookID: 10, CurrentPage: 3, UpdatedAt: base.Add(-time.Hour)},
		{UserID: 1, BookID: 10, CurrentPage: 8, UpdatedAt: base},
		{UserID: 2, BookID: 10, CurrentPage: 1, UpdatedAt: base},
	}
	for i := range rows {
		require.NoError(t, repo.db.Create(&rows[i]).Error)
	}

	pruned, err := repo.PruneHistory()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	session, err := repo.LatestForBook(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 8, session.CurrentPage)
	assert.Equal(t, int64(2), countRows(t, repo))
}

func TestRepository_DeleteForBook(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 10, 5, 2, now))
	require.NoError(t, repo.SaveProgress(context.Background(), 1, 11, 3, 1, now))

	require.NoError(t, repo.DeleteForBook(10))

	session, err := repo.LatestForBook(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Nil(t, session)

	kept, err := repo.LatestForBook(context.Background(), 1, 11)
	require.NoError(t, err)
	require.NotNil(t, kept)
}
