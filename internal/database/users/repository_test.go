package users

import (
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
	dbPath := "./test_users_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_CreateAndFetch(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateUser("reader", "reader@example.org", "hash")
	require.NoError(t, err)

	byID, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", byID.Username)

	byName, err := repo.GetUserByUsername("reader")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)
}

func TestRepository_CreateUser_DuplicateUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateUser("reader", "a@example.org", "hash")
	require.NoError(t, err)

	_, err = repo.CreateUser("reader", "b@example.org", "hash")
	assert.Error(t, err)
}

func TestRepository_HasUsers(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	has, err := repo.HasUsers()
	require.NoError(t, err)
	assert.False(t, has)

	_, err = repo.CreateUser("reader", "a@example.org", "hash")
	require.NoError(t, err)

	has, err = repo.HasUsers()
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRepository_FailedLoginLockout(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.CreateUser("reader", "a@example.org", "hash")
	require.NoError(t, err)

	lockUntil := time.Now().Add(15 * time.Minute)
	require.NoError(t, repo.RecordFailedLogin(user.ID, 3, lockUntil))
	require.NoError(t, repo.RecordFailedLogin(user.ID, 3, lockUntil))

	reloaded, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.FailedLoginCount)
	assert.Nil(t, reloaded.LockedUntil, "below threshold stays unlocked")

	require.NoError(t, repo.RecordFailedLogin(user.ID, 3, lockUntil))

	reloaded, err = repo.GetUserByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LockedUntil)

	now := time.Now()
	require.NoError(t, repo.RecordSuccessfulLogin(user.ID, now))

	reloaded, err = repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.FailedLoginCount)
	assert.Nil(t, reloaded.LockedUntil)
	require.NotNil(t, reloaded.LastLoginAt)
}

func TestRepository_UpdateProfile(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.CreateUser("reader", "a@example.org", "hash")
	require.NoError(t, err)

	require.NoError(t, repo.UpdateProfile(user.ID, "The Reader", "Student of history", "/uploads/avatars/x.png"))

	reloaded, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Reader", reloaded.DisplayName)
	assert.Equal(t, "Student of history", reloaded.Bio)
	assert.Equal(t, "/uploads/avatars/x.png", reloaded.AvatarURL)
}

func TestRepository_UpdatePasswordHash(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.CreateUser("reader", "a@example.org", "old")
	require.NoError(t, err)

	require.NoError(t, repo.UpdatePasswordHash(user.ID, "new"))

	reloaded, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", reloaded.PasswordHash)
}
