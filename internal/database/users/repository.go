// Package users provides database operations for user accounts and profiles.
//
// Password hashing, lockout policy, and session management live in
// internal/auth; this package only reads and writes rows.
package users

import (
	"time"

	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new account with an already-hashed password.
func (r *Repository) CreateUser(username, email, passwordHash string) (*entities.User, error) {
	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLogin retrieves a user whose username or email matches the login
// string.
func (r *Repository) FindByLogin(login string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// HasUsers reports whether any account exists. The HTTP layer uses this to
// decide between the first-run registration page and the login page.
func (r *Repository) HasUsers() (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count > 0, err
}

// UpdatePasswordHash replaces the stored password hash.
func (r *Repository) UpdatePasswordHash(id uint, hash string) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("password_hash", hash).Error
}

// UpdateProfile replaces the user's display fields.
func (r *Repository) UpdateProfile(id uint, displayName, bio, avatarURL string) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).
		Updates(map[string]any{
			"display_name": displayName,
			"bio":          bio,
			"avatar_url":   avatarURL,
		}).Error
}

// AllAvatarURLs lists every avatar URL in use, for the blob-cleanup task.
func (r *Repository) AllAvatarURLs() ([]string, error) {
	var urls []string
	err := r.db.Model(&entities.User{}).
		Where("avatar_url <> ''").
		Pluck("avatar_url", &urls).Error
	return urls, err
}

// RecordFailedLogin bumps the failure counter and, once it reaches the
// threshold, locks the account until the given time.
func (r *Repository) RecordFailedLogin(id uint, threshold int, lockUntil time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user entities.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"failed_login_count": user.FailedLoginCount + 1,
		}
		if user.FailedLoginCount+1 >= threshold {
			updates["locked_until"] = lockUntil
		}
		return tx.Model(&entities.User{}).Where("id = ?", id).Updates(updates).Error
	})
}

// RecordSuccessfulLogin clears the failure state and stamps the login time.
func (r *Repository) RecordSuccessfulLogin(id uint, at time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).
		Updates(map[string]any{
			"failed_login_count": 0,
			"locked_until":       nil,
			"last_login_at":      at,
		}).Error
}
