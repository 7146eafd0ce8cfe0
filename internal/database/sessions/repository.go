// Package sessions provides database operations for reading-session progress.
//
// A reading session is keyed logically by the (user, book) pair. The table may
// hold historical rows; the row with the newest updated_at is the current one.
// SaveProgress is the idempotent upsert the progress tracker persists through.
package sessions

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Repository handles all reading-session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reading-session repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LatestForBook returns the most recent session row for a (user, book) pair,
// or nil when the user has never opened the book.
func (r *Repository) LatestForBook(ctx context.Context, userID, bookID uint) (*entities.ReadingSession, error) {
	var session entities.ReadingSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("updated_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveProgress upserts the progress record for a (user, book) pair.
//
// If a row exists, current_page is replaced and addedMinutes is added to the
// accumulated duration; otherwise a new row is inserted. The write carries the
// caller's wall-clock timestamp `at`: a writer whose timestamp is older than
// the stored updated_at must not clobber the newer page number, though its
// reading time is still accumulated so duration stays non-decreasing.
//
// Calling SaveProgress twice with the same page and zero added minutes leaves
// the stored state unchanged apart from updated_at (no duplicate rows).
func (r *Repository) SaveProgress(ctx context.Context, userID, bookID uint, page int, addedMinutes float64, at time.Time) error {
	if page < 1 {
		return errors.New("current page must be >= 1")
	}
	if addedMinutes < 0 {
		addedMinutes = 0
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest entities.ReadingSession
		err := tx.Where("user_id = ? AND book_id = ?", userID, bookID).
			Order("updated_at DESC").
			First(&latest).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			session := entities.ReadingSession{
				UserID:          userID,
				BookID:          bookID,
				CurrentPage:     page,
				DurationMinutes: addedMinutes,
				UpdatedAt:       at,
			}
			return tx.Create(&session).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]any{
			"duration_minutes": latest.DurationMinutes + addedMinutes,
		}
		// Last writer wins on the page number: a stale writer keeps its
		// minutes but must not roll the page back.
		if !at.Before(latest.UpdatedAt) {
			updates["current_page"] = page
			updates["updated_at"] = at
		}

		// UpdateColumns skips GORM's auto-update hook so updated_at stays
		// under repository control.
		return tx.Model(&entities.ReadingSession{}).
			Where("id = ?", latest.ID).
			UpdateColumns(updates).Error
	})
}

// TotalDurationForUser sums reading minutes across all of a user's sessions.
func (r *Repository) TotalDurationForUser(userID uint) (float64, error) {
	var total *float64
	err := r.db.Model(&entities.ReadingSession{}).
		Where("user_id = ?", userID).
		Select("SUM(duration_minutes)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// DeleteForBook removes all session rows for a book. Used by the cascading
// book-delete flow; the tracker itself never deletes sessions.
func (r *Repository) DeleteForBook(bookID uint) error {
	return r.db.Where("book_id = ?", bookID).Delete(&entities.ReadingSession{}).Error
}

// PruneHistory deletes all but the newest session row per (user, book) pair.
// Historical rows are an artifact of older writers; only the newest one
// matters for progress tracking.
func (r *Repository) PruneHistory() (int64, error) {
	result := r.db.Exec(`DELETE FROM reading_sessions WHERE id NOT IN (
		SELECT id FROM reading_sessions rs
		WHERE rs.updated_at = (
			SELECT MAX(updated_at) FROM reading_sessions
			WHERE user_id = rs.user_id AND book_id = rs.book_id
		)
	)`)
	return result.RowsAffected, result.Error
}
