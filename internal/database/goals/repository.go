// Package goals provides database operations for reading goals.
//
// A goal sets an expected completion date for a (user, book) pair. The
// maintenance task marks goals complete once the user's progress reaches the
// book's last page.
package goals

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Repository handles all reading-goal database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new goals repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a goal owned by the given user.
func (r *Repository) GetByID(userID, id uint) (*entities.ReadingGoal, error) {
	var goal entities.ReadingGoal
	err := r.db.Where("user_id = ?", userID).First(&goal, id).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// LatestForBook returns the newest goal for a (user, book) pair, or nil when
// none was ever set.
func (r *Repository) LatestForBook(userID, bookID uint) (*entities.ReadingGoal, error) {
	var goal entities.ReadingGoal
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("created_at DESC").
		First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// ListForUser returns all of the user's goals, newest first.
func (r *Repository) ListForUser(userID uint) ([]entities.ReadingGoal, error) {
	var goals []entities.ReadingGoal
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error
	return goals, err
}

// Create inserts a new goal. The expected completion date is derived from the
// duration when the caller left it zero.
func (r *Repository) Create(goal *entities.ReadingGoal) error {
	if goal.ExpectedDurationDays < 1 {
		return errors.New("expected duration must be at least one day")
	}
	if goal.ExpectedCompletionDate.IsZero() {
		goal.ExpectedCompletionDate = time.Now().AddDate(0, 0, goal.ExpectedDurationDays)
	}
	return r.db.Create(goal).Error
}

// MarkCompleted stamps the goal's actual completion date. Already-completed
// goals keep their original date.
func (r *Repository) MarkCompleted(id uint, at time.Time) error {
	return r.db.Model(&entities.ReadingGoal{}).
		Where("id = ? AND actual_completion_date IS NULL", id).
		Update("actual_completion_date", at).Error
}

// CountCompletedForUser returns how many of the user's goals are done.
func (r *Repository) CountCompletedForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.ReadingGoal{}).
		Where("user_id = ? AND actual_completion_date IS NOT NULL", userID).
		Count(&count).Error
	return count, err
}

// ListOpen returns every goal not yet completed, across all users. The
// goal-completion scan walks this list.
func (r *Repository) ListOpen() ([]entities.ReadingGoal, error) {
	var goals []entities.ReadingGoal
	err := r.db.Where("actual_completion_date IS NULL").Find(&goals).Error
	return goals, err
}

// ListOverdue returns open goals whose expected completion date has passed.
func (r *Repository) ListOverdue(now time.Time) ([]entities.ReadingGoal, error) {
	var goals []entities.ReadingGoal
	err := r.db.Where("actual_completion_date IS NULL AND expected_completion_date < ?", now).
		Find(&goals).Error
	return goals, err
}

// Delete removes a goal owned by the user.
func (r *Repository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.ReadingGoal{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteForBook removes all goals for a book. Part of the cascading
// book-delete flow.
func (r *Repository) DeleteForBook(bookID uint) error {
	return r.db.Where("book_id = ?", bookID).Delete(&entities.ReadingGoal{}).Error
}
