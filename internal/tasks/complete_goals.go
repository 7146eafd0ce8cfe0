package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// GoalStore exposes the open goals and the completion stamp.
type GoalStore interface {
	ListOpen() ([]entities.ReadingGoal, error)
	MarkCompleted(id uint, at time.Time) error
}

// GoalBookStore resolves the book a goal points at.
type GoalBookStore interface {
	GetByID(userID, id uint) (*entities.Book, error)
}

// GoalProgressStore reads the latest saved position for a book.
type GoalProgressStore interface {
	LatestForBook(ctx context.Context, userID, bookID uint) (*entities.ReadingSession, error)
}

// CompleteGoalsTask scans open reading goals and marks the ones whose books
// have been read to the last page. Runs from the maintenance schedule so
// completion is detected even when the reader is closed mid-save.
type CompleteGoalsTask struct{}

func (t CompleteGoalsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "complete_goals",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CompleteGoalsProcessor creates the processor for CompleteGoalsTask.
func CompleteGoalsProcessor(goals GoalStore, books GoalBookStore, progress GoalProgressStore) backlite.QueueProcessor[CompleteGoalsTask] {
	return func(ctx context.Context, task CompleteGoalsTask) error {
		if goals == nil || books == nil || progress == nil {
			return fmt.Errorf("goal completion stores not configured")
		}

		open, err := goals.ListOpen()
		if err != nil {
			return fmt.Errorf("list open goals: %w", err)
		}

		completed := 0
		for _, goal := range open {
			book, err := books.GetByID(goal.UserID, goal.BookID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return fmt.Errorf("load book %d: %w", goal.BookID, err)
			}
			if book.TotalPages <= 0 {
				continue
			}

			session, err := progress.LatestForBook(ctx, goal.UserID, goal.BookID)
			if err != nil {
				return fmt.Errorf("load progress for book %d: %w", goal.BookID, err)
			}
			if session == nil || session.CurrentPage < book.TotalPages {
				continue
			}

			if err := goals.MarkCompleted(goal.ID, session.UpdatedAt); err != nil {
				return fmt.Errorf("mark goal %d completed: %w", goal.ID, err)
			}
			completed++
		}

		if completed > 0 {
			log.Printf("[TASK] Marked %d reading goals as completed", completed)
		}
		return nil
	}
}

// NewCompleteGoalsQueue creates a backlite queue for goal completion.
func NewCompleteGoalsQueue(goals GoalStore, books GoalBookStore, progress GoalProgressStore) backlite.Queue {
	return backlite.NewQueue(CompleteGoalsProcessor(goals, books, progress))
}
