package entities

import "time"

// ReadingSession records where a user last was in a book and how long they
// have spent reading it. Identity is the (user, book) pair: the store may
// contain historical rows, but only the one with the newest UpdatedAt is
// meaningful for progress tracking.
//
// Invariants maintained by the sessions repository:
//   - CurrentPage >= 1
//   - DurationMinutes never decreases through tracker writes
type ReadingSession struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	UserID          uint    `gorm:"index:idx_sessions_user_book" json:"user_id"`
	BookID          uint    `gorm:"index:idx_sessions_user_book" json:"book_id"`
	CurrentPage     int     `json:"current_page"`
	DurationMinutes float64 `json:"duration_minutes"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt carries the wall-clock timestamp of the writer and is the
	// last-writer-wins arbiter for concurrent saves. It is written explicitly
	// by the repository, not by GORM's auto-update hook.
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}

type ReadingGoal struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 uint       `gorm:"index" json:"user_id"`
	BookID                 uint       `gorm:"index" json:"book_id"`
	ExpectedDurationDays   int        `json:"expected_duration_days"`
	ExpectedCompletionDate time.Time  `json:"expected_completion_date"`
	ActualCompletionDate   *time.Time `json:"actual_completion_date,omitempty"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (ReadingGoal) TableName() string {
	return "reading_goals"
}
