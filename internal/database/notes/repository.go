// Package notes provides database operations for per-page reading notes.
package notes

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Repository handles all note database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new notes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a note owned by the given user.
func (r *Repository) GetByID(userID, id uint) (*entities.Note, error) {
	var note entities.Note
	err := r.db.Where("user_id = ?", userID).First(&note, id).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// ListForBook returns the user's notes for a book ordered by page.
func (r *Repository) ListForBook(userID, bookID uint) ([]entities.Note, error) {
	var notes []entities.Note
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("page_number ASC, created_at ASC").
		Find(&notes).Error
	return notes, err
}

// ListForPage returns the user's notes pinned to one page of a book.
func (r *Repository) ListForPage(userID, bookID uint, page int) ([]entities.Note, error) {
	var notes []entities.Note
	err := r.db.Where("user_id = ? AND book_id = ? AND page_number = ?", userID, bookID, page).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}

// HasNotesOnPage reports whether the user has at least one note on the page.
// Feeds the reader view's note indicator.
func (r *Repository) HasNotesOnPage(userID, bookID uint, page int) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Note{}).
		Where("user_id = ? AND book_id = ? AND page_number = ?", userID, bookID, page).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a new note.
func (r *Repository) Create(note *entities.Note) error {
	if note.Content == "" {
		return errors.New("note content is required")
	}
	if note.PageNumber < 1 {
		return errors.New("note page number must be >= 1")
	}
	return r.db.Create(note).Error
}

// Update persists changes to an existing note after verifying ownership.
func (r *Repository) Update(userID uint, note *entities.Note) error {
	var existing entities.Note
	if err := r.db.Where("user_id = ?", userID).First(&existing, note.ID).Error; err != nil {
		return err
	}
	note.UserID = userID
	note.BookID = existing.BookID
	return r.db.Save(note).Error
}

// Delete removes a note owned by the user.
func (r *Repository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.Note{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteForBook removes all of a book's notes. Part of the cascading
// book-delete flow.
func (r *Repository) DeleteForBook(bookID uint) error {
	return r.db.Where("book_id = ?", bookID).Delete(&entities.Note{}).Error
}

// CountForUser returns the user's total note count across all books.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Note{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
