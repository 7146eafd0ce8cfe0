// Package glossary provides database operations for per-book vocabulary.
package glossary

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Repository handles all glossary database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new glossary repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a term owned by the given user.
func (r *Repository) GetByID(userID, id uint) (*entities.GlossaryTerm, error) {
	var term entities.GlossaryTerm
	err := r.db.Where("user_id = ?", userID).First(&term, id).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

// ListForBook returns the user's glossary for a book, alphabetical by word.
func (r *Repository) ListForBook(userID, bookID uint) ([]entities.GlossaryTerm, error) {
	var terms []entities.GlossaryTerm
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("LOWER(word) ASC").
		Find(&terms).Error
	return terms, err
}

// Search matches the user's terms by word prefix across all books.
func (r *Repository) Search(userID uint, prefix string) ([]entities.GlossaryTerm, error) {
	var terms []entities.GlossaryTerm
	err := r.db.Where("user_id = ? AND LOWER(word) LIKE LOWER(?)", userID, prefix+"%").
		Order("LOWER(word) ASC").
		Find(&terms).Error
	return terms, err
}

// Create inserts a new term.
func (r *Repository) Create(term *entities.GlossaryTerm) error {
	if term.Word == "" {
		return errors.New("glossary word is required")
	}
	if term.Definition == "" {
		return errors.New("glossary definition is required")
	}
	return r.db.Create(term).Error
}

// Update persists changes to an existing term after verifying ownership.
func (r *Repository) Update(userID uint, term *entities.GlossaryTerm) error {
	var existing entities.GlossaryTerm
	if err := r.db.Where("user_id = ?", userID).First(&existing, term.ID).Error; err != nil {
		return err
	}
	term.UserID = userID
	term.BookID = existing.BookID
	return r.db.Save(term).Error
}

// Delete removes a term owned by the user.
func (r *Repository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.GlossaryTerm{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteForBook removes a book's glossary. Part of the cascading book-delete
// flow.
func (r *Repository) DeleteForBook(bookID uint) error {
	return r.db.Where("book_id = ?", bookID).Delete(&entities.GlossaryTerm{}).Error
}
