// Package books provides database operations for the book catalog.
//
// Every query is scoped to the owning user; a book ID from another user's
// shelf behaves like a missing record.
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a book owned by the given user.
func (r *Repository) GetByID(userID, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("user_id = ?", userID).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListForUser retrieves the user's books, newest first. An empty category
// means no filter.
func (r *Repository) ListForUser(userID uint, category string) ([]entities.Book, error) {
	var books []entities.Book
	query := r.db.Where("user_id = ?", userID)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	err := query.Order("created_at DESC").Find(&books).Error
	return books, err
}

// Search matches the user's books by title or author, case-insensitive.
func (r *Repository) Search(userID uint, q string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + q + "%"
	err := r.db.Where("user_id = ?", userID).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?)", pattern, pattern).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// Categories returns the distinct non-empty categories on the user's shelf.
func (r *Repository) Categories(userID uint) ([]string, error) {
	var categories []string
	err := r.db.Model(&entities.Book{}).
		Where("user_id = ? AND category != ''", userID).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// Create inserts a new book.
func (r *Repository) Create(book *entities.Book) error {
	if book.Title == "" {
		return errors.New("book title is required")
	}
	return r.db.Create(book).Error
}

// Update persists changes to an existing book after verifying ownership.
func (r *Repository) Update(userID uint, book *entities.Book) error {
	var existing entities.Book
	if err := r.db.Where("user_id = ?", userID).First(&existing, book.ID).Error; err != nil {
		return err
	}
	book.UserID = userID
	return r.db.Save(book).Error
}

// SetTotalPages records the page count discovered after upload.
func (r *Repository) SetTotalPages(id uint, totalPages int) error {
	return r.db.Model(&entities.Book{}).
		Where("id = ?", id).
		Update("total_pages", totalPages).Error
}

// Delete soft-deletes a book owned by the user. Dependent records (sessions,
// notes, bookmarks, goals) are removed by the caller before the book itself.
func (r *Repository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AllPDFURLs lists every stored PDF URL across all users. The blob-cleanup
// task uses this to find orphaned files in the object store.
func (r *Repository) AllPDFURLs() ([]string, error) {
	var urls []string
	err := r.db.Model(&entities.Book{}).
		Where("pdf_url <> ''").
		Pluck("pdf_url", &urls).Error
	return urls, err
}

// CountForUser returns the number of books on the user's shelf.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
