// Package bookmarks provides database operations for page bookmarks.
package bookmarks

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Repository handles all bookmark database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bookmarks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a bookmark owned by the given user.
func (r *Repository) GetByID(userID, id uint) (*entities.Bookmark, error) {
	var bookmark entities.Bookmark
	err := r.db.Where("user_id = ?", userID).First(&bookmark, id).Error
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// ListForBook returns the user's bookmarks for a book ordered by page.
func (r *Repository) ListForBook(userID, bookID uint) ([]entities.Bookmark, error) {
	var bookmarks []entities.Bookmark
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("page_number ASC").
		Find(&bookmarks).Error
	return bookmarks, err
}

// ListForUserByTag returns the user's bookmarks carrying the given tag,
// across all books. Tags are stored as a JSON array so the match goes
// through a LIKE on the serialized form.
func (r *Repository) ListForUserByTag(userID uint, tag string) ([]entities.Bookmark, error) {
	var bookmarks []entities.Bookmark
	err := r.db.Where("user_id = ? AND tags LIKE ?", userID, `%"`+tag+`"%`).
		Order("created_at DESC").
		Find(&bookmarks).Error
	return bookmarks, err
}

// HasBookmarkOnPage reports whether the user bookmarked the page. Feeds the
// reader view's bookmark indicator.
func (r *Repository) HasBookmarkOnPage(userID, bookID uint, page int) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Bookmark{}).
		Where("user_id = ? AND book_id = ? AND page_number = ?", userID, bookID, page).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a new bookmark. A page can only be bookmarked once per
// user and book.
func (r *Repository) Create(bookmark *entities.Bookmark) error {
	if bookmark.PageNumber < 1 {
		return errors.New("bookmark page number must be >= 1")
	}
	exists, err := r.HasBookmarkOnPage(bookmark.UserID, bookmark.BookID, bookmark.PageNumber)
	if err != nil {
		return err
	}
	if exists {
		return errors.New("page is already bookmarked")
	}
	return r.db.Create(bookmark).Error
}

// Update persists changes to an existing bookmark after verifying ownership.
func (r *Repository) Update(userID uint, bookmark *entities.Bookmark) error {
	var existing entities.Bookmark
	if err := r.db.Where("user_id = ?", userID).First(&existing, bookmark.ID).Error; err != nil {
		return err
	}
	bookmark.UserID = userID
	bookmark.BookID = existing.BookID
	return r.db.Save(bookmark).Error
}

// Delete removes a bookmark owned by the user.
func (r *Repository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.Bookmark{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteForBook removes all of a book's bookmarks. Part of the cascading
// book-delete flow.
func (r *Repository) DeleteForBook(bookID uint) error {
	return r.db.Where("book_id = ?", bookID).Delete(&entities.Bookmark{}).Error
}
