// Package resources provides database operations for supplementary study
// material linked to a book.
package resources

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Repository handles all resource database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new resources repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a resource owned by the given user.
func (r *Repository) GetByID(userID, id uint) (*entities.Resource, error) {
	var resource entities.Resource
	err := r.db.Where("user_id = ?", userID).First(&resource, id).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

// ListForBook returns the user's resources for a book, optionally filtered
// by type.
func (r *Repository) ListForBook(userID, bookID uint, resourceType entities.ResourceType) ([]entities.Resource, error) {
	var resources []entities.Resource
	query := r.db.Where("user_id = ? AND book_id = ?", userID, bookID)
	if resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}
	err := query.Order("created_at DESC").Find(&resources).Error
	return resources, err
}

// Create inserts a new resource.
func (r *Repository) Create(resource *entities.Resource) error {
	if resource.Title == "" {
		return errors.New("resource title is required")
	}
	if resource.URL == "" {
		return errors.New("resource url is required")
	}
	switch resource.Type {
	case entities.ResourceTypeLink, entities.ResourceTypeVideo, entities.ResourceTypeArticle:
	case "":
		resource.Type = entities.ResourceTypeLink
	default:
		return errors.New("unknown resource type")
	}
	return r.db.Create(resource).Error
}

// Update persists changes to an existing resource after verifying ownership.
func (r *Repository) Update(userID uint, resource *entities.Resource) error {
	var existing entities.Resource
	if err := r.db.Where("user_id = ?", userID).First(&existing, resource.ID).Error; err != nil {
		return err
	}
	resource.UserID = userID
	resource.BookID = existing.BookID
	return r.db.Save(resource).Error
}

// Delete removes a resource owned by the user.
func (r *Repository) Delete(userID, id uint) error {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.Resource{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteForBook removes all of a book's resources. Part of the cascading
// book-delete flow.
func (r *Repository) DeleteForBook(bookID uint) error {
	return r.db.Where("book_id = ?", bookID).Delete(&entities.Resource{}).Error
}
