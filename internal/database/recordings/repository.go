// Package recordings provides database operations for voice recordings
// attached to a book. The audio blobs themselves live in the object store;
// rows here only carry metadata and the public URL.
package recordings

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kuttab/kuttab/internal/entities"
)

// Repository handles all voice-recording database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new recordings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a recording owned by the given user.
func (r *Repository) GetByID(userID, id uint) (*entities.VoiceRecording, error) {
	var recording entities.VoiceRecording
	err := r.db.Where("user_id = ?", userID).First(&recording, id).Error
	if err != nil {
		return nil, err
	}
	return &recording, nil
}

// ListForBook returns the user's recordings for a book, newest first.
func (r *Repository) ListForBook(userID, bookID uint) ([]entities.VoiceRecording, error) {
	var recordings []entities.VoiceRecording
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Order("created_at DESC").
		Find(&recordings).Error
	return recordings, err
}

// Create inserts a new recording.
func (r *Repository) Create(recording *entities.VoiceRecording) error {
	if recording.AudioURL == "" {
		return errors.New("recording audio url is required")
	}
	return r.db.Create(recording).Error
}

// Delete removes a recording owned by the user and returns the deleted row
// so the caller can drop the audio blob as well.
func (r *Repository) Delete(userID, id uint) (*entities.VoiceRecording, error) {
	recording, err := r.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Delete(recording).Error; err != nil {
		return nil, err
	}
	return recording, nil
}

// DeleteForBook removes all of a book's recordings and returns the deleted
// rows for blob cleanup.
func (r *Repository) DeleteForBook(bookID uint) ([]entities.VoiceRecording, error) {
	var recordings []entities.VoiceRecording
	if err := r.db.Where("book_id = ?", bookID).Find(&recordings).Error; err != nil {
		return nil, err
	}
	if len(recordings) == 0 {
		return nil, nil
	}
	if err := r.db.Where("book_id = ?", bookID).Delete(&entities.VoiceRecording{}).Error; err != nil {
		return nil, err
	}
	return recordings, nil
}

// AllAudioURLs lists every stored audio URL. The blob-cleanup task uses this
// to find orphaned files in the object store.
func (r *Repository) AllAudioURLs() ([]string, error) {
	var urls []string
	err := r.db.Model(&entities.VoiceRecording{}).Pluck("audio_url", &urls).Error
	return urls, err
}
