package http

import (
	"context"

	"github.com/kuttab/kuttab/internal/entities"
	"github.com/kuttab/kuttab/internal/storage"
)

// This file consolidates the store interface definitions used by HTTP
// controllers. Each controller depends only on the operations it needs; the
// repository packages under internal/database satisfy them.

// BookStore provides book catalog access.
type BookStore interface {
	GetByID(userID, id uint) (*entities.Book, error)
	ListForUser(userID uint, category string) ([]entities.Book, error)
	Search(userID uint, q string) ([]entities.Book, error)
	Categories(userID uint) ([]string, error)
	Create(book *entities.Book) error
	Update(userID uint, book *entities.Book) error
	SetTotalPages(id uint, totalPages int) error
	Delete(userID, id uint) error
	CountForUser(userID uint) (int64, error)
}

// NoteStore provides note access.
type NoteStore interface {
	GetByID(userID, id uint) (*entities.Note, error)
	ListForBook(userID, bookID uint) ([]entities.Note, error)
	ListForPage(userID, bookID uint, page int) ([]entities.Note, error)
	Create(note *entities.Note) error
	Update(userID uint, note *entities.Note) error
	Delete(userID, id uint) error
	DeleteForBook(bookID uint) error
	CountForUser(userID uint) (int64, error)
}

// BookmarkStore provides bookmark access.
type BookmarkStore interface {
	GetByID(userID, id uint) (*entities.Bookmark, error)
	ListForBook(userID, bookID uint) ([]entities.Bookmark, error)
	ListForUserByTag(userID uint, tag string) ([]entities.Bookmark, error)
	Create(bookmark *entities.Bookmark) error
	Update(userID uint, bookmark *entities.Bookmark) error
	Delete(userID, id uint) error
	DeleteForBook(bookID uint) error
}

// GlossaryStore provides glossary access.
type GlossaryStore interface {
	ListForBook(userID, bookID uint) ([]entities.GlossaryTerm, error)
	Search(userID uint, prefix string) ([]entities.GlossaryTerm, error)
	Create(term *entities.GlossaryTerm) error
	Update(userID uint, term *entities.GlossaryTerm) error
	Delete(userID, id uint) error
	DeleteForBook(bookID uint) error
}

// ResourceStore provides study-resource access.
type ResourceStore interface {
	ListForBook(userID, bookID uint, resourceType entities.ResourceType) ([]entities.Resource, error)
	Create(resource *entities.Resource) error
	Update(userID uint, resource *entities.Resource) error
	Delete(userID, id uint) error
	DeleteForBook(bookID uint) error
}

// GoalStore provides reading-goal access.
type GoalStore interface {
	LatestForBook(userID, bookID uint) (*entities.ReadingGoal, error)
	ListForUser(userID uint) ([]entities.ReadingGoal, error)
	Create(goal *entities.ReadingGoal) error
	Delete(userID, id uint) error
	DeleteForBook(bookID uint) error
	CountCompletedForUser(userID uint) (int64, error)
}

// RecordingStore provides voice-recording access.
type RecordingStore interface {
	ListForBook(userID, bookID uint) ([]entities.VoiceRecording, error)
	Create(recording *entities.VoiceRecording) error
	Delete(userID, id uint) (*entities.VoiceRecording, error)
	DeleteForBook(bookID uint) ([]entities.VoiceRecording, error)
}

// SessionStore provides reading-session access for stats and cascade delete.
type SessionStore interface {
	LatestForBook(ctx context.Context, userID, bookID uint) (*entities.ReadingSession, error)
	TotalDurationForUser(userID uint) (float64, error)
	DeleteForBook(bookID uint) error
}

// ProfileStore provides user profile access.
type ProfileStore interface {
	GetUserByID(id uint) (*entities.User, error)
	UpdateProfile(id uint, displayName, bio, avatarURL string) error
}

// BlobStore is the object store plus the reverse mapping from public URL to
// storage path, used when deleting blobs referenced from database rows.
type BlobStore interface {
	storage.Client
	StoragePath(publicURL string) string
}

// PageCounter inspects an uploaded PDF. Implemented by internal/pdf.
type PageCounter func(path string) (int, error)
