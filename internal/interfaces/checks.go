// Package interfaces contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...
package interfaces

import (
	"github.com/kuttab/kuttab/internal/database/bookmarks"
	"github.com/kuttab/kuttab/internal/database/books"
	"github.com/kuttab/kuttab/internal/database/glossary"
	"github.com/kuttab/kuttab/internal/database/goals"
	"github.com/kuttab/kuttab/internal/database/notes"
	"github.com/kuttab/kuttab/internal/database/recordings"
	"github.com/kuttab/kuttab/internal/database/resources"
	"github.com/kuttab/kuttab/internal/database/sessions"
	"github.com/kuttab/kuttab/internal/database/users"
	"github.com/kuttab/kuttab/internal/http"
	"github.com/kuttab/kuttab/internal/reader"
	"github.com/kuttab/kuttab/internal/storage"
	"github.com/kuttab/kuttab/internal/storage/providers/filesystem"
	"github.com/kuttab/kuttab/internal/tasks"
	"github.com/kuttab/kuttab/internal/tracker"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// HTTP store implementations
var _ http.BookStore = (*books.Repository)(nil)
var _ http.NoteStore = (*notes.Repository)(nil)
var _ http.BookmarkStore = (*bookmarks.Repository)(nil)
var _ http.GlossaryStore = (*glossary.Repository)(nil)
var _ http.ResourceStore = (*resources.Repository)(nil)
var _ http.GoalStore = (*goals.Repository)(nil)
var _ http.RecordingStore = (*recordings.Repository)(nil)
var _ http.SessionStore = (*sessions.Repository)(nil)
var _ http.ProfileStore = (*users.Repository)(nil)

// =============================================================================
// Progress Tracking
// =============================================================================

// The sessions repository is both the tracker's save target and the reader's
// resume source
var _ tracker.ProgressStore = (*sessions.Repository)(nil)
var _ reader.SessionStore = (*sessions.Repository)(nil)
var _ reader.BookStore = (*books.Repository)(nil)

// =============================================================================
// Blob Storage
// =============================================================================

var _ storage.Client = (*filesystem.Client)(nil)
var _ http.BlobStore = (*filesystem.Client)(nil)
var _ tasks.BlobStore = (*filesystem.Client)(nil)

// =============================================================================
// Maintenance Tasks
// =============================================================================

var _ tasks.SessionPruner = (*sessions.Repository)(nil)
var _ tasks.GoalStore = (*goals.Repository)(nil)
var _ tasks.GoalBookStore = (*books.Repository)(nil)
var _ tasks.GoalProgressStore = (*sessions.Repository)(nil)
