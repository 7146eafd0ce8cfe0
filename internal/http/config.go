package http

import (
	"time"

	"github.com/kuttab/kuttab/internal/auth"
	"github.com/kuttab/kuttab/internal/config"
	"github.com/kuttab/kuttab/internal/database"
	"github.com/kuttab/kuttab/internal/reader"
	"github.com/kuttab/kuttab/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Version  string

	// Domain stores (satisfied by the repositories under internal/database)
	BookStore      BookStore
	NoteStore      NoteStore
	BookmarkStore  BookmarkStore
	GlossaryStore  GlossaryStore
	ResourceStore  ResourceStore
	GoalStore      GoalStore
	RecordingStore RecordingStore
	SessionStore   SessionStore
	ProfileStore   ProfileStore

	// Reader views
	ReaderService *reader.Service

	// Blob storage
	BlobStore   BlobStore
	StorageRoot string
	PublicBase  string

	// PDF handling
	PageCounter    PageCounter
	MaxPDFSizeMB   int
	MaxImageSizeMB int

	// PDF proxy for remote documents
	ProxyEnabled        bool
	ProxyRequestsPerMin int
	ProxyTimeout        time.Duration

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue client (optional)
	TaskClient *tasks.Client
}
