package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kuttab/kuttab/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so the session sees the replaced request
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth configured, every request acts as the default user
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Uploaded blobs (PDFs, recordings, avatars) are served straight from disk
	if cfg.StorageRoot != "" {
		publicBase := cfg.PublicBase
		if publicBase == "" {
			publicBase = "/uploads"
		}
		router.Static(publicBase, cfg.StorageRoot)
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Auth endpoints
	if cfg.AuthService != nil {
		authController := NewAuthController(cfg.AuthService, cfg.SessionManager)
		router.GET("/api/auth/status", authController.Status)
		router.POST("/api/auth/setup", authController.Setup)
		router.POST("/api/auth/login", authController.Login)
		router.POST("/api/auth/logout", authController.Logout)
		router.POST("/api/auth/password", authController.ChangePassword)
	}

	// Book shelf
	booksController := NewBooksController(
		cfg.BookStore,
		cfg.NoteStore,
		cfg.BookmarkStore,
		cfg.GlossaryStore,
		cfg.ResourceStore,
		cfg.GoalStore,
		cfg.SessionStore,
		cfg.RecordingStore,
		cfg.BlobStore,
	)
	router.GET("/api/books", booksController.ListBooks)
	router.GET("/api/books/categories", booksController.ListCategories)
	router.GET("/api/books/:id", booksController.GetBook)
	router.POST("/api/books", booksController.CreateBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)
	router.GET("/api/dashboard/stats", booksController.DashboardStats)

	// Reader views and progress
	readerController := NewReaderController(cfg.ReaderService)
	router.POST("/api/books/:id/view", readerController.OpenView)
	router.POST("/api/reader/:viewID/page", readerController.TurnPage)
	router.GET("/api/reader/:viewID/status", readerController.ViewStatus)
	router.DELETE("/api/reader/:viewID", readerController.CloseView)

	if cfg.ProxyEnabled {
		proxyController := NewPDFProxyController(cfg.ProxyRequestsPerMin, cfg.ProxyTimeout)
		router.GET("/api/proxy-pdf", proxyController.Proxy)
	}

	// Notes
	notesController := NewNotesController(cfg.NoteStore, cfg.BookStore)
	router.GET("/api/books/:id/notes", notesController.ListNotes)
	router.POST("/api/books/:id/notes", notesController.CreateNote)
	router.PUT("/api/notes/:id", notesController.UpdateNote)
	router.DELETE("/api/notes/:id", notesController.DeleteNote)

	// Bookmarks
	bookmarksController := NewBookmarksController(cfg.BookmarkStore, cfg.BookStore)
	router.GET("/api/books/:id/bookmarks", bookmarksController.ListBookmarks)
	router.POST("/api/books/:id/bookmarks", bookmarksController.CreateBookmark)
	router.GET("/api/bookmarks", bookmarksController.ListByTag)
	router.PUT("/api/bookmarks/:id", bookmarksController.UpdateBookmark)
	router.DELETE("/api/bookmarks/:id", bookmarksController.DeleteBookmark)

	// Glossary
	glossaryController := NewGlossaryController(cfg.GlossaryStore, cfg.BookStore)
	router.GET("/api/books/:id/glossary", glossaryController.ListTerms)
	router.POST("/api/books/:id/glossary", glossaryController.CreateTerm)
	router.GET("/api/glossary/search", glossaryController.SearchTerms)
	router.PUT("/api/glossary/:id", glossaryController.UpdateTerm)
	router.DELETE("/api/glossary/:id", glossaryController.DeleteTerm)

	// Study resources
	resourcesController := NewResourcesController(cfg.ResourceStore, cfg.BookStore)
	router.GET("/api/books/:id/resources", resourcesController.ListResources)
	router.POST("/api/books/:id/resources", resourcesController.CreateResource)
	router.PUT("/api/resources/:id", resourcesController.UpdateResource)
	router.DELETE("/api/resources/:id", resourcesController.DeleteResource)

	// Reading goals
	goalsController := NewGoalsController(cfg.GoalStore, cfg.BookStore)
	router.GET("/api/goals", goalsController.ListGoals)
	router.GET("/api/books/:id/goal", goalsController.GetBookGoal)
	router.POST("/api/books/:id/goal", goalsController.CreateGoal)
	router.DELETE("/api/goals/:id", goalsController.DeleteGoal)

	// Voice recordings
	recordingsController := NewRecordingsController(cfg.RecordingStore, cfg.BookStore, cfg.BlobStore)
	router.GET("/api/books/:id/recordings", recordingsController.ListRecordings)
	router.POST("/api/books/:id/recordings", recordingsController.UploadRecording)
	router.DELETE("/api/recordings/:id", recordingsController.DeleteRecording)

	// Binary uploads
	uploadsController := NewUploadsController(
		cfg.BookStore,
		cfg.ProfileStore,
		cfg.BlobStore,
		cfg.PageCounter,
		cfg.MaxPDFSizeMB,
		cfg.MaxImageSizeMB,
	)
	router.POST("/api/books/:id/pdf", uploadsController.UploadPDF)
	router.POST("/api/profile/avatar", uploadsController.UploadAvatar)

	// Profile
	profileController := NewProfileController(cfg.ProfileStore)
	router.GET("/api/profile", profileController.GetProfile)
	router.PUT("/api/profile", profileController.UpdateProfile)

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.GET("/api/tasks/types", tasksController.ListTaskTypes)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
