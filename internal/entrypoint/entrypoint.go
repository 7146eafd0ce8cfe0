package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kuttab/kuttab/internal/auth"
	"github.com/kuttab/kuttab/internal/config"
	"github.com/kuttab/kuttab/internal/database"
	"github.com/kuttab/kuttab/internal/database/bookmarks"
	"github.com/kuttab/kuttab/internal/database/books"
	"github.com/kuttab/kuttab/internal/database/glossary"
	"github.com/kuttab/kuttab/internal/database/goals"
	"github.com/kuttab/kuttab/internal/database/notes"
	"github.com/kuttab/kuttab/internal/database/recordings"
	"github.com/kuttab/kuttab/internal/database/resources"
	"github.com/kuttab/kuttab/internal/database/sessions"
	"github.com/kuttab/kuttab/internal/database/users"
	http_controllers "github.com/kuttab/kuttab/internal/http"
	"github.com/kuttab/kuttab/internal/pdf"
	"github.com/kuttab/kuttab/internal/reader"
	"github.com/kuttab/kuttab/internal/scheduler"
	"github.com/kuttab/kuttab/internal/storage/providers/filesystem"
	"github.com/kuttab/kuttab/internal/tasks"
	"github.com/kuttab/kuttab/internal/tracker"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// pageIndicators combines the bookmark and note presence queries the tracker
// refreshes after each save.
type pageIndicators struct {
	bookmarks *bookmarks.Repository
	notes     *notes.Repository
}

func (p *pageIndicators) HasBookmarkOnPage(userID, bookID uint, page int) (bool, error) {
	return p.bookmarks.HasBookmarkOnPage(userID, bookID, page)
}

func (p *pageIndicators) HasNotesOnPage(userID, bookID uint, page int) (bool, error) {
	return p.notes.HasNotesOnPage(userID, bookID, page)
}

// blobReferences aggregates every table that points at stored blobs, for the
// orphan cleanup task.
type blobReferences struct {
	books      *books.Repository
	recordings *recordings.Repository
	users      *users.Repository
}

func (b *blobReferences) AllPDFURLs() ([]string, error)    { return b.books.AllPDFURLs() }
func (b *blobReferences) AllAudioURLs() ([]string, error)  { return b.recordings.AllAudioURLs() }
func (b *blobReferences) AllAvatarURLs() ([]string, error) { return b.users.AllAvatarURLs() }

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains with the
// configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown callback first, so trackers and workers stop before the
	// listener does
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the application together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Kuttab v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Domain repositories
	userRepo := users.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)
	noteRepo := notes.NewRepository(db.DB)
	bookmarkRepo := bookmarks.NewRepository(db.DB)
	glossaryRepo := glossary.NewRepository(db.DB)
	resourceRepo := resources.NewRepository(db.DB)
	goalRepo := goals.NewRepository(db.DB)
	recordingRepo := recordings.NewRepository(db.DB)

	// Blob storage on the local filesystem
	blobs, err := filesystem.New(cfg.Storage.UploadDir, cfg.Storage.PublicBasePath)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}
	log.Printf("Blob storage at %s (served under %s)", cfg.Storage.UploadDir, cfg.Storage.PublicBasePath)

	// Reader views with the progress tracker behind them
	indicators := &pageIndicators{bookmarks: bookmarkRepo, notes: noteRepo}
	readerService := reader.NewService(bookRepo, sessionRepo, sessionRepo, indicators, reader.Config{
		ViewTTL:         cfg.Reader.ViewTTL,
		JanitorInterval: cfg.Reader.JanitorInterval,
		Tracker: tracker.Config{
			DebounceInterval: cfg.Tracker.DebounceInterval,
			SaveTimeout:      cfg.Tracker.SaveTimeout,
			SavedDisplay:     cfg.Tracker.SavedDisplay,
		},
	})

	// Background task queue
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewPruneSessionsQueue(sessionRepo),
			tasks.NewCompleteGoalsQueue(goalRepo, bookRepo, sessionRepo),
			tasks.NewCleanupBlobsQueue(&blobReferences{
				books:      bookRepo,
				recordings: recordingRepo,
				users:      userRepo,
			}, blobs),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if cfg.Maintenance.Enabled {
			maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Maintenance.Schedule)
			if err := maintenance.Start(taskCtx); err != nil {
				log.Fatalf("Failed to start maintenance scheduler: %v", err)
			}
		}
	}

	// Authentication
	authService := auth.NewService(userRepo, cfg.Auth)
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. POST /api/auth/setup to create the first account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:            db,
		Version:             version,
		BookStore:           bookRepo,
		NoteStore:           noteRepo,
		BookmarkStore:       bookmarkRepo,
		GlossaryStore:       glossaryRepo,
		ResourceStore:       resourceRepo,
		GoalStore:           goalRepo,
		RecordingStore:      recordingRepo,
		SessionStore:        sessionRepo,
		ProfileStore:        userRepo,
		ReaderService:       readerService,
		BlobStore:           blobs,
		StorageRoot:         cfg.Storage.UploadDir,
		PublicBase:          cfg.Storage.PublicBasePath,
		PageCounter:         pdf.CountPages,
		MaxPDFSizeMB:        int(cfg.Storage.MaxPDFSizeMB),
		MaxImageSizeMB:      int(cfg.Storage.MaxImageSizeMB),
		ProxyEnabled:        cfg.Proxy.Enabled,
		ProxyRequestsPerMin: cfg.Proxy.RequestsPerMin,
		ProxyTimeout:        cfg.Proxy.Timeout,
		AuthService:         authService,
		SessionManager:      sessionManager,
		AuthMiddleware:      authMiddleware,
		AuthConfig:          cfg.Auth,
		CSRFSecret:          csrfSecret,
		SecureCookies:       cfg.Auth.SecureCookies,
		TaskClient:          taskClient,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		// Close open reader views first: pending debounce saves are dropped,
		// in-flight saves get to finish
		readerService.Close()

		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
