package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (single-user mode)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Tracker
		Reader
		Auth
		Tasks
		Maintenance
		Proxy
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Storage struct {
		UploadDir      string // Root directory for stored blobs (pdfs, images, recordings)
		PublicBasePath string // URL prefix the blobs are served under
		MaxPDFSizeMB   int64
		MaxImageSizeMB int64
	}

	Tracker struct {
		DebounceInterval time.Duration // Quiet period before a page change is persisted
		SaveTimeout      time.Duration // Network timeout for the persistence call
		SavedDisplay     time.Duration // How long the "saved" status is shown before reverting
	}

	Reader struct {
		ViewTTL         time.Duration // Idle time before an open reader view is expired
		JanitorInterval time.Duration
	}

	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Maintenance struct {
		Enabled  bool
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
	}

	Proxy struct {
		Enabled        bool
		RequestsPerMin int // Rate limit for the PDF proxy endpoint
		Timeout        time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8177)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Storage defaults
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("public_base_path", "/uploads")
	v.SetDefault("max_pdf_size_mb", 100)
	v.SetDefault("max_image_size_mb", 2)

	// Progress tracker defaults
	v.SetDefault("tracker_debounce_interval", "1500ms")
	v.SetDefault("tracker_save_timeout", "10s")
	v.SetDefault("tracker_saved_display", "2s")

	// Reader view defaults
	v.SetDefault("reader_view_ttl", "30m")
	v.SetDefault("reader_janitor_interval", "1m")

	// Auth defaults
	v.SetDefault("auth_mode", "local")
	v.SetDefault("auth_session_secret", "") // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_lockout_duration", "30m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Maintenance scheduler defaults
	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "30 3 * * *") // Daily at 03:30

	// PDF proxy defaults
	v.SetDefault("proxy_enabled", true)
	v.SetDefault("proxy_requests_per_min", 30)
	v.SetDefault("proxy_timeout", "30s")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			UploadDir:      v.GetString("UPLOAD_DIR"),
			PublicBasePath: v.GetString("PUBLIC_BASE_PATH"),
			MaxPDFSizeMB:   v.GetInt64("MAX_PDF_SIZE_MB"),
			MaxImageSizeMB: v.GetInt64("MAX_IMAGE_SIZE_MB"),
		},
		Tracker: Tracker{
			DebounceInterval: v.GetDuration("TRACKER_DEBOUNCE_INTERVAL"),
			SaveTimeout:      v.GetDuration("TRACKER_SAVE_TIMEOUT"),
			SavedDisplay:     v.GetDuration("TRACKER_SAVED_DISPLAY"),
		},
		Reader: Reader{
			ViewTTL:         v.GetDuration("READER_VIEW_TTL"),
			JanitorInterval: v.GetDuration("READER_JANITOR_INTERVAL"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Maintenance: Maintenance{
			Enabled:  v.GetBool("MAINTENANCE_ENABLED"),
			Schedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
		Proxy: Proxy{
			Enabled:        v.GetBool("PROXY_ENABLED"),
			RequestsPerMin: v.GetInt("PROXY_REQUESTS_PER_MIN"),
			Timeout:        v.GetDuration("PROXY_TIMEOUT"),
		},
	}
}
