package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

type Config struct {
	// Application
	AppName        string
	AppEnv         string
	AppURL         string
	Port           string
	MaxUploadBytes int64
	CORSOrigins    []string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret     string
	SessionTTL    time.Duration
	UserCacheSize int
	UserCacheTTL  time.Duration

	// Rate limit for /connect and registration, per client IP
	AuthRateLimit     int
	AuthRateWindow    time.Duration
	TrustProxyHeaders bool

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN         string
	WorkerMetricsPort string

	// Storage: "local" writes under FolderPath, "s3" uses any S3-compatible bucket
	StorageDriver string
	FolderPath    string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)

	// Queue
	QueuePollInterval      time.Duration
	QueueVisibilityTimeout time.Duration
	QueueMaxAttempts       int
	QueueRetryBase         time.Duration
	QueueRetryMax          time.Duration

	// Thumbnails: originals above this many pixels are not decoded
	ThumbnailMaxPixels int
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:        envString("APP_NAME", "Files Manager"),
		AppEnv:         envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:         envString("APP_URL", "http://localhost:5000"),
		Port:           envString("PORT", "5000"),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 32<<20)),
		CORSOrigins:    envList("CORS_ORIGINS", "*"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/files_manager.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret:     envRequired("JWT_SECRET"),
		SessionTTL:    envDuration("SESSION_TTL", 24*time.Hour),
		UserCacheSize: envInt("USER_CACHE_BYTES", 8<<20),
		UserCacheTTL:  envDuration("USER_CACHE_TTL", 5*time.Minute),

		AuthRateLimit:     envInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow:    envDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		TrustProxyHeaders: envBool("TRUST_PROXY_HEADERS", false),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN:         envString("SENTRY_DSN", ""),
		WorkerMetricsPort: envString("WORKER_METRICS_PORT", "5001"),

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", StorageDriverLocal),
		FolderPath:    envString("FOLDER_PATH", "/tmp/files_manager"),
		S3Region:      envString("S3_REGION", ""),
		S3Bucket:      envString("S3_BUCKET", ""),
		S3AccessKey:   envString("S3_ACCESS_KEY", ""),
		S3SecretKey:   envString("S3_SECRET_KEY", ""),
		S3Endpoint:    envString("S3_ENDPOINT", ""),

		// Queue
		QueuePollInterval:      envDuration("QUEUE_POLL_INTERVAL", 1*time.Second),
		QueueVisibilityTimeout: envDuration("QUEUE_VISIBILITY_TIMEOUT", 5*time.Minute),
		QueueMaxAttempts:       envInt("QUEUE_MAX_ATTEMPTS", 3),
		QueueRetryBase:         envDuration("QUEUE_RETRY_BASE", 5*time.Second),
		QueueRetryMax:          envDuration("QUEUE_RETRY_MAX", 5*time.Minute),

		ThumbnailMaxPixels: envInt("THUMBNAIL_MAX_PIXELS", 40_000_000),
	}

	if cfg.StorageDriver == StorageDriverS3 {
		validateS3(cfg)
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development falls back to logging emails instead of sending them.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
}

func validateS3(cfg *Config) {
	missing := []string{}
	if cfg.S3Region == "" {
		missing = append(missing, "S3_REGION")
	}
	if cfg.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if len(missing) > 0 {
		slog.Error("s3 storage driver requires configuration", "missing", missing)
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList splits a comma-separated value, dropping empty items
func envList(key, def string) []string {
	var out []string
	for _, p := range strings.Split(envString(key, def), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
