package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/templui/filesmanager/internal/config"
)

var (
	// ErrStorage wraps every backend failure (disk full, permissions, network)
	ErrStorage        = errors.New("storage error")
	ErrObjectNotFound = errors.New("object not found")
)

// Storage defines the byte storage used for uploaded content and thumbnails.
// Paths are the location handles persisted as File.LocalPath.
type Storage interface {
	// Path returns the location handle for a new object name
	Path(name string) string

	// Save stores the reader's bytes at path, replacing existing content
	Save(ctx context.Context, path string, r io.Reader) error

	// Open streams the content at path; ErrObjectNotFound if absent
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the content at path
	Delete(ctx context.Context, path string) error

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
}

// New creates the storage backend selected by STORAGE_DRIVER
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageDriverLocal:
		slog.Info("initializing local storage", "root", c.FolderPath)
		return NewLocalStorage(c.FolderPath)
	case cfg.StorageDriverS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
