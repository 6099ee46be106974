package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidData = errors.New("content is not valid base64")

// ContentStore persists uploaded file contents under fresh unique names
type ContentStore struct {
	storage Storage
}

func NewContentStore(storage Storage) *ContentStore {
	return &ContentStore{storage: storage}
}

// SaveBase64 decodes an upload's transmitted content and stores it.
// Returns the location handle to persist as the file's local path.
func (c *ContentStore) SaveBase64(ctx context.Context, userID, data string) (string, error) {
	raw, err := decodeBase64(data)
	if err != nil {
		return "", err
	}

	path := c.storage.Path(uuid.New().String())
	err = c.storage.Save(ctx, path, bytes.NewReader(raw))
	if err != nil {
		return "", err
	}

	slog.Debug("content saved", "user_id", userID, "path", path, "size", len(raw))
	return path, nil
}

// Discard removes content whose file record could not be written
func (c *ContentStore) Discard(ctx context.Context, path string) {
	err := c.storage.Delete(ctx, path)
	if err != nil {
		slog.Error("failed to delete content during cleanup", "error", err, "path", path)
	}
}

func decodeBase64(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	// Accept data URLs as sent by browsers: data:image/png;base64,....
	if strings.HasPrefix(data, "data:") {
		if i := strings.Index(data, ","); i >= 0 {
			data = data[i+1:]
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err == nil {
		return raw, nil
	}
	raw, rawErr := base64.RawStdEncoding.DecodeString(data)
	if rawErr == nil {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
}

// Open streams stored content; ErrObjectNotFound if absent
func (c *ContentStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return c.storage.Open(ctx, path)
}

// Save writes derived content, e.g. a thumbnail, at an explicit path
func (c *ContentStore) Save(ctx context.Context, path string, data []byte) error {
	return c.storage.Save(ctx, path, bytes.NewReader(data))
}
