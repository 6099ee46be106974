package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/templui/filesmanager/internal/imaging"
	"github.com/templui/filesmanager/internal/metrics"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/storage"
)

// ThumbnailResult maps every attempted width to its outcome, nil on success
type ThumbnailResult map[int]error

type ThumbnailWorker struct {
	fileRepository repository.FileRepository
	content        *storage.ContentStore
	resizer        imaging.Resizer
}

func NewThumbnailWorker(fileRepository repository.FileRepository, content *storage.ContentStore, resizer imaging.Resizer) *ThumbnailWorker {
	return &ThumbnailWorker{
		fileRepository: fileRepository,
		content:        content,
		resizer:        resizer,
	}
}

// Handle adapts Process to the queue consumer
func (w *ThumbnailWorker) Handle(ctx context.Context, job *model.Job) error {
	var payload model.ThumbnailJob
	err := queue.Decode(job, &payload)
	if err != nil {
		return err
	}
	_, err = w.Process(ctx, payload)
	return err
}

// Process generates every thumbnail width for the job's file. Only problems
// with the job itself are returned; a width that cannot be produced is
// recorded in the result and the remaining widths still run.
func (w *ThumbnailWorker) Process(ctx context.Context, job model.ThumbnailJob) (ThumbnailResult, error) {
	if err := checkID(job.UserID, ErrMissingUserID, ErrInvalidUserID); err != nil {
		return nil, err
	}
	if err := checkID(job.FileID, ErrMissingFileID, ErrInvalidFileID); err != nil {
		return nil, err
	}

	file, err := w.fileRepository.ByIDAndUser(ctx, job.FileID, job.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	result := ThumbnailResult{}
	if file.IsFolder() || file.LocalPath == nil {
		slog.Debug("skipping thumbnails for folder", "file_id", file.ID)
		return result, nil
	}

	src, decodeErr := w.decode(ctx, file)
	if decodeErr != nil {
		slog.Warn("original not decodable", "file_id", file.ID, "error", decodeErr)
	}

	for _, width := range model.ThumbnailWidths {
		err := decodeErr
		if err == nil {
			err = w.generate(ctx, file, src, width)
		}
		metrics.Thumbnail(width, err)
		if err != nil {
			slog.Warn("thumbnail failed", "file_id", file.ID, "width", width, "error", err)
		}
		result[width] = err
	}

	slog.Info("thumbnails processed", "file_id", file.ID, "user_id", file.UserID)
	return result, nil
}

// decode reads the original once for all widths
func (w *ThumbnailWorker) decode(ctx context.Context, file *model.File) (*imaging.Source, error) {
	rc, err := w.content.Open(ctx, *file.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open original: %w", err)
	}
	defer func() { _ = rc.Close() }()

	return w.resizer.Decode(rc)
}

func (w *ThumbnailWorker) generate(ctx context.Context, file *model.File, src *imaging.Source, width int) error {
	thumb, err := w.resizer.Resize(src, width)
	if err != nil {
		return err
	}

	return w.content.Save(ctx, file.ThumbnailPath(width), thumb)
}
