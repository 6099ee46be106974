package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/storage"
	"github.com/templui/filesmanager/internal/validation"
)

const PageSize = 20

type CreateFileInput struct {
	Name     string       `json:"name"`
	Type     string       `json:"type"`
	ParentID model.Parent `json:"parentId"`
	IsPublic bool         `json:"isPublic"`
	Data     string       `json:"data"`
}

// Content is an opened file body. The caller must close Body.
type Content struct {
	Body        io.ReadCloser
	File        *model.File
	ContentType string
}

type FileService struct {
	fileRepository repository.FileRepository
	content        *storage.ContentStore
	enqueuer       Enqueuer
}

func NewFileService(fileRepository repository.FileRepository, content *storage.ContentStore, enqueuer Enqueuer) *FileService {
	return &FileService{
		fileRepository: fileRepository,
		content:        content,
		enqueuer:       enqueuer,
	}
}

// Create validates and stores a new file or folder owned by userID.
// Everything with content gets a thumbnail job.
func (s *FileService) Create(ctx context.Context, userID string, in CreateFileInput) (*model.File, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("Missing name")
	}
	err := validation.ValidateFileName(name)
	if err != nil {
		return nil, invalid(err.Error())
	}

	if in.Type == "" {
		return nil, invalid("Missing type")
	}
	fileType := model.FileType(in.Type)
	if !fileType.Valid() {
		return nil, invalid("Invalid type")
	}

	if fileType != model.FileTypeFolder && in.Data == "" {
		return nil, invalid("Missing data")
	}

	if !in.ParentID.IsRoot() {
		if _, err := uuid.Parse(in.ParentID.ID()); err != nil {
			return nil, invalid("Invalid parentId")
		}
		parent, err := s.fileRepository.ByIDAndUser(ctx, in.ParentID.ID(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrFileNotFound) {
				return nil, invalid("Parent not found")
			}
			return nil, fmt.Errorf("failed to get parent: %w", err)
		}
		if !parent.IsFolder() {
			return nil, invalid("Parent is not a folder")
		}
	}

	file := &model.File{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Type:      fileType,
		IsPublic:  in.IsPublic,
		ParentID:  in.ParentID,
		CreatedAt: time.Now().UTC(),
	}

	if fileType != model.FileTypeFolder {
		path, err := s.content.SaveBase64(ctx, userID, in.Data)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidData) {
				return nil, invalid("Invalid data")
			}
			return nil, fmt.Errorf("failed to save content: %w", err)
		}
		file.LocalPath = &path
	}

	err = s.fileRepository.Create(ctx, file)
	if err != nil {
		if file.LocalPath != nil {
			s.content.Discard(ctx, *file.LocalPath)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	if file.LocalPath != nil {
		_, err = s.enqueuer.Enqueue(ctx, model.QueueThumbnails, model.ThumbnailJob{FileID: file.ID, UserID: userID})
		if err != nil {
			slog.Error("failed to enqueue thumbnail job", "error", err, "file_id", file.ID)
		}
	}

	slog.Info("file created", "file_id", file.ID, "user_id", userID, "type", file.Type)
	return file, nil
}

// Get returns a file its requester may see: owned or public
func (s *FileService) Get(ctx context.Context, fileID, requesterID string) (*model.File, error) {
	file, err := s.byID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !file.VisibleTo(requesterID) {
		return nil, ErrForbidden
	}
	return file, nil
}

// List returns one page of userID's files directly under parent.
// Negative pages are read as the first page.
func (s *FileService) List(ctx context.Context, userID string, parent model.Parent, page int) (*model.FilePage, error) {
	if !parent.IsRoot() {
		if _, err := uuid.Parse(parent.ID()); err != nil {
			return nil, invalid("Invalid parentId")
		}
	}
	if page < 0 {
		page = 0
	}

	total, err := s.fileRepository.CountByParent(ctx, userID, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	files, err := s.fileRepository.List(ctx, userID, parent, PageSize, page*PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return &model.FilePage{
		Page:       page,
		TotalPages: (total + PageSize - 1) / PageSize,
		TotalItems: total,
		Data:       files,
	}, nil
}

// SetPublic flips visibility. Only the owner may, public or not.
func (s *FileService) SetPublic(ctx context.Context, fileID, requesterID string, isPublic bool) (*model.Visibility, error) {
	file, err := s.byID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !file.OwnedBy(requesterID) {
		return nil, ErrForbidden
	}

	err = s.fileRepository.SetPublic(ctx, file.ID, isPublic)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update file: %w", err)
	}

	return &model.Visibility{ID: file.ID, IsPublic: isPublic}, nil
}

// ReadContent opens a file's bytes, or one of its thumbnails when size is a
// thumbnail width. size 0 is the original. requesterID may be empty for
// anonymous access to public files.
func (s *FileService) ReadContent(ctx context.Context, fileID, requesterID string, size int) (*Content, error) {
	file, err := s.byID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.IsFolder() || file.LocalPath == nil {
		return nil, invalid("A folder doesn't have content")
	}
	if !file.VisibleTo(requesterID) {
		return nil, ErrForbidden
	}

	path := *file.LocalPath
	if size != 0 {
		if !slices.Contains(model.ThumbnailWidths, size) {
			return nil, invalid("Invalid size")
		}
		path = file.ThumbnailPath(size)
	}

	body, err := s.content.Open(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open content: %w", err)
	}

	return &Content{
		Body:        body,
		File:        file,
		ContentType: contentType(file.Name),
	}, nil
}

func (s *FileService) byID(ctx context.Context, fileID string) (*model.File, error) {
	if _, err := uuid.Parse(fileID); err != nil {
		return nil, invalid("Invalid id")
	}

	file, err := s.fileRepository.ByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

func contentType(name string) string {
	t := mime.TypeByExtension(filepath.Ext(name))
	if t == "" {
		return "application/octet-stream"
	}
	return t
}
