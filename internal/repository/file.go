package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filesmanager/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	ByID(ctx context.Context, id string) (*model.File, error)
	// ByIDAndUser only returns the file when it is owned by userID
	ByIDAndUser(ctx context.Context, id, userID string) (*model.File, error)
	List(ctx context.Context, userID string, parent model.Parent, limit, offset int) ([]*model.File, error)
	CountByParent(ctx context.Context, userID string, parent model.Parent) (int, error)
	Count(ctx context.Context) (int, error)
	SetPublic(ctx context.Context, id string, isPublic bool) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (id, user_id, name, type, is_public, parent_id, local_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.UserID,
		file.Name,
		string(file.Type),
		file.IsPublic,
		file.ParentID,
		file.LocalPath,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	file := &model.File{}
	err := r.db.GetContext(ctx, file, `SELECT * FROM files WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) ByIDAndUser(ctx context.Context, id, userID string) (*model.File, error) {
	file := &model.File{}
	err := r.db.GetContext(ctx, file, `SELECT * FROM files WHERE id = $1 AND user_id = $2`, id, userID)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

// List returns one page of the direct children of parent, oldest first.
// Ordering on (created_at, id) keeps pages disjoint for a stable collection.
func (r *fileRepository) List(ctx context.Context, userID string, parent model.Parent, limit, offset int) ([]*model.File, error) {
	files := []*model.File{}
	var err error
	if parent.IsRoot() {
		query := `SELECT * FROM files WHERE user_id = $1 AND parent_id IS NULL ORDER BY created_at, id LIMIT $2 OFFSET $3`
		err = r.db.SelectContext(ctx, &files, query, userID, limit, offset)
	} else {
		query := `SELECT * FROM files WHERE user_id = $1 AND parent_id = $2 ORDER BY created_at, id LIMIT $3 OFFSET $4`
		err = r.db.SelectContext(ctx, &files, query, userID, parent.ID(), limit, offset)
	}
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) CountByParent(ctx context.Context, userID string, parent model.Parent) (int, error) {
	var n int
	var err error
	if parent.IsRoot() {
		err = r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM files WHERE user_id = $1 AND parent_id IS NULL`, userID)
	} else {
		err = r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM files WHERE user_id = $1 AND parent_id = $2`, userID, parent.ID())
	}
	return n, err
}

func (r *fileRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM files`)
	return n, err
}

func (r *fileRepository) SetPublic(ctx context.Context, id string, isPublic bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE files SET is_public = $1 WHERE id = $2`, isPublic, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}
