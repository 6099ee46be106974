package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/filesmanager/internal/model"
)

var (
	ErrJobNotFound = errors.New("job not found")
)

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	ByID(ctx context.Context, id string) (*model.Job, error)
	Claim(ctx context.Context, queue string, now, lockUntil time.Time) (*model.Job, error)
	Complete(ctx context.Context, id string, now time.Time) error
	Reschedule(ctx context.Context, id string, runAt time.Time, lastError string, now time.Time) error
	MarkFailed(ctx context.Context, id string, lastError string, now time.Time) error
	DeleteFinished(ctx context.Context, before time.Time) (int64, error)
	Ping(ctx context.Context) error
}

type jobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *model.Job) error {
	now := time.Now().UTC()
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}
	if job.RunAt.IsZero() {
		job.RunAt = now
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = job.CreatedAt

	query := `
		INSERT INTO jobs (id, queue, payload, status, attempts, max_attempts, run_at, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID,
		job.Queue,
		job.Payload,
		job.Status,
		job.Attempts,
		job.MaxAttempts,
		job.RunAt,
		job.LastError,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (r *jobRepository) ByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.GetContext(ctx, &job, `SELECT * FROM jobs WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Claim atomically leases the oldest runnable job of a queue until lockUntil.
// Running jobs whose lease expired are runnable again, which is how a crashed
// consumer's job gets redelivered. The outer WHERE repeats the runnable check
// so two concurrent claimers cannot both win the same row.
// Returns ErrJobNotFound when the queue is empty.
func (r *jobRepository) Claim(ctx context.Context, queue string, now, lockUntil time.Time) (*model.Job, error) {
	query := `
		UPDATE jobs
		SET status = 'running', attempts = attempts + 1, locked_until = $1, updated_at = $2
		WHERE id = (
			SELECT id FROM jobs
			WHERE queue = $3
			AND run_at <= $2
			AND (status = 'pending' OR (status = 'running' AND locked_until < $2))
			ORDER BY run_at, created_at
			LIMIT 1
		)
		AND (status = 'pending' OR (status = 'running' AND locked_until < $2))
		RETURNING id
	`

	var id string
	err := r.db.GetContext(ctx, &id, query, lockUntil.UTC(), now.UTC(), queue)
	if err == sql.ErrNoRows {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	// Read back through a plain SELECT so column types are decoded the same
	// way on every driver
	return r.ByID(ctx, id)
}

func (r *jobRepository) Complete(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE jobs SET status = 'done', locked_until = NULL, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, now.UTC(), id)
	return err
}

func (r *jobRepository) Reschedule(ctx context.Context, id string, runAt time.Time, lastError string, now time.Time) error {
	query := `
		UPDATE jobs
		SET status = 'pending', run_at = $1, locked_until = NULL, last_error = $2, updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, runAt.UTC(), lastError, now.UTC(), id)
	return err
}

func (r *jobRepository) MarkFailed(ctx context.Context, id string, lastError string, now time.Time) error {
	query := `UPDATE jobs SET status = 'failed', locked_until = NULL, last_error = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, lastError, now.UTC(), id)
	return err
}

// DeleteFinished removes done and failed jobs last touched before the cutoff
func (r *jobRepository) DeleteFinished(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM jobs WHERE status IN ('done', 'failed') AND updated_at < $1`
	result, err := r.db.ExecContext(ctx, query, before.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *jobRepository) Ping(ctx context.Context) error {
	var n int
	return r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM jobs WHERE status = 'pending'`)
}
