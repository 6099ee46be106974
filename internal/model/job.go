package model

import (
	"time"
)

const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

const (
	QueueThumbnails = "thumbnails"
	QueueWelcome    = "welcome"
)

type Job struct {
	ID          string     `db:"id"`
	Queue       string     `db:"queue"`
	Payload     string     `db:"payload"` // JSON
	Status      string     `db:"status"`
	Attempts    int        `db:"attempts"`
	MaxAttempts int        `db:"max_attempts"`
	RunAt       time.Time  `db:"run_at"`
	LockedUntil *time.Time `db:"locked_until"`
	LastError   string     `db:"last_error"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (j *Job) Exhausted() bool {
	return j.Attempts >= j.MaxAttempts
}

// ThumbnailJob is enqueued for every uploaded file that has content
type ThumbnailJob struct {
	FileID string `json:"fileId"`
	UserID string `json:"userId"`
}

// WelcomeJob is enqueued once per registered user
type WelcomeJob struct {
	UserID string `json:"userId"`
}
