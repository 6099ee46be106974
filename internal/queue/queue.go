// Package queue is a durable job queue backed by the jobs table.
// Delivery is at-least-once: a claimed job that is neither completed nor
// failed before its lease runs out is handed to the next claimer.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
)

type Options struct {
	MaxAttempts       int
	VisibilityTimeout time.Duration
	RetryBase         time.Duration
	RetryMax          time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.VisibilityTimeout <= 0 {
		o.VisibilityTimeout = 5 * time.Minute
	}
	if o.RetryBase <= 0 {
		o.RetryBase = 5 * time.Second
	}
	if o.RetryMax < o.RetryBase {
		o.RetryMax = o.RetryBase
	}
	return o
}

type Queue struct {
	jobs repository.JobRepository
	opts Options
	now  func() time.Time
}

func New(jobs repository.JobRepository, opts Options) *Queue {
	return &Queue{
		jobs: jobs,
		opts: opts.withDefaults(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue stores payload as JSON on the named queue and returns the job id
func (q *Queue) Enqueue(ctx context.Context, name string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s payload: %w", name, err)
	}

	job := &model.Job{
		Queue:       name,
		Payload:     string(body),
		MaxAttempts: q.opts.MaxAttempts,
		RunAt:       q.now(),
	}
	err = q.jobs.Create(ctx, job)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s job: %w", name, err)
	}

	slog.Debug("job enqueued", "queue", name, "job_id", job.ID)
	return job.ID, nil
}

// Claim leases the next runnable job of the named queue.
// Returns nil, nil when nothing is runnable.
func (q *Queue) Claim(ctx context.Context, name string) (*model.Job, error) {
	now := q.now()
	job, err := q.jobs.Claim(ctx, name, now, now.Add(q.opts.VisibilityTimeout))
	if errors.Is(err, repository.ErrJobNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim %s job: %w", name, err)
	}
	return job, nil
}

func (q *Queue) Complete(ctx context.Context, id string) error {
	err := q.jobs.Complete(ctx, id, q.now())
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", id, err)
	}
	return nil
}

// Fail records cause on the job. The job is scheduled again after a backoff
// until it has used its attempts, then it is marked failed for good.
// dead reports the latter.
func (q *Queue) Fail(ctx context.Context, job *model.Job, cause error) (dead bool, err error) {
	now := q.now()
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}

	if job.Exhausted() {
		err = q.jobs.MarkFailed(ctx, job.ID, msg, now)
		if err != nil {
			return false, fmt.Errorf("failed to mark job %s failed: %w", job.ID, err)
		}
		return true, nil
	}

	runAt := now.Add(q.Backoff(job.Attempts))
	err = q.jobs.Reschedule(ctx, job.ID, runAt, msg, now)
	if err != nil {
		return false, fmt.Errorf("failed to reschedule job %s: %w", job.ID, err)
	}
	return false, nil
}

// Backoff is the delay before redelivering a job that failed on its
// attempt-th try: RetryBase doubled per attempt, capped at RetryMax.
func (q *Queue) Backoff(attempt int) time.Duration {
	b := retry.WithCappedDuration(q.opts.RetryMax, retry.NewExponential(q.opts.RetryBase))

	d := q.opts.RetryBase
	for i := 0; i < attempt; i++ {
		next, stop := b.Next()
		if stop {
			break
		}
		d = next
	}
	return d
}

// Ping reports whether the jobs table is reachable
func (q *Queue) Ping(ctx context.Context) error {
	return q.jobs.Ping(ctx)
}

// CleanupFinished deletes done and failed jobs older than olderThan
func (q *Queue) CleanupFinished(ctx context.Context, olderThan time.Duration) (int64, error) {
	return q.jobs.DeleteFinished(ctx, q.now().Add(-olderThan))
}

// Decode unmarshals a job payload into v
func Decode(job *model.Job, v any) error {
	err := json.Unmarshal([]byte(job.Payload), v)
	if err != nil {
		return fmt.Errorf("invalid %s payload: %w", job.Queue, err)
	}
	return nil
}
