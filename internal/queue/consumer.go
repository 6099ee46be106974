package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/templui/filesmanager/internal/metrics"
	"github.com/templui/filesmanager/internal/model"
)

// HandlerFunc processes one job. A returned error sends the job back to the
// queue for redelivery.
type HandlerFunc func(ctx context.Context, job *model.Job) error

// Consumer drains one queue, one job at a time
type Consumer struct {
	queue        *Queue
	name         string
	handler      HandlerFunc
	pollInterval time.Duration
}

func NewConsumer(q *Queue, name string, handler HandlerFunc, pollInterval time.Duration) *Consumer {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Consumer{
		queue:        q,
		name:         name,
		handler:      handler,
		pollInterval: pollInterval,
	}
}

// Run processes jobs until ctx is cancelled. A job in progress is finished
// before Run returns.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("consumer started", "queue", c.name)
	defer slog.Info("consumer stopped", "queue", c.name)

	for {
		if ctx.Err() != nil {
			return nil
		}

		processed, err := c.ProcessNext(ctx)
		if err != nil {
			slog.Error("queue processing failed", "queue", c.name, "error", err)
		}
		if processed {
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.pollInterval):
		}
	}
}

// ProcessNext claims and handles a single job. processed is false when the
// queue had nothing runnable.
func (c *Consumer) ProcessNext(ctx context.Context) (processed bool, err error) {
	job, err := c.claim(ctx)
	if err != nil || job == nil {
		return false, err
	}

	// The job runs to completion even if the consumer is being stopped
	jobCtx := context.WithoutCancel(ctx)
	log := slog.With("queue", c.name, "job_id", job.ID, "attempt", job.Attempts)

	start := time.Now()
	handleErr := c.handle(jobCtx, job)
	if handleErr == nil {
		err = c.queue.Complete(jobCtx, job.ID)
		if err != nil {
			return true, err
		}
		metrics.JobProcessed(c.name, metrics.OutcomeDone)
		log.Debug("job done", "duration_ms", time.Since(start).Milliseconds())
		return true, nil
	}

	dead, err := c.queue.Fail(jobCtx, job, handleErr)
	if err != nil {
		return true, err
	}
	if dead {
		metrics.JobProcessed(c.name, metrics.OutcomeFailed)
		log.Error("job failed permanently", "error", handleErr)
	} else {
		metrics.JobProcessed(c.name, metrics.OutcomeRetry)
		log.Warn("job failed, will retry", "error", handleErr)
	}
	return true, nil
}

// claim retries transient store errors a few times before giving up
func (c *Consumer) claim(ctx context.Context) (*model.Job, error) {
	var job *model.Job
	b := retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		var err error
		job, err = c.queue.Claim(ctx, c.name)
		if err != nil && ctx.Err() == nil {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

func (c *Consumer) handle(ctx context.Context, job *model.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return c.handler(ctx, job)
}
