package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/templui/filesmanager/internal/dbtest"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time         { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestQueue(t *testing.T, opts Options) (*Queue, *clock, repository.JobRepository) {
	t.Helper()
	jobs := repository.NewJobRepository(dbtest.New(t))
	q := New(jobs, opts)
	c := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	q.now = c.now
	return q, c, jobs
}

func TestQueue_EnqueueClaimComplete(t *testing.T) {
	q, _, jobs := newTestQueue(t, Options{})
	ctx := context.Background()

	id, err := q.Enqueue(ctx, model.QueueThumbnails, model.ThumbnailJob{FileID: "f1", UserID: "u1"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	job, err := q.Claim(ctx, model.QueueThumbnails)
	if err != nil || job == nil {
		t.Fatalf("claim: job=%v err=%v", job, err)
	}
	if job.ID != id || job.Attempts != 1 || job.Status != model.JobStatusRunning {
		t.Errorf("claimed job = %+v", job)
	}

	var payload model.ThumbnailJob
	if err := Decode(job, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.FileID != "f1" || payload.UserID != "u1" {
		t.Errorf("payload = %+v", payload)
	}

	// leased, nothing else to claim
	again, err := q.Claim(ctx, model.QueueThumbnails)
	if err != nil || again != nil {
		t.Fatalf("second claim: job=%v err=%v", again, err)
	}

	if err := q.Complete(ctx, id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	stored, err := jobs.ByID(ctx, id)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if stored.Status != model.JobStatusDone {
		t.Errorf("status = %s, want done", stored.Status)
	}
}

func TestQueue_QueuesAreIsolated(t *testing.T) {
	q, _, _ := newTestQueue(t, Options{})
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, model.QueueWelcome, model.WelcomeJob{UserID: "u1"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	job, err := q.Claim(ctx, model.QueueThumbnails)
	if err != nil || job != nil {
		t.Fatalf("claim other queue: job=%v err=%v", job, err)
	}
}

func TestQueue_FailRetriesThenGivesUp(t *testing.T) {
	q, c, jobs := newTestQueue(t, Options{MaxAttempts: 2, RetryBase: time.Second, RetryMax: time.Minute})
	ctx := context.Background()

	id, _ := q.Enqueue(ctx, model.QueueWelcome, model.WelcomeJob{UserID: "u1"})

	job, _ := q.Claim(ctx, model.QueueWelcome)
	dead, err := q.Fail(ctx, job, errors.New("smtp down"))
	if err != nil || dead {
		t.Fatalf("first fail: dead=%v err=%v", dead, err)
	}

	// backoff not elapsed yet
	if job, _ := q.Claim(ctx, model.QueueWelcome); job != nil {
		t.Fatal("job redelivered before its backoff elapsed")
	}

	c.advance(2 * time.Second)
	job, err = q.Claim(ctx, model.QueueWelcome)
	if err != nil || job == nil {
		t.Fatalf("redelivery: job=%v err=%v", job, err)
	}
	if job.Attempts != 2 || job.LastError != "smtp down" {
		t.Errorf("redelivered job = %+v", job)
	}

	dead, err = q.Fail(ctx, job, errors.New("still down"))
	if err != nil || !dead {
		t.Fatalf("second fail: dead=%v err=%v", dead, err)
	}

	stored, _ := jobs.ByID(ctx, id)
	if stored.Status != model.JobStatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}

	c.advance(time.Hour)
	if job, _ := q.Claim(ctx, model.QueueWelcome); job != nil {
		t.Fatal("failed job was claimed again")
	}
}

func TestQueue_ExpiredLeaseIsReclaimed(t *testing.T) {
	q, c, _ := newTestQueue(t, Options{VisibilityTimeout: time.Minute})
	ctx := context.Background()

	id, _ := q.Enqueue(ctx, model.QueueThumbnails, model.ThumbnailJob{FileID: "f1", UserID: "u1"})
	if job, _ := q.Claim(ctx, model.QueueThumbnails); job == nil {
		t.Fatal("expected a job")
	}

	c.advance(30 * time.Second)
	if job, _ := q.Claim(ctx, model.QueueThumbnails); job != nil {
		t.Fatal("job reclaimed while its lease was valid")
	}

	c.advance(time.Minute)
	job, err := q.Claim(ctx, model.QueueThumbnails)
	if err != nil || job == nil {
		t.Fatalf("reclaim: job=%v err=%v", job, err)
	}
	if job.ID != id || job.Attempts != 2 {
		t.Errorf("reclaimed job = %+v", job)
	}
}

func TestQueue_Backoff(t *testing.T) {
	q := New(nil, Options{RetryBase: time.Second, RetryMax: 5 * time.Second})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second},
		{10, 5 * time.Second},
	}
	for _, tt := range tests {
		if got := q.Backoff(tt.attempt); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestQueue_CleanupFinished(t *testing.T) {
	q, c, jobs := newTestQueue(t, Options{})
	ctx := context.Background()

	doneID, _ := q.Enqueue(ctx, model.QueueWelcome, model.WelcomeJob{UserID: "u1"})
	job, _ := q.Claim(ctx, model.QueueWelcome)
	_ = q.Complete(ctx, job.ID)
	pendingID, _ := q.Enqueue(ctx, model.QueueWelcome, model.WelcomeJob{UserID: "u2"})

	c.advance(48 * time.Hour)
	n, err := q.CleanupFinished(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if _, err := jobs.ByID(ctx, doneID); !errors.Is(err, repository.ErrJobNotFound) {
		t.Errorf("done job still present: %v", err)
	}
	if _, err := jobs.ByID(ctx, pendingID); err != nil {
		t.Errorf("pending job removed: %v", err)
	}
}
