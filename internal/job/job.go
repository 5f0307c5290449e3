package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// Status represents the current state of a job
type Status string

// Possible job status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Common errors returned by the job package
var (
	ErrJobNotFound    = fmt.Errorf("%w: job", store.ErrNotFound)
	ErrUnknownJobType = errors.New("no handler registered for job type")
	ErrInterrupted    = errors.New("job interrupted on its final attempt")
	ErrAttemptsUsed   = errors.New("job has no attempts left")
)

// Job is a persisted unit of background work.
type Job struct {
	ID          uuid.UUID
	Type        string
	Payload     json.RawMessage
	Status      Status
	Attempts    int
	MaxAttempts int
	Backoff     time.Duration
	RunAt       time.Time
	LastError   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DecodePayload unmarshals the job payload into v.
func (j *Job) DecodePayload(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", j.Type, err)
	}
	return nil
}

// CanRetry reports whether another attempt is allowed after a failure.
func (j *Job) CanRetry() bool {
	return j.Attempts < j.MaxAttempts
}

// Options control scheduling of a single job.
type Options struct {
	// Delay postpones the first attempt.
	Delay time.Duration
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// Backoff is the fixed wait between a failed attempt and the next one.
	Backoff time.Duration
}

// Handler executes a job. Returning an error schedules a retry while attempts remain.
type Handler func(ctx context.Context, job *Job) error

// Store persists jobs and their state transitions.
type Store interface {
	// Save inserts a new job.
	Save(ctx context.Context, job *Job) error

	// Get returns a job by ID, or ErrJobNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Job, error)

	// ClaimDue atomically moves up to limit pending jobs whose RunAt is not
	// after now into processing, incrementing their attempt counter.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Job, error)

	// MarkCompleted records a successful run.
	MarkCompleted(ctx context.Context, id uuid.UUID) error

	// MarkFailed records a terminal failure.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// Reschedule returns a job to pending with a new RunAt.
	Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time, errMsg string) error

	// ResetProcessing handles jobs stuck in processing since before the given
	// time. Jobs with attempts left go back to pending, the rest are marked
	// failed with ErrInterrupted. It reports how many jobs were changed.
	ResetProcessing(ctx context.Context, updatedBefore time.Time) (int64, error)

	// Trim deletes all but the newest keep jobs of the given type and status.
	Trim(ctx context.Context, jobType string, status Status, keep int) (int64, error)
}
