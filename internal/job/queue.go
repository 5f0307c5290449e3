package job

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// Queue is the in-memory hand-off between the poller and the workers.
type Queue struct {
	jobs   chan *Job
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewQueue creates a new queue with the specified buffer size
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{
		jobs:   make(chan *Job, size),
		logger: logger,
	}
}

// Enqueue adds a job without blocking.
// Returns an error if the queue is full or closed.
func (q *Queue) Enqueue(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			"job_id", job.ID,
			"job_type", job.Type,
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Close closes the queue, preventing further submission
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed")
	}
}

// Jobs returns the receive side of the queue
func (q *Queue) Jobs() <-chan *Job {
	return q.jobs
}

// Free returns the number of jobs that can be enqueued without blocking.
func (q *Queue) Free() int {
	return cap(q.jobs) - len(q.jobs)
}
