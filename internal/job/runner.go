package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory queue
	QueueSize int

	// PollInterval defines how often the store is checked for due jobs
	PollInterval time.Duration

	// StuckJobAge defines how long a job can be in processing state
	// before it's considered stuck and reset
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs
	StuckJobCheckInterval time.Duration

	// KeepCompleted and KeepFailed bound the history kept per job type.
	// Negative values disable trimming.
	KeepCompleted int
	KeepFailed    int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		PollInterval:          500 * time.Millisecond,
		StuckJobAge:           10 * time.Minute,
		StuckJobCheckInterval: time.Minute,
		KeepCompleted:         5,
		KeepFailed:            5,
	}
}

// Runner persists submitted jobs, polls for due ones and executes them on a
// fixed pool of workers with retries.
type Runner struct {
	store  Store
	queue  *Queue
	config RunnerConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	handlers map[string]Handler
	running  bool

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	errHandler func(job *Job, err error)
}

// NewRunner creates a new Runner
func NewRunner(store Store, config RunnerConfig, logger *slog.Logger) *Runner {
	defaults := DefaultRunnerConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.StuckJobAge <= 0 {
		config.StuckJobAge = defaults.StuckJobAge
	}
	if config.StuckJobCheckInterval <= 0 {
		config.StuckJobCheckInterval = defaults.StuckJobCheckInterval
	}

	logger = logger.With("component", "job_runner")
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		queue:      NewQueue(config.QueueSize, logger),
		config:     config,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		handlers:   make(map[string]Handler),
		ctx:        ctx,
		cancelFunc: cancel,
		errHandler: func(job *Job, err error) {
			logger.Error("job failed permanently",
				"job_id", job.ID,
				"job_type", job.Type,
				"attempts", job.Attempts,
				"error", err)
		},
	}
}

// SetErrorHandler sets the function called when a job exhausts its attempts
func (r *Runner) SetErrorHandler(handler func(job *Job, err error)) {
	r.errHandler = handler
}

// Register binds a handler to a job type. Registering a type twice replaces the handler.
func (r *Runner) Register(jobType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[jobType] = handler
}

func (r *Runner) handler(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

// Enqueue persists a new pending job. The poller picks it up once its delay has elapsed.
func (r *Runner) Enqueue(ctx context.Context, jobType string, payload any, opts Options) (*Job, error) {
	if _, ok := r.handler(jobType); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", jobType, err)
	}

	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	now := r.now()
	job := &Job{
		ID:          uuid.New(),
		Type:        jobType,
		Payload:     raw,
		Status:      StatusPending,
		MaxAttempts: opts.MaxAttempts,
		Backoff:     opts.Backoff,
		RunAt:       now.Add(opts.Delay),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.store.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	r.logger.Debug("job enqueued",
		"job_id", job.ID,
		"job_type", jobType,
		"run_at", job.RunAt)

	return job, nil
}

// Get returns a persisted job.
func (r *Runner) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	return r.store.Get(ctx, id)
}

// Start recovers interrupted jobs and launches the poller, the workers and
// the stuck job monitor.
func (r *Runner) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(2)
	go r.poller()
	go r.stuckJobMonitor()

	r.logger.Info("job runner started",
		"worker_count", r.config.WorkerCount,
		"poll_interval", r.config.PollInterval.String())

	return nil
}

// Stop gracefully shuts down the runner, waiting for in-flight jobs.
func (r *Runner) Stop() {
	r.mu.Lock()
	wasRunning := r.running
	r.running = false
	r.mu.Unlock()

	r.cancelFunc()
	r.wg.Wait()
	r.queue.Close()

	if wasRunning {
		r.logger.Info("job runner stopped")
	}
}

// Recover returns jobs left in processing by a previous run to the queue.
// Only jobs untouched for StuckJobAge are considered, so jobs held by another
// runner sharing the table are left alone. Interrupted jobs on their final
// attempt are marked failed instead.
func (r *Runner) Recover() error {
	n, err := r.store.ResetProcessing(r.ctx, r.now().Add(-r.config.StuckJobAge))
	if err != nil {
		return err
	}
	if n > 0 {
		r.logger.Info("recovered interrupted jobs", "count", n)
	}
	return nil
}

// poller periodically claims due jobs, never more than the queue can hold
func (r *Runner) poller() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.pollOnce()
		}
	}
}

func (r *Runner) pollOnce() {
	free := r.queue.Free()
	if free <= 0 {
		return
	}

	jobs, err := r.store.ClaimDue(r.ctx, r.now(), free)
	if err != nil {
		if r.ctx.Err() == nil {
			r.logger.Error("failed to claim due jobs", "error", err)
		}
		return
	}

	for _, job := range jobs {
		if err := r.queue.Enqueue(job); err != nil {
			r.logger.Error("failed to hand job to workers",
				"job_id", job.ID,
				"job_type", job.Type,
				"error", err)
		}
	}
}

// worker processes jobs from the queue
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return
		case job, ok := <-r.queue.Jobs():
			if !ok {
				return
			}
			r.processJob(job, id)
		}
	}
}

// processJob executes a single claimed job and records the outcome
func (r *Runner) processJob(job *Job, workerID int) {
	ctx := context.WithoutCancel(r.ctx)
	logger := r.logger.With(
		"job_id", job.ID,
		"job_type", job.Type,
		"attempt", job.Attempts,
		"worker_id", workerID,
	)

	if job.Attempts > job.MaxAttempts {
		r.fail(ctx, logger, job, fmt.Errorf("%w: attempt %d of %d", ErrAttemptsUsed, job.Attempts, job.MaxAttempts))
		return
	}

	handler, ok := r.handler(job.Type)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
		r.fail(ctx, logger, job, err)
		return
	}

	logger.Info("processing job")

	if err := r.execute(handler, job); err != nil {
		if job.CanRetry() {
			runAt := r.now().Add(job.Backoff)
			logger.Warn("job attempt failed, retrying",
				"error", err,
				"retry_at", runAt)
			if updateErr := r.store.Reschedule(ctx, job.ID, runAt, err.Error()); updateErr != nil {
				logger.Error("failed to reschedule job", "error", updateErr)
			}
			return
		}
		r.fail(ctx, logger, job, err)
		return
	}

	logger.Info("job completed successfully")
	if err := r.store.MarkCompleted(ctx, job.ID); err != nil {
		logger.Error("failed to mark job completed", "error", err)
		return
	}
	r.trim(ctx, job.Type, StatusCompleted, r.config.KeepCompleted)
}

// execute runs the handler, converting a panic into an error
func (r *Runner) execute(handler Handler, job *Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job handler panicked: %v", p)
		}
	}()
	return handler(r.ctx, job)
}

func (r *Runner) fail(ctx context.Context, logger *slog.Logger, job *Job, err error) {
	if updateErr := r.store.MarkFailed(ctx, job.ID, err.Error()); updateErr != nil {
		logger.Error("failed to mark job failed", "error", updateErr)
	}
	r.errHandler(job, err)
	r.trim(ctx, job.Type, StatusFailed, r.config.KeepFailed)
}

func (r *Runner) trim(ctx context.Context, jobType string, status Status, keep int) {
	if keep < 0 {
		return
	}
	n, err := r.store.Trim(ctx, jobType, status, keep)
	if err != nil {
		r.logger.Error("failed to trim job history",
			"job_type", jobType,
			"status", status,
			"error", err)
		return
	}
	if n > 0 {
		r.logger.Debug("trimmed job history",
			"job_type", jobType,
			"status", status,
			"removed", n)
	}
}

// stuckJobMonitor periodically resets jobs that have been in processing for too long
func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			n, err := r.store.ResetProcessing(r.ctx, r.now().Add(-r.config.StuckJobAge))
			if err != nil {
				if r.ctx.Err() == nil {
					r.logger.Error("failed to reset stuck jobs", "error", err)
				}
				continue
			}
			if n > 0 {
				r.logger.Warn("reset stuck jobs", "count", n)
			}
		}
	}
}
