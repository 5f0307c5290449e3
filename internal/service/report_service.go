package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/job"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/ws"
)

// ReportJobType is the job type that generates a user report.
const ReportJobType = "report_analysis"

// reportWorkIterations is the size of the simulated analysis loop.
const reportWorkIterations = 1_000_000

// JobQueue schedules and looks up background jobs.
type JobQueue interface {
	Register(jobType string, handler job.Handler)
	Enqueue(ctx context.Context, jobType string, payload any, opts job.Options) (*job.Job, error)
	Get(ctx context.Context, id uuid.UUID) (*job.Job, error)
}

// TaskCounter counts a user's tasks.
type TaskCounter interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// FrameSender delivers a frame to a connected user.
type FrameSender interface {
	Send(userID uuid.UUID, frame ws.Frame) error
}

// ReportOptions controls scheduling of report jobs.
type ReportOptions struct {
	Delay       time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultReportOptions returns a one second delay and three attempts five seconds apart.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Delay:       time.Second,
		MaxAttempts: 3,
		Backoff:     5 * time.Second,
	}
}

type reportPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// ReportService schedules report jobs and pushes their results to the
// requesting user's socket.
type ReportService struct {
	jobs    JobQueue
	tasks   TaskCounter
	sockets FrameSender
	opts    ReportOptions
	logger  *slog.Logger
}

// NewReportService creates a ReportService and registers its job handler with jobs.
func NewReportService(
	jobs JobQueue,
	tasks TaskCounter,
	sockets FrameSender,
	opts ReportOptions,
	logger *slog.Logger,
) *ReportService {
	s := &ReportService{
		jobs:    jobs,
		tasks:   tasks,
		sockets: sockets,
		opts:    opts,
		logger:  logger.With("component", "report_service"),
	}
	jobs.Register(ReportJobType, s.Handle)
	return s
}

// Request schedules a report for userID and returns the job.
func (s *ReportService) Request(ctx context.Context, userID uuid.UUID) (*job.Job, error) {
	j, err := s.jobs.Enqueue(ctx, ReportJobType, reportPayload{UserID: userID}, job.Options{
		Delay:       s.opts.Delay,
		MaxAttempts: s.opts.MaxAttempts,
		Backoff:     s.opts.Backoff,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule report: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("report scheduled",
		"job_id", j.ID,
		"user_id", userID)
	return j, nil
}

// Status returns a report job requested by userID. Jobs of other users are
// reported as not found.
func (s *ReportService) Status(ctx context.Context, userID, jobID uuid.UUID) (*job.Job, error) {
	j, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get report job: %w", err)
	}

	var payload reportPayload
	if j.Type != ReportJobType || j.DecodePayload(&payload) != nil || payload.UserID != userID {
		return nil, job.ErrJobNotFound
	}
	return j, nil
}

// Handle runs a report job: it counts the user's tasks, performs the analysis
// and sends the report to the user's socket when connected.
func (s *ReportService) Handle(ctx context.Context, j *job.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With("job_id", j.ID)

	var payload reportPayload
	if err := j.DecodePayload(&payload); err != nil {
		return err
	}

	total, err := s.tasks.CountByUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to count tasks: %w", err)
	}

	analyze(reportWorkIterations)
	report := domain.NewReport(payload.UserID, total)

	err = s.sockets.Send(payload.UserID, ws.Frame{Event: ws.EventReport, Data: report})
	switch {
	case errors.Is(err, ws.ErrNotConnected):
		log.Debug("report ready but user not connected", "user_id", payload.UserID)
	case err != nil:
		log.Warn("failed to deliver report", "user_id", payload.UserID, "error", err)
	default:
		log.Info("report delivered", "user_id", payload.UserID, "total", total)
	}
	return nil
}

// analyze stands in for the CPU-bound part of report generation.
func analyze(iterations int) int {
	sum := 0
	for i := 0; i < iterations; i++ {
		sum += i & 1
	}
	return sum
}
