package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/job"
	"github.com/stretchr/testify/mock"
)

// JobQueue is a testify mock of the job runner surface used by services.
// Register only records the handler, so tests can invoke it directly.
type JobQueue struct {
	mock.Mock
	Handlers map[string]job.Handler
}

// Register records handler for jobType.
func (m *JobQueue) Register(jobType string, handler job.Handler) {
	if m.Handlers == nil {
		m.Handlers = make(map[string]job.Handler)
	}
	m.Handlers[jobType] = handler
}

func (m *JobQueue) Enqueue(ctx context.Context, jobType string, payload any, opts job.Options) (*job.Job, error) {
	args := m.Called(ctx, jobType, payload, opts)
	if j, ok := args.Get(0).(*job.Job); ok {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JobQueue) Get(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if j, ok := args.Get(0).(*job.Job); ok {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}
