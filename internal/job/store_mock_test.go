package job

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store used by the runner tests
type memStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job

	SaveFn func(ctx context.Context, job *Job) error
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[uuid.UUID]*Job)}
}

func (s *memStore) Save(ctx context.Context, job *Job) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, job)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	return nil
}

func (s *memStore) Get(_ context.Context, id uuid.UUID) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (s *memStore) ClaimDue(_ context.Context, now time.Time, limit int) ([]*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*Job
	for _, j := range s.jobs {
		if j.Status == StatusPending && !j.RunAt.After(now) {
			due = append(due, j)
		}
	}
	sort.Slice(due, func(a, b int) bool { return due[a].RunAt.Before(due[b].RunAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]*Job, 0, len(due))
	for _, j := range due {
		j.Status = StatusProcessing
		j.Attempts++
		j.UpdatedAt = time.Now()
		cp := *j
		claimed = append(claimed, &cp)
	}
	return claimed, nil
}

func (s *memStore) set(id uuid.UUID, fn func(j *Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	fn(j)
	j.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) MarkCompleted(_ context.Context, id uuid.UUID) error {
	return s.set(id, func(j *Job) { j.Status = StatusCompleted; j.LastError = "" })
}

func (s *memStore) MarkFailed(_ context.Context, id uuid.UUID, errMsg string) error {
	return s.set(id, func(j *Job) { j.Status = StatusFailed; j.LastError = errMsg })
}

func (s *memStore) Reschedule(_ context.Context, id uuid.UUID, runAt time.Time, errMsg string) error {
	return s.set(id, func(j *Job) {
		j.Status = StatusPending
		j.RunAt = runAt
		j.LastError = errMsg
	})
}

func (s *memStore) ResetProcessing(_ context.Context, updatedBefore time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, j := range s.jobs {
		if j.Status != StatusProcessing || j.UpdatedAt.After(updatedBefore) {
			continue
		}
		if j.CanRetry() {
			j.Status = StatusPending
		} else {
			j.Status = StatusFailed
			j.LastError = ErrInterrupted.Error()
		}
		j.UpdatedAt = time.Now()
		n++
	}
	return n, nil
}

func (s *memStore) Trim(_ context.Context, jobType string, status Status, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matching []*Job
	for _, j := range s.jobs {
		if j.Type == jobType && j.Status == status {
			matching = append(matching, j)
		}
	}
	sort.Slice(matching, func(a, b int) bool { return matching[a].UpdatedAt.After(matching[b].UpdatedAt) })

	var n int64
	for i := keep; i < len(matching); i++ {
		delete(s.jobs, matching[i].ID)
		n++
	}
	return n, nil
}

func (s *memStore) countByStatus(status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, j := range s.jobs {
		if j.Status == status {
			n++
		}
	}
	return n
}
