package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/job"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobStore implements job.Store on top of gorm.
type JobStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewJobStore creates a JobStore. The database handle is owned by the caller.
func NewJobStore(db *gorm.DB, logger *slog.Logger) *JobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure JobStore implements job.Store interface
var _ job.Store = (*JobStore)(nil)

func (s *JobStore) fail(ctx context.Context, op string, err error) error {
	logger.FromContextOrDefault(ctx, s.logger).Error("job store operation failed",
		slog.String("operation", op),
		slog.String("error", redact.Error(err)))
	return store.NewStoreError("job", op, "query failed", MapError(err))
}

// Save implements job.Store.Save
func (s *JobStore) Save(ctx context.Context, j *job.Job) error {
	model := jobFromDomain(j)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return s.fail(ctx, "save", err)
	}
	return nil
}

// Get implements job.Store.Get
func (s *JobStore) Get(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	var model jobModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, job.ErrJobNotFound
		}
		return nil, s.fail(ctx, "get", err)
	}
	return model.toDomain(), nil
}

// ClaimDue implements job.Store.ClaimDue. On PostgreSQL the selected rows are
// locked with SKIP LOCKED so that several runners can share one table.
func (s *JobStore) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*job.Job, error) {
	if limit <= 0 {
		return nil, nil
	}

	var models []jobModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("status = ? AND run_at <= ?", string(job.StatusPending), now).
			Order("run_at").
			Limit(limit)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}
		if err := q.Find(&models).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(models))
		for i := range models {
			ids[i] = models[i].ID
		}

		return tx.Model(&jobModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":     string(job.StatusProcessing),
				"attempts":   gorm.Expr("attempts + 1"),
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, s.fail(ctx, "claim_due", err)
	}

	jobs := make([]*job.Job, 0, len(models))
	for _, m := range models {
		m.Status = string(job.StatusProcessing)
		m.Attempts++
		m.UpdatedAt = now
		jobs = append(jobs, m.toDomain())
	}
	return jobs, nil
}

func (s *JobStore) update(ctx context.Context, op string, id uuid.UUID, values map[string]any) error {
	values["updated_at"] = time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&jobModel{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return s.fail(ctx, op, result.Error)
	}
	return checkRowsAffected(result.RowsAffected, job.ErrJobNotFound)
}

// MarkCompleted implements job.Store.MarkCompleted
func (s *JobStore) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, "mark_completed", id, map[string]any{
		"status":     string(job.StatusCompleted),
		"last_error": "",
	})
}

// MarkFailed implements job.Store.MarkFailed
func (s *JobStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return s.update(ctx, "mark_failed", id, map[string]any{
		"status":     string(job.StatusFailed),
		"last_error": errMsg,
	})
}

// Reschedule implements job.Store.Reschedule
func (s *JobStore) Reschedule(ctx context.Context, id uuid.UUID, runAt time.Time, errMsg string) error {
	return s.update(ctx, "reschedule", id, map[string]any{
		"status":     string(job.StatusPending),
		"run_at":     runAt.UTC(),
		"last_error": errMsg,
	})
}

// ResetProcessing implements job.Store.ResetProcessing
func (s *JobStore) ResetProcessing(ctx context.Context, updatedBefore time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stuck := func() *gorm.DB {
			return tx.Model(&jobModel{}).
				Where("status = ? AND updated_at <= ?", string(job.StatusProcessing), updatedBefore.UTC())
		}
		now := time.Now().UTC()

		failed := stuck().
			Where("attempts >= max_attempts").
			Updates(map[string]any{
				"status":     string(job.StatusFailed),
				"last_error": job.ErrInterrupted.Error(),
				"updated_at": now,
			})
		if failed.Error != nil {
			return failed.Error
		}

		reset := stuck().
			Updates(map[string]any{
				"status":     string(job.StatusPending),
				"updated_at": now,
			})
		if reset.Error != nil {
			return reset.Error
		}
		n = failed.RowsAffected + reset.RowsAffected
		return nil
	})
	if err != nil {
		return 0, s.fail(ctx, "reset_processing", err)
	}
	return n, nil
}

// Trim implements job.Store.Trim
func (s *JobStore) Trim(ctx context.Context, jobType string, status job.Status, keep int) (int64, error) {
	if keep < 0 {
		return 0, nil
	}

	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&jobModel{}).
		Where("type = ? AND status = ?", jobType, string(status)).
		Order("updated_at DESC").
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, s.fail(ctx, "trim", err)
	}
	if len(ids) <= keep {
		return 0, nil
	}

	result := s.db.WithContext(ctx).Where("id IN ?", ids[keep:]).Delete(&jobModel{})
	if result.Error != nil {
		return 0, s.fail(ctx, "trim", result.Error)
	}
	return result.RowsAffected, nil
}
