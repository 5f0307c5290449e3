package postgres

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/job"
)

// userModel mirrors the users table.
type userModel struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Email            string         `gorm:"size:255;not null;uniqueIndex"`
	Name             string         `gorm:"size:100;not null;default:''"`
	HashedPassword   string         `gorm:"not null"`
	RefreshTokenHash sql.NullString `gorm:"column:refresh_token_hash"`
	CreatedAt        time.Time      `gorm:"not null"`
	UpdatedAt        time.Time      `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

// taskModel mirrors the tasks table.
type taskModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title     string     `gorm:"size:255;not null"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	Owner     *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (taskModel) TableName() string { return "tasks" }

// favoriteModel mirrors the user_favorite_tasks join table.
type favoriteModel struct {
	UserID    uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TaskID    uuid.UUID  `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time  `gorm:"not null"`
	User      *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Task      *taskModel `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (favoriteModel) TableName() string { return "user_favorite_tasks" }

// jobModel mirrors the jobs table.
type jobModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type          string    `gorm:"size:64;not null"`
	Payload       string    `gorm:"type:jsonb;not null"`
	Status        string    `gorm:"size:16;not null;index:idx_jobs_status_run_at"`
	Attempts      int       `gorm:"not null;default:0"`
	MaxAttempts   int       `gorm:"not null;default:1"`
	BackoffMillis int64     `gorm:"not null;default:0"`
	RunAt         time.Time `gorm:"not null;index:idx_jobs_status_run_at"`
	LastError     string    `gorm:"not null;default:''"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (jobModel) TableName() string { return "jobs" }

// Models lists every gorm model in dependency order. The production schema is
// owned by the goose migrations; Models exists for AutoMigrate against SQLite
// in tests.
func Models() []any {
	return []any{&userModel{}, &taskModel{}, &favoriteModel{}, &jobModel{}}
}

func userFromDomain(u *domain.User) userModel {
	return userModel{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		HashedPassword:   u.HashedPassword,
		RefreshTokenHash: sql.NullString{String: u.RefreshTokenHash, Valid: u.RefreshTokenHash != ""},
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (m userModel) toDomain() *domain.User {
	return &domain.User{
		ID:               m.ID,
		Email:            m.Email,
		Name:             m.Name,
		HashedPassword:   m.HashedPassword,
		RefreshTokenHash: m.RefreshTokenHash.String,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

func taskFromDomain(t *domain.Task) taskModel {
	return taskModel{
		ID:        t.ID,
		UserID:    t.UserID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (m taskModel) toDomain() domain.Task {
	return domain.Task{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func tasksToDomain(models []taskModel) []domain.Task {
	tasks := make([]domain.Task, 0, len(models))
	for _, m := range models {
		tasks = append(tasks, m.toDomain())
	}
	return tasks
}

func jobFromDomain(j *job.Job) jobModel {
	payload := string(j.Payload)
	if payload == "" {
		payload = "null"
	}
	return jobModel{
		ID:            j.ID,
		Type:          j.Type,
		Payload:       payload,
		Status:        string(j.Status),
		Attempts:      j.Attempts,
		MaxAttempts:   j.MaxAttempts,
		BackoffMillis: j.Backoff.Milliseconds(),
		RunAt:         j.RunAt,
		LastError:     j.LastError,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

func (m jobModel) toDomain() *job.Job {
	return &job.Job{
		ID:          m.ID,
		Type:        m.Type,
		Payload:     []byte(m.Payload),
		Status:      job.Status(m.Status),
		Attempts:    m.Attempts,
		MaxAttempts: m.MaxAttempts,
		Backoff:     time.Duration(m.BackoffMillis) * time.Millisecond,
		RunAt:       m.RunAt.UTC(),
		LastError:   m.LastError,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}
