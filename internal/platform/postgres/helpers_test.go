package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestDB opens a private in-memory SQLite database with foreign keys
// enforced and the schema created from the gorm models.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func createTestUser(t *testing.T, users *UserStore, email string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(email, "password123", "Test User")
	require.NoError(t, err)
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	user.Password = ""
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func createTestTask(t *testing.T, tasks *TaskStore, owner uuid.UUID, title string) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(owner, title)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(context.Background(), task))
	return task
}

// createOrphanTask builds a valid task whose owner does not exist.
func createOrphanTask(t *testing.T) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(uuid.New(), "orphan")
	require.NoError(t, err)
	return task
}
