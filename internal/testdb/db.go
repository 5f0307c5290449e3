package testdb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseURLEnv names the variable holding the integration database URL.
const DatabaseURLEnv = "TASKFLOW_TEST_DATABASE_URL"

// TestTimeout bounds setup work against a real database.
const TestTimeout = 10 * time.Second

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open returns a private in-memory SQLite database with foreign keys enforced.
// The database is closed when the test ends.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "failed to open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(postgres.Models()...), "failed to create schema")
	return db
}

// IsIntegrationTestEnvironment reports whether a PostgreSQL URL is configured.
func IsIntegrationTestEnvironment() bool {
	return os.Getenv(DatabaseURLEnv) != ""
}

// OpenPostgres connects to the integration database and migrates it to the
// latest version. The test is skipped when no database is configured.
func OpenPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if !IsIntegrationTestEnvironment() {
		t.Skipf("%s not set - skipping integration test", DatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{
		URL:          os.Getenv(DatabaseURLEnv),
		MaxOpenConns: 5,
		MaxIdleConns: 5,
	}, DiscardLogger())
	require.NoError(t, err, "failed to connect to integration database")
	t.Cleanup(func() { _ = postgres.Close(db) })

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, sqlDB, "up", DiscardLogger()), "failed to migrate")
	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards, so tests
// sharing a database leave no rows behind.
func WithTx(t *testing.T, db *gorm.DB, fn func(t *testing.T, tx *gorm.DB)) {
	t.Helper()

	tx := db.Begin()
	require.NoError(t, tx.Error, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback().Error; err != nil && !errors.Is(err, gorm.ErrInvalidTransaction) {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
