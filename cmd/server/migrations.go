package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"gorm.io/gorm"
)

// runMigrations executes a goose command against the connected database.
func runMigrations(ctx context.Context, db *gorm.DB, command string, logger *slog.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access database pool: %w", err)
	}
	return postgres.Migrate(ctx, sqlDB, command, logger)
}

func closeDB(db *gorm.DB, logger *slog.Logger) {
	if err := postgres.Close(db); err != nil {
		logger.Error("error closing database connection", "error", err)
	}
}
