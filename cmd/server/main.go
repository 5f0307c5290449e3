// Package main implements the entry point for the taskflow API server, which
// serves the JSON API and the WebSocket gateway and runs background jobs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phrazzld/taskflow-api/internal/cache"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a database migration command and exit ("+strings.Join(postgres.MigrationCommands, ", ")+")")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd); err != nil {
		log.Fatalf("taskflow-api: %v", err)
	}
}

// run loads configuration, connects to the backing services and either
// applies migrations or serves until ctx is canceled.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	appLogger.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"socket_port", cfg.Socket.Port,
		"log_level", cfg.Server.LogLevel,
		"redis_cache", cfg.Cache.RedisURL != "")

	db, err := postgres.Open(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}
	appLogger.Info("database connection established")

	if migrateCmd != "" {
		defer closeDB(db, appLogger)
		return runMigrations(ctx, db, migrateCmd, appLogger)
	}

	cacheStore, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		closeDB(db, appLogger)
		return fmt.Errorf("failed to connect to cache: %w", err)
	}

	app, err := newApplication(cfg, appLogger, db, cacheStore)
	if err != nil {
		_ = cacheStore.Close()
		closeDB(db, appLogger)
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
