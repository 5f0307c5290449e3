package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskflow-api/internal/cache"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/phrazzld/taskflow-api/internal/job"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/phrazzld/taskflow-api/internal/ws"
	"gorm.io/gorm"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *gorm.DB
	cache  cache.Store

	// Stores
	userStore store.UserStore
	taskStore store.TaskStore
	jobStore  *postgres.JobStore

	// Services
	jwtService    auth.JWTService
	authService   *auth.Service
	userService   service.UserService
	taskService   service.TaskService
	reportService *service.ReportService

	// Realtime
	eventEmitter *events.InMemoryEventEmitter
	sockets      *ws.Registry
	gateway      *ws.Gateway

	// Background jobs
	jobRunner *job.Runner
}

// newApplication wires every component on top of an open database and cache.
// Nothing is started until Run.
func newApplication(
	cfg *config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	cacheStore cache.Store,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		cache:  cacheStore,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"access_token_lifetime_minutes", cfg.Auth.AccessTokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.userStore = postgres.NewUserStore(db, logger)
	app.taskStore = postgres.NewTaskStore(db, logger)
	app.jobStore = postgres.NewJobStore(db, logger)

	app.sockets = ws.NewRegistry(logger)
	app.gateway = ws.NewGateway(app.sockets, app.jwtService, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(app.sockets,
		events.TaskCreated, events.TaskUpdated, events.TaskDeleted, events.TasksCleared)

	app.jobRunner = job.NewRunner(app.jobStore, runnerConfig(cfg.Jobs), logger)
	app.jobRunner.SetErrorHandler(func(j *job.Job, err error) {
		logger.Error("job failed permanently",
			"job_id", j.ID,
			"job_type", j.Type,
			"attempts", j.Attempts,
			"error", redact.Error(err))
	})

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.authService = auth.NewService(app.userStore, db, app.jwtService, hasher, logger)
	app.userService = service.NewUserService(app.userStore, app.jwtService, cacheStore, app.sockets, logger)
	app.taskService = service.NewTaskService(app.taskStore, cacheStore, cfg.Cache.CacheTTL(), app.eventEmitter, logger)
	app.reportService = service.NewReportService(app.jobRunner, app.taskStore, app.sockets, reportOptions(cfg.Jobs), logger)

	logger.Info("application initialized")
	return app, nil
}

func runnerConfig(cfg config.JobsConfig) job.RunnerConfig {
	rc := job.DefaultRunnerConfig()
	rc.WorkerCount = cfg.WorkerCount
	rc.QueueSize = cfg.QueueSize
	rc.PollInterval = time.Duration(cfg.PollIntervalMillis) * time.Millisecond
	rc.StuckJobAge = time.Duration(cfg.StuckJobAgeMinutes) * time.Minute
	rc.KeepCompleted = cfg.KeepCompleted
	rc.KeepFailed = cfg.KeepFailed
	return rc
}

func reportOptions(cfg config.JobsConfig) service.ReportOptions {
	return service.ReportOptions{
		Delay:       time.Duration(cfg.ReportDelayMillis) * time.Millisecond,
		MaxAttempts: cfg.ReportMaxAttempts,
		Backoff:     time.Duration(cfg.ReportBackoffMillis) * time.Millisecond,
	}
}

// Run starts the job runner and both listeners, and blocks until ctx is
// canceled or a listener fails.
func (app *application) Run(ctx context.Context) error {
	if err := app.jobRunner.Start(); err != nil {
		app.cleanup()
		return fmt.Errorf("failed to start job runner: %w", err)
	}

	if err := app.serve(ctx, app.setupRouter(), app.setupSocketRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.jobRunner.Stop()
	}

	if app.sockets != nil {
		app.sockets.CloseAll()
	}

	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing cache", "error", err)
		}
	}

	if app.db != nil {
		closeDB(app.db, app.logger)
	}

	app.logger.Info("application shutdown completed")
}
