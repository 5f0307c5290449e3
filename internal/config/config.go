package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Socket   SocketConfig   `mapstructure:"socket" validate:"required"`
	Jobs     JobsConfig     `mapstructure:"jobs" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
// Each token type is signed with its own secret.
type AuthConfig struct {
	AccessSecret                string `mapstructure:"access_secret" validate:"required,min=32"`
	RefreshSecret               string `mapstructure:"refresh_secret" validate:"required,min=32"`
	SocketSecret                string `mapstructure:"socket_secret" validate:"required,min=32"`
	AccessTokenLifetimeMinutes  int    `mapstructure:"access_token_lifetime_minutes" validate:"required,gt=0,lt=1441"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=44641"`
	SocketTokenLifetimeMinutes  int    `mapstructure:"socket_token_lifetime_minutes" validate:"required,gt=0,lt=1441"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// CacheConfig configures the task list cache. An empty RedisURL selects the
// in-process cache.
type CacheConfig struct {
	RedisURL   string `mapstructure:"redis_url" validate:"omitempty,url"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=1"`
}

// SocketConfig configures the WebSocket listener.
type SocketConfig struct {
	Port int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Path string `mapstructure:"path" validate:"required,startswith=/"`
}

// JobsConfig configures the background job runner.
type JobsConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize           int `mapstructure:"queue_size" validate:"gte=1"`
	PollIntervalMillis  int `mapstructure:"poll_interval_millis" validate:"gte=10"`
	StuckJobAgeMinutes  int `mapstructure:"stuck_job_age_minutes" validate:"gte=1"`
	ReportDelayMillis   int `mapstructure:"report_delay_millis" validate:"gte=0"`
	ReportMaxAttempts   int `mapstructure:"report_max_attempts" validate:"gte=1"`
	ReportBackoffMillis int `mapstructure:"report_backoff_millis" validate:"gte=0"`
	KeepCompleted       int `mapstructure:"keep_completed" validate:"gte=0"`
	KeepFailed          int `mapstructure:"keep_failed" validate:"gte=0"`
}

// CacheTTL returns the cache entry lifetime.
func (c CacheConfig) CacheTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
