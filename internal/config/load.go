package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. TASKFLOW_SERVER_PORT for server.port.
const EnvPrefix = "TASKFLOW"

// defaults holds the value used for every key when nothing else sets it.
// Keys without a sensible default are bound with a nil value so that they are
// still picked up from the environment.
var defaults = map[string]any{
	"server.port":                         8080,
	"server.log_level":                    "info",
	"server.shutdown_timeout_seconds":     10,
	"database.url":                        nil,
	"database.max_open_conns":             25,
	"database.max_idle_conns":             25,
	"auth.access_secret":                  nil,
	"auth.refresh_secret":                 nil,
	"auth.socket_secret":                  nil,
	"auth.access_token_lifetime_minutes":  15,
	"auth.refresh_token_lifetime_minutes": 10080,
	"auth.socket_token_lifetime_minutes":  60,
	"auth.bcrypt_cost":                    10,
	"cache.redis_url":                     "",
	"cache.ttl_seconds":                   180,
	"socket.port":                         4000,
	"socket.path":                         "/socket",
	"jobs.worker_count":                   2,
	"jobs.queue_size":                     100,
	"jobs.poll_interval_millis":           500,
	"jobs.stuck_job_age_minutes":          10,
	"jobs.report_delay_millis":            1000,
	"jobs.report_max_attempts":            3,
	"jobs.report_backoff_millis":          5000,
	"jobs.keep_completed":                 5,
	"jobs.keep_failed":                    5,
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first if present; variables
// already set in the process environment are not overridden by it.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		if value == nil {
			if err := v.BindEnv(key); err != nil {
				return nil, fmt.Errorf("failed to bind %s: %w", key, err)
			}
			continue
		}
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
