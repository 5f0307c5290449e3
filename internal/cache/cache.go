package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key-value cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// TaskListKey is the key of a user's task list.
func TaskListKey(userID uuid.UUID) string {
	return "tasks:user:" + userID.String()
}

// FavoritesKey is the key of a user's favorite task list.
func FavoritesKey(userID uuid.UUID) string {
	return "tasks:favorites:user:" + userID.String()
}

// UserKeys returns every key cached on behalf of userID.
func UserKeys(userID uuid.UUID) []string {
	return []string{TaskListKey(userID), FavoritesKey(userID)}
}

// New returns a Redis store when cfg names a Redis URL and an in-process store
// otherwise.
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	if cfg.RedisURL == "" {
		return NewMemory(), nil
	}
	return NewRedis(ctx, cfg.RedisURL)
}

// GetOrSet returns the value cached under key, or calls fetch, caches its
// result for ttl and returns it. Concurrent misses may each call fetch.
func GetOrSet[T any](
	ctx context.Context,
	store Store,
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context) (T, error),
) (T, error) {
	log := logger.FromContext(ctx).With(slog.String("cache_key", key))

	raw, err := store.Get(ctx, key)
	switch {
	case err == nil:
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			log.Debug("cache hit")
			return cached, nil
		}
		log.Warn("discarding undecodable cache entry")
	case errors.Is(err, ErrMiss):
		log.Debug("cache miss")
	default:
		log.Warn("cache read failed", slog.String("error", redact.Error(err)))
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := store.Set(ctx, key, encoded, ttl); err != nil {
		log.Warn("cache write failed", slog.String("error", redact.Error(err)))
	}
	return value, nil
}

// Invalidate deletes keys, logging rather than returning failures.
func Invalidate(ctx context.Context, store Store, keys ...string) {
	if err := store.Delete(ctx, keys...); err != nil {
		logger.FromContext(ctx).Warn("cache invalidation failed",
			slog.Any("keys", keys),
			slog.String("error", redact.Error(err)))
	}
}
