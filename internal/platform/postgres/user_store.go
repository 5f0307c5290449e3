package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/redact"
	"github.com/phrazzld/taskflow-api/internal/store"
	"gorm.io/gorm"
)

// UserStore implements store.UserStore on top of gorm.
type UserStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStore creates a UserStore. The database handle is owned by the caller.
func NewUserStore(db *gorm.DB, logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *UserStore) WithTx(tx *gorm.DB) store.UserStore {
	return &UserStore{db: tx, logger: s.logger}
}

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return store.NewStoreError("user", "create", "hashed password required", store.ErrInvalidEntity)
	}

	model := userFromDomain(user)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		if IsUniqueViolation(err) {
			log.Debug("email already registered", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(err)))
		return store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var model userModel
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error
	if err != nil {
		return nil, s.mapLookupError(ctx, err, "get_by_id")
	}
	return model.toDomain(), nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model userModel
	err := s.db.WithContext(ctx).Where("email = ?", domain.NormalizeEmail(email)).Take(&model).Error
	if err != nil {
		return nil, s.mapLookupError(ctx, err, "get_by_email")
	}
	return model.toDomain(), nil
}

func (s *UserStore) mapLookupError(ctx context.Context, err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrUserNotFound
	}
	logger.FromContextOrDefault(ctx, s.logger).Error("failed to load user",
		slog.String("operation", op),
		slog.String("error", redact.Error(err)))
	return store.NewStoreError("user", op, "query failed", MapError(err))
}

// Update implements store.UserStore.Update
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.UpdatedAt = time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":           user.Email,
			"name":            user.Name,
			"hashed_password": user.HashedPassword,
			"updated_at":      user.UpdatedAt,
		})
	if result.Error != nil {
		if IsUniqueViolation(result.Error) {
			return store.ErrEmailExists
		}
		log.Error("failed to update user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", redact.Error(result.Error)))
		return store.NewStoreError("user", "update", "update failed", MapError(result.Error))
	}
	return checkRowsAffected(result.RowsAffected, store.ErrUserNotFound)
}

// SetRefreshTokenHash implements store.UserStore.SetRefreshTokenHash
func (s *UserStore) SetRefreshTokenHash(ctx context.Context, id uuid.UUID, hash string) error {
	value := any(nil)
	if hash != "" {
		value = hash
	}

	result := s.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"refresh_token_hash": value,
			"updated_at":         time.Now().UTC(),
		})
	if result.Error != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to store refresh token hash",
			slog.String("user_id", id.String()),
			slog.String("error", redact.Error(result.Error)))
		return store.NewStoreError("user", "set_refresh_token_hash", "update failed", MapError(result.Error))
	}
	return checkRowsAffected(result.RowsAffected, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&userModel{})
	if result.Error != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete user",
			slog.String("user_id", id.String()),
			slog.String("error", redact.Error(result.Error)))
		return store.NewStoreError("user", "delete", "delete failed", MapError(result.Error))
	}
	return checkRowsAffected(result.RowsAffected, store.ErrUserNotFound)
}
