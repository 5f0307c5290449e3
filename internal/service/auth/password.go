package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedPassword, password string) error
}

// PasswordHasher hashes secrets for storage and verifies them later.
type PasswordHasher interface {
	PasswordVerifier

	// Hash returns a bcrypt hash of password.
	Hash(password string) (string, error)
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// Ensure BcryptHasher implements PasswordHasher interface
var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a BcryptHasher. Costs outside bcrypt's range fall
// back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements the PasswordHasher interface.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %w", domain.ErrPasswordTooManyBytes, err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare implements the PasswordVerifier interface using bcrypt.
func (h *BcryptHasher) Compare(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return err
}

// refreshTokenDigest shortens a refresh token below bcrypt's 72-byte input limit.
func refreshTokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// HashRefreshToken returns the value stored against a user for token.
func HashRefreshToken(h PasswordHasher, token string) (string, error) {
	return h.Hash(refreshTokenDigest(token))
}

// CompareRefreshToken reports ErrInvalidRefreshToken unless token matches the stored hash.
func CompareRefreshToken(h PasswordVerifier, hash, token string) error {
	if hash == "" {
		return ErrInvalidRefreshToken
	}
	if err := h.Compare(hash, refreshTokenDigest(token)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}
	return nil
}
