package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password and profile limits.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 24
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes  = 72
	MaxNameLength     = 100
)

var emailValidator = validator.New()

// User represents a registered account.
// It contains essential user information and authentication details.
type User struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Password         string    `json:"-"` // Plaintext password, used temporarily during registration/updates
	HashedPassword   string    `json:"-"`
	RefreshTokenHash string    `json:"-"` // Empty when no refresh token is active
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email, password and name.
// The email is normalized to lower case.
//
// NOTE: This function only sets up the user structure with the plaintext password.
// The caller is responsible for hashing the password before storing the user.
func NewUser(email, password, name string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Name:      strings.TrimSpace(name),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if err := ValidateEmail(u.Email); err != nil {
		return err
	}

	if utf8.RuneCountInString(u.Name) > MaxNameLength {
		return ErrNameTooLong
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}

	// Persisted users carry only the hash
	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	return nil
}

// HasRefreshToken reports whether a refresh token hash is stored for the user.
func (u *User) HasRefreshToken() bool {
	return u.RefreshTokenHash != ""
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail reports ErrEmptyEmail or ErrInvalidEmail for unusable addresses.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if err := emailValidator.Var(email, "email"); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks a plaintext password against the length limits.
// Length is counted in characters, and the encoded form must also fit
// MaxPasswordBytes.
func ValidatePassword(password string) error {
	switch n := utf8.RuneCountInString(password); {
	case n == 0:
		return ErrEmptyPassword
	case n < MinPasswordLength:
		return ErrPasswordTooShort
	case n > MaxPasswordLength:
		return ErrPasswordTooLong
	case len(password) > MaxPasswordBytes:
		return ErrPasswordTooManyBytes
	}
	return nil
}
