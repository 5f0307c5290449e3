package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Every specific validation error below wraps it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// User validation errors
var (
	ErrEmptyUserID          = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyEmail           = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrEmptyPassword        = fmt.Errorf("%w: password cannot be empty", ErrValidation)
	ErrPasswordTooShort     = fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
	ErrPasswordTooLong      = fmt.Errorf("%w: password must be at most %d characters long", ErrValidation, MaxPasswordLength)
	ErrPasswordTooManyBytes = fmt.Errorf("%w: password must be at most %d bytes long", ErrValidation, MaxPasswordBytes)
	ErrEmptyHashedPassword  = fmt.Errorf("%w: hashed password cannot be empty", ErrValidation)
	ErrNameTooLong          = fmt.Errorf("%w: name must be at most %d characters long", ErrValidation, MaxNameLength)
)

// Task validation errors
var (
	ErrEmptyTaskID      = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTaskTitle   = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrTaskTitleTooLong = fmt.Errorf("%w: task title must be at most %d characters long", ErrValidation, MaxTaskTitleLength)
	ErrEmptyTaskOwnerID = fmt.Errorf("%w: task owner cannot be empty", ErrValidation)
)
