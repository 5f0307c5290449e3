package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrWrongTokenType indicates a token of one type was presented where another is required,
	// e.g. a refresh token on a protected endpoint.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken indicates the refresh token is invalid, expired, or no longer
	// matches the hash stored for the user.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrInvalidCredentials indicates the password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotOwned indicates a password reset was requested for an email that does
	// not belong to the authenticated user.
	ErrEmailNotOwned = errors.New("email does not belong to the authenticated user")
)
