package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/job"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, auth.ErrEmailNotOwned),
		errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a stable, client-safe message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "internal_server_error"
	}

	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		return "invalid_refresh_token"
	case errors.Is(err, auth.ErrExpiredToken):
		return "expired_access_token"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return "invalid_access_token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "invalid_credentials"

	case errors.Is(err, auth.ErrEmailNotOwned):
		return "email_not_owned"
	case errors.Is(err, service.ErrNotOwned):
		return "forbidden"

	case errors.Is(err, store.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "task_not_found"
	case errors.Is(err, job.ErrJobNotFound):
		return "report_not_found"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"

	case errors.Is(err, store.ErrEmailExists):
		return "user_already_exists"
	case errors.Is(err, store.ErrDuplicate):
		return "already_exists"

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrValidation):
		return domainValidationDetail(err)
	case errors.Is(err, domain.ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, store.ErrInvalidEntity):
		return "invalid_entity"

	default:
		return "internal_server_error"
	}
}

// domainValidationDetail returns the message of a domain validation error
// without the wrapping context added by callers.
func domainValidationDetail(err error) string {
	msg := err.Error()
	prefix := domain.ErrValidation.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return domain.ErrValidation.Error()
}

// SanitizeValidationError describes the first failing field of a validator
// error without exposing struct names.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "validation failed"
	}

	first := validationErrs[0]
	field := strings.ToLower(first.Field())
	if msg := getValidationTagMessage(first.Tag(), first.Param()); msg != "" {
		return fmt.Sprintf("%s %s", field, msg)
	}
	return fmt.Sprintf("%s is invalid", field)
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + param + " characters long"
	case "max":
		return "must be at most " + param + " characters long"
	default:
		return ""
	}
}

// HandleAPIError writes the failure envelope for err. A non-empty
// fallbackMessage replaces the generic message of unmapped server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" {
		message = fallbackMessage
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// NotFoundHandler answers unknown routes with a 404 envelope.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound, "route_not_found")
}

// MethodNotAllowedHandler answers unsupported methods with a 405 envelope.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
}
