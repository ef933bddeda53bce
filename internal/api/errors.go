package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/useradmin/internal/api/shared"
	"github.com/phrazzld/useradmin/internal/domain"
	"github.com/phrazzld/useradmin/internal/service"
	"github.com/phrazzld/useradmin/internal/service/auth"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, service.ErrUsernameNotFound),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden

	// ErrUserNotFound also matches ErrInvalidArgument, so it is checked first.
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, shared.ErrInvalidRequestBody),
		errors.Is(err, domain.ErrValidation),
		isValidationError(err):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, service.ErrUsernameNotFound):
		return "Invalid credentials"

	case errors.Is(err, auth.ErrForbidden):
		return "Insufficient permissions"

	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, service.ErrAlreadyExists):
		return "Email already exists"

	case errors.Is(err, shared.ErrInvalidRequestBody):
		return "Invalid request format"

	case errors.As(err, &fieldErrs):
		return SanitizeValidationError(err)

	case errors.As(err, &validationErr):
		return "Invalid " + validationErr.Error()

	case errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrNegativeAge):
		return "Invalid user data"

	case errors.Is(err, service.ErrInvalidArgument):
		return invalidArgumentMessage(err)

	default:
		return "An unexpected error occurred"
	}
}

// invalidArgumentMessage surfaces the detail the service attached after the
// sentinel, e.g. "invalid argument: unknown role \"ROLE_X\"".
func invalidArgumentMessage(err error) string {
	prefix := service.ErrInvalidArgument.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 {
		detail := msg[i+len(prefix):]
		if detail != "" && !strings.Contains(detail, ":") {
			return "Invalid argument: " + detail
		}
	}
	return "Invalid argument"
}

// SanitizeValidationError turns validator field errors into a short
// user-facing message naming the first failing field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too short"
	case "max", "lte":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

func isValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	var validationErr *domain.ValidationError
	return errors.As(err, &fieldErrs) || errors.As(err, &validationErr)
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted cause. A non-empty message overrides the derived one.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
