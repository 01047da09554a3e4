package http

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
)

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusBadRequest, err)
		WriteErrors(w, http.StatusBadRequest, validationErrs.Messages()...)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, err)
		WriteErrors(w, appErr.StatusCode, appErr.Message)
		return
	}

	status, message := mapDomainError(err)
	h.logError(r, status, err)
	WriteErrors(w, status, message)
}

// mapDomainError converts domain errors to HTTP status codes and messages
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to perform this action"

	case errors.Is(err, apperrors.ErrTicketNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "Register not found"

	case errors.Is(err, apperrors.ErrDuplicateEmail):
		return http.StatusConflict, "Email already registered!"
	case errors.Is(err, apperrors.ErrUserInUse):
		return http.StatusConflict, "User still owns or is assigned tickets"

	case errors.Is(err, apperrors.ErrInvalidStatus),
		errors.Is(err, apperrors.ErrInvalidPriority),
		errors.Is(err, apperrors.ErrInvalidRole),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many requests. Please try again later."

	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}
}

// logError logs 5xx at error level and everything else at warn.
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	if statusCode >= 500 {
		h.logger.ErrorContext(r.Context(), "server error", attrs...)
		return
	}
	h.logger.WarnContext(r.Context(), "client error", attrs...)
}

// notFound tags a missing-record error with the id the client asked for,
// unless a lower layer already did.
func notFound(err error, id string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, apperrors.ErrTicketNotFound) ||
		errors.Is(err, apperrors.ErrUserNotFound) ||
		errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NewNotFoundError(err, id)
	}
	return err
}
