package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinels returned by the core. Adapters map them to transport codes.
var (
	// auth
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("action forbidden")
	ErrUnauthorized       = errors.New("unauthorized")

	// users
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidRole    = errors.New("invalid user role")
	ErrUserInUse      = errors.New("user owns or is assigned tickets")

	// tickets
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrInvalidStatus   = errors.New("invalid ticket status")
	ErrInvalidPriority = errors.New("invalid ticket priority")

	ErrNotFound    = errors.New("resource not found")
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError carries the status and message a handler should answer with,
// keeping the cause reachable through errors.Is.
type AppError struct {
	Err        error
	Message    string
	Code       string
	StatusCode int
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewBadRequestError wraps err as a 400 with a caller-facing message.
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{Err: err, Message: message, Code: "BAD_REQUEST", StatusCode: http.StatusBadRequest}
}

// NewNotFoundError reports a missing record in the wording clients of the
// old API expect ("Register not found Id: <id>").
func NewNotFoundError(err error, id string) *AppError {
	return &AppError{Err: err, Message: "Register not found Id: " + id, Code: "NOT_FOUND", StatusCode: http.StatusNotFound}
}

// ValidationErrors accumulates field validation messages. Messages keep the
// order in which they were added so responses are stable.
type ValidationErrors struct {
	Errors   map[string][]string `json:"errors"`
	messages []string
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
	v.messages = append(v.messages, message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.messages) > 0
}

// Messages returns every message in insertion order.
func (v *ValidationErrors) Messages() []string {
	out := make([]string, len(v.messages))
	copy(out, v.messages)
	return out
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(v.messages, "; "))
}
