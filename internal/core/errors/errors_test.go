package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorUnwrapsCause(t *testing.T) {
	err := fmt.Errorf("get ticket: %w", NewNotFoundError(ErrTicketNotFound, "42"))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, "Register not found Id: 42", appErr.Error())
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestAppErrorFallsBackToCause(t *testing.T) {
	err := &AppError{Err: ErrBadRequest}
	assert.Equal(t, "bad request", err.Error())
}

func TestValidationErrorsKeepInsertionOrder(t *testing.T) {
	v := NewValidationErrors()
	assert.False(t, v.HasErrors())

	v.Add("title", "title is required")
	v.Add("priority", "priority is invalid")
	v.Add("title", "title is too long")

	require.True(t, v.HasErrors())
	assert.Equal(t, []string{"title is required", "priority is invalid", "title is too long"}, v.Messages())
	assert.Len(t, v.Errors["title"], 2)
	assert.Equal(t, "validation failed: title is required; priority is invalid; title is too long", v.Error())

	msgs := v.Messages()
	msgs[0] = "changed"
	assert.Equal(t, "title is required", v.Messages()[0])
}
