package validation

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-backend/internal/core/errors"
)

// maxBodyBytes bounds request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// Validator collects field problems from a request. Checks never stop
// early so the client sees every problem in one response.
type Validator struct {
	errs *apperrors.ValidationErrors
}

func NewValidator() *Validator {
	return &Validator{errs: apperrors.NewValidationErrors()}
}

func (v *Validator) HasErrors() bool { return v.errs.HasErrors() }

// Err returns the accumulated errors, or nil when there are none.
func (v *Validator) Err() error {
	if !v.errs.HasErrors() {
		return nil
	}
	return v.errs
}

// Required records message when value is blank.
func (v *Validator) Required(field, value, message string) *Validator {
	return v.Custom(field, strings.TrimSpace(value) != "", message)
}

// Custom records message when ok is false.
func (v *Validator) Custom(field string, ok bool, message string) *Validator {
	if !ok {
		v.errs.Add(field, message)
	}
	return v
}

// UUID parses value and records message when it is not a valid UUID.
// Blank values are left to Required.
func (v *Validator) UUID(field, value, message string) uuid.UUID {
	value = strings.TrimSpace(value)
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	v.Custom(field, err == nil, message)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// OptionalUUID is UUID for fields that may be omitted.
func (v *Validator) OptionalUUID(field string, value *string, message string) *uuid.UUID {
	if value == nil {
		return nil
	}
	if id := v.UUID(field, *value, message); id != uuid.Nil {
		return &id
	}
	return nil
}

// DecodeJSON decodes the request body into T. An empty body is reported
// separately from malformed JSON.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	out := new(T)
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(out)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, io.EOF):
		return nil, apperrors.NewBadRequestError(err, "Request body is required")
	default:
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}
}

// PageParams holds the zero-based page index and page size.
type PageParams struct {
	Page  int
	Count int
}

// ParsePage reads "page" and "count". A missing or invalid page is 0; a
// missing or invalid count is defaultCount; count is capped at maxCount.
// Page is clamped so that Page*Count stays within an int32 row offset.
func ParsePage(r *http.Request, defaultCount, maxCount int) PageParams {
	count := ParseIntQueryParam(r, "count", defaultCount)
	if count < 1 {
		count = defaultCount
	}
	count = max(min(count, maxCount), 1)
	return PageParams{
		Page:  min(ParseIntQueryParam(r, "page", 0), math.MaxInt32/count),
		Count: count,
	}
}

// ParseIntQueryParam returns fallback for a missing, malformed or negative
// value.
func ParseIntQueryParam(r *http.Request, key string, fallback int) int {
	n, ok := query(r, key, strconv.Atoi)
	if !ok || n < 0 {
		return fallback
	}
	return n
}

func ParseBoolQueryParam(r *http.Request, key string, fallback bool) bool {
	b, ok := query(r, key, strconv.ParseBool)
	if !ok {
		return fallback
	}
	return b
}

func query[T any](r *http.Request, key string, parse func(string) (T, error)) (T, bool) {
	var zero T
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return zero, false
	}
	v, err := parse(raw)
	if err != nil {
		return zero, false
	}
	return v, true
}
