package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCount int

func (c fixedCount) ClientCount() int { return int(c) }

var (
	up   = pingFunc(func(context.Context) error { return nil })
	down = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func serveHealth(t *testing.T, h *HealthHandler, path string) (int, DetailedHealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	switch path {
	case "/health":
		h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, path, nil))
	case "/health/ready":
		h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, path, nil))
	default:
		h.HandleLiveness(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}
	var body DetailedHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		deps       []Dependency
		wantCode   int
		wantStatus string
	}{
		{"all up", []Dependency{{Name: "database", Checker: up}, {Name: "redis", Checker: up, Optional: true}}, http.StatusOK, statusHealthy},
		{"optional down", []Dependency{{Name: "database", Checker: up}, {Name: "redis", Checker: down, Optional: true}}, http.StatusOK, statusDegraded},
		{"required down", []Dependency{{Name: "database", Checker: down}, {Name: "redis", Checker: up, Optional: true}}, http.StatusServiceUnavailable, statusUnhealthy},
		{"required missing checker", []Dependency{{Name: "database"}}, http.StatusServiceUnavailable, statusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.deps, nil, "v1")
			code, body := serveHealth(t, h, "/health/ready")

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, "v1", body.Version)
			assert.Len(t, body.Checks, len(tt.deps))
		})
	}
}

func TestHealthHandler_DetailedReportsFailure(t *testing.T) {
	h := NewHealthHandler([]Dependency{
		{Name: "database", Checker: up},
		{Name: "redis", Checker: down, Optional: true},
	}, fixedCount(3), "v1")

	code, body := serveHealth(t, h, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, statusDegraded, body.Status)
	assert.Equal(t, "connection refused", body.Checks["redis"].Message)
	assert.Equal(t, statusHealthy, body.Checks["database"].Status)
	assert.Equal(t, 3, body.WebSocketClients)
	assert.Positive(t, body.Goroutines)
}

func TestHealthHandler_LivenessChecksNothing(t *testing.T) {
	h := NewHealthHandler([]Dependency{{Name: "database", Checker: down}}, nil, "v1")

	code, body := serveHealth(t, h, "/health/live")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, statusHealthy, body.Status)
	assert.Empty(t, body.Checks)
}
