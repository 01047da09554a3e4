package http

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"

	healthCheckTimeout = 5 * time.Second
)

// HealthChecker is anything that can be pinged, such as a pgx pool or the
// identity cache.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ClientCounter reports live realtime connections.
type ClientCounter interface {
	ClientCount() int
}

// Dependency is a pinged backend. A failing optional dependency degrades the
// service without taking it out of rotation.
type Dependency struct {
	Name     string
	Checker  HealthChecker
	Optional bool
}

type HealthHandler struct {
	deps      []Dependency
	clients   ClientCounter
	startTime time.Time
	version   string
}

// NewHealthHandler creates a health handler. clients may be nil.
func NewHealthHandler(deps []Dependency, clients ClientCounter, version string) *HealthHandler {
	return &HealthHandler{
		deps:      deps,
		clients:   clients,
		startTime: time.Now(),
		version:   version,
	}
}

type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// DetailedHealthResponse adds runtime figures for operators.
type DetailedHealthResponse struct {
	HealthResponse
	Memory           MemoryStats `json:"memory"`
	Goroutines       int         `json:"goroutines"`
	WebSocketClients int         `json:"websocket_clients"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc_bytes"`
	TotalAlloc uint64 `json:"total_alloc_bytes"`
	Sys        uint64 `json:"sys_bytes"`
	NumGC      uint32 `json:"num_gc"`
}

// HandleLiveness reports that the process is up. It checks nothing.
func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness answers 503 only when a required dependency is down.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	resp := h.report(r.Context())

	code := http.StatusOK
	if resp.Status == statusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, resp)
}

// HandleHealth is the detailed report. Any failing dependency answers 503.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := DetailedHealthResponse{
		HealthResponse: h.report(r.Context()),
		Memory: MemoryStats{
			Alloc:      mem.Alloc,
			TotalAlloc: mem.TotalAlloc,
			Sys:        mem.Sys,
			NumGC:      mem.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
	}
	if h.clients != nil {
		resp.WebSocketClients = h.clients.ClientCount()
	}

	code := http.StatusOK
	if resp.Status != statusHealthy {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, resp)
}

func (h *HealthHandler) report(ctx context.Context) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	checks, status := h.runChecks(ctx)
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}
}

// runChecks pings every dependency concurrently.
func (h *HealthHandler) runChecks(ctx context.Context) (map[string]Check, string) {
	results := make([]Check, len(h.deps))

	var wg sync.WaitGroup
	for i, dep := range h.deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = check(ctx, dep.Checker)
		}()
	}
	wg.Wait()

	checks := make(map[string]Check, len(h.deps))
	status := statusHealthy
	for i, dep := range h.deps {
		checks[dep.Name] = results[i]
		if results[i].Status == statusHealthy {
			continue
		}
		if dep.Optional {
			if status == statusHealthy {
				status = statusDegraded
			}
		} else {
			status = statusUnhealthy
		}
	}
	return checks, status
}

func check(ctx context.Context, dep HealthChecker) Check {
	if dep == nil {
		return Check{Status: statusUnhealthy, Message: "not configured"}
	}

	start := time.Now()
	err := dep.Ping(ctx)
	latency := time.Since(start).String()

	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Latency: latency}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}
