// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
)

// Collector records ticket and HTTP metrics.
type Collector struct {
	ticketQueries  *prometheus.CounterVec
	ticketsCreated prometheus.Counter
	statusChanges  *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

var _ ports.TicketMetrics = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ticketQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_ticket_queries_total",
			Help: "Ticket listings dispatched, by query shape.",
		}, []string{"shape"}),
		ticketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_tickets_created_total",
			Help: "Tickets created.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_status_changes_total",
			Help: "Ticket status changes, by new status.",
		}, []string{"status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(
		c.ticketQueries,
		c.ticketsCreated,
		c.statusChanges,
		c.httpRequests,
		c.httpDuration,
	)

	return c
}

func (c *Collector) TicketQuery(kind domain.QueryKind) {
	c.ticketQueries.WithLabelValues(kind.String()).Inc()
}

func (c *Collector) TicketCreated() {
	c.ticketsCreated.Inc()
}

func (c *Collector) StatusChanged(status domain.TicketStatus) {
	c.statusChanges.WithLabelValues(string(status)).Inc()
}

// ObserveHTTPRequest records one served request.
func (c *Collector) ObserveHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
