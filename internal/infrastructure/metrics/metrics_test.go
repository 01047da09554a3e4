package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-backend/internal/core/domain"
)

func TestCollector_TicketCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.TicketQuery(domain.QueryAll)
	c.TicketQuery(domain.QueryAll)
	c.TicketQuery(domain.QueryByNumber)
	c.TicketCreated()
	c.StatusChanged(domain.StatusResolved)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ticketQueries.WithLabelValues("all")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ticketQueries.WithLabelValues("by_number")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ticketsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.statusChanges.WithLabelValues("Resolved")))
}

func TestCollector_HTTPRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveHTTPRequest(http.MethodGet, http.StatusOK, 10*time.Millisecond)
	c.ObserveHTTPRequest(http.MethodGet, http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.httpDuration))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.TicketCreated()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "helpdesk_tickets_created_total 1"))
}
