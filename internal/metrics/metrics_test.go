package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation("rate", nil)
	m.ObserveOperation("rate", nil)
	m.ObserveOperation("rate", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("rate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("rate", "error")))
}

func TestObserveHTTP(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", 200)
	m.ObserveHTTP("GET", 404)
	m.ObserveHTTP("GET", 404)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "404")))
}

func TestSetSessions(t *testing.T) {
	m := New()
	m.SetSessions(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessions))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("rate", nil)
		m.SetSessions(1)
		m.ObserveHTTP("GET", 200)
		m.ObservePersist(time.Millisecond)
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveOperation("add_hypothesis", nil)
	m.ObservePersist(2 * time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/prometheus", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `ach_operations_total{operation="add_hypothesis",status="ok"} 1`))
	assert.Contains(t, body, "ach_persist_duration_seconds_count 1")
	assert.Contains(t, body, "ach_sessions 0")
}
