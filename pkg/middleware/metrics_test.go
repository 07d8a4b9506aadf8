package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrapeMetrics returns the text exposition of the default registry.
func scrapeMetrics(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

// serveWithChi wraps a handler in a chi router so RouteContext is available.
func serveWithChi(mw func(http.Handler) http.Handler, pattern string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get(pattern, handler)
	return r
}

func TestPrometheusMetrics_RequestCounting(t *testing.T) {
	handler := serveWithChi(PrometheusMetrics("count-svc"), "/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	body := scrapeMetrics(t)
	assert.Contains(t, body,
		`http_requests_total{method="GET",path="/test",service="count-svc",status="200"} 3`)
}

func TestPrometheusMetrics_RoutePatternLabel(t *testing.T) {
	// Parameterized routes must be labeled by pattern, not raw path, to
	// bound metric cardinality.
	handler := serveWithChi(PrometheusMetrics("pattern-svc"), "/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := scrapeMetrics(t)
	assert.Contains(t, body, `path="/users/{id}",service="pattern-svc"`)
	assert.NotContains(t, body, `path="/users/42"`)
}

func TestPrometheusMetrics_DurationHistogram(t *testing.T) {
	handler := serveWithChi(PrometheusMetrics("hist-svc"), "/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	body := scrapeMetrics(t)
	assert.Contains(t, body,
		`http_request_duration_seconds_count{method="GET",path="/test",service="hist-svc",status="201"} 1`)
}

func TestPrometheusMetrics_StatusCodeCapture(t *testing.T) {
	handler := serveWithChi(PrometheusMetrics("status-svc"), "/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := scrapeMetrics(t)
	assert.Contains(t, body,
		`http_requests_total{method="GET",path="/test",service="status-svc",status="404"} 1`)
}

func TestPrometheusMetrics_DefaultStatusCode(t *testing.T) {
	// A handler that never calls WriteHeader reports 200.
	handler := serveWithChi(PrometheusMetrics("default-svc"), "/test", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	body := scrapeMetrics(t)
	assert.Contains(t, body,
		`http_requests_total{method="GET",path="/test",service="default-svc",status="200"} 1`)
}

func TestPrometheusMetrics_InFlightGauge(t *testing.T) {
	var seen string
	handler := serveWithChi(PrometheusMetrics("inflight-svc"), "/test", func(w http.ResponseWriter, r *http.Request) {
		seen = scrapeMetrics(t)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Contains(t, seen, `http_requests_in_flight{service="inflight-svc"} 1`)
	assert.Contains(t, scrapeMetrics(t), `http_requests_in_flight{service="inflight-svc"} 0`)
}
