package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestCount(t *testing.T, labels prometheus.Labels) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, HttpRequestsTotal.With(labels).Write(&m))
	return m.GetCounter().GetValue()
}

func seriesCount() int {
	ch := make(chan prometheus.Metric, 1024)
	HttpRequestsTotal.Collect(ch)
	close(ch)
	return len(ch)
}

func serve(t *testing.T, h http.Handler, path string) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {})

	labels := prometheus.Labels{"method": http.MethodGet, "path": "/items/{id}", "status": "200"}
	before := requestCount(t, labels)

	assert.Equal(t, http.StatusOK, serve(t, r, "/items/1"))
	assert.Equal(t, http.StatusOK, serve(t, r, "/items/2"))
	assert.Equal(t, before+2, requestCount(t, labels))
}

func TestMiddlewareUnmatchedPathsShareOneSeries(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {})

	labels := prometheus.Labels{"method": http.MethodGet, "path": UnmatchedRoute, "status": "404"}
	before := requestCount(t, labels)
	series := seriesCount()

	assert.Equal(t, http.StatusNotFound, serve(t, r, "/random/a"))
	assert.Equal(t, http.StatusNotFound, serve(t, r, "/random/b"))
	assert.Equal(t, http.StatusNotFound, serve(t, r, "/wp-admin.php"))

	assert.Equal(t, before+3, requestCount(t, labels))
	assert.LessOrEqual(t, seriesCount(), series+1)
}
