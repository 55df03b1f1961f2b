package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// UnmatchedRoute labels requests that matched no route
const UnmatchedRoute = "unmatched"

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "thriftswap_ws_connections",
		Help: "Current number of active websocket connections",
	})
	SwipesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "thriftswap_swipes_total",
		Help: "Total number of recorded swipes",
	}, []string{"direction"})
	MatchesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "thriftswap_matches_created_total",
		Help: "Total number of matches created",
	})
	MessagesPostedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "thriftswap_messages_posted_total",
		Help: "Total number of chat messages posted",
	})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		WsConnections, SwipesTotal, MatchesCreatedTotal, MessagesPostedTotal,
		HttpRequestsTotal, HttpRequestDuration,
	)
}

// Middleware records request counts and latencies labelled by route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := UnmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{"method": r.Method, "path": path, "status": strconv.Itoa(status)}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}
