// Package telemetry exposes Prometheus metrics for the HTTP server, database
// queries and authentication.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hearthstone-labs/crm/internal/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
)

const namespace = "crm"

// Metrics holds the collectors of one process. Create once at startup.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	dbQueries  *prometheus.CounterVec
	dbDuration *prometheus.HistogramVec
	dbErrors   *prometheus.CounterVec

	authAttempts *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Total number of database queries.",
		}, []string{"operation"}),
		dbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"operation"}),
		dbErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of failed database queries.",
		}, []string{"operation"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total number of authentication attempts by outcome.",
		}, []string{"mode", "success"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.dbQueries,
		m.dbDuration,
		m.dbErrors,
		m.authAttempts,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency labelled by the chi route pattern,
// so /clients/{id} is one series regardless of id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// QueryHook returns a bun query hook that records every database query.
func (m *Metrics) QueryHook() bun.QueryHook {
	return queryHook{m: m}
}

type queryHook struct {
	m *Metrics
}

func (h queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h queryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	operation := event.Operation()
	h.m.dbQueries.WithLabelValues(operation).Inc()
	h.m.dbDuration.WithLabelValues(operation).Observe(time.Since(event.StartTime).Seconds())
	if event.Err != nil && !isNoRows(event.Err) {
		h.m.dbErrors.WithLabelValues(operation).Inc()
	}
}

// InstrumentAuthenticator counts authentication outcomes of a.
func (m *Metrics) InstrumentAuthenticator(a auth.Authenticator, mode string) auth.Authenticator {
	return instrumentedAuthenticator{next: a, mode: mode, attempts: m.authAttempts}
}

type instrumentedAuthenticator struct {
	next     auth.Authenticator
	mode     string
	attempts *prometheus.CounterVec
}

func (a instrumentedAuthenticator) Authenticate(ctx context.Context, r *http.Request) (*auth.Principal, error) {
	p, err := a.next.Authenticate(ctx, r)
	a.attempts.WithLabelValues(a.mode, strconv.FormatBool(err == nil)).Inc()
	return p, err
}
