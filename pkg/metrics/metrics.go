package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	AnalysesComputed   *prometheus.CounterVec
	DailyPlansBuilt    prometheus.Counter
	DailyPlanSize      prometheus.Histogram
	InteractionsLogged *prometheus.CounterVec
	ExportsCreated     *prometheus.CounterVec
	RecomputeRuns      *prometheus.CounterVec
	RecomputeDuration  prometheus.Histogram

	// Database metrics
	DBConnections prometheus.Gauge

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates a new Metrics instance registered on reg. Passing
// prometheus.DefaultRegisterer exposes them through promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPResponseSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Business metrics
		AnalysesComputed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_analyses_total",
				Help: "Total number of client analyses computed",
			},
			[]string{"disposition"},
		),
		DailyPlansBuilt: f.NewCounter(prometheus.CounterOpts{
			Name: "daily_plans_built_total",
			Help: "Total number of daily plans built",
		}),
		DailyPlanSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "daily_plan_entries",
			Help:    "Number of entries in built daily plans",
			Buckets: []float64{0, 5, 10, 20, 30, 40, 50},
		}),
		InteractionsLogged: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "interactions_logged_total",
				Help: "Total number of interactions logged",
			},
			[]string{"outcome"}, // respuesta, silencio, avance, rechazo, none
		),
		ExportsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exports_created_total",
				Help: "Total number of daily plan exports created",
			},
			[]string{"format"}, // csv, excel
		),
		RecomputeRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "engine_recompute_runs_total",
				Help: "Total number of bulk recompute runs",
			},
			[]string{"status"}, // success, partial, failed
		),
		RecomputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "engine_recompute_duration_seconds",
			Help:    "Bulk recompute duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),

		// Database metrics
		DBConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		}),

		// Cache metrics
		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
	}

	return m
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, e.g. /api/v1/clients/:id/intelligence

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordAnalysis increments the analyses counter for a disposition
func (m *Metrics) RecordAnalysis(disposition string) {
	m.AnalysesComputed.WithLabelValues(disposition).Inc()
}

// RecordDailyPlan counts a built plan and observes its size
func (m *Metrics) RecordDailyPlan(entries int) {
	m.DailyPlansBuilt.Inc()
	m.DailyPlanSize.Observe(float64(entries))
}

// RecordInteraction increments the interactions counter
func (m *Metrics) RecordInteraction(outcome string) {
	if outcome == "" {
		outcome = "none"
	}
	m.InteractionsLogged.WithLabelValues(outcome).Inc()
}

// RecordExportCreated increments the exports counter
func (m *Metrics) RecordExportCreated(format string) {
	m.ExportsCreated.WithLabelValues(format).Inc()
}

// RecordRecompute records the outcome and duration of a bulk recompute
func (m *Metrics) RecordRecompute(computed, failed int, duration time.Duration) {
	status := "success"
	switch {
	case failed > 0 && computed == 0:
		status = "failed"
	case failed > 0:
		status = "partial"
	}
	m.RecomputeRuns.WithLabelValues(status).Inc()
	m.RecomputeDuration.Observe(duration.Seconds())
}

// UpdateDBConnections updates active database connections gauge
func (m *Metrics) UpdateDBConnections(count float64) {
	m.DBConnections.Set(count)
}

// RecordCacheHit increments cache hits counter
func (m *Metrics) RecordCacheHit(cacheType string) {
	m.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments cache misses counter
func (m *Metrics) RecordCacheMiss(cacheType string) {
	m.CacheMisses.WithLabelValues(cacheType).Inc()
}
