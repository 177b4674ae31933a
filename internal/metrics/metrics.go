// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so tests and multiple routers do not collide on
// the global default.
type Metrics struct {
	registry *prometheus.Registry

	runsStarted      prometheus.Counter
	runsInFlight     prometheus.Gauge
	tablesGenerated  prometheus.Counter
	tableDuration    prometheus.Histogram
	tableRows        prometheus.Histogram
	sqlGenerated     *prometheus.CounterVec
	historyWriteErrs prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "baseprep_generation_runs_total",
			Help: "Generation runs started.",
		}),
		runsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "baseprep_generation_runs_in_flight",
			Help: "Generation runs with at least one unfinished table.",
		}),
		tablesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "baseprep_tables_generated_total",
			Help: "Tables that reached the completed status.",
		}),
		tableDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "baseprep_table_generation_seconds",
			Help:    "Simulated build time per table.",
			Buckets: []float64{1, 2.5, 5, 7.5, 10, 12.5, 15, 30},
		}),
		tableRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "baseprep_table_rows",
			Help:    "Row count per generated table.",
			Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
		}),
		sqlGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "baseprep_sql_generated_total",
			Help: "SQL generation requests by outcome.",
		}, []string{"outcome"}),
		historyWriteErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "baseprep_history_write_errors_total",
			Help: "Completed tables that could not be appended to the history store.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "baseprep_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "baseprep_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.runsStarted, m.runsInFlight, m.tablesGenerated, m.tableDuration, m.tableRows,
		m.sqlGenerated, m.historyWriteErrs, m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Metrics) RunStarted() {
	m.runsStarted.Inc()
	m.runsInFlight.Inc()
}

func (m *Metrics) RunFinished() {
	m.runsInFlight.Dec()
}

func (m *Metrics) TableGenerated(elapsedSeconds float64, rows int) {
	m.tablesGenerated.Inc()
	m.tableDuration.Observe(elapsedSeconds)
	m.tableRows.Observe(float64(rows))
}

// SQLGenerated records one SQL build; outcome is "ok" or "no_base_table".
func (m *Metrics) SQLGenerated(outcome string) {
	m.sqlGenerated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) HistoryWriteFailed() {
	m.historyWriteErrs.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GinMiddleware records request counts and latency keyed by the route
// template, so path parameters do not explode label cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
