// Package metrics holds the Prometheus collectors of the catalog service. A
// nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scholarship_catalog/internal/domain"
)

type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	syncRuns        *prometheus.CounterVec
	syncDuration    prometheus.Histogram
	syncRecords     *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	trackingEvents  *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_sync_runs_total",
			Help: "Sync runs by outcome",
		}, []string{"source", "status"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalog_sync_duration_seconds",
			Help:    "Duration of sync runs in seconds",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		syncRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_sync_records_total",
			Help: "Scholarships handled by sync, by result",
		}, []string{"source", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_cache_lookups_total",
			Help: "Snapshot cache lookups by result",
		}, []string{"result"}),
		trackingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_tracking_events_total",
			Help: "Tracking events by kind and outcome",
		}, []string{"kind", "outcome"}),
	}

	registry.MustRegister(
		m.requestDuration,
		m.requestTotal,
		m.syncRuns,
		m.syncDuration,
		m.syncRecords,
		m.cacheLookups,
		m.trackingEvents,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path).Observe(d.Seconds())
	m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// ObserveSync records one sync run. stats may be nil when the run failed
// before producing any.
func (m *Metrics) ObserveSync(source string, stats *domain.SyncStats, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.syncRuns.WithLabelValues(source, status).Inc()

	if stats == nil {
		return
	}
	m.syncDuration.Observe(stats.Duration.Seconds())
	for result, n := range map[string]int{
		"new":       stats.New,
		"updated":   stats.Updated,
		"skipped":   stats.Skipped,
		"invalid":   stats.Invalid,
		"errors":    stats.Errors,
		"published": stats.Published,
	} {
		m.syncRecords.WithLabelValues(source, result).Add(float64(n))
	}
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// TrackingEvent counts a tracking event outcome: delivered, dropped or failed.
func (m *Metrics) TrackingEvent(kind domain.TrackingKind, outcome string) {
	if m == nil {
		return
	}
	m.trackingEvents.WithLabelValues(string(kind), outcome).Inc()
}
