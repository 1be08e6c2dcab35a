package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot aggregates lightweight counters for API consumption.
type MetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	GenerationRuns           uint64    `json:"generation_runs"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation and provides
// lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	generationRuns      *prometheus.CounterVec
	generationDuration  prometheus.Observer
	shortfallHours      prometheus.Counter
	unassignableCourses prometheus.Counter

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	generationRunCount   uint64
}

// Every collector shares this namespace so dashboards can filter the
// service's series with a single prefix.
const metricsNamespace = "timetable_api"

func histogram(name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	}, labels)
}

func counter(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      name,
		Help:      help,
	}, labels)
}

// NewMetricsService registers the HTTP, cache, and generation collectors.
func NewMetricsService() *MetricsService {
	s := &MetricsService{registry: prometheus.NewRegistry()}

	requestDuration := histogram("http_request_duration_seconds", "HTTP request duration", "method", "path", "status")
	requestTotal := counter("http_requests_total", "HTTP requests served", "method", "path", "status")
	cacheLatency := histogram("cache_lookup_seconds", "Cache lookup latency")
	cacheWrite := histogram("cache_write_seconds", "Cache write latency")
	cacheHits := counter("cache_hits_total", "Cache lookups that hit")
	cacheMisses := counter("cache_misses_total", "Cache lookups that missed")
	generationRuns := counter("generation_runs_total", "Schedule generation runs by outcome", "outcome")
	generationDuration := histogram("generation_duration_seconds", "Schedule generation run duration")
	shortfallHours := counter("generation_shortfall_hours_total", "Requested hours left unplaced by generation runs")
	unassignableCourses := counter("generation_unassignable_courses_total", "Courses skipped for lack of qualified staff")

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "cache_hit_ratio",
		Help:      "Share of cache lookups answered from cache",
	})
	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "goroutines",
		Help:      "Current goroutine count",
	}, func() float64 { return float64(runtime.NumGoroutine()) })

	s.registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite,
		cacheHits, cacheMisses, cacheHitRatio,
		generationRuns, generationDuration, shortfallHours, unassignableCourses, goroutines)

	s.handler = promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	s.requestDuration = requestDuration
	s.requestTotal = requestTotal
	s.cacheLatency = cacheLatency.WithLabelValues()
	s.cacheWrite = cacheWrite.WithLabelValues()
	s.cacheHitRatio = cacheHitRatio
	s.cacheHits = cacheHits.WithLabelValues()
	s.cacheMisses = cacheMisses.WithLabelValues()
	s.generationRuns = generationRuns
	s.generationDuration = generationDuration.WithLabelValues()
	s.shortfallHours = shortfallHours.WithLabelValues()
	s.unassignableCourses = unassignableCourses.WithLabelValues()
	return s
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveGeneration records the outcome and cost of one generation run.
// Outcome is "complete" when every course met its demand, "partial" when
// shortfalls remain, "conflict" when an optimistic write lost the race.
func (m *MetricsService) ObserveGeneration(outcome string, duration time.Duration, shortfallHours, unassignableCourses int) {
	if m == nil {
		return
	}
	m.generationRuns.WithLabelValues(outcome).Inc()
	m.generationDuration.Observe(duration.Seconds())
	if shortfallHours > 0 {
		m.shortfallHours.Add(float64(shortfallHours))
	}
	if unassignableCourses > 0 {
		m.unassignableCourses.Add(float64(unassignableCourses))
	}
	atomic.AddUint64(&m.generationRunCount, 1)
}

// Snapshot returns aggregated metrics suitable for the health endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		GenerationRuns:           atomic.LoadUint64(&m.generationRunCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
