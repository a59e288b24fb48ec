package dashactyl

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the request lifecycle
// and the entity caches. It is safe for concurrent use and nil-safe: a nil
// collector records nothing.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheSize   *prometheus.GaugeVec

	errorsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashactyl_requests_total",
				Help: "Total number of panel API requests made",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashactyl_request_duration_seconds",
				Help:    "Duration of panel API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dashactyl_requests_in_flight",
				Help: "Number of panel API requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashactyl_entity_cache_hits_total",
				Help: "Total number of entity cache hits",
			},
			[]string{"entity"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashactyl_entity_cache_misses_total",
				Help: "Total number of entity cache misses",
			},
			[]string{"entity"},
		),
		cacheSize: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dashactyl_entity_cache_size",
				Help: "Current number of entries per entity cache",
			},
			[]string{"entity"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashactyl_errors_total",
				Help: "Total number of errors encountered by kind",
			},
			[]string{"kind", "endpoint"},
		),
	}

	if reg, ok := registry.(*prometheus.Registry); ok {
		mc.registry = reg
	}

	return mc
}

// RecordRequest records request count and duration.
func (mc *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(method, statusCodeStr, endpoint).Inc()
	mc.requestDuration.WithLabelValues(method, statusCodeStr, endpoint).Observe(duration.Seconds())
}

// RecordRequestStart increments the in-flight gauge.
func (mc *MetricsCollector) RecordRequestStart(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordRequestEnd decrements the in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordCacheHit increments the cache hit counter for an entity kind.
func (mc *MetricsCollector) RecordCacheHit(entity string) {
	if mc == nil {
		return
	}

	mc.cacheHits.WithLabelValues(entity).Inc()
}

// RecordCacheMiss increments the cache miss counter for an entity kind.
func (mc *MetricsCollector) RecordCacheMiss(entity string) {
	if mc == nil {
		return
	}

	mc.cacheMisses.WithLabelValues(entity).Inc()
}

// RecordCacheSize sets the cache size gauge for an entity kind.
func (mc *MetricsCollector) RecordCacheSize(entity string, size int) {
	if mc == nil {
		return
	}

	mc.cacheSize.WithLabelValues(entity).Set(float64(size))
}

// RecordError increments the error counter by kind.
func (mc *MetricsCollector) RecordError(kind, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(kind, endpoint).Inc()
}

// GetRegistry exposes the underlying prometheus registry, when one was
// supplied.
func (mc *MetricsCollector) GetRegistry() *prometheus.Registry {
	return mc.registry
}
