// Package metrics provides prometheus collectors for the application's
// components.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RepeaterBookMetrics contains prometheus metrics for the directory client.
type RepeaterBookMetrics struct {
	requestsTotal   prometheus.Counter
	errorsTotal     prometheus.Counter
	cacheHitsTotal  prometheus.Counter
	cacheMissTotal  prometheus.Counter
	requestDuration prometheus.Histogram
}

// NewRepeaterBookMetrics creates and registers directory client metrics.
func NewRepeaterBookMetrics(registry *prometheus.Registry) (*RepeaterBookMetrics, error) {
	m := &RepeaterBookMetrics{
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repeaterbook_requests_total",
			Help: "Total number of directory export requests",
		}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repeaterbook_request_errors_total",
			Help: "Total number of failed directory export requests",
		}),
		cacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repeaterbook_cache_hits_total",
			Help: "Total number of export cache hits",
		}),
		cacheMissTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "repeaterbook_cache_misses_total",
			Help: "Total number of export cache misses",
		}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "repeaterbook_request_duration_seconds",
			Help:    "Directory export request duration",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}

	collectors := []prometheus.Collector{
		m.requestsTotal,
		m.errorsTotal,
		m.cacheHitsTotal,
		m.cacheMissTotal,
		m.requestDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordRequest counts one export API request.
func (m *RepeaterBookMetrics) RecordRequest() {
	m.requestsTotal.Inc()
}

// RecordError counts one failed export API request.
func (m *RepeaterBookMetrics) RecordError() {
	m.errorsTotal.Inc()
}

// RecordCacheHit counts one export served from cache.
func (m *RepeaterBookMetrics) RecordCacheHit() {
	m.cacheHitsTotal.Inc()
}

// RecordCacheMiss counts one export that required a download.
func (m *RepeaterBookMetrics) RecordCacheMiss() {
	m.cacheMissTotal.Inc()
}

// RecordDuration records the duration of one successful request.
func (m *RepeaterBookMetrics) RecordDuration(d time.Duration) {
	m.requestDuration.Observe(d.Seconds())
}
