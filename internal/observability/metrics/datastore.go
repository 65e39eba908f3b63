package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains prometheus metrics for the repeater store.
type DatastoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationErrors   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	storedRepeaters   prometheus.Gauge
}

// NewDatastoreMetrics creates and registers datastore metrics.
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datastore_operations_total",
			Help: "Total number of datastore operations",
		}, []string{"operation"}),
		operationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "datastore_operation_errors_total",
			Help: "Total number of failed datastore operations",
		}, []string{"operation"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "datastore_operation_duration_seconds",
			Help:    "Datastore operation duration",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"operation"}),
		storedRepeaters: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "datastore_repeaters",
			Help: "Number of repeater records in the local store",
		}),
	}

	collectors := []prometheus.Collector{
		m.operationsTotal,
		m.operationErrors,
		m.operationDuration,
		m.storedRepeaters,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordOperation records one completed store operation.
func (m *DatastoreMetrics) RecordOperation(operation string, d time.Duration, err error) {
	m.operationsTotal.WithLabelValues(operation).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.operationErrors.WithLabelValues(operation).Inc()
	}
}

// SetStoredRepeaters updates the stored record count gauge.
func (m *DatastoreMetrics) SetStoredRepeaters(count int64) {
	m.storedRepeaters.Set(float64(count))
}
