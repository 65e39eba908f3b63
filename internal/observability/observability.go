// Package observability provides the prometheus registry and metric
// collectors for the application.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ogdrb/ogdrb/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry     *prometheus.Registry
	RepeaterBook *metrics.RepeaterBookMetrics
	Datastore    *metrics.DatastoreMetrics
	Exporter     *metrics.ExporterMetrics
}

// NewMetrics creates a new Metrics instance, initializing all collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repeaterBookMetrics, err := metrics.NewRepeaterBookMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create repeaterbook metrics: %w", err)
	}

	datastoreMetrics, err := metrics.NewDatastoreMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore metrics: %w", err)
	}

	exporterMetrics, err := metrics.NewExporterMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter metrics: %w", err)
	}

	return &Metrics{
		registry:     registry,
		RepeaterBook: repeaterBookMetrics,
		Datastore:    datastoreMetrics,
		Exporter:     exporterMetrics,
	}, nil
}

// Registry exposes the underlying registry for the metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
