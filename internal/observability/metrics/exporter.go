package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExporterMetrics contains prometheus metrics for the codeplug pipeline.
type ExporterMetrics struct {
	runsTotal         *prometheus.CounterVec
	zonesQueried      prometheus.Counter
	repeatersRetrieved prometheus.Counter
	channelsBuilt     prometheus.Counter
	reportEntries     *prometheus.CounterVec
	runDuration       prometheus.Histogram
}

// NewExporterMetrics creates and registers pipeline metrics.
func NewExporterMetrics(registry *prometheus.Registry) (*ExporterMetrics, error) {
	m := &ExporterMetrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exporter_runs_total",
			Help: "Total number of pipeline runs by result",
		}, []string{"result"}),
		zonesQueried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exporter_zones_queried_total",
			Help: "Total number of zone queries executed",
		}),
		repeatersRetrieved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exporter_repeaters_retrieved_total",
			Help: "Total number of repeater records retrieved across zones",
		}),
		channelsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exporter_channels_built_total",
			Help: "Total number of channels built",
		}),
		reportEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exporter_report_entries_total",
			Help: "Total number of skip/truncation report entries by reason",
		}, []string{"reason"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "exporter_run_duration_seconds",
			Help:    "Pipeline run duration",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}

	collectors := []prometheus.Collector{
		m.runsTotal,
		m.zonesQueried,
		m.repeatersRetrieved,
		m.channelsBuilt,
		m.reportEntries,
		m.runDuration,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordRun records one pipeline run outcome.
func (m *ExporterMetrics) RecordRun(success bool, d time.Duration) {
	result := "success"
	if !success {
		result = "error"
	}
	m.runsTotal.WithLabelValues(result).Inc()
	m.runDuration.Observe(d.Seconds())
}

// RecordZoneQueried counts one zone query and its retrieved records.
func (m *ExporterMetrics) RecordZoneQueried(records int) {
	m.zonesQueried.Inc()
	m.repeatersRetrieved.Add(float64(records))
}

// RecordChannelsBuilt counts channels produced by the channel builder.
func (m *ExporterMetrics) RecordChannelsBuilt(count int) {
	m.channelsBuilt.Add(float64(count))
}

// RecordReportEntry counts one skip/truncation report entry.
func (m *ExporterMetrics) RecordReportEntry(reason string) {
	m.reportEntries.WithLabelValues(reason).Inc()
}
