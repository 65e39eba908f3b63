// Package exporter runs the codeplug export pipeline: it queries the
// repeater store once per requested zone (concurrently), consolidates the
// overlapping results by directory identity, and organizes them into a
// deduplicated zone/channel layout within the target format's capacity
// limits. Every skipped record and truncation surfaces in the run report,
// returned alongside the codeplug.
package exporter

import (
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ogdrb/ogdrb/internal/codeplug"
	"github.com/ogdrb/ogdrb/internal/errors"
	"github.com/ogdrb/ogdrb/internal/geo"
	"github.com/ogdrb/ogdrb/internal/logging"
	"github.com/ogdrb/ogdrb/internal/observability/metrics"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// Package-level logger specific to the exporter service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "exporter.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "exporter", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize exporter file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "exporter")
		closeLogger = func() error { return nil }
	}
}

// RepeaterSource serves geographic zone queries. Implemented by the
// datastore; tests substitute fakes.
type RepeaterSource interface {
	QueryArea(ctx context.Context, area geo.SearchArea, filter repeaterbook.ExportFilter) ([]repeaterbook.Repeater, error)
}

// ZoneRequest names one circular search area. Zone names are caller-chosen
// labels; two requests may overlap or coincide geographically.
type ZoneRequest struct {
	Name string
	Area geo.SearchArea
}

// ZoneResult is the repeater set retrieved for one requested zone, in the
// source's deterministic order. Results keep the request order, so a slice
// of them is the per-zone mapping.
type ZoneResult struct {
	Name      string
	Repeaters []repeaterbook.Repeater
}

// Report reasons.
const (
	ReasonUnsupportedMode = "unsupported_mode"
	ReasonZoneCapacity    = "zone_capacity"
	ReasonChannelCapacity = "channel_capacity"
	ReasonZoneCount       = "zone_count"
)

// ReportEntry documents one skipped record or truncation. Zone is empty for
// entries that are not scoped to a single zone.
type ReportEntry struct {
	Zone     string           `json:"zone,omitempty"`
	Repeater repeaterbook.Key `json:"repeater,omitempty"`
	Channel  string           `json:"channel,omitempty"`
	Reason   string           `json:"reason"`
	Detail   string           `json:"detail"`
}

// Report collects every skip and truncation of one pipeline run. A non-empty
// report accompanies a successful codeplug; it never replaces one.
type Report struct {
	RunID     string        `json:"run_id"`
	Generated time.Time     `json:"generated"`
	Entries   []ReportEntry `json:"entries"`
}

func newReport() *Report {
	return &Report{
		RunID:     uuid.New().String(),
		Generated: time.Now(),
	}
}

func (p *Pipeline) addEntry(report *Report, entry ReportEntry) {
	report.Entries = append(report.Entries, entry)
	if p.metrics != nil {
		p.metrics.RecordReportEntry(entry.Reason)
	}
	logger.Warn("record excluded from codeplug",
		"run_id", report.RunID,
		"zone", entry.Zone,
		"repeater", entry.Repeater.String(),
		"channel", entry.Channel,
		"reason", entry.Reason,
		"detail", entry.Detail)
}

// Pipeline is the export pipeline bound to a repeater source and a capacity
// profile. It holds no per-run state; Run is safe for concurrent use.
type Pipeline struct {
	src     RepeaterSource
	limits  codeplug.Limits
	metrics *metrics.ExporterMetrics
}

// New creates a pipeline for the given source and capacity profile.
func New(src RepeaterSource, limits codeplug.Limits) *Pipeline {
	return &Pipeline{src: src, limits: limits}
}

// SetMetrics attaches prometheus collectors. Optional.
func (p *Pipeline) SetMetrics(m *metrics.ExporterMetrics) {
	p.metrics = m
}

// Run executes the full pipeline for one request. The returned report lists
// every skipped record and truncation; an error means no codeplug was
// produced (any zone query failure fails the whole request).
func (p *Pipeline) Run(ctx context.Context, zones []ZoneRequest, filter repeaterbook.ExportFilter) (*codeplug.Codeplug, *Report, error) {
	start := time.Now()
	report := newReport()

	plug, err := p.run(ctx, zones, filter, report)
	if p.metrics != nil {
		p.metrics.RecordRun(err == nil, time.Since(start))
	}
	if err != nil {
		logger.Error("export run failed", "run_id", report.RunID, "error", err)
		return nil, nil, err
	}

	logger.Info("export run complete",
		"run_id", report.RunID,
		"zones", len(plug.Zones),
		"channels", plug.ChannelCount(),
		"report_entries", len(report.Entries),
		"duration_ms", time.Since(start).Milliseconds())
	return plug, report, nil
}

func (p *Pipeline) run(ctx context.Context, zones []ZoneRequest, filter repeaterbook.ExportFilter, report *Report) (*codeplug.Codeplug, error) {
	if err := validateRequest(zones, filter); err != nil {
		return nil, err
	}

	// More zones than the radio holds: keep the first MaxZones in request
	// order, report the rest.
	if len(zones) > p.limits.MaxZones {
		for _, z := range zones[p.limits.MaxZones:] {
			p.addEntry(report, ReportEntry{
				Zone:   z.Name,
				Reason: ReasonZoneCount,
				Detail: "zone dropped: request exceeds the maximum zone count",
			})
		}
		zones = zones[:p.limits.MaxZones]
	}

	byZone, err := p.Aggregate(ctx, zones, filter)
	if err != nil {
		return nil, err
	}

	records, zoneKeys := dedup(byZone)

	table, indexByKey := p.buildChannelTable(records, report)

	built := make([]codeplug.Zone, 0, len(byZone))
	for i := range byZone {
		built = append(built, p.buildZone(byZone[i].Name, zoneKeys[i], indexByKey, report))
	}

	plug := p.assemble(table, built, report)
	if p.metrics != nil {
		p.metrics.RecordChannelsBuilt(plug.ChannelCount())
	}
	return plug, nil
}

// validateRequest rejects malformed requests before any query runs: at least
// one zone, unique non-empty zone names, a valid area per zone, and a
// non-empty export filter.
func validateRequest(zones []ZoneRequest, filter repeaterbook.ExportFilter) error {
	if len(zones) == 0 {
		return errors.Newf("export request has no zones").
			Category(errors.CategoryValidation).
			Component("exporter").
			Build()
	}
	seen := make(map[string]bool, len(zones))
	for _, z := range zones {
		if z.Name == "" {
			return errors.Newf("zone name must not be empty").
				Category(errors.CategoryValidation).
				Component("exporter").
				Build()
		}
		if seen[z.Name] {
			return errors.Newf("duplicate zone name %q", z.Name).
				Category(errors.CategoryValidation).
				Component("exporter").
				Build()
		}
		seen[z.Name] = true
		if err := z.Area.Validate(); err != nil {
			return errors.Newf("zone %q: %w", z.Name, err).
				Category(errors.CategoryValidation).
				Context("zone", z.Name).
				Component("exporter").
				Build()
		}
	}
	return filter.Validate()
}
