package exporter

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ogdrb/ogdrb/internal/errors"
	"github.com/ogdrb/ogdrb/internal/geo"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// Aggregate runs one zone query per request concurrently and joins before
// returning. The failure policy is all-or-nothing: any zone query error
// cancels the remaining queries and fails the whole request, so a result is
// never a silent partial. Results keep the caller's zone order.
func (p *Pipeline) Aggregate(ctx context.Context, zones []ZoneRequest, filter repeaterbook.ExportFilter) ([]ZoneResult, error) {
	results := make([]ZoneResult, len(zones))

	g, gctx := errgroup.WithContext(ctx)
	for i, zone := range zones {
		g.Go(func() error {
			records, err := p.queryZone(gctx, zone.Area, filter)
			if err != nil {
				return errors.Newf("zone %q: %w", zone.Name, err).
					Context("zone", zone.Name).
					Component("exporter").
					Build()
			}
			logger.Debug("zone query complete", "zone", zone.Name, "records", len(records))
			if p.metrics != nil {
				p.metrics.RecordZoneQueried(len(records))
			}
			results[i] = ZoneResult{Name: zone.Name, Repeaters: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// queryZone retrieves the repeaters inside one search area. Validation
// failures surface as caller errors; everything else from the source is a
// directory failure. No retries here, that is the source's concern.
func (p *Pipeline) queryZone(ctx context.Context, area geo.SearchArea, filter repeaterbook.ExportFilter) ([]repeaterbook.Repeater, error) {
	if err := area.Validate(); err != nil {
		return nil, err
	}
	records, err := p.src.QueryArea(ctx, area, filter)
	if err != nil {
		if errors.IsCategory(err, errors.CategoryValidation) ||
			errors.IsCategory(err, errors.CategoryCancellation) {
			return nil, err
		}
		return nil, errors.Newf("repeater source unavailable: %w", err).
			Category(errors.CategoryDirectory).
			Component("exporter").
			Build()
	}
	return records, nil
}
