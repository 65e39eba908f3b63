package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ogdrb/ogdrb/internal/countries"
	"github.com/ogdrb/ogdrb/internal/errors"
	"github.com/ogdrb/ogdrb/internal/geo"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// Amateur bands the target radio covers, in MHz.
const (
	band2mLowMHz   = 144.0
	band2mHighMHz  = 148.0
	band70cmLowMHz = 420.0
	band70cmHighMHz = 450.0
)

const populateBatchSize = 500

// Populate upserts an export batch keyed on the directory identity.
func (ds *DataStore) Populate(ctx context.Context, records []repeaterbook.Repeater) (int64, error) {
	start := time.Now()

	rows := make([]Repeater, 0, len(records))
	for i := range records {
		rows = append(rows, fromRecord(&records[i]))
	}

	var written int64
	err := ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for begin := 0; begin < len(rows); begin += populateBatchSize {
			end := min(begin+populateBatchSize, len(rows))
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "country"}, {Name: "state_id"}, {Name: "repeater_id"}},
				UpdateAll: true,
			}).Create(rows[begin:end])
			if result.Error != nil {
				return result.Error
			}
			written += result.RowsAffected
		}
		return nil
	})
	ds.recordOperation("populate", start, err)
	if err != nil {
		return 0, errors.Newf("failed to populate repeater store: %w", err).
			Category(errors.CategoryDatabase).
			Context("records", len(records)).
			Component("datastore").
			Build()
	}

	if ds.metrics != nil {
		if total, countErr := ds.CountRepeaters(ctx); countErr == nil {
			ds.metrics.SetStoredRepeaters(total)
		}
	}

	return written, nil
}

// CountRepeaters returns the total number of stored records.
func (ds *DataStore) CountRepeaters(ctx context.Context) (int64, error) {
	var count int64
	if err := ds.DB.WithContext(ctx).Model(&Repeater{}).Count(&count).Error; err != nil {
		return 0, errors.Newf("failed to count repeaters: %w", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}
	return count, nil
}

// QueryArea returns the stored repeaters inside the area that the target
// radio can use and the export filter permits. The database narrows by
// bounding box and static filters; the exact radius check runs in Go. The
// result order is deterministic (directory key order).
func (ds *DataStore) QueryArea(ctx context.Context, area geo.SearchArea, filter repeaterbook.ExportFilter) ([]repeaterbook.Repeater, error) {
	if err := area.Validate(); err != nil {
		return nil, err
	}

	box, err := area.Bounds()
	if err != nil {
		return nil, err
	}

	start := time.Now()

	query := ds.DB.WithContext(ctx).Model(&Repeater{}).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if box.Wraps {
		query = query.Where("longitude >= ? OR longitude <= ?", box.MinLon, box.MaxLon)
	} else {
		query = query.Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon)
	}

	query = applyCompatibilityFilter(query)
	query = applyExportFilter(query, filter)

	var rows []Repeater
	err = query.
		Order("country, state_id, repeater_id").
		Find(&rows).Error
	ds.recordOperation("query_area", start, err)
	if err != nil {
		return nil, errors.Newf("failed to query repeaters by area: %w", err).
			Category(errors.CategoryDatabase).
			Component("datastore").
			Build()
	}

	// Exact radius check; the bounding box over-selects at the corners.
	result := make([]repeaterbook.Repeater, 0, len(rows))
	for i := range rows {
		record := rows[i].record()
		if area.Contains(record.Location) {
			result = append(result, record)
		}
	}

	return result, nil
}

// applyCompatibilityFilter keeps only repeaters the target radio can be
// programmed for: analog or DMR capable, on-air, open use, on the 2m or
// 70cm band, with a representable FM bandwidth (or none for digital-only).
func applyCompatibilityFilter(query *gorm.DB) *gorm.DB {
	return query.
		Where("fm_analog = ? OR dmr = ?", true, true).
		Where("operational_status = ?", repeaterbook.StatusOnAir).
		Where("use_membership = ?", repeaterbook.UseOpen).
		Where("(frequency_m_hz BETWEEN ? AND ?) OR (frequency_m_hz BETWEEN ? AND ?)",
			band2mLowMHz, band2mHighMHz, band70cmLowMHz, band70cmHighMHz).
		Where("fm_bandwidth_k_hz IN ?", []float64{0, 12.5, 25})
}

// applyExportFilter narrows to the request's countries, and to the selected
// states for United States records.
func applyExportFilter(query *gorm.DB, filter repeaterbook.ExportFilter) *gorm.DB {
	if names := filter.CountryNames(); len(names) > 0 {
		query = query.Where("country IN ?", names)
	}
	if len(filter.USStateIDs) > 0 {
		usName := "United States"
		if us, err := countries.Lookup(countries.USAlpha2); err == nil {
			usName = us.Name
		}
		query = query.Where("country <> ? OR state_id IN ?", usName, filter.USStateIDs)
	}
	return query
}
