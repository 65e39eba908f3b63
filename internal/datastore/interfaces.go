// Package datastore persists directory exports in a local database and
// serves the geographic zone queries the pipeline runs against them.
package datastore

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ogdrb/ogdrb/internal/conf"
	"github.com/ogdrb/ogdrb/internal/geo"
	"github.com/ogdrb/ogdrb/internal/observability/metrics"
	"github.com/ogdrb/ogdrb/internal/repeaterbook"
)

// Interface defines the repeater store operations.
type Interface interface {
	Open() error
	Close() error
	// Populate upserts an export batch and returns the number of records
	// written.
	Populate(ctx context.Context, records []repeaterbook.Repeater) (int64, error)
	// QueryArea returns the stored repeaters inside the search area that
	// pass the compatibility and export filters, in a deterministic order.
	QueryArea(ctx context.Context, area geo.SearchArea, filter repeaterbook.ExportFilter) ([]repeaterbook.Repeater, error)
	// CountRepeaters returns the total number of stored records.
	CountRepeaters(ctx context.Context) (int64, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB      *gorm.DB
	metrics *metrics.DatastoreMetrics
}

// New creates a store instance for the enabled output database.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// SetMetrics attaches prometheus collectors. Optional.
func (ds *DataStore) SetMetrics(m *metrics.DatastoreMetrics) {
	ds.metrics = m
}

func (ds *DataStore) recordOperation(operation string, start time.Time, err error) {
	if ds.metrics != nil {
		ds.metrics.RecordOperation(operation, time.Since(start), err)
	}
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// createGormLogger returns a gorm logger that stays quiet except for slow
// queries and errors.
func createGormLogger(debug bool) gormlogger.Interface {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gormlogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// performAutoMigration creates or migrates the repeater table.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Repeater{}); err != nil {
		return err
	}
	if debug {
		log.Printf("%s database connected and migrated: %s", dbType, connectionInfo)
	}
	return nil
}
