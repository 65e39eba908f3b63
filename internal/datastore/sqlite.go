package datastore

import (
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ogdrb/ogdrb/internal/conf"
	"github.com/ogdrb/ogdrb/internal/errors"
)

// SQLiteStore implements the repeater store on SQLite.
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the SQLite database connection.
func (store *SQLiteStore) Open() error {
	path := store.Settings.Output.SQLite.Path
	if path == "" {
		return errors.Newf("sqlite path is empty").
			Category(errors.CategoryConfiguration).
			Component("datastore").
			Build()
	}
	if dir := filepath.Dir(path); dir != "." {
		path = filepath.Clean(path)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: createGormLogger(store.Settings.Debug),
	})
	if err != nil {
		return errors.Newf("failed to open SQLite database: %w", err).
			Category(errors.CategoryDatabase).
			Context("path", path).
			Component("datastore").
			Build()
	}

	store.DB = db
	if err := performAutoMigration(db, store.Settings.Debug, "SQLite", path); err != nil {
		return errors.Newf("failed to migrate SQLite database: %w", err).
			Category(errors.CategoryDatabase).
			Context("path", path).
			Component("datastore").
			Build()
	}
	return nil
}
