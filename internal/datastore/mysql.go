package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ogdrb/ogdrb/internal/conf"
	"github.com/ogdrb/ogdrb/internal/errors"
)

// MySQLStore implements the repeater store on MySQL.
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the MySQL database connection.
func (store *MySQLStore) Open() error {
	cfg := store.Settings.Output.MySQL
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: createGormLogger(store.Settings.Debug),
	})
	if err != nil {
		return errors.Newf("failed to open MySQL database: %w", err).
			Category(errors.CategoryDatabase).
			Context("host", cfg.Host).
			Context("database", cfg.Database).
			Component("datastore").
			Build()
	}

	store.DB = db
	if err := performAutoMigration(db, store.Settings.Debug, "MySQL", cfg.Host); err != nil {
		return errors.Newf("failed to migrate MySQL database: %w", err).
			Category(errors.CategoryDatabase).
			Context("host", cfg.Host).
			Component("datastore").
			Build()
	}
	return nil
}
