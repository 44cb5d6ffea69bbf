// Package db contains things related to opening the target database
package db

import (
	"bitwise74/schema-migrate/pkg/util"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New opens the database configured under db.driver and db.dsn. The
// migration core only ever uses it as a transactional statement executor.
func New() (*gorm.DB, error) {
	dsn := viper.GetString("db.dsn")

	if viper.GetString("db.driver") == "postgres" {
		db, err := gorm.Open(postgres.Open(dsn))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres database, %w", err)
		}

		return db, nil
	}

	// If running in a docker container don't allow the sqlite file to be created.
	// The host should instead mount it using volumes
	if util.IsRunningInDocker() {
		if _, err := os.Stat(dsn); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite database, %w", err)
	}

	return db, nil
}
