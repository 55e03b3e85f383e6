// Package storage selects and prepares the backing database.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/erickalfaro/my-dashboard/internal/common"
	"github.com/erickalfaro/my-dashboard/internal/interfaces"
	"github.com/erickalfaro/my-dashboard/internal/storage/postgres"
	"github.com/erickalfaro/my-dashboard/internal/storage/sqlite"
)

// Driver constants.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewStorageManager opens the configured store and seeds it when requested.
// Supported drivers: "sqlite" (default), "postgres".
func NewStorageManager(ctx context.Context, logger *common.Logger, config *common.StorageConfig) (interfaces.StorageManager, error) {
	driver := strings.ToLower(config.Driver)
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		mgr interfaces.StorageManager
		err error
	)
	switch driver {
	case DriverSQLite:
		mgr, err = sqlite.NewStore(logger, config.SQLite.Path)

	case DriverPostgres:
		pg := config.Postgres
		// Databases named by discrete fields may not exist yet.
		if pg.DSN == "" && config.AutoMigrate && pg.Database != "" {
			admin := pg
			admin.Database = "postgres"
			if cerr := postgres.CreateDatabase(admin.ConnString(), pg.Database); cerr != nil {
				return nil, fmt.Errorf("failed to create database: %w", cerr)
			}
		}
		mgr, err = postgres.NewStore(logger, pg.ConnString(), config.AutoMigrate)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s (supported: sqlite, postgres)", driver)
	}
	if err != nil {
		return nil, err
	}

	if config.Seed {
		if _, err := SeedTape(ctx, logger, mgr.TapeStore()); err != nil {
			mgr.Close()
			return nil, err
		}
	}
	return mgr, nil
}
