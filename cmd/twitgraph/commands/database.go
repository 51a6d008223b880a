package commands

import (
	"database/sql"

	"github.com/teranos/twitgraph/am"
	"github.com/teranos/twitgraph/db"
	"github.com/teranos/twitgraph/errors"
	"github.com/teranos/twitgraph/logger"
	"github.com/teranos/twitgraph/store"
)

// dbPathFlag overrides database.path for every command that opens the store
var dbPathFlag string

// loadConfig loads and validates the configuration
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if dbPathFlag != "" {
		cfg.Database.Path = dbPathFlag
	}
	return cfg, nil
}

// openStore opens and migrates the database at cfg's path and wraps it in a
// graph store. Closing the returned database is the caller's job.
func openStore(cfg *am.Config) (*sql.DB, *store.SQLStore, error) {
	dbPath := cfg.GetDatabasePath()

	database, err := db.OpenWithMigrations(dbPath, logger.ComponentLogger("db"))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open database at %s", dbPath)
	}
	return database, store.NewSQLStore(database, logger.ComponentLogger("store")), nil
}
