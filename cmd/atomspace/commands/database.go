package commands

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/teranos/atomspace/am"
	"github.com/teranos/atomspace/db"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
	"github.com/teranos/atomspace/storage"
)

// databasePath resolves --db, falling back to database.path
func databasePath(cmd *cobra.Command) (string, error) {
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		return path, nil
	}
	cfg, err := am.Load()
	if err != nil {
		return "", errors.Wrap(err, "failed to load configuration")
	}
	return cfg.GetDatabasePath(), nil
}

// openDatabase opens and migrates the database named by --db or the config
func openDatabase(cmd *cobra.Command) (*sql.DB, string, error) {
	path, err := databasePath(cmd)
	if err != nil {
		return nil, "", err
	}
	database, err := db.OpenWithMigrations(path, logger.Logger)
	if err != nil {
		return nil, path, errors.Wrapf(err, "failed to open database at %s", path)
	}
	return database, path, nil
}

// openStore opens the atom store; queries follow ctx. Close the returned
// database when done.
func openStore(ctx context.Context, cmd *cobra.Command) (*storage.SQLStore, *sql.DB, error) {
	database, _, err := openDatabase(cmd)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewSQLStore(database, logger.Logger).WithContext(ctx), database, nil
}

func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Flags().GetCount("verbose")
	return v
}
