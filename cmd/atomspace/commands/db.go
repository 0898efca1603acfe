package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/atomspace/db"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
	"github.com/teranos/atomspace/storage"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Migrate and inspect the atom database",
	Long: `db - Manage the SQLite atom database

Examples:
  atomspace db migrate     # Apply pending migrations
  atomspace db stats       # Show atom counts and schema state`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	path, err := databasePath(cmd)
	if err != nil {
		return err
	}
	database, err := db.Open(path, logger.Logger)
	if err != nil {
		return errors.Wrapf(err, "failed to open database at %s", path)
	}
	defer database.Close()

	before, err := db.AppliedVersions(database)
	if err != nil {
		return err
	}
	if err := db.Migrate(database, logger.Logger); err != nil {
		return errors.Wrapf(err, "failed to migrate %s", path)
	}
	after, err := db.AppliedVersions(database)
	if err != nil {
		return err
	}

	if applied := len(after) - len(before); applied > 0 {
		pterm.Success.Printfln("Applied %d migration(s) to %s", applied, path)
	} else {
		pterm.Info.Printfln("%s is up to date", path)
	}
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	database, path, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	nodes, links, err := storage.NewSQLStore(database, logger.Logger).WithContext(cmd.Context()).Count()
	if err != nil {
		return errors.Wrap(err, "failed to count atoms")
	}
	applied, err := db.AppliedVersions(database)
	if err != nil {
		return err
	}
	known, err := db.KnownVersions()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Atomspace Database Statistics")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(out, "Database Path: %s\n", path)
	fmt.Fprintf(out, "Nodes:         %d\n", nodes)
	fmt.Fprintf(out, "Links:         %d\n", links)
	fmt.Fprintf(out, "Migrations:    %d/%d applied\n", len(applied), len(known))
	return nil
}
