package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/atomspace/am"
	"github.com/teranos/atomspace/cmd/atomspace/commands"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/logger"
)

var rootCmd = &cobra.Command{
	Use:   "atomspace",
	Short: "atomspace - hypergraph atom store with link chasing",
	Long: `atomspace - a typed hypergraph of nodes and links, persisted in SQLite.

Atoms are addressed as a ConceptNode name ("cat"), Type:name
("PredicateNode:likes") or a handle ("#12").

Available commands:
  load    - Seed the store from a YAML document
  chase   - Follow links of one type from an atom
  graph   - Print the neighbourhood of an atom as graph JSON
  db      - Migrate and inspect the database
  am      - Show and change configuration ("I am")
  serve   - Serve graphs and chases over HTTP and WebSocket
  version - Show version information

Examples:
  atomspace load seed.yaml              # Seed the store
  atomspace chase forward a InheritanceLink
  atomspace graph -q "forward a InheritanceLink 2"
  atomspace serve --addr :8770`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")

		// version must work with a broken config
		if cmd.Name() == "version" {
			return logger.InitializeFromVerbosity(jsonLogs, verbosity)
		}

		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		if err := cfg.Validate(); err != nil {
			return errors.WithHint(errors.Wrap(err, "invalid configuration"),
				"inspect it with 'atomspace am show --sources'")
		}

		level := logger.VerbosityToLevel(verbosity)
		if verbosity == 0 {
			if level, err = logger.ParseLevel(cfg.Log.Level); err != nil {
				return err
			}
		}
		if err := logger.Initialize(jsonLogs || cfg.Log.JSON, level); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}

		cmd.SetContext(logger.WithNewTraceID(cmd.Context()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("db", "", "Database path (overrides database.path)")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.ChaseCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.GraphCmd)
	rootCmd.AddCommand(commands.LoadCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hints := errors.FlattenHints(err); hints != "" {
			fmt.Fprintln(os.Stderr, "Hint:", hints)
		}
		os.Exit(1)
	}
}
