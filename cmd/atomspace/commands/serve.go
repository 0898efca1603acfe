package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/atomspace/am"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/graph"
	"github.com/teranos/atomspace/logger"
	"github.com/teranos/atomspace/server"
)

// DefaultServeAddr is where serve listens without --addr
const DefaultServeAddr = "127.0.0.1:8770"

// ServeCmd starts the HTTP and WebSocket server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Serve graphs and chases over HTTP and WebSocket",
	Long: `Start the atomspace server.

Routes:
  /health                               liveness and version
  /api/graph?q=<query>                  neighbourhood graph JSON
  /api/chase?atom=&type=&from=&to=      chase matches
  /ws                                   graph queries over WebSocket
  /metrics                              prometheus metrics

With metrics.enabled, /metrics is also served alone on metrics.addr.`,
	RunE: runServe,
}

var serveAddr string

func init() {
	ServeCmd.Flags().StringVar(&serveAddr, "addr", DefaultServeAddr, "Listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	store, database, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	srv := server.New(store, reg, verbosity(cmd), logger.Logger,
		graph.WithMaxDepth(cfg.Graph.MaxDepth),
		graph.WithMaxNodes(cfg.Graph.MaxNodes),
	)

	pterm.Info.Printfln("Serving on http://%s", serveAddr)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return srv.ListenAndServe(ctx, serveAddr) })
	if cfg.Metrics.Enabled {
		pterm.Info.Printfln("Metrics on http://%s/metrics", cfg.Metrics.Addr)
		g.Go(func() error { return srv.ListenAndServeMetrics(ctx, cfg.Metrics.Addr) })
	}
	return g.Wait()
}
