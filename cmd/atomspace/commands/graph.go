package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/atomspace/am"
	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/graph"
	"github.com/teranos/atomspace/logger"
)

// GraphCmd prints the neighbourhood of an atom as graph JSON
var GraphCmd = &cobra.Command{
	Use:   "graph [atom]",
	Short: "Print the neighbourhood of an atom as graph JSON",
	Long: `Expand the neighbourhood of an atom by chasing links in both directions
and print it as D3-style graph JSON (nodes, links, meta).

Either name a start atom and one or more --type flags, or pass a query with
-q using the same line syntax as the server:

  forward  <atom> <LinkType> [depth]
  backward <atom> <LinkType> [depth]
  chase    <atom> <LinkType> <from> <to> [depth]

Examples:
  atomspace graph cat --type InheritanceLink --depth 2
  atomspace graph -q "chase PredicateNode:likes EvaluationLink 0 1"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGraph,
}

var (
	graphTypes []string
	graphDepth int
	graphQuery string
)

func init() {
	GraphCmd.Flags().StringSliceVarP(&graphTypes, "type", "t", nil, "Link types to follow (repeatable)")
	GraphCmd.Flags().IntVarP(&graphDepth, "depth", "d", 1, "Expansion depth")
	GraphCmd.Flags().StringVarP(&graphQuery, "query", "q", "", "Graph query; replaces the atom argument")
}

func runGraph(cmd *cobra.Command, args []string) error {
	if graphQuery == "" && (len(args) != 1 || len(graphTypes) == 0) {
		return errors.WithHint(errors.NewInvalidRequestError("need an atom and --type, or --query"),
			"atomspace graph cat --type InheritanceLink")
	}

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	store, database, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	builder := graph.NewBuilder(store, verbosity(cmd), logger.Logger,
		graph.WithMaxDepth(cfg.Graph.MaxDepth),
		graph.WithMaxNodes(cfg.Graph.MaxNodes),
	)

	var g *graph.Graph
	if graphQuery != "" {
		g, err = builder.BuildFromQuery(cmd.Context(), graphQuery)
	} else {
		g, err = buildFromFlags(cmd, builder, store, args[0])
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal graph")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func buildFromFlags(cmd *cobra.Command, builder *graph.Builder, store atom.Lookuper, ref string) (*graph.Graph, error) {
	types := make([]atom.Type, 0, len(graphTypes))
	for _, name := range graphTypes {
		t, err := parseLinkType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	start, err := atom.ResolveRef(store, ref)
	if err != nil {
		return nil, err
	}
	return builder.Build(cmd.Context(), start, types, graphDepth)
}
