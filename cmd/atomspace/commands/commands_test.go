package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/atomspace/am"
	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/chase"
	"github.com/teranos/atomspace/errors"
	"github.com/teranos/atomspace/graph"
)

const seed = `
nodes:
  - {type: ConceptNode, name: cat}
  - {type: ConceptNode, name: dog}
  - {type: ConceptNode, name: animal}
links:
  - {type: InheritanceLink, members: [cat, animal]}
  - {type: InheritanceLink, members: [dog, animal]}
`

// run executes args under a fresh root carrying the global flags, against
// a database in a temp dir with no config files in reach.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	chaseFirst, chaseJSON = false, false
	graphTypes, graphDepth, graphQuery = nil, 1, ""
	loadWatch = false
	configFormat, configSources, configFile = "toml", false, ""

	root := &cobra.Command{Use: "atomspace", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().CountP("verbose", "v", "")
	root.PersistentFlags().String("db", "", "")
	for _, c := range []*cobra.Command{AmCmd, ChaseCmd, DbCmd, GraphCmd, LoadCmd, VersionCmd} {
		root.AddCommand(c)
	}

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append([]string{"--db", dbPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	am.Reset()
	t.Cleanup(am.Reset)

	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seed), 0o644))
	dbPath := filepath.Join(dir, "atoms.db")
	_, err := run(t, dbPath, "load", seedPath)
	require.NoError(t, err)
	return dbPath
}

func TestChaseForwardJSON(t *testing.T) {
	dbPath := setup(t)

	out, err := run(t, dbPath, "chase", "forward", "cat", "InheritanceLink", "--json")
	require.NoError(t, err)

	var matches []chase.Match
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	require.Len(t, matches, 1)

	out, err = run(t, dbPath, "chase", "backward", "animal", "InheritanceLink", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	assert.Len(t, matches, 2)
}

func TestChaseFirstStopsEarly(t *testing.T) {
	dbPath := setup(t)

	out, err := run(t, dbPath, "chase", "at", "animal", "InheritanceLink", "1", "0", "--json", "--first")
	require.NoError(t, err)

	var matches []chase.Match
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	assert.Len(t, matches, 1)
}

func TestChaseNoMatchesJSON(t *testing.T) {
	dbPath := setup(t)

	out, err := run(t, dbPath, "chase", "forward", "animal", "InheritanceLink", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestChaseRejects(t *testing.T) {
	dbPath := setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"node type", []string{"chase", "forward", "cat", "ConceptNode"}},
		{"unknown type", []string{"chase", "forward", "cat", "Banana"}},
		{"bad position", []string{"chase", "at", "cat", "InheritanceLink", "x", "1"}},
		{"negative position", []string{"chase", "at", "cat", "InheritanceLink", "--", "-1", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, dbPath, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidRequestError(err), "got %v", err)
		})
	}

	_, err := run(t, dbPath, "chase", "forward", "unicorn", "InheritanceLink")
	assert.True(t, errors.IsNotFoundError(err), "got %v", err)
}

func TestGraphCommand(t *testing.T) {
	dbPath := setup(t)

	out, err := run(t, dbPath, "graph", "animal", "--type", "InheritanceLink")
	require.NoError(t, err)
	var g graph.Graph
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Links, 2)

	out, err = run(t, dbPath, "graph", "-q", "forward cat InheritanceLink")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Len(t, g.Nodes, 2)

	_, err = run(t, dbPath, "graph", "cat")
	assert.True(t, errors.IsInvalidRequestError(err), "got %v", err)
}

func TestDbStats(t *testing.T) {
	dbPath := setup(t)

	out, err := run(t, dbPath, "db", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Nodes:         3")
	assert.Contains(t, out, "Links:         2")
}

func TestLoadIsIdempotent(t *testing.T) {
	dbPath := setup(t)

	_, err := run(t, dbPath, "load", filepath.Join(filepath.Dir(dbPath), "seed.yaml"))
	require.NoError(t, err)

	out, err := run(t, dbPath, "db", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Nodes:         3")
}

func TestAmShowFormats(t *testing.T) {
	dbPath := setup(t)

	out, err := run(t, dbPath, "am", "show", "--format", "json")
	require.NoError(t, err)
	var cfg am.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, am.DefaultMaxNodes, cfg.Graph.MaxNodes)

	out, err = run(t, dbPath, "am", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "max_depth = 3")

	_, err = run(t, dbPath, "am", "show", "--format", "xml")
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestAmSet(t *testing.T) {
	dbPath := setup(t)
	file := filepath.Join(t.TempDir(), "am.toml")

	_, err := run(t, dbPath, "am", "set", "graph.max_nodes", "42", "--file", file)
	require.NoError(t, err)

	cfg, err := am.LoadFromFile(file)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Graph.MaxNodes)
}

func TestParsePositions(t *testing.T) {
	from, to, err := parsePositions("0", "2")
	require.NoError(t, err)
	assert.Equal(t, 0, from)
	assert.Equal(t, 2, to)

	_, _, err = parsePositions("a", "b")
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "cat", label(&atom.Atom{Type: atom.ConceptNode, Name: "cat"}))
	link := &atom.Atom{Handle: 3, Type: atom.ListLink, Outgoing: []atom.Handle{1, 2}}
	assert.Equal(t, link.String(), label(link))
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, filepath.Join(t.TempDir(), "unused.db"), "version", "--json")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
}
