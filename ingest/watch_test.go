package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/atomtable"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes: [{type: ConceptNode, name: a}]\n"), 0644))

	table := atomtable.New(nil)
	reloads := make(chan Result, 4)
	w := NewWatcher(path, table, func(res Result, err error) {
		assert.NoError(t, err)
		reloads <- res
	}, zaptest.NewLogger(t).Sugar())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case res := <-reloads:
		assert.Len(t, res.Nodes, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("initial load did not happen")
	}

	// give the watcher time to register before the write
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(
		"nodes: [{type: ConceptNode, name: a}, {type: ConceptNode, name: b}]\n"+
			"links: [{type: InheritanceLink, members: [a, b]}]\n"), 0644))

	select {
	case res := <-reloads:
		assert.Len(t, res.Nodes, 2)
		assert.Len(t, res.Links, 1)
	case <-time.After(5 * time.Second):
		t.Fatal("change was not picked up")
	}

	_, err := table.Lookup(atom.ConceptNode, "b")
	assert.NoError(t, err)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcherReportsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	var got error
	w := NewWatcher(path, atomtable.New(nil), func(_ Result, err error) { got = err }, nil)
	w.reload()
	assert.Error(t, got)
}
