package graph

import (
	"go.uber.org/zap"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/chase"
	"github.com/teranos/atomspace/logger"
)

// Store is what the builder needs from an atom store: chasing plus name
// lookup for query text. atomtable.Table and storage.SQLStore both fit.
type Store interface {
	atom.Space
	atom.Lookuper
}

// Builder expands atom neighbourhoods into graphs by chasing links
type Builder struct {
	store     Store
	chaser    *chase.Chaser
	maxDepth  int
	maxNodes  int
	verbosity int
	logger    *zap.SugaredLogger
}

// Option configures a Builder
type Option func(*Builder)

// WithMaxDepth caps the expansion depth. Non-positive keeps the default.
func WithMaxDepth(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxDepth = n
		}
	}
}

// WithMaxNodes caps the number of nodes per graph. Non-positive keeps the default.
func WithMaxNodes(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxNodes = n
		}
	}
}

// WithChaseOptions passes options through to the underlying chaser
func WithChaseOptions(opts ...chase.Option) Option {
	return func(b *Builder) {
		b.chaser = chase.New(b.store, append([]chase.Option{
			chase.WithLogger(b.logger),
			chase.WithVerbosity(b.verbosity),
		}, opts...)...)
	}
}

// NewBuilder creates a graph builder over store. logger may be nil.
func NewBuilder(store Store, verbosity int, log *zap.SugaredLogger, opts ...Option) *Builder {
	b := &Builder{
		store:     store,
		maxDepth:  DefaultMaxDepth,
		maxNodes:  DefaultMaxNodes,
		verbosity: verbosity,
		logger:    logger.OrNop(log).Named("graph.builder"),
	}
	b.chaser = chase.New(store, chase.WithLogger(b.logger), chase.WithVerbosity(verbosity))
	for _, opt := range opts {
		opt(b)
	}
	return b
}
