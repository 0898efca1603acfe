package graph

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/chase"
	"github.com/teranos/atomspace/errors"
	grapherr "github.com/teranos/atomspace/graph/error"
	"github.com/teranos/atomspace/logger"
)

// Step is one chase applied at every frontier atom during expansion
type Step struct {
	LinkType atom.Type
	From, To int
}

// Forward follows binary links from position 0 to position 1
func Forward(t atom.Type) Step { return Step{LinkType: t, From: chase.First, To: chase.Second} }

// Backward follows binary links from position 1 to position 0
func Backward(t atom.Type) Step { return Step{LinkType: t, From: chase.Second, To: chase.First} }

func (s Step) String() string {
	return fmt.Sprintf("%s %d->%d", s.LinkType, s.From, s.To)
}

// assembly accumulates nodes and edges across expansions
type assembly struct {
	nodes     map[atom.Handle]*Node
	edges     map[string]*Link
	backing   map[string]map[atom.Handle]bool // edge key -> links seen
	maxNodes  int
	truncated bool
	queries   []string
}

func newAssembly(maxNodes int) *assembly {
	return &assembly{
		nodes:    make(map[atom.Handle]*Node),
		edges:    make(map[string]*Link),
		backing:  make(map[string]map[atom.Handle]bool),
		maxNodes: maxNodes,
	}
}

func (a *assembly) full() bool {
	return len(a.nodes) >= a.maxNodes
}

// addEdge records that link connects source to target. The same link found
// again (from either end) does not add weight; a further link does.
func (a *assembly) addEdge(source, target, link atom.Handle, typ string) {
	key := fmt.Sprintf("%s_%s_%s", nodeID(source), typ, nodeID(target))
	seen := a.backing[key]
	if seen == nil {
		seen = make(map[atom.Handle]bool)
		a.backing[key] = seen
	}
	if seen[link] {
		return
	}
	seen[link] = true

	if e, ok := a.edges[key]; ok {
		e.Weight += linkWeightIncrement
		return
	}
	a.edges[key] = &Link{
		Source: nodeID(source),
		Target: nodeID(target),
		Type:   typ,
		Weight: defaultLinkWeight,
		Label:  typ,
	}
}

func (a *assembly) graph() *Graph {
	g := &Graph{
		Nodes: []Node{},
		Links: []Link{},
		Meta: Meta{
			GeneratedAt: time.Now(),
			Config: map[string]string{
				"query":       strings.Join(a.queries, "\n"),
				"description": fmt.Sprintf("Neighbourhood for: %s", strings.Join(a.queries, "; ")),
			},
		},
	}

	handles := make([]atom.Handle, 0, len(a.nodes))
	for h := range a.nodes {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	for _, h := range handles {
		g.Nodes = append(g.Nodes, *a.nodes[h])
	}

	keys := make([]string, 0, len(a.edges))
	for k := range a.edges {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		g.Links = append(g.Links, *a.edges[k])
	}

	if a.truncated {
		g.Meta.Config["truncated"] = strconv.FormatBool(true)
		g.Meta.Config["max_nodes"] = strconv.Itoa(a.maxNodes)
	}
	g.Meta.Stats.TotalNodes = len(g.Nodes)
	g.Meta.Stats.TotalEdges = len(g.Links)
	g.Meta.NodeTypes = collectNodeTypeInfo(g.Nodes)
	g.Meta.RelationshipTypes = collectRelationshipTypeInfo(g.Links)
	return g
}

// Build expands start along linkTypes in both directions up to depth.
func (b *Builder) Build(ctx context.Context, start atom.Handle, linkTypes []atom.Type, depth int) (*Graph, error) {
	steps := make([]Step, 0, 2*len(linkTypes))
	for _, t := range linkTypes {
		steps = append(steps, Forward(t), Backward(t))
	}
	return b.Expand(ctx, start, steps, depth)
}

// Expand applies steps breadth-first from start. Depth is clamped to
// [1, max depth]; nodes beyond the node limit are left out and the graph
// is marked truncated.
func (b *Builder) Expand(ctx context.Context, start atom.Handle, steps []Step, depth int) (*Graph, error) {
	asm := newAssembly(b.maxNodes)
	if err := b.expandInto(ctx, asm, start, steps, depth); err != nil {
		return emptyGraph(err), err
	}
	g := asm.graph()
	b.logger.Infow("Graph built", "nodes", len(g.Nodes), "links", len(g.Links), logger.FieldHandle, start)
	return g, nil
}

func (b *Builder) clampDepth(depth int) int {
	if depth <= 0 {
		return 1
	}
	if depth > b.maxDepth {
		b.logger.Debugw("Depth clamped", "requested", depth, "max_depth", b.maxDepth)
		return b.maxDepth
	}
	return depth
}

func (b *Builder) expandInto(ctx context.Context, asm *assembly, start atom.Handle, steps []Step, depth int) error {
	depth = b.clampDepth(depth)

	root, err := b.store.Resolve(start)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return grapherr.New(grapherr.CategoryQuery, err, fmt.Sprintf("No atom %s", start)).
				WithSubcategory(grapherr.SubcategoryQueryUnknownAtom).
				WithContext(logger.FieldHandle, start.String())
		}
		return b.storeError(err, start)
	}

	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = s.String()
	}
	asm.queries = append(asm.queries, fmt.Sprintf("%s via %s depth %d", start, strings.Join(parts, ", "), depth))

	if _, ok := asm.nodes[start]; !ok {
		if asm.full() {
			asm.truncated = true
			return nil
		}
		asm.nodes[start] = newNode(root, 0)
	}

	visited := map[atom.Handle]bool{start: true}
	frontier := []atom.Handle{start}

	for level := 1; level <= depth && len(frontier) > 0; level++ {
		var next []atom.Handle
		for _, h := range frontier {
			for _, s := range steps {
				if err := ctx.Err(); err != nil {
					return grapherr.New(grapherr.CategoryQuery, err, "Graph expansion was cancelled").
						WithSubcategory(grapherr.SubcategoryQueryTimeout)
				}

				matches, err := b.chaser.Collect(h, s.LinkType, s.From, s.To)
				if err != nil {
					return b.storeError(err, h)
				}
				if logger.ShouldLogTrace(b.verbosity) {
					b.logger.Debugw("Step expanded", logger.FieldHandle, h, "step", s.String(), logger.FieldMatched, len(matches))
				}

				for _, m := range matches {
					if _, ok := asm.nodes[m.Target]; !ok {
						if asm.full() {
							asm.truncated = true
							continue
						}
						target, err := b.store.Resolve(m.Target)
						if err != nil {
							return b.storeError(err, m.Target)
						}
						asm.nodes[m.Target] = newNode(target, level)
					}
					if !visited[m.Target] {
						visited[m.Target] = true
						next = append(next, m.Target)
					}

					if s.From <= s.To {
						asm.addEdge(h, m.Target, m.Link, edgeType(s))
					} else {
						asm.addEdge(m.Target, h, m.Link, edgeType(s))
					}
				}
			}
		}
		frontier = next
	}

	if asm.truncated {
		b.logger.Warnw("Graph truncated at node limit", "max_nodes", asm.maxNodes, logger.FieldHandle, start)
	}
	return nil
}

func (b *Builder) storeError(err error, h atom.Handle) *grapherr.GraphError {
	ge := grapherr.New(grapherr.CategoryQuery, err, "Atom store failed during expansion").
		WithSubcategory(grapherr.SubcategoryQueryDatabase).
		WithContext(logger.FieldHandle, h.String())
	b.logger.Errorw("Graph expansion failed", ge.ToLogFields()...)
	return ge
}

// emptyGraph is returned alongside errors so callers always have a graph to
// render; Meta.Config carries the error.
func emptyGraph(err error) *Graph {
	g := &Graph{
		Nodes: []Node{},
		Links: []Link{},
		Meta:  Meta{GeneratedAt: time.Now(), Config: map[string]string{}},
	}
	if ge, ok := grapherr.From(err); ok {
		g.Meta.Config = ge.ToGraphMeta()
	} else {
		g.Meta.Config["error"] = err.Error()
	}
	return g
}
