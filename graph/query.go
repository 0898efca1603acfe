package graph

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/errors"
	grapherr "github.com/teranos/atomspace/graph/error"
	"github.com/teranos/atomspace/logger"
)

// queryLine is one parsed line of a graph query
type queryLine struct {
	ref   string
	steps []Step
	depth int
}

// BuildFromQuery expands every line of query into one merged graph.
//
// Each line is one of
//
//	forward  <atom> <LinkType> [depth]
//	backward <atom> <LinkType> [depth]
//	chase    <atom> <LinkType> <from> <to> [depth]
//
// where <atom> is a ConceptNode name, Type:name, or #handle. Arguments
// follow shell quoting. On failure the returned graph is empty and carries
// the error in Meta.Config.
func (b *Builder) BuildFromQuery(ctx context.Context, query string) (*Graph, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		b.logger.Debugw("Empty query received")
		return &Graph{
			Nodes: []Node{},
			Links: []Link{},
			Meta: Meta{
				GeneratedAt: time.Now(),
				Config: map[string]string{
					"query":       "",
					"description": "Type a chase query to see the graph...",
				},
			},
		}, nil
	}

	b.logger.Debugw("Building graph from query", "query_length", len(trimmed))

	var lines []queryLine
	for i, raw := range strings.Split(trimmed, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		args, err := shellquote.Split(raw)
		if err != nil {
			b.logger.Debugw("Quote parsing failed, using simple split", "line", raw, logger.FieldError, err)
			args = strings.Fields(raw)
		}
		if logger.ShouldLogTrace(b.verbosity) {
			b.logger.Debugw("Query arguments", "line", i+1, "args", args)
		}

		ql, gerr := parseLine(args)
		if gerr != nil {
			gerr.WithContext("line", i+1).WithContext("query", raw)
			b.logger.Warnw("Query parse failed", gerr.ToLogFields()...)
			return emptyGraph(gerr), gerr
		}
		lines = append(lines, ql)
	}

	asm := newAssembly(b.maxNodes)
	for _, ql := range lines {
		start, err := b.resolveRef(ql.ref)
		if err != nil {
			b.logger.Warnw("Query atom not found", err.ToLogFields()...)
			return emptyGraph(err), err
		}
		if err := b.expandInto(ctx, asm, start, ql.steps, ql.depth); err != nil {
			return emptyGraph(err), err
		}
	}

	g := asm.graph()
	b.logger.Infow("Graph built", "nodes", len(g.Nodes), "links", len(g.Links), "lines", len(lines))
	return g, nil
}

func parseLine(args []string) (queryLine, *grapherr.GraphError) {
	if len(args) < 3 {
		return queryLine{}, syntaxError("expected <verb> <atom> <LinkType>, got %d arguments", len(args))
	}

	verb, ref := strings.ToLower(args[0]), args[1]
	t, err := atom.ParseType(args[2])
	if err != nil {
		return queryLine{}, valueError(err)
	}
	if !t.IsLink() {
		return queryLine{}, valueError(errors.NewInvalidRequestError("%s is not a link type", t))
	}

	var (
		step Step
		rest []string
	)
	switch verb {
	case "forward":
		step, rest = Forward(t), args[3:]
	case "backward":
		step, rest = Backward(t), args[3:]
	case "chase":
		if len(args) < 5 {
			return queryLine{}, syntaxError("chase needs <from> <to> positions")
		}
		from, err1 := strconv.Atoi(args[3])
		to, err2 := strconv.Atoi(args[4])
		if err := errors.CombineErrors(err1, err2); err != nil {
			return queryLine{}, valueError(err)
		}
		step, rest = Step{LinkType: t, From: from, To: to}, args[5:]
	default:
		return queryLine{}, syntaxError("unknown verb %q", args[0])
	}

	ql := queryLine{ref: ref, steps: []Step{step}, depth: 1}
	switch len(rest) {
	case 0:
	case 1:
		d, err := strconv.Atoi(rest[0])
		if err != nil {
			return queryLine{}, valueError(errors.Wrap(err, "depth"))
		}
		ql.depth = d
	default:
		return queryLine{}, syntaxError("unexpected arguments %q", rest[1:])
	}
	return ql, nil
}

// resolveRef turns an atom reference into a handle
func (b *Builder) resolveRef(ref string) (atom.Handle, *grapherr.GraphError) {
	h, err := atom.ResolveRef(b.store, ref)
	switch {
	case err == nil:
		return h, nil
	case errors.IsInvalidRequestError(err):
		return atom.UndefinedHandle, valueError(err)
	case errors.IsNotFoundError(err):
		return atom.UndefinedHandle, grapherr.New(grapherr.CategoryQuery, err, "No such atom: "+ref).
			WithSubcategory(grapherr.SubcategoryQueryUnknownAtom).
			WithContext("atom", ref)
	default:
		return atom.UndefinedHandle, grapherr.New(grapherr.CategoryQuery, err, "Atom lookup failed").
			WithSubcategory(grapherr.SubcategoryQueryDatabase).
			WithContext("atom", ref)
	}
}

func syntaxError(format string, args ...interface{}) *grapherr.GraphError {
	return grapherr.Newf(grapherr.CategoryParse, "", format, args...).
		WithSubcategory(grapherr.SubcategoryParseInvalidSyntax)
}

func valueError(err error) *grapherr.GraphError {
	return grapherr.New(grapherr.CategoryParse, err, "").
		WithSubcategory(grapherr.SubcategoryParseInvalidValue)
}
