package graph

import "github.com/teranos/atomspace/atom"

const (
	defaultLinkWeight   = 1.0 // Weight of an edge backed by one link
	linkWeightIncrement = 0.5 // Added per further link between the same pair

	// DefaultMaxDepth bounds expansion when the caller sets no limit
	DefaultMaxDepth = 3

	// DefaultMaxNodes bounds graph size when the caller sets no limit
	DefaultMaxNodes = 500

	defaultNodeColor = "rgba(149, 165, 166, 0.3)"
)

var typeColors = map[atom.Type]string{
	atom.ConceptNode:     "#3498db",
	atom.PredicateNode:   "#e67e22",
	atom.WordNode:        "#2ecc71",
	atom.ListLink:        "#95a5a6",
	atom.InheritanceLink: "#9b59b6",
	atom.SimilarityLink:  "#1abc9c",
	atom.MemberLink:      "#f1c40f",
	atom.EvaluationLink:  "#e74c3c",
	atom.ImplicationLink: "#34495e",
}
