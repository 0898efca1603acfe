package atom

import (
	"sort"
	"strconv"

	"github.com/teranos/atomspace/errors"
)

// Type is an exact type tag. The chase never does subtype matching; IsLink
// exists so stores can reject malformed inserts.
type Type uint16

// Registered types. NoType is the zero value and never matches a stored atom.
const (
	NoType Type = iota

	Node
	ConceptNode
	PredicateNode
	WordNode

	Link
	ListLink
	InheritanceLink
	SimilarityLink
	MemberLink
	EvaluationLink
	ImplicationLink
)

var typeNames = map[Type]string{
	NoType:          "NoType",
	Node:            "Node",
	ConceptNode:     "ConceptNode",
	PredicateNode:   "PredicateNode",
	WordNode:        "WordNode",
	Link:            "Link",
	ListLink:        "ListLink",
	InheritanceLink: "InheritanceLink",
	SimilarityLink:  "SimilarityLink",
	MemberLink:      "MemberLink",
	EvaluationLink:  "EvaluationLink",
	ImplicationLink: "ImplicationLink",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

// String returns the registered name, or "Type(<n>)" for unknown tags.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// IsLink reports whether t is one of the link kinds.
func (t Type) IsLink() bool {
	return t >= Link && t <= ImplicationLink
}

// IsNode reports whether t is one of the node kinds.
func (t Type) IsNode() bool {
	return t >= Node && t < Link
}

// ParseType resolves a registered type name.
func ParseType(name string) (Type, error) {
	t, ok := typesByName[name]
	if !ok || t == NoType {
		return NoType, errors.WithHintf(
			errors.NewInvalidRequestError("unknown atom type %q", name),
			"known types: %v", TypeNames(),
		)
	}
	return t, nil
}

// TypeNames lists the registered names in tag order, NoType excluded.
func TypeNames() []string {
	tags := make([]int, 0, len(typeNames))
	for t := range typeNames {
		if t != NoType {
			tags = append(tags, int(t))
		}
	}
	sort.Ints(tags)
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = typeNames[Type(t)]
	}
	return names
}
