// Package ingest seeds an atom store from a YAML document.
//
//	nodes:
//	  - {type: ConceptNode, name: a}
//	  - {type: ConceptNode, name: b}
//	links:
//	  - {type: InheritanceLink, members: [a, b]}
//	  - {type: ListLink, members: ["#0", b]}
//
// A member is either a node name declared under nodes or "#<index>" naming
// an earlier entry under links.
package ingest

import (
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/errors"
)

// Document is the YAML seed format.
type Document struct {
	Nodes []NodeSpec `yaml:"nodes"`
	Links []LinkSpec `yaml:"links"`
}

// NodeSpec declares one node. Names must be unique within a document.
type NodeSpec struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// LinkSpec declares one link by its members in position order.
type LinkSpec struct {
	Type    string   `yaml:"type"`
	Members []string `yaml:"members"`
}

// Result maps the document's names and link indices to store handles.
type Result struct {
	Nodes map[string]atom.Handle `json:"nodes"`
	Links []atom.Handle          `json:"links"`
}

// Parse decodes a seed document, rejecting unknown keys.
// An empty input is an empty document.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.WithHint(
			errors.Wrap(errors.WithSecondaryError(errors.ErrInvalidRequest, err), "parse seed document"),
			"expected top-level 'nodes' and 'links' lists")
	}
	return &doc, nil
}

// Load parses a seed document and adds its atoms to dst.
// Atoms already present in dst are reused, so loading twice is harmless.
func Load(r io.Reader, dst atom.Builder) (Result, error) {
	doc, err := Parse(r)
	if err != nil {
		return Result{}, err
	}
	return Apply(doc, dst)
}

// Apply adds the atoms of doc to dst. Nodes go first, then links in
// document order. It stops at the first failure; atoms added before it stay.
func Apply(doc *Document, dst atom.Builder) (Result, error) {
	res := Result{
		Nodes: make(map[string]atom.Handle, len(doc.Nodes)),
		Links: make([]atom.Handle, 0, len(doc.Links)),
	}

	for i, n := range doc.Nodes {
		t, err := parseType(n.Type, atom.Type.IsNode)
		if err != nil {
			return res, errors.Wrapf(err, "node %d", i)
		}
		if n.Name == "" {
			return res, errors.NewInvalidRequestError("node %d: missing name", i)
		}
		if _, dup := res.Nodes[n.Name]; dup {
			return res, errors.WithHint(
				errors.NewInvalidRequestError("node %d: name %q declared twice", i, n.Name),
				"member references are by name, so node names must be unique in a document")
		}
		h, err := dst.AddNode(t, n.Name)
		if err != nil {
			return res, errors.Wrapf(err, "node %d (%s %q)", i, t, n.Name)
		}
		res.Nodes[n.Name] = h
	}

	for i, l := range doc.Links {
		t, err := parseType(l.Type, atom.Type.IsLink)
		if err != nil {
			return res, errors.Wrapf(err, "link %d", i)
		}
		outgoing := make([]atom.Handle, len(l.Members))
		for pos, ref := range l.Members {
			if outgoing[pos], err = res.resolve(ref); err != nil {
				return res, errors.Wrapf(err, "link %d member %d", i, pos)
			}
		}
		h, err := dst.AddLink(t, outgoing...)
		if err != nil {
			return res, errors.Wrapf(err, "link %d (%s)", i, t)
		}
		res.Links = append(res.Links, h)
	}

	return res, nil
}

func parseType(name string, kind func(atom.Type) bool) (atom.Type, error) {
	t, err := atom.ParseType(name)
	if err != nil {
		return atom.NoType, err
	}
	if !kind(t) {
		return atom.NoType, errors.NewInvalidRequestError("%s is the wrong kind of type here", t)
	}
	return t, nil
}

func (r *Result) resolve(ref string) (atom.Handle, error) {
	if idx, ok := strings.CutPrefix(ref, "#"); ok {
		i, err := strconv.Atoi(idx)
		if err != nil || i < 0 {
			return atom.UndefinedHandle, errors.NewInvalidRequestError("bad link reference %q", ref)
		}
		if i >= len(r.Links) {
			return atom.UndefinedHandle, errors.WithHint(
				errors.NewInvalidRequestError("link reference %q is not declared yet", ref),
				"a link may only reference links listed before it")
		}
		return r.Links[i], nil
	}
	if h, ok := r.Nodes[ref]; ok {
		return h, nil
	}
	return atom.UndefinedHandle, errors.NewInvalidRequestError("unknown node %q", ref)
}
