package graph

import (
	"fmt"
	"sort"

	"github.com/teranos/atomspace/atom"
	"github.com/teranos/atomspace/chase"
)

// nodeID is the graph ID of an atom
func nodeID(h atom.Handle) string {
	return h.String()
}

// nodeLabel shows nodes by name and links in their rendered form
func nodeLabel(a *atom.Atom) string {
	if a.IsLink() || a.Name == "" {
		return a.String()
	}
	return a.Name
}

// edgeType names an edge by link type. Non-binary position pairs are
// appended so EvaluationLink[1:2] and EvaluationLink[0:1] stay apart.
func edgeType(s Step) string {
	lo, hi := min(s.From, s.To), max(s.From, s.To)
	if lo == chase.First && hi == chase.Second {
		return s.LinkType.String()
	}
	return fmt.Sprintf("%s[%d:%d]", s.LinkType, lo, hi)
}

func newNode(a *atom.Atom, depth int) *Node {
	n := &Node{
		ID:      nodeID(a.Handle),
		Type:    a.Type.String(),
		Label:   nodeLabel(a),
		Visible: true,
		Group:   int(a.Type),
		Metadata: map[string]interface{}{
			"handle": uint64(a.Handle),
			"depth":  depth,
		},
	}
	if a.IsLink() {
		n.Metadata["arity"] = a.Arity()
	}
	return n
}

// collectNodeTypeInfo counts nodes per atom type, most common first
func collectNodeTypeInfo(nodes []Node) []NodeTypeInfo {
	counts := make(map[string]int)
	groups := make(map[string]atom.Type)
	for _, n := range nodes {
		counts[n.Type]++
		groups[n.Type] = atom.Type(n.Group)
	}

	infos := make([]NodeTypeInfo, 0, len(counts))
	for name, count := range counts {
		color, ok := typeColors[groups[name]]
		if !ok {
			color = defaultNodeColor
		}
		infos = append(infos, NodeTypeInfo{Type: name, Label: name, Color: color, Count: count})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Count != infos[j].Count {
			return infos[i].Count > infos[j].Count
		}
		return infos[i].Type < infos[j].Type
	})
	return infos
}

// collectRelationshipTypeInfo counts edges per edge type, most common first
func collectRelationshipTypeInfo(links []Link) []RelationshipTypeInfo {
	counts := make(map[string]int)
	for _, l := range links {
		counts[l.Type]++
	}

	infos := make([]RelationshipTypeInfo, 0, len(counts))
	for name, count := range counts {
		infos = append(infos, RelationshipTypeInfo{Type: name, Label: name, Count: count})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Count != infos[j].Count {
			return infos[i].Count > infos[j].Count
		}
		return infos[i].Type < infos[j].Type
	})
	return infos
}
