package graph

import (
	"time"
)

// Graph is a neighbourhood of the atomspace in a D3-friendly shape
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	Meta  Meta   `json:"meta"`
}

// Node is one atom of the neighbourhood
type Node struct {
	ID       string                 `json:"id"`    // Atom handle, e.g. "#3"
	Type     string                 `json:"type"`  // Atom type name
	Label    string                 `json:"label"` // Node name, or the rendered link
	Visible  bool                   `json:"visible"`
	Group    int                    `json:"group,omitempty"` // Atom type tag, for coloring
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Link is an edge found by chasing one or more atomspace links
type Link struct {
	Source string  `json:"source"` // Node ID
	Target string  `json:"target"` // Node ID
	Type   string  `json:"type"`   // Link type, with positions when not binary
	Weight float64 `json:"value"`  // D3 uses "value"
	Label  string  `json:"label,omitempty"`
}

// Meta describes how the graph was produced
type Meta struct {
	GeneratedAt       time.Time              `json:"generated_at"`
	Stats             Stats                  `json:"stats"`
	Config            map[string]string      `json:"config"`
	NodeTypes         []NodeTypeInfo         `json:"node_types"`
	RelationshipTypes []RelationshipTypeInfo `json:"relationship_types"`
}

// NodeTypeInfo is a legend entry for an atom type present in the graph
type NodeTypeInfo struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
	Count int    `json:"count,omitempty"`
}

// RelationshipTypeInfo is a legend entry for an edge type present in the graph
type RelationshipTypeInfo struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Count int    `json:"count,omitempty"`
}

// Stats provides graph statistics
type Stats struct {
	TotalNodes int `json:"total_nodes,omitempty"`
	TotalEdges int `json:"total_edges,omitempty"`
}
