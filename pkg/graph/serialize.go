package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Resolved Graph Serialization
// =============================================================================

// Serialized is the canonical interchange format for a resolved (but not yet
// positioned) call graph. It is what `callscape build --stage resolve` emits
// and what `callscape layout` consumes, and it round-trips: import →
// transform → export → re-import produces identical results.
type Serialized struct {
	Nodes []SerializedNode `json:"nodes" bson:"nodes"`
	Edges []SerializedEdge `json:"edges" bson:"edges"`
}

// SerializedNode is the wire form of a Symbol.
type SerializedNode struct {
	Name   string         `json:"name" bson:"name"`
	File   string         `json:"file,omitempty" bson:"file,omitempty"`
	Line   int            `json:"lineno,omitempty" bson:"lineno,omitempty"`
	Kind   string         `json:"kind,omitempty" bson:"kind,omitempty"`
	Layer  string         `json:"layer,omitempty" bson:"layer,omitempty"`
	Status string         `json:"_status,omitempty" bson:"status,omitempty"`
	Locked bool           `json:"locked,omitempty" bson:"locked,omitempty"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// SerializedEdge is the wire form of a CallEdge.
type SerializedEdge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Type   string `json:"type,omitempty" bson:"type,omitempty"`
	Weight int    `json:"weight,omitempty" bson:"weight,omitempty"`
	Risk   string `json:"risk,omitempty" bson:"risk,omitempty"`
	Status string `json:"_status,omitempty" bson:"status,omitempty"`
}

// Export converts a Graph to its serialization format.
// Nodes keep insertion order so that re-import preserves declaration order.
func Export(g *Graph) Serialized {
	out := Serialized{
		Nodes: make([]SerializedNode, 0, g.NodeCount()),
		Edges: make([]SerializedEdge, 0, g.EdgeCount()),
	}
	for _, s := range g.Symbols() {
		out.Nodes = append(out.Nodes, SerializedNode{
			Name:   s.Name,
			File:   s.File,
			Line:   s.Line,
			Kind:   string(s.Kind),
			Layer:  s.Layer,
			Status: string(s.Status),
			Locked: s.Locked,
			Meta:   s.Meta,
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, SerializedEdge{
			Source: e.Source,
			Target: e.Target,
			Type:   string(e.Type),
			Weight: e.Weight,
			Risk:   string(e.Risk),
			Status: string(e.Status),
		})
	}
	return out
}

// Import converts a Serialized back into a Graph.
// Returns an error if names are empty, duplicated, or edges dangle.
func Import(sg Serialized) (*Graph, error) {
	g := New()
	for _, n := range sg.Nodes {
		s := Symbol{
			Name:   n.Name,
			File:   n.File,
			Line:   n.Line,
			Kind:   SymbolKind(n.Kind),
			Layer:  n.Layer,
			Status: Status(n.Status),
			Locked: n.Locked,
			Meta:   n.Meta,
		}
		if err := g.AddSymbol(s); err != nil {
			return nil, fmt.Errorf("add symbol %q: %w", n.Name, err)
		}
	}
	for _, e := range sg.Edges {
		edge := CallEdge{
			Source: e.Source,
			Target: e.Target,
			Type:   EdgeType(e.Type),
			Weight: e.Weight,
			Risk:   Risk(e.Risk),
			Status: Status(e.Status),
		}
		if edge.Type == "" {
			edge.Type = EdgeCall
		}
		if err := g.AddEdge(edge); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", e.Source, e.Target, err)
		}
	}
	return g, nil
}

// Marshal converts a Graph to indented JSON bytes.
func Marshal(g *Graph) ([]byte, error) {
	return json.MarshalIndent(Export(g), "", "  ")
}

// Write writes a Graph as JSON to an io.Writer.
func Write(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(g)); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// WriteFile writes a Graph to a JSON file with 0644 permissions.
func WriteFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Read decodes a JSON graph from an io.Reader.
func Read(r io.Reader) (*Graph, error) {
	var sg Serialized
	if err := json.NewDecoder(r).Decode(&sg); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return Import(sg)
}

// ReadFile reads a JSON file and returns the decoded Graph.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
