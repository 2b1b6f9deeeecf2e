package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Positioned Graph - Render-Ready Output Format
// =============================================================================

// AggregatedMode is the Meta.Mode marker for file-level aggregate output.
const AggregatedMode = "aggregated_file"

// Positioned is the render-ready output of the pipeline: classified nodes
// with final coordinates, execution sequence numbers, and risk-annotated
// edges. Node IDs are dense integers assigned by output order and are not
// stable across re-runs; edges reference nodes by these IDs.
type Positioned struct {
	Nodes []PositionedNode `json:"nodes" bson:"nodes"`
	Edges []PositionedEdge `json:"edges" bson:"edges"`

	// Meta is set only for aggregated-mode output.
	Meta *OutputMeta `json:"meta,omitempty" bson:"meta,omitempty"`
}

// IsAggregated reports whether the output is a file-level aggregate graph.
func (p *Positioned) IsAggregated() bool {
	return p.Meta != nil && p.Meta.Mode == AggregatedMode
}

// PositionedNode is one laid-out node.
type PositionedNode struct {
	ID        int        `json:"id" bson:"id"`
	Title     string     `json:"title" bson:"title"`
	X         float64    `json:"x" bson:"x"`
	Y         float64    `json:"y" bson:"y"`
	Type      string     `json:"type" bson:"type"`
	Style     *Style     `json:"style,omitempty" bson:"style,omitempty"`
	LayerInfo LayerInfo  `json:"layer_info" bson:"layer_info"`
	Params    NodeParams `json:"params" bson:"params"`
}

// LayerInfo carries the classifier's two layer assignments.
type LayerInfo struct {
	Physical string `json:"physical" bson:"physical"` // physical-stage layer key
	Logical  int    `json:"logical" bson:"logical"`   // logical-containment depth
}

// NodeParams carries per-node detail for the rendering surface.
// Underscore-prefixed JSON keys match the established output contract.
type NodeParams struct {
	File      string `json:"file" bson:"file"`
	Line      int    `json:"lineno" bson:"lineno"`
	Doc       string `json:"doc,omitempty" bson:"doc,omitempty"`
	FuncCount int    `json:"func_count,omitempty" bson:"func_count,omitempty"` // aggregated mode only
	Status    Status `json:"_status" bson:"status"`
	Hits      int    `json:"_hits" bson:"hits"`
	IsDead    bool   `json:"_is_dead" bson:"is_dead"`
	ExecSeq   int    `json:"_exec_seq" bson:"exec_seq"` // 1-based; 0 if unordered
}

// PositionedEdge is one classified edge referencing nodes by dense ID.
type PositionedEdge struct {
	Source int    `json:"source" bson:"source"`
	Target int    `json:"target" bson:"target"`
	Type   string `json:"type" bson:"type"`
	Weight int    `json:"weight" bson:"weight"`
	Risk   Risk   `json:"risk" bson:"risk"`
	Status Status `json:"_status" bson:"status"`
}

// OutputMeta marks aggregated-mode output.
type OutputMeta struct {
	Mode      string `json:"mode" bson:"mode"`
	FileCount int    `json:"file_count" bson:"file_count"`
	EdgeCount int    `json:"edge_count" bson:"edge_count"`
}

// Style is the visual style key attached to each node, derived from its
// physical layer.
type Style struct {
	Color  string `json:"color" bson:"color"`
	Border string `json:"border" bson:"border"`
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalPositioned serializes a Positioned graph to pretty-printed JSON.
func MarshalPositioned(p Positioned) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// UnmarshalPositioned deserializes JSON bytes into a Positioned graph.
// Edge endpoints are validated against the node ID range.
func UnmarshalPositioned(data []byte) (Positioned, error) {
	var p Positioned
	if err := json.Unmarshal(data, &p); err != nil {
		return Positioned{}, fmt.Errorf("unmarshal positioned graph: %w", err)
	}
	for _, e := range p.Edges {
		if e.Source < 0 || e.Source >= len(p.Nodes) || e.Target < 0 || e.Target >= len(p.Nodes) {
			return Positioned{}, fmt.Errorf("edge %d→%d references node outside id range [0,%d)", e.Source, e.Target, len(p.Nodes))
		}
	}
	return p, nil
}

// WritePositionedFile writes a Positioned graph to a JSON file.
func WritePositionedFile(p Positioned, path string) error {
	data, err := MarshalPositioned(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPositionedFile reads a Positioned graph from a JSON file.
func ReadPositionedFile(path string) (Positioned, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Positioned{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalPositioned(data)
}
