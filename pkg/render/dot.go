// Package render converts positioned graphs into visual artifacts.
// DOT export is the primary path; SVG and PNG rendering go through Graphviz.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/callscape/callscape/pkg/classify"
	"github.com/callscape/callscape/pkg/graph"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes file, line, and execution sequence in node labels.
	// When false, only the symbol name is shown.
	Detailed bool

	// Pinned emits the computed coordinates as pos attributes so Graphviz's
	// neato engine reproduces the pipeline's layout instead of its own.
	Pinned bool
}

// ToDOT converts a positioned graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [SVG] or [PNG].
//
// Node fill and border colors follow the classifier's style key, edge colors
// its edge categories; removed elements render dashed.
func ToDOT(p graph.Positioned, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph callgraph {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range p.Nodes {
		attrs := nodeAttrs(n, opts)
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	layers := make([]classify.Layers, len(p.Nodes))
	for i, n := range p.Nodes {
		layers[i] = classify.Layers{Physical: n.LayerInfo.Physical, Logical: n.LayerInfo.Logical}
	}

	buf.WriteString("\n")
	for _, e := range p.Edges {
		attrs := edgeAttrs(e, layers)
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.PositionedNode, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed))}
	if n.Style != nil {
		attrs = append(attrs,
			fmt.Sprintf("fillcolor=%q", n.Style.Color),
			fmt.Sprintf("color=%q", n.Style.Border))
	}
	if n.Params.Status == graph.StatusRemoved {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if n.Params.IsDead {
		attrs = append(attrs, "fontcolor=gray50")
	}
	if opts.Pinned {
		// Graphviz points run bottom-up; flip Y so the canvas matches.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.0f,%.0f!\"", n.X, -n.Y))
	}
	return attrs
}

func nodeLabel(n graph.PositionedNode, detailed bool) string {
	if !detailed {
		return n.Title
	}
	parts := []string{n.Title}
	if n.Params.File != "" {
		parts = append(parts, fmt.Sprintf("%s:%d", n.Params.File, n.Params.Line))
	}
	if n.Params.ExecSeq > 0 {
		parts = append(parts, fmt.Sprintf("seq: %d", n.Params.ExecSeq))
	}
	return strings.Join(parts, "\n")
}

// edgeColors maps classifier edge categories to stroke colors. Default-category
// edges keep Graphviz's own default and get no color attribute.
var edgeColors = map[string]string{
	classify.EdgeCycle:      "red",
	classify.EdgeContains:   "gray70",
	classify.EdgeModuleFlow: "gray40",
	classify.EdgeDataFlow:   "#2196F3",
}

func edgeAttrs(e graph.PositionedEdge, layers []classify.Layers) []string {
	var attrs []string
	category := classify.EdgeDefault
	if e.Source >= 0 && e.Source < len(layers) && e.Target >= 0 && e.Target < len(layers) {
		category = classify.Edge(graph.CallEdge{Type: graph.EdgeType(e.Type), Risk: e.Risk}, layers[e.Source], layers[e.Target])
	}
	if color, ok := edgeColors[category]; ok {
		attrs = append(attrs, fmt.Sprintf("color=%q", color))
	}
	if e.Status == graph.StatusRemoved {
		attrs = append(attrs, "style=dashed")
	}
	if e.Weight > 1 {
		attrs = append(attrs, fmt.Sprintf("label=\"x%d\"", e.Weight), fmt.Sprintf("penwidth=%.1f", edgeWidth(e.Weight)))
	}
	return attrs
}

// edgeWidth maps an aggregated call count to a stroke width, capped so hot
// paths stay readable.
func edgeWidth(weight int) float64 {
	w := 1.0 + float64(weight)*0.2
	if w > 4.0 {
		w = 4.0
	}
	return w
}
