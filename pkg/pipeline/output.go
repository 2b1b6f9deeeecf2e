package pipeline

import (
	"github.com/callscape/callscape/pkg/classify"
	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/layout"
	"github.com/callscape/callscape/pkg/scale"
)

// buildPositioned assembles the render-ready output: dense node IDs in graph
// order, classified layers, styles, coordinates, execution sequence, and
// risk-annotated edges. In aggregated mode the meta marker carries the file
// and edge counts.
func buildPositioned(g *graph.Graph, seq map[string]int, res layout.Result, mode scale.Mode, traced bool) graph.Positioned {
	out := graph.Positioned{
		Nodes: make([]graph.PositionedNode, 0, g.NodeCount()),
		Edges: make([]graph.PositionedEdge, 0, g.EdgeCount()),
	}

	ids := make(map[string]int, g.NodeCount())
	for i, s := range g.Symbols() {
		ids[s.Name] = i
		layers := classify.Node(s)
		style := classify.Style(layers.Physical)
		pos := res.Positions[s.Name]

		hits := graph.MetaInt(s.Meta, graph.MetaHits)
		node := graph.PositionedNode{
			ID:    i,
			Title: s.Name,
			X:     pos.X,
			Y:     pos.Y,
			Type:  string(s.Kind),
			Style: &style,
			LayerInfo: graph.LayerInfo{
				Physical: layers.Physical,
				Logical:  layers.Logical,
			},
			Params: graph.NodeParams{
				File:      s.File,
				Line:      s.Line,
				Doc:       graph.MetaString(s.Meta, graph.MetaDoc),
				FuncCount: graph.MetaInt(s.Meta, graph.MetaFuncCount),
				Status:    s.Status,
				Hits:      hits,
				IsDead:    traced && s.IsCallable() && hits == 0,
				ExecSeq:   seq[s.Name],
			},
		}
		out.Nodes = append(out.Nodes, node)
	}

	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, graph.PositionedEdge{
			Source: ids[e.Source],
			Target: ids[e.Target],
			Type:   string(e.Type),
			Weight: e.Weight,
			Risk:   e.Risk,
			Status: e.Status,
		})
	}

	if mode == scale.AggregatedMode {
		out.Meta = &graph.OutputMeta{
			Mode:      graph.AggregatedMode,
			FileCount: g.NodeCount(),
			EdgeCount: g.EdgeCount(),
		}
	}

	return out
}
