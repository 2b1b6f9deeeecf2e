package layout

import (
	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/graph/transform"
)

// strict computes the deterministic layered layout: topological generations
// become columns, nodes stack vertically in declaration order, column width
// follows the widest node in the column plus the horizontal gap.
//
// Every edge of the acyclic input spans at least one column boundary, so
// source.x < target.x holds for all edges. O(n + e).
func strict(g *graph.Graph, cfg Config) map[string]Point {
	positions := make(map[string]Point, g.NodeCount())
	x := 0.0
	for _, column := range transform.Generations(g) {
		maxWidth := 0.0
		y := 0.0
		for _, name := range column {
			sz := cfg.size(name)
			positions[name] = Point{X: x, Y: y}
			y += sz.Height + cfg.VGap
			if sz.Width > maxWidth {
				maxWidth = sz.Width
			}
		}
		x += maxWidth + cfg.HGap
	}
	return positions
}
