package layout

import (
	"math"
	"math/rand"
	"sort"

	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/graph/transform"
)

// Legacy fallback tuning. The spring constant scales with node count so
// small graphs spread instead of clumping at the center.
const (
	springScale      = 400.0
	springIterations = 100
	springCanvas     = 1000.0
	springSeed       = 42
)

// legacy is the fallback layout for small non-code graphs. Acyclic graphs
// get a centered generation-row layout; cyclic graphs get a generic spring
// relaxation with a fixed seed and iteration budget, so the result is still
// deterministic. work is the acyclic projection, orig the caller's graph
// (the cyclicity test must see the original edges).
func legacy(work, orig *graph.Graph, cfg Config) Result {
	if transform.FindCycle(orig) == nil {
		return Result{Positions: generationRows(work, cfg), Strategy: StrategyLegacy}
	}
	return Result{Positions: spring(orig, cfg), Strategy: StrategyLegacy}
}

// generationRows stacks topological generations as horizontal rows, each row
// centered on the vertical axis. Within a row, nodes order by the mean X of
// their predecessors so parent-child edges stay short.
func generationRows(g *graph.Graph, cfg Config) map[string]Point {
	positions := make(map[string]Point, g.NodeCount())
	y := 0.0
	for _, row := range transform.Generations(g) {
		ordered := make([]string, len(row))
		copy(ordered, row)
		sort.SliceStable(ordered, func(i, j int) bool {
			return meanPredX(g, positions, ordered[i]) < meanPredX(g, positions, ordered[j])
		})

		step := cfg.NodeWidth + cfg.HGap
		rowWidth := float64(len(ordered)-1) * step
		for i, name := range ordered {
			positions[name] = Point{X: float64(i)*step - rowWidth/2, Y: y}
		}
		y += cfg.NodeHeight + cfg.VGap
	}
	return positions
}

func meanPredX(g *graph.Graph, positions map[string]Point, name string) float64 {
	sum, n := 0.0, 0
	for _, pred := range g.Predecessors(name) {
		if p, ok := positions[pred]; ok {
			sum += p.X
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// spring is a plain force-directed relaxation: quadratic repulsion between
// all pairs, linear attraction along edges, displacement capped by a cooling
// temperature. Initial placement uses a fixed seed.
func spring(g *graph.Graph, cfg Config) map[string]Point {
	names := g.Names()
	n := len(names)
	positions := make(map[string]Point, n)
	if n == 0 {
		return positions
	}

	rng := rand.New(rand.NewSource(springSeed))
	for _, name := range names {
		positions[name] = Point{X: rng.Float64() * springCanvas, Y: rng.Float64() * springCanvas}
	}
	if n == 1 {
		return positions
	}

	k := springScale / math.Sqrt(float64(n))
	temp := springCanvas / 10

	for iter := 0; iter < springIterations; iter++ {
		disp := make(map[string]Point, n)

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, b := names[i], names[j]
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Hypot(dx, dy)
				if dist < 0.01 {
					dist = 0.01
				}
				force := k * k / dist
				fx, fy := dx/dist*force, dy/dist*force
				disp[a] = Point{X: disp[a].X + fx, Y: disp[a].Y + fy}
				disp[b] = Point{X: disp[b].X - fx, Y: disp[b].Y - fy}
			}
		}

		for _, e := range g.Edges() {
			if e.IsSelfLoop() {
				continue
			}
			dx := positions[e.Source].X - positions[e.Target].X
			dy := positions[e.Source].Y - positions[e.Target].Y
			dist := math.Hypot(dx, dy)
			if dist < 0.01 {
				dist = 0.01
			}
			force := dist * dist / k
			fx, fy := dx/dist*force, dy/dist*force
			disp[e.Source] = Point{X: disp[e.Source].X - fx, Y: disp[e.Source].Y - fy}
			disp[e.Target] = Point{X: disp[e.Target].X + fx, Y: disp[e.Target].Y + fy}
		}

		for _, name := range names {
			d := disp[name]
			dist := math.Hypot(d.X, d.Y)
			if dist < 0.01 {
				continue
			}
			limited := math.Min(dist, temp)
			p := positions[name]
			p.X += d.X / dist * limited
			p.Y += d.Y / dist * limited
			positions[name] = p
		}

		temp *= 0.95
	}
	return positions
}
