// Package layout turns an acyclic call graph into node coordinates.
//
// Three strategies share one entry point: strict layered (columns from
// topological generations, fully deterministic), hybrid (strict columns plus
// iterative barycenter relaxation on the Y axis), and a legacy fallback for
// small non-code graphs. Strategy selection is policy-driven by node count
// unless the caller pins one explicitly.
package layout

import (
	"fmt"
	"math"

	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/graph/transform"
)

// Strategy names a layout algorithm.
type Strategy string

const (
	// StrategyStrict is the deterministic layered layout.
	StrategyStrict Strategy = "strict"

	// StrategyHybrid is layered X with barycenter-relaxed Y.
	StrategyHybrid Strategy = "hybrid"

	// StrategyLegacy is the generation-row / spring fallback for small
	// non-code graphs.
	StrategyLegacy Strategy = "legacy"

	// StrategyAuto selects by node count.
	StrategyAuto Strategy = ""
)

// Node-count thresholds for automatic strategy selection.
const (
	// StrictThreshold is the node count above which only strict layout runs.
	StrictThreshold = 200

	// PrecisionThreshold is the node count below which hybrid layout gets the
	// higher iteration budget.
	PrecisionThreshold = 50

	// CoarseIterations is the hybrid relaxation budget for mid-sized graphs.
	CoarseIterations = 50

	// PreciseIterations is the hybrid relaxation budget for small graphs.
	PreciseIterations = 100
)

// Geometry defaults, in pixels.
const (
	DefaultNodeWidth  = 250.0
	DefaultNodeHeight = 100.0
	DefaultHGap       = 100.0
	DefaultVGap       = 80.0

	// OriginOffset is the small positive margin the batch is shifted to
	// after layout so no coordinate is negative.
	OriginOffset = 100.0
)

// Size is a per-node dimension override.
type Size struct {
	Width  float64
	Height float64
}

// Config carries the geometry and policy knobs for one layout run.
// The zero value selects all defaults.
type Config struct {
	NodeWidth  float64 // default DefaultNodeWidth
	NodeHeight float64 // default DefaultNodeHeight
	HGap       float64 // horizontal gap between columns, default DefaultHGap
	VGap       float64 // vertical gap between stacked nodes, default DefaultVGap
	MinSpacing float64 // extra floor on the vertical gap

	// Strategy pins an algorithm; StrategyAuto selects by node count.
	Strategy Strategy

	// Iterations overrides the relaxation budget (hybrid and legacy spring
	// only). Zero means the policy default.
	Iterations int

	// Sizes holds per-node dimension overrides keyed by symbol name.
	Sizes map[string]Size
}

func (c Config) withDefaults() Config {
	if c.NodeWidth <= 0 {
		c.NodeWidth = DefaultNodeWidth
	}
	if c.NodeHeight <= 0 {
		c.NodeHeight = DefaultNodeHeight
	}
	if c.HGap <= 0 {
		c.HGap = DefaultHGap
	}
	if c.VGap <= 0 {
		c.VGap = DefaultVGap
	}
	if c.MinSpacing > 0 && c.VGap < c.MinSpacing {
		c.VGap = c.MinSpacing
	}
	return c
}

func (c Config) size(name string) Size {
	if s, ok := c.Sizes[name]; ok {
		if s.Width <= 0 {
			s.Width = c.NodeWidth
		}
		if s.Height <= 0 {
			s.Height = c.NodeHeight
		}
		return s
	}
	return Size{Width: c.NodeWidth, Height: c.NodeHeight}
}

// Point is one node's final coordinate.
type Point struct {
	X float64
	Y float64
}

// Result is the output of one layout run.
type Result struct {
	// Positions maps symbol name to final coordinates. Every node of the
	// input graph is present.
	Positions map[string]Point

	// Strategy is the algorithm that actually ran.
	Strategy Strategy

	// RemovedEdges lists the edges dropped to obtain the acyclic projection
	// (self-loops and cycle-closing edges).
	RemovedEdges []graph.CallEdge

	// Warnings lists recoverable layout defects, currently overlaps between
	// two locked nodes that collision resolution was not allowed to move.
	Warnings []string
}

// Compute lays out g and returns final positions for every node.
//
// The graph is projected to an acyclic working copy first (self-loops
// dropped, cycles broken); g itself is never mutated. Coordinates are
// normalized so the minimum of the batch sits at OriginOffset.
func Compute(g *graph.Graph, cfg Config) Result {
	cfg = cfg.withDefaults()
	work, removed := transform.AcyclicProjection(g)

	strategy := PickStrategy(g.NodeCount(), cfg.Strategy)

	var res Result
	switch strategy {
	case StrategyHybrid:
		res = hybrid(work, cfg, hybridIterations(g.NodeCount(), cfg.Iterations))
	case StrategyLegacy:
		res = legacy(work, g, cfg)
	default:
		res = Result{Positions: strict(work, cfg), Strategy: StrategyStrict}
	}

	res.RemovedEdges = removed
	normalize(res.Positions)
	return res
}

// PickStrategy resolves StrategyAuto to the algorithm the node-count policy
// selects; a pinned strategy passes through unchanged. Callers that report a
// strategy without running a layout, such as a cache hit, use this to name
// the algorithm that produced the stored result.
func PickStrategy(nodeCount int, s Strategy) Strategy {
	if s != StrategyAuto {
		return s
	}
	if nodeCount > StrictThreshold {
		return StrategyStrict
	}
	return StrategyHybrid
}

func hybridIterations(nodeCount, override int) int {
	if override > 0 {
		return override
	}
	if nodeCount < PrecisionThreshold {
		return PreciseIterations
	}
	return CoarseIterations
}

// normalize shifts all positions so the batch minimum lands at OriginOffset
// on both axes. Negative canvas coordinates confuse downstream surfaces.
func normalize(positions map[string]Point) {
	if len(positions) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range positions {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
	}
	for name, p := range positions {
		positions[name] = Point{X: p.X - minX + OriginOffset, Y: p.Y - minY + OriginOffset}
	}
}

func lockedOverlapWarning(a, b string) string {
	return fmt.Sprintf("locked nodes %q and %q overlap; both are pinned, overlap left unresolved", a, b)
}
