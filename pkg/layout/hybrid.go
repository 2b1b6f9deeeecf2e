package layout

import (
	"sort"

	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/graph/transform"
)

// relaxDamping is the per-iteration pull factor toward the neighbor
// barycenter. 0.5 keeps the relaxation stable without over-shooting.
const relaxDamping = 0.5

// hybrid computes the layered-plus-relaxation layout.
//
// X is fixed per column exactly as in the strict layout, which guarantees
// left-to-right flow regardless of how many iterations run. Y starts from
// the strict stacking and is then relaxed: each unlocked node is pulled
// toward the mean Y of its direct predecessors and successors, damped per
// iteration. After every pass each column is re-sorted by current Y and a
// pairwise sweep restores the minimum vertical gap. Locked nodes never move;
// a colliding pair of two locked nodes is reported as a warning and left
// overlapping.
//
// The iteration budget is fixed, not convergence-driven, so the result is
// deterministic for a given input.
func hybrid(g *graph.Graph, cfg Config, iterations int) Result {
	positions := strict(g, cfg)
	columns := transform.Generations(g)

	locked := make(map[string]bool, g.NodeCount())
	for _, s := range g.Symbols() {
		locked[s.Name] = s.Locked
	}

	warned := make(map[[2]string]bool)
	var warnings []string

	for iter := 0; iter < iterations; iter++ {
		for _, name := range g.Names() {
			if locked[name] {
				continue
			}
			sum, n := 0.0, 0
			for _, pred := range g.Predecessors(name) {
				sum += positions[pred].Y
				n++
			}
			for _, succ := range g.Successors(name) {
				sum += positions[succ].Y
				n++
			}
			if n == 0 {
				continue
			}
			p := positions[name]
			p.Y += (sum/float64(n) - p.Y) * relaxDamping
			positions[name] = p
		}

		for _, column := range columns {
			resolveColumn(column, positions, cfg, locked, func(a, b string) {
				key := [2]string{a, b}
				if !warned[key] {
					warned[key] = true
					warnings = append(warnings, lockedOverlapWarning(a, b))
				}
			})
		}
	}

	return Result{Positions: positions, Strategy: StrategyHybrid, Warnings: warnings}
}

// resolveColumn re-sorts one column by current Y and sweeps pairwise,
// enforcing a minimum gap of half the two heights plus the vertical gap.
// The later node is pushed down when movable, else the earlier node is
// pushed up. Two locked neighbors stay overlapping and are reported.
func resolveColumn(column []string, positions map[string]Point, cfg Config, locked map[string]bool, onLockedOverlap func(a, b string)) {
	ordered := make([]string, len(column))
	copy(ordered, column)
	sort.SliceStable(ordered, func(i, j int) bool {
		return positions[ordered[i]].Y < positions[ordered[j]].Y
	})

	for i := 0; i+1 < len(ordered); i++ {
		upper, lower := ordered[i], ordered[i+1]
		minGap := (cfg.size(upper).Height+cfg.size(lower).Height)/2 + cfg.VGap
		gap := positions[lower].Y - positions[upper].Y
		if gap >= minGap {
			continue
		}
		switch {
		case !locked[lower]:
			p := positions[lower]
			p.Y = positions[upper].Y + minGap
			positions[lower] = p
		case !locked[upper]:
			p := positions[upper]
			p.Y = positions[lower].Y - minGap
			positions[upper] = p
		default:
			onLockedOverlap(upper, lower)
		}
	}
}
