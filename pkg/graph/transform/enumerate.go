package transform

import "github.com/callscape/callscape/pkg/graph"

// SimpleCycles enumerates the simple cycles of g as node sequences, in
// deterministic order. Enumeration is attempted only when the edge count is
// at or below maxEdges; larger graphs return nil immediately. Skipping is a
// documented accuracy/performance tradeoff: simple-cycle enumeration has no
// useful worst-case bound, and above the threshold downstream consumers see
// an empty cycle set rather than a stalled pipeline.
//
// Self-loops are reported as single-node cycles. The input graph is not
// mutated.
func SimpleCycles(g *graph.Graph, maxEdges int) [][]string {
	if g.EdgeCount() > maxEdges {
		return nil
	}

	names := g.Names()
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	var cycles [][]string
	onPath := make(map[string]bool)
	var path []string

	// Tiernan-style search: cycles are rooted at their lowest-index node,
	// and the walk never descends below the root's index, so each simple
	// cycle is found exactly once.
	var dfs func(root, node string)
	dfs = func(root, node string) {
		onPath[node] = true
		path = append(path, node)
		seen := make(map[string]bool)
		for _, succ := range g.Successors(node) {
			if seen[succ] {
				continue // parallel edge, same cycle
			}
			seen[succ] = true
			if succ == root {
				cycle := make([]string, len(path))
				copy(cycle, path)
				cycles = append(cycles, cycle)
				continue
			}
			if index[succ] > index[root] && !onPath[succ] {
				dfs(root, succ)
			}
		}
		path = path[:len(path)-1]
		onPath[node] = false
	}

	for _, root := range names {
		dfs(root, root)
	}
	return cycles
}

// CycleEdgeSet collapses enumerated cycles into the set of directed edges
// that participate in at least one cycle, keyed source→target. These are the
// edges the pipeline tags high risk.
func CycleEdgeSet(cycles [][]string) map[[2]string]bool {
	set := make(map[[2]string]bool)
	for _, cycle := range cycles {
		for i := range cycle {
			u := cycle[i]
			v := cycle[(i+1)%len(cycle)]
			set[[2]string{u, v}] = true
		}
	}
	return set
}
