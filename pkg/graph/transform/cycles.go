package transform

import "github.com/callscape/callscape/pkg/graph"

// FindCycle returns the node sequence of one directed cycle in g, or nil if
// the graph is acyclic. The sequence lists the nodes in cycle order; the
// closing edge runs from the last element back to the first. Self-loops are
// reported as single-element cycles.
//
// Detection uses depth-first search with white/gray/black coloring, seeded
// from source nodes first and then from any remaining unvisited node, so the
// result is deterministic for a given insertion order.
func FindCycle(g *graph.Graph) []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var stack []string
	var cycle []string

	var dfs func(node string) bool
	dfs = func(node string) bool {
		color[node] = gray
		stack = append(stack, node)
		for _, succ := range g.Successors(node) {
			switch color[succ] {
			case white:
				if dfs(succ) {
					return true
				}
			case gray:
				// Found a back edge: slice the stack from the first
				// occurrence of succ to the current node.
				for i, n := range stack {
					if n == succ {
						cycle = append(cycle, stack[i:]...)
						return true
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
		return false
	}

	for _, s := range g.Sources() {
		if color[s.Name] == white && dfs(s.Name) {
			return cycle
		}
	}
	for _, name := range g.Names() {
		if color[name] == white && dfs(name) {
			return cycle
		}
	}
	return nil
}

// BreakCycles removes edges from g until it is acyclic and returns the
// removed edges. Each iteration finds one cycle and removes its closing edge
// (the back edge from the cycle's last node to its first), matching the
// ordering engine's "break the last edge" policy.
//
// BreakCycles mutates g. Callers that need to preserve the original graph
// must pass a clone - the pipeline always does.
func BreakCycles(g *graph.Graph) []graph.CallEdge {
	var removed []graph.CallEdge
	for {
		cycle := FindCycle(g)
		if cycle == nil {
			return removed
		}
		from := cycle[len(cycle)-1]
		to := cycle[0]
		for _, e := range g.Edges() {
			if e.Source == from && e.Target == to {
				removed = append(removed, e)
				break
			}
		}
		g.RemoveEdge(from, to)
	}
}
