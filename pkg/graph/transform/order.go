package transform

import (
	"sort"

	"github.com/callscape/callscape/pkg/graph"
)

// ExecutionOrder computes a 1-based execution sequence number for every node.
//
// The graph is cloned, self-loops are dropped, cycles are broken one back
// edge at a time ([BreakCycles]), and a Kahn topological sort assigns
// sequence numbers in sort order. The input graph is never mutated.
//
// If the sort cannot cover every node, the fallback orders all nodes by
// ascending in-degree (ties broken by insertion order). The second return
// value is false on the fallback path: the ordering is deterministic but
// carries no DAG guarantees, and callers must not assume source-before-target.
func ExecutionOrder(g *graph.Graph) (map[string]int, bool) {
	work := acyclicCopy(g)

	order := kahnOrder(work)
	if len(order) == work.NodeCount() {
		seq := make(map[string]int, len(order))
		for i, name := range order {
			seq[name] = i + 1
		}
		return seq, true
	}

	// Fallback: ascending in-degree is a stable proxy for execution depth.
	names := g.Names()
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	sort.SliceStable(names, func(i, j int) bool {
		di, dj := g.InDegree(names[i]), g.InDegree(names[j])
		if di != dj {
			return di < dj
		}
		return index[names[i]] < index[names[j]]
	})
	seq := make(map[string]int, len(names))
	for i, name := range names {
		seq[name] = i + 1
	}
	return seq, false
}

// AcyclicProjection returns a copy of g with self-loops dropped and cycles
// broken, plus the edges that were removed. Layout strategies operate on the
// projection; the input graph is never mutated.
func AcyclicProjection(g *graph.Graph) (*graph.Graph, []graph.CallEdge) {
	work := g.Clone()
	var dropped []graph.CallEdge
	for _, e := range work.Edges() {
		if e.IsSelfLoop() {
			dropped = append(dropped, e)
			work.RemoveEdge(e.Source, e.Target)
		}
	}
	dropped = append(dropped, BreakCycles(work)...)
	return work, dropped
}

// acyclicCopy is AcyclicProjection without the removed-edge bookkeeping.
func acyclicCopy(g *graph.Graph) *graph.Graph {
	work, _ := AcyclicProjection(g)
	return work
}

// kahnOrder runs a standard Kahn topological sort over g and returns node
// names in sort order. If g still contains a cycle, the result covers fewer
// nodes than the graph holds.
func kahnOrder(g *graph.Graph) []string {
	names := g.Names()
	inDegree := make(map[string]int, len(names))
	queue := make([]string, 0, len(names))

	for _, name := range names {
		degree := g.InDegree(name)
		inDegree[name] = degree
		if degree == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(names))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, succ := range g.Successors(curr) {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}
	return order
}

// Generations groups nodes into topological generations: generation 0 holds
// all nodes with no predecessors, generation n+1 holds nodes whose
// predecessors all sit in generations <= n. Within a generation, nodes keep
// insertion order. Nodes trapped in residual cycles (possible only when the
// caller skipped cycle breaking) are collected into one final generation so
// no node is ever lost.
func Generations(g *graph.Graph) [][]string {
	names := g.Names()
	inDegree := make(map[string]int, len(names))
	for _, name := range names {
		inDegree[name] = g.InDegree(name)
	}

	placed := make(map[string]bool, len(names))
	var generations [][]string

	current := make([]string, 0)
	for _, name := range names {
		if inDegree[name] == 0 {
			current = append(current, name)
		}
	}

	for len(current) > 0 {
		generations = append(generations, current)
		next := make([]string, 0)
		ready := make(map[string]bool)
		for _, name := range current {
			placed[name] = true
			for _, succ := range g.Successors(name) {
				inDegree[succ]--
				if inDegree[succ] == 0 && !ready[succ] {
					ready[succ] = true
				}
			}
		}
		// Collect in insertion order for determinism.
		for _, name := range names {
			if ready[name] && !placed[name] {
				next = append(next, name)
			}
		}
		current = next
	}

	var residual []string
	for _, name := range names {
		if !placed[name] {
			residual = append(residual, name)
		}
	}
	if len(residual) > 0 {
		generations = append(generations, residual)
	}
	return generations
}
