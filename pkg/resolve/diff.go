package resolve

import "github.com/callscape/callscape/pkg/graph"

// MergeGraphs combines two resolver outputs, current and previous, into one
// graph annotated with lifecycle status. Names only in current are added,
// names only in previous are removed, names in both are unchanged with
// current's attributes winning. The same rule applies to edges keyed by
// (source, target).
//
// Node order is current's declaration order followed by removed nodes in
// previous's order, so unchanged ordering guarantees carry over from current.
func MergeGraphs(current, previous *graph.Graph) *graph.Graph {
	merged := graph.New()

	for _, s := range current.Symbols() {
		sym := *s
		sym.Meta = copyMeta(s.Meta)
		if previous.Has(s.Name) {
			sym.Status = graph.StatusUnchanged
		} else {
			sym.Status = graph.StatusAdded
		}
		_ = merged.AddSymbol(sym)
	}
	for _, s := range previous.Symbols() {
		if merged.Has(s.Name) {
			continue
		}
		sym := *s
		sym.Meta = copyMeta(s.Meta)
		sym.Status = graph.StatusRemoved
		_ = merged.AddSymbol(sym)
	}

	prevEdges := edgeIndex(previous)
	currEdges := edgeIndex(current)

	for _, e := range current.Edges() {
		edge := e
		if _, ok := prevEdges[[2]string{e.Source, e.Target}]; ok {
			edge.Status = graph.StatusUnchanged
		} else {
			edge.Status = graph.StatusAdded
		}
		_ = merged.AddEdge(edge)
	}
	for _, e := range previous.Edges() {
		if _, ok := currEdges[[2]string{e.Source, e.Target}]; ok {
			continue
		}
		edge := e
		edge.Status = graph.StatusRemoved
		_ = merged.AddEdge(edge)
	}

	return merged
}

func edgeIndex(g *graph.Graph) map[[2]string]graph.CallEdge {
	idx := make(map[[2]string]graph.CallEdge, g.EdgeCount())
	for _, e := range g.Edges() {
		key := [2]string{e.Source, e.Target}
		if _, ok := idx[key]; !ok {
			idx[key] = e
		}
	}
	return idx
}

func copyMeta(m graph.Metadata) graph.Metadata {
	out := make(graph.Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
