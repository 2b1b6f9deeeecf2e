// Package scale decides whether a resolved graph is small enough for
// per-symbol layout and, when it is not, collapses it to a file-level
// aggregate. Scale overruns are a routing decision, never an error: the
// pipeline always produces a graph, just at coarser resolution.
package scale

import (
	"github.com/callscape/callscape/pkg/config"
	"github.com/callscape/callscape/pkg/graph"
)

// Mode selects the resolution the pipeline operates at.
type Mode string

const (
	// FullMode lays out the per-symbol graph.
	FullMode Mode = "full"

	// AggregatedMode collapses to one node per source file.
	AggregatedMode Mode = "aggregated"
)

// Decide is a pure routing function: it picks the mode from the node and
// edge counts against the configured limits. Limits are clamped to the hard
// node cap before comparison.
func Decide(nodeCount, edgeCount int, limits config.Limits) Mode {
	limits = limits.Clamped()
	if nodeCount > limits.MaxNodes || edgeCount > limits.MaxEdges {
		return AggregatedMode
	}
	return FullMode
}

// Aggregate collapses a symbol graph to one node per distinct source file.
//
// File nodes appear in first-seen declaration order and carry the contained
// symbol count in metadata. Edges between symbols of different files become
// file_flow edges with weights summed across all underlying calls; edges
// within one file are discarded. Symbols without a file path (synthesized
// externals, overrides) group under their own name so no edge endpoint is
// lost. The aggregate exists only for the duration of one layout call and is
// never merged back into the symbol graph.
func Aggregate(g *graph.Graph) *graph.Graph {
	out := graph.New()

	bucket := make(map[string]string, g.NodeCount()) // symbol name -> file node name
	count := make(map[string]int)
	var order []string

	for _, s := range g.Symbols() {
		file := s.File
		if file == "" {
			file = s.Name
		}
		if _, seen := count[file]; !seen {
			order = append(order, file)
		}
		bucket[s.Name] = file
		count[file]++
	}

	for _, file := range order {
		kind := graph.KindFile
		if src, ok := g.Symbol(file); ok && src.File == "" {
			kind = src.Kind
		}
		_ = out.AddSymbol(graph.Symbol{
			Name: file,
			File: file,
			Kind: kind,
			Meta: graph.Metadata{graph.MetaFuncCount: count[file]},
		})
	}

	type pair struct{ source, target string }
	weights := make(map[pair]int)
	var edgeOrder []pair
	for _, e := range g.Edges() {
		src, dst := bucket[e.Source], bucket[e.Target]
		if src == dst {
			continue
		}
		key := pair{src, dst}
		if weights[key] == 0 {
			edgeOrder = append(edgeOrder, key)
		}
		weights[key] += e.Weight
	}
	for _, key := range edgeOrder {
		_ = out.AddEdge(graph.CallEdge{
			Source: key.source,
			Target: key.target,
			Type:   graph.EdgeFileFlow,
			Weight: weights[key],
		})
	}

	return out
}
