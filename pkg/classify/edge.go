package classify

import "github.com/callscape/callscape/pkg/graph"

// Edge categories drive edge styling in the rendering surface.
const (
	EdgeCycle      = "cycle"       // participates in a detected cycle
	EdgeContains   = "contains"    // structural containment (root/file skeleton)
	EdgeModuleFlow = "module_flow" // inter-module or inter-file flow
	EdgeDataFlow   = "data_flow"   // flows between adjacent pipeline stages
	EdgeDefault    = "default"
)

// stageRank orders the physical pipeline stages for adjacency checks.
// OTHER has no rank and never forms a data_flow pair.
var stageRank = map[string]int{
	LayerInputSource: 0,
	LayerProcessing:  1,
	LayerComputation: 2,
	LayerOutput:      3,
}

// Edge categorizes a call edge from its attributes and its endpoints'
// physical layers. Like Node, it is a pure function. Precedence: cycle
// risk, then structural types, then stage adjacency.
func Edge(e graph.CallEdge, source, target Layers) string {
	switch {
	case e.Risk == graph.RiskHigh:
		return EdgeCycle
	case e.Type == graph.EdgeContains:
		return EdgeContains
	case e.Type == graph.EdgeModuleFlow || e.Type == graph.EdgeFileFlow:
		return EdgeModuleFlow
	}
	src, okSrc := stageRank[source.Physical]
	dst, okDst := stageRank[target.Physical]
	if okSrc && okDst && dst == src+1 {
		return EdgeDataFlow
	}
	return EdgeDefault
}
