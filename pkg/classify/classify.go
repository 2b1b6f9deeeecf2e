// Package classify assigns every symbol a physical-stage layer and a
// logical-containment layer. Classification is a pure function of the
// symbol's attributes: no configuration, no hidden state, and the same
// symbol always classifies the same way.
package classify

import (
	"strings"

	"github.com/callscape/callscape/pkg/graph"
)

// Physical-stage layer keys. They drive horizontal grouping semantics and the
// node style key in the output.
const (
	LayerInputSource = "INPUT_SOURCE"
	LayerProcessing  = "PROCESSING"
	LayerComputation = "COMPUTATION"
	LayerOutput      = "OUTPUT"
	LayerOther       = "OTHER"
)

// Logical-containment depths. Lower is closer to the project root.
const (
	LogicalRoot   = 0
	LogicalModule = 1
	LogicalFile   = 2
	LogicalLogic  = 3
)

// Layers is the classifier's verdict for one symbol.
type Layers struct {
	Physical string
	Logical  int
}

// rule maps a symbol predicate to a physical layer. Rules are evaluated in
// order and the first match wins, so precedence lives in the table itself and
// stays testable without touching the matching engine.
type rule struct {
	name  string
	match func(s *graph.Symbol) bool
	layer string
}

// physicalRules is the ordered matching table. The keyword heuristics mirror
// the stages of a typical processing pipeline: sources feed processing feeds
// computation feeds sinks.
var physicalRules = []rule{
	{
		name: "input-keywords",
		match: func(s *graph.Symbol) bool {
			return nameContainsAny(s, "read", "input", "load", "fetch", "open", "capture")
		},
		layer: LayerInputSource,
	},
	{
		name: "processing-keywords",
		match: func(s *graph.Symbol) bool {
			return nameContainsAny(s, "canny", "blur", "convert", "filter", "resize", "transform", "parse", "cv2.")
		},
		layer: LayerProcessing,
	},
	{
		name: "output-keywords",
		match: func(s *graph.Symbol) bool {
			return nameContainsAny(s, "show", "save", "output", "write", "render", "display", "export")
		},
		layer: LayerOutput,
	},
	{
		name: "callable",
		match: func(s *graph.Symbol) bool {
			return s.IsCallable() || s.Kind == graph.KindImplicit
		},
		layer: LayerComputation,
	},
}

func nameContainsAny(s *graph.Symbol, fragments ...string) bool {
	id := strings.ToLower(s.Name)
	for _, f := range fragments {
		if strings.Contains(id, f) {
			return true
		}
	}
	return false
}

// Node classifies a single symbol.
//
// Precedence: an explicit manual layer override wins outright, mapped
// directly to the physical layer with the logical layer forced to MODULE.
// Otherwise the physical layer comes from the first matching table rule
// (OTHER if none matches) and the logical layer from the symbol kind.
func Node(s *graph.Symbol) Layers {
	if s.Layer != "" {
		return Layers{Physical: s.Layer, Logical: LogicalModule}
	}
	return Layers{Physical: physical(s), Logical: logical(s)}
}

func physical(s *graph.Symbol) string {
	for _, r := range physicalRules {
		if r.match(s) {
			return r.layer
		}
	}
	return LayerOther
}

func logical(s *graph.Symbol) int {
	switch {
	case s.Kind == graph.KindProject || s.Name == "root":
		return LogicalRoot
	case s.Kind == graph.KindModule:
		return LogicalModule
	case s.Kind == graph.KindFile:
		return LogicalFile
	default:
		return LogicalLogic
	}
}

// Graph classifies every symbol in g and returns the verdicts keyed by
// symbol name. The graph is not modified.
func Graph(g *graph.Graph) map[string]Layers {
	out := make(map[string]Layers, g.NodeCount())
	for _, s := range g.Symbols() {
		out[s.Name] = Node(s)
	}
	return out
}
