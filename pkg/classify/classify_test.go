package classify

import (
	"testing"

	"github.com/callscape/callscape/pkg/graph"
)

func TestNodeManualOverrideWins(t *testing.T) {
	s := &graph.Symbol{Name: "read_frames", Kind: graph.KindFunction, Layer: LayerOutput}
	got := Node(s)
	if got.Physical != LayerOutput {
		t.Errorf("manual layer should win over keyword match, got %s", got.Physical)
	}
	if got.Logical != LogicalModule {
		t.Errorf("manual override must force logical MODULE, got %d", got.Logical)
	}
}

func TestNodeKeywordPrecedence(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"video.read_frames", LayerInputSource},
		{"pipeline.load_config", LayerInputSource},
		{"filters.apply_blur", LayerProcessing},
		{"cv2.cvtColor", LayerProcessing},
		{"viewer.show_result", LayerOutput},
		{"store.save_graph", LayerOutput},
		{"math.compute_sum", LayerComputation},
	}
	for _, tt := range tests {
		s := &graph.Symbol{Name: tt.name, Kind: graph.KindFunction}
		if got := Node(s).Physical; got != tt.want {
			t.Errorf("Node(%q).Physical = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestNodeInputBeatsProcessing(t *testing.T) {
	// "read" and "convert" both match; the input rule sits earlier in the
	// table and takes precedence.
	s := &graph.Symbol{Name: "read_and_convert", Kind: graph.KindFunction}
	if got := Node(s).Physical; got != LayerInputSource {
		t.Errorf("expected INPUT_SOURCE for mixed-keyword name, got %s", got)
	}
}

func TestNodeUnmatchedIsOther(t *testing.T) {
	s := &graph.Symbol{Name: "orphan", Kind: graph.KindExternal}
	got := Node(s)
	if got.Physical != LayerOther {
		t.Errorf("expected OTHER for unmatched non-callable, got %s", got.Physical)
	}
	if got.Logical != LogicalLogic {
		t.Errorf("expected logical LOGIC, got %d", got.Logical)
	}
}

// A symbol declared without any kind carries no classification hints at all:
// it must land in OTHER/LOGIC, not COMPUTATION.
func TestNodeKindlessIsOther(t *testing.T) {
	s := &graph.Symbol{Name: "orphan"}
	got := Node(s)
	if got.Physical != LayerOther {
		t.Errorf("kindless symbol physical = %s, want %s", got.Physical, LayerOther)
	}
	if got.Logical != LogicalLogic {
		t.Errorf("kindless symbol logical = %d, want %d", got.Logical, LogicalLogic)
	}
}

func TestNodeLogicalLayers(t *testing.T) {
	tests := []struct {
		sym  graph.Symbol
		want int
	}{
		{graph.Symbol{Name: "proj", Kind: graph.KindProject}, LogicalRoot},
		{graph.Symbol{Name: "root", Kind: graph.KindFunction}, LogicalRoot},
		{graph.Symbol{Name: "pkg", Kind: graph.KindModule}, LogicalModule},
		{graph.Symbol{Name: "main.py", Kind: graph.KindFile}, LogicalFile},
		{graph.Symbol{Name: "main.run", Kind: graph.KindFunction}, LogicalLogic},
	}
	for _, tt := range tests {
		if got := Node(&tt.sym).Logical; got != tt.want {
			t.Errorf("Node(%q).Logical = %d, want %d", tt.sym.Name, got, tt.want)
		}
	}
}

func TestGraphClassifiesEveryNode(t *testing.T) {
	g := graph.New()
	for _, n := range []string{"a.read", "b.compute", "c.save"} {
		if err := g.AddSymbol(graph.Symbol{Name: n, Kind: graph.KindFunction}); err != nil {
			t.Fatal(err)
		}
	}
	layers := Graph(g)
	if len(layers) != 3 {
		t.Fatalf("expected 3 verdicts, got %d", len(layers))
	}
	if layers["a.read"].Physical != LayerInputSource {
		t.Errorf("a.read misclassified as %s", layers["a.read"].Physical)
	}
}

func TestStyleFallback(t *testing.T) {
	if Style("CUSTOM_LAYER") != Style(LayerOther) {
		t.Error("unknown layer keys should use the OTHER style")
	}
	if Style(LayerInputSource).Border != "#2196F3" {
		t.Errorf("unexpected input-source border: %s", Style(LayerInputSource).Border)
	}
}
