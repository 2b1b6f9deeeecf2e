package scale

import (
	"fmt"
	"testing"

	"github.com/callscape/callscape/pkg/config"
	"github.com/callscape/callscape/pkg/graph"
)

func TestDecide(t *testing.T) {
	limits := config.DefaultLimits()
	tests := []struct {
		nodes, edges int
		want         Mode
	}{
		{10, 10, FullMode},
		{600, 1000, FullMode},
		{601, 10, AggregatedMode},
		{10, 1001, AggregatedMode},
		{700, 700, AggregatedMode},
	}
	for _, tt := range tests {
		if got := Decide(tt.nodes, tt.edges, limits); got != tt.want {
			t.Errorf("Decide(%d, %d) = %s, want %s", tt.nodes, tt.edges, got, tt.want)
		}
	}
}

func TestDecideHardCap(t *testing.T) {
	limits := config.DefaultLimits()
	limits.MaxNodes = 10000 // above the hard cap, must be clamped
	if got := Decide(config.HardNodeCap+1, 0, limits); got != AggregatedMode {
		t.Errorf("node counts above the hard cap must aggregate, got %s", got)
	}
	if got := Decide(config.HardNodeCap, 0, limits); got != FullMode {
		t.Errorf("node counts at the hard cap stay full, got %s", got)
	}
}

// Seven hundred symbols spread over a handful of files with one edge each
// must aggregate down to the distinct file count.
func TestAggregateLargeGraph(t *testing.T) {
	g := graph.New()
	const files = 7
	for i := 0; i < 700; i++ {
		name := fmt.Sprintf("f%d.fn%d", i%files, i)
		err := g.AddSymbol(graph.Symbol{
			Name: name,
			File: fmt.Sprintf("src/f%d.py", i%files),
			Kind: graph.KindFunction,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	names := g.Names()
	for i := 0; i+1 < len(names); i++ {
		if err := g.AddEdge(graph.CallEdge{Source: names[i], Target: names[i+1], Type: graph.EdgeCall}); err != nil {
			t.Fatal(err)
		}
	}

	if Decide(g.NodeCount(), g.EdgeCount(), config.DefaultLimits()) != AggregatedMode {
		t.Fatal("700 nodes must route to aggregated mode")
	}

	agg := Aggregate(g)
	if agg.NodeCount() != files {
		t.Errorf("aggregate node count = %d, want %d distinct files", agg.NodeCount(), files)
	}
	for _, s := range agg.Symbols() {
		if s.Kind != graph.KindFile {
			t.Errorf("aggregate node %s kind = %s, want file", s.Name, s.Kind)
		}
		if graph.MetaInt(s.Meta, graph.MetaFuncCount) != 100 {
			t.Errorf("aggregate node %s func_count = %v, want 100", s.Name, s.Meta[graph.MetaFuncCount])
		}
	}
	for _, e := range agg.Edges() {
		if e.Type != graph.EdgeFileFlow {
			t.Errorf("aggregate edge type = %s, want file_flow", e.Type)
		}
	}
}

func TestAggregateSumsWeightsAndDropsIntraFile(t *testing.T) {
	g := graph.New()
	for _, s := range []graph.Symbol{
		{Name: "a.one", File: "a.py", Kind: graph.KindFunction},
		{Name: "a.two", File: "a.py", Kind: graph.KindFunction},
		{Name: "b.one", File: "b.py", Kind: graph.KindFunction},
	} {
		if err := g.AddSymbol(s); err != nil {
			t.Fatal(err)
		}
	}
	edges := []graph.CallEdge{
		{Source: "a.one", Target: "a.two", Type: graph.EdgeCall, Weight: 5}, // intra-file, dropped
		{Source: "a.one", Target: "b.one", Type: graph.EdgeCall, Weight: 2},
		{Source: "a.two", Target: "b.one", Type: graph.EdgeCall, Weight: 3},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}

	agg := Aggregate(g)
	if agg.EdgeCount() != 1 {
		t.Fatalf("expected 1 inter-file edge, got %d", agg.EdgeCount())
	}
	e := agg.Edges()[0]
	if e.Source != "a.py" || e.Target != "b.py" || e.Weight != 5 {
		t.Errorf("summed edge wrong: %+v", e)
	}
}

func TestAggregateKeepsFilelessNodes(t *testing.T) {
	g := graph.New()
	_ = g.AddSymbol(graph.Symbol{Name: "a.fn", File: "a.py", Kind: graph.KindFunction})
	_ = g.AddSymbol(graph.Symbol{Name: "payments-api", Kind: graph.KindExternal})
	_ = g.AddEdge(graph.CallEdge{Source: "a.fn", Target: "payments-api", Type: graph.EdgeAPICall, Weight: 4})

	agg := Aggregate(g)
	if !agg.Has("payments-api") {
		t.Fatal("fileless external node lost during aggregation")
	}
	sym, _ := agg.Symbol("payments-api")
	if sym.Kind != graph.KindExternal {
		t.Errorf("external kind not preserved: %s", sym.Kind)
	}
	if agg.EdgeCount() != 1 {
		t.Errorf("external edge lost: %d edges", agg.EdgeCount())
	}
}
