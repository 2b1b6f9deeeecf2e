package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/callscape/callscape/pkg/graph"
)

func buildGraph(t *testing.T, nodes []string, edges [][2]string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, n := range nodes {
		if err := g.AddSymbol(graph.Symbol{Name: n, Kind: graph.KindFunction}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(graph.CallEdge{Source: e[0], Target: e[1], Type: graph.EdgeCall}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestStrictIncreasingX(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
	)
	res := Compute(g, Config{Strategy: StrategyStrict})
	for _, e := range g.Edges() {
		src, dst := res.Positions[e.Source], res.Positions[e.Target]
		if src.X >= dst.X {
			t.Errorf("edge %s->%s violates left-to-right flow: %.0f >= %.0f", e.Source, e.Target, src.X, dst.X)
		}
	}
}

func TestStrictCoversAllNodes(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "orphan"}, [][2]string{{"a", "b"}})
	res := Compute(g, Config{Strategy: StrategyStrict})
	if len(res.Positions) != 3 {
		t.Fatalf("expected positions for all 3 nodes, got %d", len(res.Positions))
	}
	if _, ok := res.Positions["orphan"]; !ok {
		t.Error("isolated node lost by layout")
	}
}

func TestStrictDeterministic(t *testing.T) {
	build := func() *graph.Graph {
		return buildGraph(t,
			[]string{"a", "b", "c"},
			[][2]string{{"a", "b"}, {"b", "c"}},
		)
	}
	first := Compute(build(), Config{Strategy: StrategyStrict})
	second := Compute(build(), Config{Strategy: StrategyStrict})
	for name, p := range first.Positions {
		if second.Positions[name] != p {
			t.Errorf("node %s moved between identical runs: %v vs %v", name, p, second.Positions[name])
		}
	}
}

func TestStrictColumnSpacing(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	res := Compute(g, Config{Strategy: StrategyStrict})
	dx := res.Positions["b"].X - res.Positions["a"].X
	if dx != DefaultNodeWidth+DefaultHGap {
		t.Errorf("column advance = %.0f, want %.0f", dx, DefaultNodeWidth+DefaultHGap)
	}
}

func TestNormalizedOrigin(t *testing.T) {
	g := buildGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"a", "c"}})
	for _, strategy := range []Strategy{StrategyStrict, StrategyHybrid, StrategyLegacy} {
		res := Compute(g, Config{Strategy: strategy})
		minX, minY := res.Positions["a"].X, res.Positions["a"].Y
		for _, p := range res.Positions {
			if p.X < minX {
				minX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
		}
		if minX != OriginOffset || minY != OriginOffset {
			t.Errorf("%s: batch minimum = (%.1f, %.1f), want (%.0f, %.0f)", strategy, minX, minY, OriginOffset, OriginOffset)
		}
	}
}

func TestHybridKeepsColumnX(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
	)
	strictRes := Compute(g, Config{Strategy: StrategyStrict})
	hybridRes := Compute(g, Config{Strategy: StrategyHybrid})
	for name := range strictRes.Positions {
		if strictRes.Positions[name].X != hybridRes.Positions[name].X {
			t.Errorf("hybrid moved node %s off its column: %.1f vs %.1f",
				name, hybridRes.Positions[name].X, strictRes.Positions[name].X)
		}
	}
	for _, e := range g.Edges() {
		if hybridRes.Positions[e.Source].X >= hybridRes.Positions[e.Target].X {
			t.Errorf("hybrid violated left-to-right flow on %s->%s", e.Source, e.Target)
		}
	}
}

func TestHybridMinimumGap(t *testing.T) {
	nodes := []string{"root"}
	var edges [][2]string
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("child%d", i)
		nodes = append(nodes, name)
		edges = append(edges, [2]string{"root", name})
	}
	g := buildGraph(t, nodes, edges)
	res := Compute(g, Config{Strategy: StrategyHybrid})

	minGap := DefaultNodeHeight + DefaultVGap
	ys := make([]float64, 0, 6)
	for i := 0; i < 6; i++ {
		ys = append(ys, res.Positions[fmt.Sprintf("child%d", i)].Y)
	}
	for i := range ys {
		for j := i + 1; j < len(ys); j++ {
			gap := ys[j] - ys[i]
			if gap < 0 {
				gap = -gap
			}
			if gap < minGap-0.001 {
				t.Errorf("children %d and %d overlap: gap %.1f < %.1f", i, j, gap, minGap)
			}
		}
	}
}

func TestHybridLockedNodeStaysPut(t *testing.T) {
	g := graph.New()
	for _, s := range []graph.Symbol{
		{Name: "a", Kind: graph.KindFunction},
		{Name: "pinned", Kind: graph.KindFunction, Locked: true},
		{Name: "c", Kind: graph.KindFunction},
	} {
		if err := g.AddSymbol(s); err != nil {
			t.Fatal(err)
		}
	}
	_ = g.AddEdge(graph.CallEdge{Source: "a", Target: "pinned", Type: graph.EdgeCall})
	_ = g.AddEdge(graph.CallEdge{Source: "a", Target: "c", Type: graph.EdgeCall})

	strictRes := Compute(g, Config{Strategy: StrategyStrict})
	hybridRes := Compute(g, Config{Strategy: StrategyHybrid})
	if strictRes.Positions["pinned"].Y != hybridRes.Positions["pinned"].Y {
		t.Errorf("locked node moved: %.1f vs %.1f",
			hybridRes.Positions["pinned"].Y, strictRes.Positions["pinned"].Y)
	}
}

func TestHybridLockedOverlapWarning(t *testing.T) {
	g := graph.New()
	// Two locked siblings stacked by strict layout would need a sweep to
	// separate, but neither may move once the relaxation pulls them together.
	for _, s := range []graph.Symbol{
		{Name: "a", Kind: graph.KindFunction},
		{Name: "p1", Kind: graph.KindFunction, Locked: true},
		{Name: "p2", Kind: graph.KindFunction, Locked: true},
		{Name: "sink", Kind: graph.KindFunction},
	} {
		if err := g.AddSymbol(s); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range [][2]string{{"a", "p1"}, {"a", "p2"}, {"p1", "sink"}, {"p2", "sink"}} {
		_ = g.AddEdge(graph.CallEdge{Source: e[0], Target: e[1], Type: graph.EdgeCall})
	}

	res := Compute(g, Config{Strategy: StrategyHybrid})
	gap := res.Positions["p2"].Y - res.Positions["p1"].Y
	if gap < 0 {
		gap = -gap
	}
	if gap < DefaultNodeHeight+DefaultVGap {
		found := false
		for _, w := range res.Warnings {
			if strings.Contains(w, "p1") && strings.Contains(w, "p2") {
				found = true
			}
		}
		if !found {
			t.Error("overlapping locked pair produced no warning")
		}
	}
}

func TestAutoStrategySelection(t *testing.T) {
	small := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	if res := Compute(small, Config{}); res.Strategy != StrategyHybrid {
		t.Errorf("small graph should use hybrid, got %s", res.Strategy)
	}

	big := graph.New()
	for i := 0; i < StrictThreshold+1; i++ {
		_ = big.AddSymbol(graph.Symbol{Name: fmt.Sprintf("n%d", i), Kind: graph.KindFunction})
	}
	if res := Compute(big, Config{}); res.Strategy != StrategyStrict {
		t.Errorf("large graph should use strict, got %s", res.Strategy)
	}
}

func TestPickStrategy(t *testing.T) {
	tests := []struct {
		nodes     int
		requested Strategy
		want      Strategy
	}{
		{10, StrategyAuto, StrategyHybrid},
		{StrictThreshold, StrategyAuto, StrategyHybrid},
		{StrictThreshold + 1, StrategyAuto, StrategyStrict},
		{10, StrategyLegacy, StrategyLegacy},
		{StrictThreshold + 1, StrategyHybrid, StrategyHybrid},
	}
	for _, tt := range tests {
		if got := PickStrategy(tt.nodes, tt.requested); got != tt.want {
			t.Errorf("PickStrategy(%d, %q) = %q, want %q", tt.nodes, tt.requested, got, tt.want)
		}
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
	)
	res := Compute(g, Config{Strategy: StrategyStrict})
	if g.EdgeCount() != 3 {
		t.Errorf("layout mutated its input: %d edges left", g.EdgeCount())
	}
	if len(res.RemovedEdges) != 1 {
		t.Errorf("expected 1 removed cycle edge, got %d", len(res.RemovedEdges))
	}
}

func TestLegacyCyclicDeterministic(t *testing.T) {
	build := func() *graph.Graph {
		return buildGraph(t,
			[]string{"a", "b", "c"},
			[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
		)
	}
	first := Compute(build(), Config{Strategy: StrategyLegacy})
	second := Compute(build(), Config{Strategy: StrategyLegacy})
	for name, p := range first.Positions {
		if second.Positions[name] != p {
			t.Errorf("spring layout not deterministic for %s: %v vs %v", name, p, second.Positions[name])
		}
	}
}

func TestLegacyAcyclicRows(t *testing.T) {
	g := buildGraph(t,
		[]string{"root", "a", "b"},
		[][2]string{{"root", "a"}, {"root", "b"}},
	)
	res := Compute(g, Config{Strategy: StrategyLegacy})
	if res.Positions["root"].Y >= res.Positions["a"].Y {
		t.Error("parent row should sit above child row")
	}
	if res.Positions["a"].Y != res.Positions["b"].Y {
		t.Error("same-generation nodes should share a row")
	}
}
