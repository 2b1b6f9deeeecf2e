package resolve

import (
	"testing"

	"github.com/callscape/callscape/pkg/errors"
	"github.com/callscape/callscape/pkg/graph"
)

func analysis() AnalysisResult {
	return AnalysisResult{
		Functions: []RawSymbol{
			{Name: "main.run", File: "main.py", Lineno: 10, Kind: "function", Args: []string{"cfg"}},
			{Name: "video.Reader.read", File: "video.py", Lineno: 5, Kind: "method"},
			{Name: "filters.blur", File: "filters.py", Lineno: 3, Kind: "function"},
		},
		Calls: []RawCall{
			{Source: "main.run", Target: "read"},
			{Source: "main.run", Target: "read"},
			{Source: "main.run", Target: "filters.blur"},
		},
	}
}

func TestResolveSuffixMatchAndWeight(t *testing.T) {
	g, err := Resolve(analysis(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.NodeCount())
	}

	edges := g.Edges()
	if len(edges) != 2 {
		t.Fatalf("expected 2 collapsed edges, got %d", len(edges))
	}
	if edges[0].Target != "video.Reader.read" {
		t.Errorf("suffix match failed: target = %s", edges[0].Target)
	}
	if edges[0].Weight != 2 {
		t.Errorf("duplicate calls must collapse to weight 2, got %d", edges[0].Weight)
	}
	if edges[1].Target != "filters.blur" || edges[1].Weight != 1 {
		t.Errorf("exact match edge wrong: %+v", edges[1])
	}
}

// A declared symbol keeps exactly the kind the analyzer gave it. A missing
// kind stays empty so the node is neither callable nor COMPUTATION-classified.
func TestResolvePreservesDeclaredKind(t *testing.T) {
	in := AnalysisResult{
		Functions: []RawSymbol{
			{Name: "mystery", File: "m.py"},
			{Name: "closure", File: "m.py", Kind: "lambda"},
		},
	}
	g, err := Resolve(in, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	mystery, _ := g.Symbol("mystery")
	if mystery.Kind != "" {
		t.Errorf("hint-less symbol kind = %q, want empty", mystery.Kind)
	}
	if mystery.IsCallable() {
		t.Error("hint-less symbol must not count as callable")
	}
	closure, _ := g.Symbol("closure")
	if closure.Kind != graph.SymbolKind("lambda") {
		t.Errorf("unknown kind not preserved: %q", closure.Kind)
	}
}

func TestResolveDropsUnresolvedCalls(t *testing.T) {
	in := analysis()
	in.Calls = append(in.Calls, RawCall{Source: "main.run", Target: "nowhere.to_be_found"})
	g, err := Resolve(in, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("unresolved plain call should be dropped, got %d edges", g.EdgeCount())
	}
}

func TestResolveKeepsExternalCalls(t *testing.T) {
	in := analysis()
	in.Calls = append(in.Calls, RawCall{
		Source: "main.run",
		Target: "payments-api",
		Type:   string(graph.EdgeAPICall),
		URL:    "https://pay.example.com/v1/charge",
	})
	g, err := Resolve(in, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	sym, ok := g.Symbol("payments-api")
	if !ok {
		t.Fatal("external target node was not synthesized")
	}
	if sym.Kind != graph.KindExternal {
		t.Errorf("expected external kind, got %s", sym.Kind)
	}
	if graph.MetaString(sym.Meta, graph.MetaURL) == "" {
		t.Error("endpoint URL hint missing from external node metadata")
	}
	if g.EdgeCount() != 3 {
		t.Errorf("external edge should be kept, got %d edges", g.EdgeCount())
	}
}

func TestResolveBidirectionalOverride(t *testing.T) {
	overrides := []Override{{
		Source:    "X",
		Target:    "Y",
		Type:      string(graph.EdgeMQPub),
		Weight:    3,
		RiskLevel: string(graph.RiskHigh),
		Direction: string(graph.DirectionBidirectional),
	}}
	g, err := Resolve(AnalysisResult{}, overrides)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	edges := g.Edges()
	if len(edges) != 2 {
		t.Fatalf("bidirectional override must expand to exactly 2 edges, got %d", len(edges))
	}
	fwd, rev := edges[0], edges[1]
	if fwd.Source != "X" || fwd.Target != "Y" || rev.Source != "Y" || rev.Target != "X" {
		t.Errorf("expected X->Y and Y->X, got %+v and %+v", fwd, rev)
	}
	for _, e := range edges {
		if e.Weight != 3 || e.Risk != graph.RiskHigh || e.Type != graph.EdgeMQPub {
			t.Errorf("expanded edge lost attributes: %+v", e)
		}
	}
}

func TestResolveOverrideSynthesizesNodesAndLayer(t *testing.T) {
	overrides := []Override{{
		Source:   "a.emit",
		Target:   "queue",
		Layer:    "OUTPUT",
		NodeType: string(graph.KindExternal),
	}}
	g, err := Resolve(AnalysisResult{}, overrides)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	sym, ok := g.Symbol("queue")
	if !ok {
		t.Fatal("override target was not synthesized")
	}
	if sym.Kind != graph.KindExternal {
		t.Errorf("node_type not honored: %s", sym.Kind)
	}
	if sym.Layer != "OUTPUT" {
		t.Errorf("manual layer not applied: %q", sym.Layer)
	}
}

func TestResolveInvalidOverride(t *testing.T) {
	_, err := Resolve(AnalysisResult{}, []Override{{Source: "a", Target: "b", Direction: "sideways"}})
	if !errors.Is(err, errors.ErrCodeInvalidOverride) {
		t.Errorf("expected INVALID_OVERRIDE, got %v", err)
	}
	_, err = Resolve(AnalysisResult{}, []Override{{Source: "", Target: "b"}})
	if !errors.Is(err, errors.ErrCodeInvalidOverride) {
		t.Errorf("expected INVALID_OVERRIDE for empty source, got %v", err)
	}
}

func TestResolveComplexity(t *testing.T) {
	g, err := Resolve(analysis(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	sym, _ := g.Symbol("main.run")
	// 1 argument + 2 outgoing edges.
	if got := graph.MetaInt(sym.Meta, graph.MetaComplexity); got != 3 {
		t.Errorf("complexity = %d, want 3", got)
	}
}

func TestApplyTrace(t *testing.T) {
	g, err := Resolve(analysis(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	ApplyTrace(g, []TraceEvent{{Target: "main.run"}, {Target: "read"}, {Target: "main.run"}})

	run, _ := g.Symbol("main.run")
	if graph.MetaInt(run.Meta, graph.MetaHits) != 2 {
		t.Errorf("main.run hits = %v, want 2", run.Meta[graph.MetaHits])
	}
	read, _ := g.Symbol("video.Reader.read")
	if graph.MetaInt(read.Meta, graph.MetaHits) != 1 {
		t.Errorf("suffix-resolved trace target hits = %v, want 1", read.Meta[graph.MetaHits])
	}
	blur, _ := g.Symbol("filters.blur")
	if _, present := blur.Meta[graph.MetaHits]; !present {
		t.Error("untraced callable must still carry a zero hit count")
	}
	if graph.MetaInt(blur.Meta, graph.MetaHits) != 0 {
		t.Errorf("untraced callable hits = %v, want 0", blur.Meta[graph.MetaHits])
	}
}

func TestAddFileHierarchy(t *testing.T) {
	g, err := Resolve(analysis(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	AddFileHierarchy(g)

	if !g.Has(RootName) {
		t.Fatal("project root missing")
	}
	for _, file := range []string{"main.py", "video.py", "filters.py"} {
		sym, ok := g.Symbol(file)
		if !ok {
			t.Fatalf("file node %s missing", file)
		}
		if sym.Kind != graph.KindFile {
			t.Errorf("%s kind = %s, want file", file, sym.Kind)
		}
	}
	// root -> 3 files, 3 file -> symbol edges, plus the 2 call edges.
	if g.EdgeCount() != 8 {
		t.Errorf("expected 8 edges after hierarchy, got %d", g.EdgeCount())
	}
}
