package render

import (
	"strings"
	"testing"

	"github.com/callscape/callscape/pkg/graph"
)

func samplePositioned() graph.Positioned {
	style := graph.Style{Color: "#E8F5E9", Border: "#4CAF50"}
	return graph.Positioned{
		Nodes: []graph.PositionedNode{
			{ID: 0, Title: "main.run", X: 100, Y: 100, Type: "function", Style: &style,
				Params: graph.NodeParams{File: "main.py", Line: 10, ExecSeq: 1}},
			{ID: 1, Title: "filters.blur", X: 450, Y: 100, Type: "function", Style: &style,
				Params: graph.NodeParams{File: "filters.py", Line: 3, ExecSeq: 2}},
		},
		Edges: []graph.PositionedEdge{
			{Source: 0, Target: 1, Type: "call", Weight: 3, Risk: graph.RiskHigh},
		},
	}
}

func TestToDOTBasics(t *testing.T) {
	dot := ToDOT(samplePositioned(), Options{})
	for _, want := range []string{
		"digraph callgraph {",
		`n0 [label="main.run"`,
		`n1 [label="filters.blur"`,
		"n0 -> n1",
		`fillcolor="#E8F5E9"`,
		`color="red"`,
		`label="x3"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	dot := ToDOT(samplePositioned(), Options{Detailed: true})
	if !strings.Contains(dot, "main.py:10") {
		t.Error("detailed label missing file:line")
	}
	if !strings.Contains(dot, "seq: 1") {
		t.Error("detailed label missing execution sequence")
	}
}

func TestToDOTPinnedPositions(t *testing.T) {
	dot := ToDOT(samplePositioned(), Options{Pinned: true})
	if !strings.Contains(dot, `pos="100,-100!"`) {
		t.Errorf("pinned output missing pos attribute:\n%s", dot)
	}
}

func TestToDOTRemovedDashed(t *testing.T) {
	p := samplePositioned()
	p.Nodes[1].Params.Status = graph.StatusRemoved
	p.Edges[0].Status = graph.StatusRemoved
	dot := ToDOT(p, Options{})
	if !strings.Contains(dot, "dashed") {
		t.Error("removed elements should render dashed")
	}
}

func TestEdgeWidthCap(t *testing.T) {
	if w := edgeWidth(100); w != 4.0 {
		t.Errorf("edge width should cap at 4.0, got %.1f", w)
	}
	if w := edgeWidth(2); w < 1.39 || w > 1.41 {
		t.Errorf("edge width for weight 2 = %.2f, want 1.4", w)
	}
}
