package transform

import (
	"testing"

	"github.com/callscape/callscape/pkg/graph"
)

func TestExecutionOrderChain(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}},
	)
	seq, ok := ExecutionOrder(g)
	if !ok {
		t.Fatal("expected topological ordering to succeed")
	}
	if seq["a"] != 1 || seq["b"] != 2 || seq["c"] != 3 {
		t.Errorf("expected a=1 b=2 c=3, got %v", seq)
	}
}

func TestExecutionOrderFullCycle(t *testing.T) {
	// A full cycle still yields a complete 1-based sequence after breaking.
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
	)
	seq, ok := ExecutionOrder(g)
	if !ok {
		t.Fatal("expected ordering to succeed on the broken cycle")
	}
	if len(seq) != 3 {
		t.Fatalf("expected all 3 nodes sequenced, got %v", seq)
	}
	used := map[int]bool{}
	for name, n := range seq {
		if n < 1 || n > 3 {
			t.Errorf("node %s has out-of-range sequence %d", name, n)
		}
		if used[n] {
			t.Errorf("duplicate sequence number %d", n)
		}
		used[n] = true
	}
	// The input graph stays untouched.
	if g.EdgeCount() != 3 {
		t.Errorf("ExecutionOrder mutated its input: %d edges left", g.EdgeCount())
	}
}

func TestExecutionOrderDeterministic(t *testing.T) {
	build := func() *graph.Graph {
		return buildGraph(t,
			[]string{"m", "a", "b", "c"},
			[][2]string{{"m", "a"}, {"m", "b"}, {"a", "c"}, {"b", "c"}},
		)
	}
	first, _ := ExecutionOrder(build())
	for i := 0; i < 5; i++ {
		next, _ := ExecutionOrder(build())
		for name := range first {
			if first[name] != next[name] {
				t.Fatalf("run %d: sequence for %s changed from %d to %d", i, name, first[name], next[name])
			}
		}
	}
}

func TestAcyclicProjectionDropsSelfLoops(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "a"}, {"a", "b"}})
	work, dropped := AcyclicProjection(g)
	if len(dropped) != 1 || !dropped[0].IsSelfLoop() {
		t.Errorf("expected the self-loop dropped, got %v", dropped)
	}
	if work.EdgeCount() != 1 {
		t.Errorf("expected 1 edge in projection, got %d", work.EdgeCount())
	}
	if g.EdgeCount() != 2 {
		t.Errorf("projection mutated its input")
	}
}

func TestGenerations(t *testing.T) {
	g := buildGraph(t,
		[]string{"root", "a", "b", "leaf"},
		[][2]string{{"root", "a"}, {"root", "b"}, {"a", "leaf"}, {"b", "leaf"}},
	)
	gens := Generations(g)
	if len(gens) != 3 {
		t.Fatalf("expected 3 generations, got %v", gens)
	}
	if len(gens[0]) != 1 || gens[0][0] != "root" {
		t.Errorf("generation 0 should be [root], got %v", gens[0])
	}
	if len(gens[1]) != 2 || gens[1][0] != "a" || gens[1][1] != "b" {
		t.Errorf("generation 1 should keep insertion order [a b], got %v", gens[1])
	}
	if len(gens[2]) != 1 || gens[2][0] != "leaf" {
		t.Errorf("generation 2 should be [leaf], got %v", gens[2])
	}
}

func TestGenerationsResidualCycle(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}},
	)
	gens := Generations(g)
	total := 0
	for _, gen := range gens {
		total += len(gen)
	}
	if total != 3 {
		t.Errorf("residual cycle nodes lost: placed %d of 3", total)
	}
}
