package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidSymbolName is returned by [Graph.AddSymbol] when the symbol
	// name is empty. All symbols must have non-empty qualified names.
	ErrInvalidSymbolName = errors.New("symbol name must not be empty")

	// ErrDuplicateSymbol is returned by [Graph.AddSymbol] when a symbol with
	// the same qualified name already exists in the graph.
	ErrDuplicateSymbol = errors.New("duplicate symbol name")

	// ErrUnknownSourceSymbol is returned by [Graph.AddEdge] when the Source
	// symbol does not exist in the graph.
	ErrUnknownSourceSymbol = errors.New("unknown source symbol")

	// ErrUnknownTargetSymbol is returned by [Graph.AddEdge] when the Target
	// symbol does not exist in the graph.
	ErrUnknownTargetSymbol = errors.New("unknown target symbol")
)

// Graph is a directed multigraph of Symbols and CallEdges.
//
// Symbols are indexed by qualified name and additionally kept in insertion
// order: declaration order drives deterministic suffix-match resolution and
// within-column stacking in layered layouts, so iteration must never depend
// on map ordering.
//
// Every edge's endpoints must reference existing symbols - callers synthesize
// nodes for dangling endpoints before adding edges. Self-loops are legal and
// preserved; algorithms that cannot handle them skip them explicitly.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use without external synchronization, but the batch pipeline never shares
// one instance across invocations.
type Graph struct {
	symbols  map[string]*Symbol
	order    []string // insertion order of symbol names
	edges    []CallEdge
	outgoing map[string][]string // symbol name -> successor names
	incoming map[string][]string // symbol name -> predecessor names
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		symbols:  make(map[string]*Symbol),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddSymbol adds a symbol to the graph. Returns ErrInvalidSymbolName if the
// name is empty, or ErrDuplicateSymbol if the name is already present. The
// symbol's Meta field is initialized to an empty map if nil, and a zero
// Status defaults to unchanged.
func (g *Graph) AddSymbol(s Symbol) error {
	if s.Name == "" {
		return ErrInvalidSymbolName
	}
	if _, exists := g.symbols[s.Name]; exists {
		return ErrDuplicateSymbol
	}
	if s.Meta == nil {
		s.Meta = Metadata{}
	}
	if s.Status == "" {
		s.Status = StatusUnchanged
	}
	sym := &s
	g.symbols[sym.Name] = sym
	g.order = append(g.order, sym.Name)
	return nil
}

// AddEdge adds a directed edge between two existing symbols.
// Returns ErrUnknownSourceSymbol or ErrUnknownTargetSymbol if either endpoint
// is missing. Weight is floored at 1, risk defaults to low, and a zero Status
// defaults to unchanged. Parallel edges between the same pair are allowed;
// the resolver collapses duplicates before they reach the graph.
func (g *Graph) AddEdge(e CallEdge) error {
	if _, ok := g.symbols[e.Source]; !ok {
		return ErrUnknownSourceSymbol
	}
	if _, ok := g.symbols[e.Target]; !ok {
		return ErrUnknownTargetSymbol
	}
	if e.Weight < 1 {
		e.Weight = 1
	}
	if e.Risk == "" {
		e.Risk = RiskLow
	}
	if e.Status == "" {
		e.Status = StatusUnchanged
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e.Target)
	g.incoming[e.Target] = append(g.incoming[e.Target], e.Source)
	return nil
}

// RemoveEdge removes the first edge source→target if it exists.
// No error is returned if the edge does not exist.
func (g *Graph) RemoveEdge(source, target string) {
	idx := slices.IndexFunc(g.edges, func(e CallEdge) bool {
		return e.Source == source && e.Target == target
	})
	if idx < 0 {
		return
	}
	g.edges = slices.Delete(g.edges, idx, idx+1)
	if i := slices.Index(g.outgoing[source], target); i >= 0 {
		g.outgoing[source] = slices.Delete(g.outgoing[source], i, i+1)
	}
	if i := slices.Index(g.incoming[target], source); i >= 0 {
		g.incoming[target] = slices.Delete(g.incoming[target], i, i+1)
	}
}

// Symbol returns the symbol with the given name and true, or nil and false
// if not found. The returned pointer refers to the actual symbol, so
// modifications affect the graph (name changes excepted).
func (g *Graph) Symbol(name string) (*Symbol, bool) {
	s, ok := g.symbols[name]
	return s, ok
}

// Has reports whether a symbol with the given name exists.
func (g *Graph) Has(name string) bool {
	_, ok := g.symbols[name]
	return ok
}

// Symbols returns all symbols in insertion order.
// The returned slice contains pointers to the actual symbol structs.
func (g *Graph) Symbols() []*Symbol {
	out := make([]*Symbol, len(g.order))
	for i, name := range g.order {
		out[i] = g.symbols[name]
	}
	return out
}

// Names returns all symbol names in insertion order.
func (g *Graph) Names() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []CallEdge { return slices.Clone(g.edges) }

// SetEdges replaces the edge list wholesale and rebuilds the adjacency
// indices. Used by annotation passes that rewrite edge attributes in bulk.
// Edges referencing unknown symbols are dropped.
func (g *Graph) SetEdges(edges []CallEdge) {
	g.edges = g.edges[:0]
	g.outgoing = make(map[string][]string)
	g.incoming = make(map[string][]string)
	for _, e := range edges {
		_ = g.AddEdge(e)
	}
}

// NodeCount returns the number of symbols in the graph.
func (g *Graph) NodeCount() int { return len(g.symbols) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the names this symbol has edges to.
// The returned slice is a read-only view; do not modify it.
func (g *Graph) Successors(name string) []string { return g.outgoing[name] }

// Predecessors returns the names that have edges to this symbol.
// The returned slice is a read-only view; do not modify it.
func (g *Graph) Predecessors(name string) []string { return g.incoming[name] }

// OutDegree returns the number of outgoing edges from the symbol.
func (g *Graph) OutDegree(name string) int { return len(g.outgoing[name]) }

// InDegree returns the number of incoming edges to the symbol.
func (g *Graph) InDegree(name string) int { return len(g.incoming[name]) }

// Sources returns symbols with no incoming edges, in insertion order.
func (g *Graph) Sources() []*Symbol {
	var sources []*Symbol
	for _, name := range g.order {
		if len(g.incoming[name]) == 0 {
			sources = append(sources, g.symbols[name])
		}
	}
	return sources
}

// Clone returns a deep copy of the graph. Transform passes that mutate edges
// (cycle breaking, ordering) always run on a clone so the caller-visible
// graph is never touched while being searched.
func (g *Graph) Clone() *Graph {
	out := New()
	for _, name := range g.order {
		s := *g.symbols[name]
		s.Meta = cloneMeta(s.Meta)
		// AddSymbol cannot fail here: names were valid and unique in the source.
		_ = out.AddSymbol(s)
	}
	for _, e := range g.edges {
		_ = out.AddEdge(e)
	}
	return out
}

func cloneMeta(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
