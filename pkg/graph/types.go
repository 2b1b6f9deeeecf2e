package graph

// SymbolKind distinguishes the origin of a node in the call graph.
type SymbolKind string

// Symbol kinds produced by resolution.
const (
	KindFunction SymbolKind = "function"
	KindMethod   SymbolKind = "method"
	KindImplicit SymbolKind = "implicit" // AI-inferred implicit context
	KindModule   SymbolKind = "module"
	KindFile     SymbolKind = "file"
	KindProject  SymbolKind = "project"  // synthetic project root
	KindExternal SymbolKind = "external" // synthesized target of an unresolved external call
)

// EdgeType classifies the relation an edge represents.
type EdgeType string

// Edge types. The four external kinds (api_call, db_access, mq_pub, mq_sub)
// come from AI-inferred implicit analysis and survive resolution even when
// their target never maps to a known symbol.
const (
	EdgeCall       EdgeType = "call"
	EdgeAPICall    EdgeType = "api_call"
	EdgeDBAccess   EdgeType = "db_access"
	EdgeMQPub      EdgeType = "mq_pub"
	EdgeMQSub      EdgeType = "mq_sub"
	EdgeContains   EdgeType = "contains"
	EdgeModuleFlow EdgeType = "module_flow"
	EdgeFileFlow   EdgeType = "file_flow" // aggregated-mode inter-file edge
)

// ExternalKinds lists the edge types whose unresolved targets are kept as
// synthetic external nodes rather than dropped.
var ExternalKinds = map[EdgeType]bool{
	EdgeAPICall:  true,
	EdgeDBAccess: true,
	EdgeMQPub:    true,
	EdgeMQSub:    true,
}

// Risk is a coarse edge annotation, elevated for edges on detected cycles.
type Risk string

const (
	RiskLow  Risk = "low"
	RiskHigh Risk = "high"
)

// Status records an element's lifecycle under a two-snapshot diff merge.
type Status string

const (
	StatusUnchanged Status = "unchanged"
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
)

// Direction controls override-edge expansion. Bidirectional edges expand to
// two forward edges at construction time and never survive into the graph.
type Direction string

const (
	DirectionForward       Direction = "forward"
	DirectionBidirectional Direction = "bidirectional"
)

// Metadata stores arbitrary key-value pairs attached to symbols.
// It is commonly used for doc strings, complexity metrics, and route info.
// Metadata maps are never nil - they are initialized when a symbol is added.
type Metadata map[string]any

// Symbol represents one function, method, class member, or synthesized node
// in the call graph. The qualified Name is the globally unique key.
//
// The zero value is not usable - Name must be set before adding to a Graph.
type Symbol struct {
	Name   string     // Qualified name, unique across the graph
	File   string     // Originating file path ("" for synthetic nodes)
	Line   int        // Declaration line (0 for synthetic nodes)
	Kind   SymbolKind // Origin of the node
	Layer  string     // Manual physical-layer override from relations overrides ("" if none)
	Status Status     // Diff lifecycle status ("" treated as unchanged)
	Locked bool       // Layout lock: relaxation never moves this node
	Meta   Metadata   // Arbitrary key-value metadata (never nil after AddSymbol)
}

// IsSynthetic reports whether the symbol was created during resolution rather
// than discovered by analysis (files, modules, external targets, the root).
func (s Symbol) IsSynthetic() bool {
	switch s.Kind {
	case KindFile, KindModule, KindProject, KindExternal:
		return true
	}
	return false
}

// IsCallable reports whether the symbol is a function or method body - the
// node kinds that participate in dead-code detection.
func (s Symbol) IsCallable() bool {
	return s.Kind == KindFunction || s.Kind == KindMethod
}

// CallEdge is a directed relation between two symbol names.
// Weight aggregates the occurrence count of identical raw calls (always >= 1).
type CallEdge struct {
	Source string   // Source qualified name
	Target string   // Resolved target qualified name
	Type   EdgeType // Relation classification
	Weight int      // Aggregated occurrence count
	Risk   Risk     // Coarse risk annotation
	Status Status   // Diff lifecycle status ("" treated as unchanged)
}

// IsSelfLoop reports whether the edge starts and ends at the same symbol.
// Self-loops are preserved in the graph but skipped by ordering and layout.
func (e CallEdge) IsSelfLoop() bool { return e.Source == e.Target }
