package resolve

import (
	"strings"

	"github.com/callscape/callscape/pkg/errors"
	"github.com/callscape/callscape/pkg/graph"
)

// Resolve merges declared symbols, raw call tuples, and manual overrides into
// one unified Graph.
//
// Symbols enter the graph in declaration order. Call targets resolve by exact
// qualified-name match first, then by `.<name>` suffix match across all known
// symbols, taking the first match in declaration order. Unresolved targets of
// an external edge kind (api_call, db_access, mq_pub, mq_sub) are kept as
// edges to a synthesized external node; all other unresolved targets are
// dropped. Raw calls that collapse to the same (source, target, type) become
// one edge whose weight is the occurrence count.
//
// Override endpoints missing from the graph are synthesized, and a
// bidirectional override expands into two forward edges sharing weight, risk,
// and type. A malformed override aborts resolution with an INVALID_OVERRIDE
// error; malformed analysis entries are skipped instead, per-source isolation
// being the caller's contract.
func Resolve(analysis AnalysisResult, overrides []Override) (*graph.Graph, error) {
	g := graph.New()

	for _, fn := range analysis.Functions {
		if fn.Name == "" {
			continue
		}
		if g.Has(fn.Name) {
			continue // analyzers occasionally repeat declarations
		}
		meta := graph.Metadata{}
		for k, v := range fn.Meta {
			meta[k] = v
		}
		if fn.Doc != "" {
			meta[graph.MetaDoc] = fn.Doc
		}
		if len(fn.Args) > 0 {
			meta[graph.MetaArgs] = fn.Args
		}
		// The declared kind is preserved as-is, empty included. Only an
		// explicit function or method declaration counts as callable, and a
		// symbol without any kind hint classifies into the OTHER layer.
		_ = g.AddSymbol(graph.Symbol{
			Name: fn.Name,
			File: fn.File,
			Line: fn.Lineno,
			Kind: graph.SymbolKind(fn.Kind),
			Meta: meta,
		})
	}

	if err := resolveCalls(g, analysis.Calls); err != nil {
		return nil, err
	}
	if err := applyOverrides(g, overrides); err != nil {
		return nil, err
	}

	annotateComplexity(g, analysis)
	return g, nil
}

// resolveCalls resolves raw call tuples against the declared symbols and
// collapses duplicates into weighted edges, preserving first-occurrence order.
func resolveCalls(g *graph.Graph, calls []RawCall) error {
	type edgeKey struct {
		source, target string
		typ            graph.EdgeType
	}
	weights := make(map[edgeKey]int)
	var order []edgeKey
	urls := make(map[edgeKey]string)

	for _, call := range calls {
		if call.Source == "" || call.Target == "" || !g.Has(call.Source) {
			continue
		}
		typ := edgeType(call.Type)
		target, ok := resolveTarget(g, call.Target)
		if !ok {
			if !graph.ExternalKinds[typ] {
				continue
			}
			// External calls keep their unresolved target as a synthetic node.
			target = call.Target
			if !g.Has(target) {
				meta := graph.Metadata{}
				if call.URL != "" {
					meta[graph.MetaURL] = call.URL
				}
				_ = g.AddSymbol(graph.Symbol{Name: target, Kind: graph.KindExternal, Meta: meta})
			}
		}

		key := edgeKey{source: call.Source, target: target, typ: typ}
		if weights[key] == 0 {
			order = append(order, key)
			if call.URL != "" {
				urls[key] = call.URL
			}
		}
		weights[key]++
	}

	for _, key := range order {
		err := g.AddEdge(graph.CallEdge{
			Source: key.source,
			Target: key.target,
			Type:   key.typ,
			Weight: weights[key],
		})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "add resolved edge %s->%s", key.source, key.target)
		}
	}
	return nil
}

func edgeType(raw string) graph.EdgeType {
	if raw == "" {
		return graph.EdgeCall
	}
	return graph.EdgeType(raw)
}

// resolveTarget maps a possibly unqualified call target to a known symbol
// name. Exact match wins; otherwise the first symbol (in declaration order)
// whose qualified name ends in ".<target>" is taken. Suffix ambiguity is a
// known approximation: with multiple candidates the earliest declaration wins.
func resolveTarget(g *graph.Graph, target string) (string, bool) {
	if g.Has(target) {
		return target, true
	}
	suffix := "." + target
	for _, name := range g.Names() {
		if strings.HasSuffix(name, suffix) {
			return name, true
		}
	}
	return "", false
}

func applyOverrides(g *graph.Graph, overrides []Override) error {
	for i, o := range overrides {
		if o.Source == "" || o.Target == "" {
			return errors.New(errors.ErrCodeInvalidOverride, "override %d: source and target are required", i)
		}
		dir := graph.Direction(o.Direction)
		if o.Direction == "" {
			dir = graph.DirectionForward
		}
		if dir != graph.DirectionForward && dir != graph.DirectionBidirectional {
			return errors.New(errors.ErrCodeInvalidOverride, "override %d: unknown direction %q", i, o.Direction)
		}

		ensureOverrideNode(g, o.Source, o)
		ensureOverrideNode(g, o.Target, o)
		if o.Layer != "" {
			if sym, ok := g.Symbol(o.Target); ok {
				sym.Layer = o.Layer
			}
		}

		edge := graph.CallEdge{
			Source: o.Source,
			Target: o.Target,
			Type:   edgeType(o.Type),
			Weight: o.Weight,
			Risk:   graph.Risk(o.RiskLevel),
		}
		if err := g.AddEdge(edge); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOverride, err, "override %d", i)
		}
		if dir == graph.DirectionBidirectional {
			rev := edge
			rev.Source, rev.Target = edge.Target, edge.Source
			if err := g.AddEdge(rev); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidOverride, err, "override %d reverse", i)
			}
		}
	}
	return nil
}

// ensureOverrideNode synthesizes a node for an override endpoint that
// analysis never declared.
func ensureOverrideNode(g *graph.Graph, name string, o Override) {
	if g.Has(name) {
		return
	}
	meta := graph.Metadata{}
	if o.Module != "" {
		meta["module"] = o.Module
	}
	_ = g.AddSymbol(graph.Symbol{
		Name: name,
		Kind: overrideKind(o.NodeType),
		Meta: meta,
	})
}

func overrideKind(nodeType string) graph.SymbolKind {
	switch nodeType {
	case string(graph.KindModule):
		return graph.KindModule
	case string(graph.KindFile):
		return graph.KindFile
	case string(graph.KindExternal):
		return graph.KindExternal
	case string(graph.KindImplicit):
		return graph.KindImplicit
	default:
		return graph.KindFunction
	}
}

// annotateComplexity attaches a coarse complexity score to every declared
// callable: argument count plus resolved out-degree.
func annotateComplexity(g *graph.Graph, analysis AnalysisResult) {
	argCount := make(map[string]int, len(analysis.Functions))
	for _, fn := range analysis.Functions {
		argCount[fn.Name] = len(fn.Args)
	}
	for _, s := range g.Symbols() {
		if !s.IsCallable() {
			continue
		}
		s.Meta[graph.MetaComplexity] = argCount[s.Name] + g.OutDegree(s.Name)
	}
}

// ApplyTrace aggregates runtime trace events into per-node hit counts.
// Targets resolve the same way call targets do. Every callable receives a
// hit count (zero included) so downstream dead-code flags can distinguish
// "never hit" from "no trace supplied".
func ApplyTrace(g *graph.Graph, events []TraceEvent) {
	hits := make(map[string]int)
	for _, ev := range events {
		if name, ok := resolveTarget(g, ev.Target); ok {
			hits[name]++
		}
	}
	for _, s := range g.Symbols() {
		if s.IsCallable() {
			s.Meta[graph.MetaHits] = hits[s.Name]
		}
	}
}
