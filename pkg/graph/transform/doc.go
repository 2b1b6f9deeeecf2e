// Package transform provides the structural graph passes that run between
// resolution and layout: cycle detection and breaking, bounded simple-cycle
// enumeration, execution ordering, and topological generation grouping.
//
// All passes are deterministic for a given symbol insertion order. Passes
// that remove edges either mutate an explicit working copy (BreakCycles) or
// clone internally (ExecutionOrder, AcyclicProjection); the resolved graph a
// caller holds is never changed behind its back.
package transform
