// Package graph defines the directed multigraph of symbols and call edges
// that every pipeline stage operates on, plus the two serialization formats:
// the resolved interchange form (Serialized) and the render-ready positioned
// form (Positioned).
//
// Symbols keep insertion order throughout: declaration order is what makes
// suffix-match resolution, fallback ordering, and column stacking
// deterministic across runs.
package graph
