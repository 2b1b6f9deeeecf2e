package graph

// Well-known metadata keys. The Meta map stays open for passthrough values,
// but keys the pipeline itself reads or writes are named here so producers
// and consumers cannot drift apart.
const (
	// MetaDoc holds the symbol's doc string.
	MetaDoc = "doc"

	// MetaArgs holds the declared argument names ([]string).
	MetaArgs = "args"

	// MetaComplexity holds a coarse int complexity score derived from the
	// declaration (argument count plus out-degree, computed at resolve time).
	MetaComplexity = "complexity"

	// MetaHits holds the trace hit count (int). Present only when trace data
	// was supplied.
	MetaHits = "hits"

	// MetaURL holds the endpoint hint of an external call edge's target.
	MetaURL = "url"

	// MetaFuncCount holds the contained-symbol count of an aggregate file node.
	MetaFuncCount = "func_count"
)

// MetaInt reads an int-valued metadata key, tolerating the float64 that
// JSON round-trips produce. Returns 0 if absent or non-numeric.
func MetaInt(m Metadata, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// MetaString reads a string-valued metadata key. Returns "" if absent.
func MetaString(m Metadata, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
