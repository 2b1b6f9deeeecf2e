// Package cache provides pluggable caching for resolved graphs and computed
// layouts. Backends share one byte-oriented interface: a file cache for CLI
// usage, Redis and MongoDB for the serve deployment, and a null cache for
// tests and --no-cache runs. Key construction is separated into the Keyer
// interface so multi-tenant deployments can namespace keys without touching
// the backends.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached artifact class. Resolved graphs follow the source
// tree and go stale quickly; layouts are pure functions of a graph hash and
// can live longer.
const (
	GraphTTL  = 24 * time.Hour
	LayoutTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the key
	// was present; absence is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts captures every input that changes a resolved graph, so two
// runs with different thresholds or override sets never share an entry.
type GraphKeyOpts struct {
	MaxNodes       int
	MaxEdges       int
	CycleEdgeLimit int
	OverridesHash  string
	PreviousHash   string
	TraceHash      string
}

// LayoutKeyOpts captures every input that changes a computed layout.
type LayoutKeyOpts struct {
	Strategy   string
	Iterations int
	MinSpacing int
}

// Keyer generates cache keys for the two cached artifact classes.
type Keyer interface {
	// GraphKey generates a key for resolved-graph caching from the hash of
	// the raw analysis input.
	GraphKey(analysisHash string, opts GraphKeyOpts) string

	// LayoutKey generates a key for layout caching from the hash of the
	// resolved graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer is the standard key generation scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for resolved-graph caching.
func (k *DefaultKeyer) GraphKey(analysisHash string, opts GraphKeyOpts) string {
	return hashKey("graph", analysisHash, opts.MaxNodes, opts.MaxEdges,
		opts.CycleEdgeLimit, opts.OverridesHash, opts.PreviousHash, opts.TraceHash)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts.Strategy, opts.Iterations, opts.MinSpacing)
}
