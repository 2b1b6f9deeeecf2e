// Package config defines the tunable limits for graph construction and layout.
//
// The original design read these values from a process-wide mutable settings
// store. Here they are an explicit value type passed into each entry point:
// callers construct a Limits (usually from DefaultLimits or a TOML file),
// validate it once, and hand it to the pipeline. Nothing in this module reads
// global state.
package config

import (
	"github.com/BurntSushi/toml"

	"github.com/callscape/callscape/pkg/errors"
)

// Default values for graph safety thresholds and layout spacing.
const (
	// DefaultMaxNodes is the symbol count above which the pipeline switches
	// to the aggregated file-level graph.
	DefaultMaxNodes = 600

	// DefaultMaxEdges is the resolved-edge count above which the pipeline
	// switches to the aggregated file-level graph.
	DefaultMaxEdges = 1000

	// DefaultCycleEdgeLimit bounds cycle enumeration. Graphs with more edges
	// skip enumeration entirely rather than risk exponential blowup.
	DefaultCycleEdgeLimit = 200

	// DefaultMinSpacing is the minimum pixel gap enforced between nodes.
	DefaultMinSpacing = 30

	// HardNodeCap is the absolute ceiling for MaxNodes. User configuration
	// above this value is clamped, never honored.
	HardNodeCap = 2000
)

// Limits holds the caller-supplied safety thresholds for one pipeline run.
// The zero value is not usable - use DefaultLimits or LoadFile.
type Limits struct {
	// MaxNodes is the full-mode symbol count ceiling (clamped to HardNodeCap).
	MaxNodes int `toml:"max_nodes" json:"max_nodes,omitempty"`

	// MaxEdges is the full-mode resolved-edge count ceiling.
	MaxEdges int `toml:"max_edges" json:"max_edges,omitempty"`

	// CycleEdgeLimit is the edge count above which cycle enumeration is skipped.
	CycleEdgeLimit int `toml:"cycle_edge_limit" json:"cycle_edge_limit,omitempty"`

	// MinSpacing is the minimum pixel gap between laid-out nodes.
	MinSpacing int `toml:"min_spacing" json:"min_spacing,omitempty"`
}

// DefaultLimits returns the built-in safety thresholds.
func DefaultLimits() Limits {
	return Limits{
		MaxNodes:       DefaultMaxNodes,
		MaxEdges:       DefaultMaxEdges,
		CycleEdgeLimit: DefaultCycleEdgeLimit,
		MinSpacing:     DefaultMinSpacing,
	}
}

// Validate checks that all thresholds are sane and returns a structured error
// for caller contract violations. Negative thresholds are never guessed
// around - they are reported immediately.
func (l Limits) Validate() error {
	if l.MaxNodes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_nodes must be positive, got %d", l.MaxNodes)
	}
	if l.MaxEdges <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_edges must be positive, got %d", l.MaxEdges)
	}
	if l.CycleEdgeLimit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cycle_edge_limit must not be negative, got %d", l.CycleEdgeLimit)
	}
	if l.MinSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "min_spacing must not be negative, got %d", l.MinSpacing)
	}
	return nil
}

// Clamped returns a copy with MaxNodes capped at HardNodeCap.
// User settings above the cap are lowered silently; the cap exists to keep
// full-mode layout bounded no matter what the config file says.
func (l Limits) Clamped() Limits {
	if l.MaxNodes > HardNodeCap {
		l.MaxNodes = HardNodeCap
	}
	return l
}

// fileConfig is the on-disk TOML shape. Fields absent from the file keep
// their defaults.
type fileConfig struct {
	Limits Limits `toml:"limits"`
}

// LoadFile reads limits from a TOML file, merging over DefaultLimits.
// Zero-valued fields in the file fall back to defaults; the result is
// clamped and validated.
func LoadFile(path string) (Limits, error) {
	cfg := fileConfig{Limits: DefaultLimits()}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Limits{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load config %s", path)
	}

	l := cfg.Limits
	defaults := DefaultLimits()
	if l.MaxNodes == 0 {
		l.MaxNodes = defaults.MaxNodes
	}
	if l.MaxEdges == 0 {
		l.MaxEdges = defaults.MaxEdges
	}
	if l.CycleEdgeLimit == 0 {
		l.CycleEdgeLimit = defaults.CycleEdgeLimit
	}
	if l.MinSpacing == 0 {
		l.MinSpacing = defaults.MinSpacing
	}

	l = l.Clamped()
	if err := l.Validate(); err != nil {
		return Limits{}, err
	}
	return l, nil
}
