// Package pipeline provides the core graph pipeline for Callscape.
//
// This package implements the complete resolve → classify → order → layout
// pipeline that can be used by CLI and API components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of these stages:
//
//  1. Resolve: Merge analysis results, overrides, diff input, and trace data
//     into one unified graph
//  2. Guard: Decide full versus aggregated resolution from node/edge counts
//  3. Order: Break cycles, compute execution order, flag cycle edges
//  4. Classify: Assign physical and logical layers
//  5. Layout: Compute final node coordinates
//
// Each run is a pure batch computation: one immutable input snapshot in, one
// positioned graph out. Runs never share mutable state, so concurrent
// invocations against independent inputs are safe.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Analysis: analysisResult,
//	    Limits:   config.DefaultLimits(),
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out := result.Output
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/callscape/callscape/pkg/cache"
	"github.com/callscape/callscape/pkg/config"
	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/layout"
	"github.com/callscape/callscape/pkg/resolve"
	"github.com/callscape/callscape/pkg/scale"
)

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input
	Analysis  resolve.AnalysisResult  `json:"analysis"`
	Overrides []resolve.Override      `json:"overrides,omitempty"`
	Previous  *resolve.AnalysisResult `json:"previous,omitempty"`
	Trace     []resolve.TraceEvent    `json:"trace,omitempty"`

	// Hierarchy adds the project-root/file containment skeleton to the graph.
	Hierarchy bool `json:"hierarchy,omitempty"`

	// Limits are the safety thresholds; zero value means defaults.
	Limits config.Limits `json:"limits,omitempty"`

	// Layout options
	Strategy   layout.Strategy `json:"strategy,omitempty"`
	Iterations int             `json:"iterations,omitempty"`

	// Refresh bypasses the cache for this run.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Limits == (config.Limits{}) {
		o.Limits = config.DefaultLimits()
	}
	o.Limits = o.Limits.Clamped()
	if err := o.Limits.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutConfig builds the layout configuration for this run.
func (o *Options) LayoutConfig() layout.Config {
	return layout.Config{
		MinSpacing: float64(o.Limits.MinSpacing),
		Strategy:   o.Strategy,
		Iterations: o.Iterations,
	}
}

// GraphKeyOpts returns cache key options for resolved-graph caching.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	opts := cache.GraphKeyOpts{
		MaxNodes:       o.Limits.MaxNodes,
		MaxEdges:       o.Limits.MaxEdges,
		CycleEdgeLimit: o.Limits.CycleEdgeLimit,
	}
	if len(o.Overrides) > 0 {
		opts.OverridesHash = hashJSON(o.Overrides)
	}
	if o.Previous != nil {
		opts.PreviousHash = hashJSON(o.Previous)
	}
	if len(o.Trace) > 0 {
		opts.TraceHash = hashJSON(o.Trace)
	}
	return opts
}

// LayoutKeyOpts returns cache key options for layout caching.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Strategy:   string(o.Strategy),
		Iterations: o.Iterations,
		MinSpacing: o.Limits.MinSpacing,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the resolved, annotated symbol graph.
	Graph *graph.Graph

	// GraphHash is the content hash of the resolved graph.
	GraphHash string

	// Output is the positioned, classified, render-ready graph.
	Output graph.Positioned

	// Mode records the resolution the run operated at.
	Mode scale.Mode

	// Strategy is the layout algorithm that ran.
	Strategy layout.Strategy

	// Warnings lists recoverable defects (locked-node overlaps).
	Warnings []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	CycleCount  int
	ResolveTime time.Duration
	LayoutTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit  bool // Whether the resolved graph came from cache
	LayoutHit bool // Whether the positioned output came from cache
}
