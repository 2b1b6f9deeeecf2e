package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/callscape/callscape/pkg/cache"
	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/graph/transform"
	"github.com/callscape/callscape/pkg/layout"
	"github.com/callscape/callscape/pkg/observability"
	"github.com/callscape/callscape/pkg/resolve"
	"github.com/callscape/callscape/pkg/scale"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete resolve → classify → order → layout pipeline
// with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Resolve
	resolveStart := time.Now()
	g, graphHit, err := r.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	result, err := r.ExecuteGraph(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ResolveTime = time.Since(resolveStart) - result.Stats.LayoutTime
	result.CacheInfo.GraphHit = graphHit

	r.Logger.Info("resolved call graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.ResolveTime)

	return result, nil
}

// ExecuteGraph runs the post-resolve pipeline stages (scale guard, cycle
// engine, classification, layout) on an already-resolved graph. The layout
// command uses this to process serialized graphs without re-resolving.
func (r *Runner) ExecuteGraph(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Graph: g}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Compute graph hash for cache keys and API responses
	if graphData, err := graph.Marshal(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	// Stage 2: Scale guard
	result.Mode = scale.Decide(g.NodeCount(), g.EdgeCount(), opts.Limits)
	work := g
	layoutCfg := opts.LayoutConfig()
	if result.Mode == scale.AggregatedMode {
		work = scale.Aggregate(g)
		// Aggregated output always uses the strict layered layout for its
		// bounded runtime guarantee.
		layoutCfg.Strategy = layout.StrategyStrict
		observability.Pipeline().OnFallback(ctx, "scale", "aggregated to file-level graph")
		r.Logger.Warn("graph exceeds limits, aggregating to file level",
			"nodes", g.NodeCount(),
			"edges", g.EdgeCount(),
			"files", work.NodeCount())
	}

	// Stage 3: Cycles and execution order
	cycles := transform.SimpleCycles(work, opts.Limits.CycleEdgeLimit)
	if cycles == nil && work.EdgeCount() > opts.Limits.CycleEdgeLimit {
		observability.Pipeline().OnFallback(ctx, "cycles", "enumeration skipped above edge limit")
		r.Logger.Debug("cycle enumeration skipped",
			"edges", work.EdgeCount(),
			"limit", opts.Limits.CycleEdgeLimit)
	}
	result.Stats.CycleCount = len(cycles)
	tagCycleEdges(work, cycles)

	seq, ordered := transform.ExecutionOrder(work)
	if !ordered {
		observability.Pipeline().OnFallback(ctx, "order", "in-degree fallback ordering")
		r.Logger.Warn("topological sort incomplete, using in-degree ordering")
	}

	// Stage 4 + 5: Classify and layout
	layoutStart := time.Now()
	output, layoutRes, layoutHit, err := r.LayoutWithCacheInfo(ctx, work, seq, result.Mode, layoutCfg, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Output = output
	result.Strategy = layoutRes.Strategy
	result.Warnings = layoutRes.Warnings
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	for _, w := range result.Warnings {
		r.Logger.Warn(w)
	}
	r.Logger.Info("computed layout",
		"strategy", result.Strategy,
		"mode", result.Mode,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// ResolveWithCacheInfo resolves the input snapshot with caching and returns
// cache hit info.
func (r *Runner) ResolveWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.GraphKey(hashJSON(opts.Analysis), opts.GraphKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "graph")
			if g, err := graph.Read(bytes.NewReader(data)); err == nil {
				return g, true, nil // Cache hit
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "graph")
		}
	}

	g, err := r.resolveSnapshot(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if !opts.Refresh {
		if data, err := graph.Marshal(g); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.GraphTTL)
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	return g, false, nil // Cache miss
}

// resolveSnapshot runs resolution, diff merge, trace aggregation, and the
// optional containment skeleton for one input snapshot.
func (r *Runner) resolveSnapshot(ctx context.Context, opts Options) (*graph.Graph, error) {
	start := time.Now()
	observability.Pipeline().OnResolveStart(ctx, "analysis")

	g, err := resolve.Resolve(opts.Analysis, opts.Overrides)
	observability.Pipeline().OnResolveComplete(ctx, "analysis", nodeCountOrZero(g), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if opts.Previous != nil {
		prev, err := resolve.Resolve(*opts.Previous, nil)
		if err != nil {
			// A broken previous snapshot only loses the diff annotations; the
			// current snapshot still resolves (per-source isolation).
			r.Logger.Warn("previous snapshot unusable, skipping diff", "err", err)
		} else {
			g = resolve.MergeGraphs(g, prev)
		}
	}

	if len(opts.Trace) > 0 {
		resolve.ApplyTrace(g, opts.Trace)
	}
	if opts.Hierarchy {
		resolve.AddFileHierarchy(g)
	}
	return g, nil
}

// LayoutWithCacheInfo classifies and lays out the working graph with caching
// and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, work *graph.Graph, seq map[string]int, mode scale.Mode, layoutCfg layout.Config, opts Options) (graph.Positioned, layout.Result, bool, error) {
	graphData, err := graph.Marshal(work)
	if err != nil {
		return graph.Positioned{}, layout.Result{}, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "layout")
			if cached, err := graph.UnmarshalPositioned(data); err == nil {
				// Name the algorithm that produced the stored layout; the
				// requested strategy may be the empty auto sentinel.
				effective := layout.PickStrategy(work.NodeCount(), layoutCfg.Strategy)
				return cached, layout.Result{Strategy: effective}, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		} else {
			observability.Cache().OnCacheMiss(ctx, "layout")
		}
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, string(layoutCfg.Strategy), work.NodeCount())
	layoutRes := layout.Compute(work, layoutCfg)
	observability.Pipeline().OnLayoutComplete(ctx, string(layoutRes.Strategy), time.Since(start), nil)

	output := buildPositioned(work, seq, layoutRes, mode, len(opts.Trace) > 0)

	if !opts.Refresh {
		if data, err := graph.MarshalPositioned(output); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.LayoutTTL)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return output, layoutRes, false, nil // Cache miss
}

// tagCycleEdges elevates the risk of every edge participating in an
// enumerated cycle. With enumeration skipped (cycles nil) no edge is tagged.
func tagCycleEdges(g *graph.Graph, cycles [][]string) {
	if len(cycles) == 0 {
		return
	}
	set := transform.CycleEdgeSet(cycles)
	edges := g.Edges()
	for i := range edges {
		if set[[2]string{edges[i].Source, edges[i].Target}] {
			edges[i].Risk = graph.RiskHigh
		}
	}
	g.SetEdges(edges)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func nodeCountOrZero(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return g.NodeCount()
}

// hashJSON hashes any JSON-serializable value for cache key construction.
func hashJSON(v any) string {
	data, _ := json.Marshal(v)
	return cache.Hash(data)
}
