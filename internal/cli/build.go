package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callscape/callscape/pkg/config"
	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/layout"
	"github.com/callscape/callscape/pkg/pipeline"
	"github.com/callscape/callscape/pkg/resolve"
)

const (
	stageResolve = "resolve" // stop after symbol resolution, emit the graph
	stageFull    = "full"    // run the complete pipeline to positioned output
)

// buildOpts holds the command-line flags for the build command.
// These options control input sources, safety limits, layout, and caching.
type buildOpts struct {
	overrides  string // manual override list (JSON)
	previous   string // previous snapshot for diffing (JSON)
	trace      string // runtime trace events (JSON)
	hierarchy  bool   // add project-root/file containment skeleton
	configFile string // TOML limits file
	output     string // output file path (stdout if empty)
	strategy   string // layout strategy: strict, hybrid, legacy, or auto
	iterations int    // relaxation iteration override
	stage      string // pipeline stage to stop at: resolve or full
	noCache    bool   // disable caching
	refresh    bool   // bypass cache reads for this run
}

// newBuildCmd creates the build command for running the full pipeline.
// It reads an analysis snapshot and emits a positioned, classified graph.
//
// Default options:
//   - limits: 600 nodes / 1000 edges before aggregation
//   - strategy: auto (strict above 200 nodes, hybrid below)
//   - stage: full (resolve through layout)
func newBuildCmd() *cobra.Command {
	opts := buildOpts{stage: stageFull}
	limits := config.DefaultLimits()

	cmd := &cobra.Command{
		Use:   "build <analysis.json>",
		Short: "Build a positioned call graph from an analysis snapshot",
		Long: `Build a positioned call graph from an analysis snapshot.

The build command resolves raw symbol and call records into a graph, applies
manual overrides, optionally diffs against a previous snapshot and merges
runtime trace data, then classifies, orders, and lays out the result.

Examples:
  callscape build analysis.json
  callscape build analysis.json --overrides overrides.json -o graph.json
  callscape build analysis.json --previous old.json --trace trace.json
  callscape build analysis.json --stage resolve -o resolved.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.stage != stageResolve && opts.stage != stageFull {
				return fmt.Errorf("invalid stage: %s (must be 'resolve' or 'full')", opts.stage)
			}
			resolved, err := resolveLimits(cmd, &limits, opts.configFile)
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), args[0], &opts, resolved)
		},
	}

	cmd.Flags().StringVar(&opts.overrides, "overrides", "", "manual override list (JSON file)")
	cmd.Flags().StringVar(&opts.previous, "previous", "", "previous snapshot to diff against (JSON file)")
	cmd.Flags().StringVar(&opts.trace, "trace", "", "runtime trace events (JSON file)")
	cmd.Flags().BoolVar(&opts.hierarchy, "hierarchy", false, "add project-root and file containment nodes")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "limits configuration (TOML file)")
	cmd.Flags().IntVar(&limits.MaxNodes, "max-nodes", limits.MaxNodes, "node count before file-level aggregation")
	cmd.Flags().IntVar(&limits.MaxEdges, "max-edges", limits.MaxEdges, "edge count before file-level aggregation")
	cmd.Flags().IntVar(&limits.CycleEdgeLimit, "cycle-limit", limits.CycleEdgeLimit, "edge count above which cycle enumeration is skipped")
	cmd.Flags().IntVar(&limits.MinSpacing, "min-spacing", limits.MinSpacing, "minimum vertical gap between nodes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "layout strategy: strict, hybrid, legacy (auto if empty)")
	cmd.Flags().IntVar(&opts.iterations, "iterations", 0, "relaxation iterations (0 picks by graph size)")
	cmd.Flags().StringVar(&opts.stage, "stage", opts.stage, "stop after stage: resolve, full")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")

	return cmd
}

// resolveLimits merges the limits configuration file with explicit flag
// overrides. Flags changed on the command line win over the file.
func resolveLimits(cmd *cobra.Command, flagLimits *config.Limits, configFile string) (config.Limits, error) {
	if configFile == "" {
		return *flagLimits, nil
	}
	limits, err := config.LoadFile(configFile)
	if err != nil {
		return config.Limits{}, err
	}
	if cmd.Flags().Changed("max-nodes") {
		limits.MaxNodes = flagLimits.MaxNodes
	}
	if cmd.Flags().Changed("max-edges") {
		limits.MaxEdges = flagLimits.MaxEdges
	}
	if cmd.Flags().Changed("cycle-limit") {
		limits.CycleEdgeLimit = flagLimits.CycleEdgeLimit
	}
	if cmd.Flags().Changed("min-spacing") {
		limits.MinSpacing = flagLimits.MinSpacing
	}
	return limits, nil
}

// pipelineOptions loads the optional input files and assembles pipeline options.
func (o *buildOpts) pipelineOptions(ctx context.Context, analysis resolve.AnalysisResult, limits config.Limits) (pipeline.Options, error) {
	opts := pipeline.Options{
		Analysis:   analysis,
		Hierarchy:  o.hierarchy,
		Limits:     limits,
		Strategy:   layout.Strategy(o.strategy),
		Iterations: o.iterations,
		Refresh:    o.refresh,
		Logger:     loggerFromContext(ctx),
	}
	if o.overrides != "" {
		overrides, err := resolve.LoadOverridesFile(o.overrides)
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("load overrides: %w", err)
		}
		opts.Overrides = overrides
	}
	if o.previous != "" {
		prev, err := resolve.LoadAnalysisFile(o.previous)
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("load previous snapshot: %w", err)
		}
		opts.Previous = &prev
	}
	if o.trace != "" {
		trace, err := resolve.LoadTraceFile(o.trace)
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("load trace: %w", err)
		}
		opts.Trace = trace
	}
	return opts, nil
}

// runBuild loads the analysis snapshot and runs the pipeline.
// With --stage resolve it stops after resolution and writes the serialized
// graph; otherwise it writes the positioned output.
func runBuild(ctx context.Context, input string, o *buildOpts, limits config.Limits) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Building %s", input)

	analysis, err := resolve.LoadAnalysisFile(input)
	if err != nil {
		return err
	}
	opts, err := o.pipelineOptions(ctx, analysis, limits)
	if err != nil {
		return err
	}

	c, err := newCache(o.noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	if o.stage == stageResolve {
		return runResolveStage(ctx, runner, opts, o.output)
	}

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d nodes with %d edges", result.Stats.NodeCount, result.Stats.EdgeCount))

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	if err := writePositioned(result.Output, o.output, logger); err != nil {
		return err
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.GraphHit && result.CacheInfo.LayoutHit)
	return nil
}

// runResolveStage runs only symbol resolution and writes the serialized graph.
// The output can be fed back through "callscape layout".
func runResolveStage(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)

	prog := newProgress(logger)
	g, cached, err := runner.ResolveWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d symbols with %d calls", g.NodeCount(), g.EdgeCount()))

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := graph.Write(g, out); err != nil {
		return err
	}
	if output != "" {
		printFile(output)
	}
	printStats(g.NodeCount(), g.EdgeCount(), cached)
	return nil
}

// writePositioned serializes a positioned graph as JSON to path (or stdout).
func writePositioned(p graph.Positioned, path string, logger interface{ Infof(string, ...any) }) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	data, err := graph.MarshalPositioned(p)
	if err != nil {
		return err
	}
	if _, err := out.Write(append(data, '\n')); err != nil {
		return err
	}
	if path != "" {
		logger.Infof("Wrote layout to %s", path)
	}
	return nil
}
