package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callscape/callscape/pkg/config"
	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/layout"
	"github.com/callscape/callscape/pkg/pipeline"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output     string // output file path (stdout if empty)
	strategy   string // layout strategy: strict, hybrid, legacy, or auto
	iterations int    // relaxation iteration override
	minSpacing int    // minimum vertical gap between nodes
	noCache    bool   // disable caching
	refresh    bool   // bypass cache reads for this run
}

// newLayoutCmd creates the layout command for re-running the post-resolve
// stages on a serialized graph.
//
// The graph input is typically produced by "build --stage resolve", which
// lets callers resolve once and experiment with layout settings cheaply.
func newLayoutCmd() *cobra.Command {
	opts := layoutOpts{minSpacing: config.DefaultMinSpacing}

	cmd := &cobra.Command{
		Use:   "layout <graph.json>",
		Short: "Compute a layout for a serialized call graph",
		Long: `Compute a layout for a serialized call graph.

The layout command takes a graph.json file (produced by 'build --stage
resolve') and runs the scale guard, cycle engine, classification, and layout
stages. Resolution is skipped entirely.

Examples:
  callscape layout graph.json -o layout.json
  callscape layout graph.json --strategy hybrid --iterations 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "layout strategy: strict, hybrid, legacy (auto if empty)")
	cmd.Flags().IntVar(&opts.iterations, "iterations", 0, "relaxation iterations (0 picks by graph size)")
	cmd.Flags().IntVar(&opts.minSpacing, "min-spacing", opts.minSpacing, "minimum vertical gap between nodes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")

	return cmd
}

// runLayout loads the serialized graph and runs the post-resolve pipeline.
func runLayout(ctx context.Context, input string, o *layoutOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Laying out %s", input)

	g, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	logger.Infof("Loaded graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())

	limits := config.DefaultLimits()
	limits.MinSpacing = o.minSpacing
	opts := pipeline.Options{
		Limits:     limits,
		Strategy:   layout.Strategy(o.strategy),
		Iterations: o.iterations,
		Refresh:    o.refresh,
		Logger:     logger,
	}

	c, err := newCache(o.noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.ExecuteGraph(ctx, g, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Computed %s layout for %d nodes", result.Strategy, len(result.Output.Nodes)))

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	if err := writePositioned(result.Output, o.output, logger); err != nil {
		return err
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
	return nil
}
