package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/pipeline"
	"github.com/callscape/callscape/pkg/resolve"
)

// newDiffCmd creates the diff command for comparing two analysis snapshots.
// The merged graph keeps removed symbols so the change surface stays visible.
func newDiffCmd() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "diff <current.json> <previous.json>",
		Short: "Compare two analysis snapshots",
		Long: `Compare two analysis snapshots.

The diff command resolves both snapshots, merges them into a single graph
with per-node and per-edge change statuses, and reports what was added and
removed. The merged positioned graph can be written with --output.

Examples:
  callscape diff analysis.json old_analysis.json
  callscape diff analysis.json old_analysis.json -o diff.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), args[0], args[1], output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for the merged layout (omit to skip)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runDiff resolves both snapshots through the pipeline and prints change counts.
func runDiff(ctx context.Context, currentPath, previousPath, output string, noCache bool) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Diffing %s against %s", currentPath, previousPath)

	current, err := resolve.LoadAnalysisFile(currentPath)
	if err != nil {
		return err
	}
	previous, err := resolve.LoadAnalysisFile(previousPath)
	if err != nil {
		return err
	}

	c, err := newCache(noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Analysis: current,
		Previous: &previous,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	var added, removed, unchanged int
	for _, n := range result.Output.Nodes {
		switch n.Params.Status {
		case graph.StatusAdded:
			added++
		case graph.StatusRemoved:
			removed++
		default:
			unchanged++
		}
	}
	prog.done(fmt.Sprintf("Compared %d symbols", len(result.Output.Nodes)))

	printSuccess("%d added, %d removed, %d unchanged", added, removed, unchanged)

	if output != "" {
		if err := writePositioned(result.Output, output, logger); err != nil {
			return err
		}
		printFile(output)
	}
	return nil
}
