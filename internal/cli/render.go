package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/callscape/callscape/pkg/graph"
	"github.com/callscape/callscape/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path (derived from input if empty)
	format   string // output format: dot, svg, png
	detailed bool   // include file, line, and execution order in labels
	pinned   bool   // emit computed coordinates as fixed positions
}

// newRenderCmd creates the render command for turning a positioned graph
// into a visual artifact. DOT output is plain text; SVG and PNG go through
// Graphviz.
func newRenderCmd() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render <layout.json>",
		Short: "Render a positioned graph to DOT, SVG, or PNG",
		Long: `Render a positioned graph to DOT, SVG, or PNG.

The render command takes a layout.json file (produced by 'build' or
'layout') and generates a visual artifact. With --pinned, the computed
coordinates are embedded so Graphviz reproduces the pipeline's layout
instead of its own.

Examples:
  callscape render layout.json
  callscape render layout.json -f png -o graph.png
  callscape render layout.json -f dot --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (derived from input if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include file, line, and execution order in labels")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "pin nodes to their computed coordinates")

	return cmd
}

// validFormats is the set of supported render formats.
var validFormats = map[string]bool{formatDOT: true, formatSVG: true, formatPNG: true}

// validateFormat checks that the requested format is supported.
func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", f)
	}
	return nil
}

// outputPath derives the artifact path from the output flag and input name.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
}

// runRender loads the positioned graph and writes the requested artifact.
func runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	p, err := graph.ReadPositionedFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	logger.Infof("Loaded layout: %d nodes, %d edges", len(p.Nodes), len(p.Edges))

	dot := render.ToDOT(p, render.Options{Detailed: opts.detailed, Pinned: opts.pinned})

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		spinner := newSpinnerWithContext(ctx, "Rendering SVG...")
		spinner.Start()
		data, err = render.SVG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return err
		}
		spinner.Stop()
	case formatPNG:
		spinner := newSpinnerWithContext(ctx, "Rendering PNG...")
		spinner.Start()
		data, err = render.PNG(ctx, dot)
		if err != nil {
			spinner.StopWithError("Rendering failed")
			return err
		}
		spinner.Stop()
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	path := outputPath(opts.output, input, opts.format)
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	printSuccess("Generated %s", path)
	return nil
}
