package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cratecio "github.com/matzehuels/cratec/pkg/io"
	"github.com/matzehuels/cratec/pkg/render/nodelink"
)

// Graph output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the graph of local path dependencies",
		Long: `Compile the package and every local package it reaches through path
dependencies, then draw the resulting graph.

Formats:
  dot   Graphviz source (default)
  svg   rendered with the embedded Graphviz
  json  nodes and edges with package metadata

Dev dependencies are drawn dashed and build dependencies dotted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), format, output, detailed)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatDOT, "output format: dot, svg, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include target and dependency counts in node labels")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, w io.Writer, format, output string, detailed bool) error {
	switch format {
	case FormatDOT, FormatSVG, FormatJSON:
	default:
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, json)", format)
	}

	dir, err := c.packageDir()
	if err != nil {
		return err
	}
	prog := newProgress(c.Logger)
	res, err := c.newRunner().LoadGraph(ctx, dir)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Compiled %d package(s)", res.Stats.Packages))

	var data []byte
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := cratecio.WriteGraphJSON(res.Graph, &buf); err != nil {
			return err
		}
		data = buf.Bytes()
	case FormatSVG:
		data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(res.Graph, nodelink.Options{Detailed: detailed}))
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	default:
		data = []byte(nodelink.ToDOT(res.Graph, nodelink.Options{Detailed: detailed}))
	}

	if err := writeOutput(w, output, data); err != nil {
		return err
	}
	if output != "" {
		printSuccess(w, "Wrote %s graph", format)
		printFile(w, output)
		printStats(w, stat{res.Graph.NodeCount(), "package"}, stat{res.Graph.EdgeCount(), "edge"})
	}
	return nil
}
