package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wikigraph/pkg/graph"
	"github.com/matzehuels/wikigraph/pkg/render/nodelink"
)

// Output formats.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPNG  = "png"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatJSON: true, formatDOT: true, formatSVG: true, formatPNG: true}

// outputOpts are the flags shared by render and export.
type outputOpts struct {
	output   string   // output file, base path for several formats, or "-" for stdout
	formats  []string // output formats
	detailed bool     // label nodes with their state
	scale    float64  // layout units per inch in DOT output
}

func (o *outputOpts) register(cmd *cobra.Command, formatsStr *string, defaultFormat string) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file, base path for several formats, or - for stdout")
	cmd.Flags().StringVarP(formatsStr, "format", "f", defaultFormat, "output format(s): json, dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&o.detailed, "detailed", false, "label nodes with their expansion state")
	cmd.Flags().Float64Var(&o.scale, "scale", 1, "scale applied to layout coordinates")
}

func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts outputOpts

	cmd := &cobra.Command{
		Use:   "render <frame.json>",
		Short: "Render a saved graph frame to DOT, SVG or PNG",
		Long: `Render a graph frame written by export (or fetched from /api/snapshot).

Node positions come from the frame, so the picture matches what the session
showed. Graphviz is embedded; no external binaries are needed.`,
		Example: `  wikigraph render graph_theory.json
  wikigraph render graph_theory.json -f svg,png -o out/graph`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			ctx := withLogger(cmd.Context(), c.Logger)
			return runRender(ctx, args[0], opts)
		},
	}

	opts.register(cmd, &formatsStr, formatSVG)
	return cmd
}

func runRender(ctx context.Context, input string, opts outputOpts) error {
	logger := loggerFromContext(ctx)

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded frame: %d articles, %d links", len(g.Nodes), len(g.Edges))

	paths, err := writeOutputs(ctx, g, basePath(opts.output, input), opts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// parseFormats parses the --format flag. An empty flag means svg.
func parseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{formatSVG}, nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if !validFormats[f] {
			return nil, fmt.Errorf("invalid format: %s (must be json, dot, svg or png)", f)
		}
		formats = append(formats, f)
	}
	return formats, nil
}

// basePath derives the base output path. An empty output strips the
// extension from fallback; a known format extension on output is stripped.
func basePath(output, fallback string) string {
	if output == "" {
		return strings.TrimSuffix(fallback, filepath.Ext(fallback))
	}
	if ext := filepath.Ext(output); validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeOutputs encodes g in every requested format and writes base.<format>.
// A base of "-" writes a single format to stdout. It returns the paths written.
func writeOutputs(ctx context.Context, g graph.Graph, base string, opts outputOpts) ([]string, error) {
	if base == "-" && len(opts.formats) != 1 {
		return nil, fmt.Errorf("stdout output takes exactly one format, got %d", len(opts.formats))
	}
	var written []string
	for _, format := range opts.formats {
		data, err := encodeGraph(ctx, g, format, opts)
		if err != nil {
			return written, fmt.Errorf("%s: %w", format, err)
		}
		if base == "-" {
			_, err := os.Stdout.Write(data)
			return written, err
		}
		path := base + "." + format
		if err := writeFile(path, data); err != nil {
			return written, err
		}
		loggerFromContext(ctx).Debugf("Generated %s: %d bytes", path, len(data))
		written = append(written, path)
	}
	return written, nil
}

// encodeGraph renders g as one output format.
func encodeGraph(ctx context.Context, g graph.Graph, format string, opts outputOpts) ([]byte, error) {
	if format == formatJSON {
		return graph.MarshalGraph(g)
	}
	dot := nodelink.ToDOT(g, nodelink.Options{Scale: opts.scale, Detailed: opts.detailed})
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
