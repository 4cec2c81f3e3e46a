package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/wikigraph/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Scale converts layout units to points. Zero means 1.
	Scale float64

	// Detailed adds the node state and last error to each label.
	Detailed bool
}

var stateFill = map[string]string{
	"unexpanded": "white",
	"fetching":   "khaki",
	"expanded":   "lightblue",
	"failed":     "salmon",
}

// ToDOT converts a snapshot to Graphviz DOT for the neato engine. Nodes are
// pinned at their snapshot positions.
func ToDOT(g graph.Graph, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [color=\"#00000066\", arrowsize=0.5];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := fmtAttrs(n, n.ID == g.Seed, scale, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	label := n.ID + "\n" + n.State
	if n.Error != "" {
		label += "\n" + n.Error
	}
	return label
}

func fmtAttrs(n graph.Node, seed bool, scale float64, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(n.X*scale), fmtCoord(-n.Y*scale)),
	}
	if fill, ok := stateFill[n.State]; ok && fill != "white" {
		attrs = append(attrs, "fillcolor="+fill)
	}
	switch {
	case seed:
		attrs = append(attrs, "penwidth=2.5")
	case n.Pinned:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func fmtCoord(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderSVG renders DOT to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT to PNG with the neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed point size with a viewBox-only
// root so the SVG scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
