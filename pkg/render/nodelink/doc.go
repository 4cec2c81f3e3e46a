// Package nodelink renders exploration snapshots as node-link diagrams.
//
// # Usage
//
// Convert a snapshot to DOT, then render it:
//
//	dot := nodelink.ToDOT(snap, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Positions
//
// Each node carries pos="x,y!" so Graphviz's neato engine keeps the layout
// computed by the force simulation instead of running its own. The y axis
// is flipped because snapshot coordinates grow downwards. [Options.Scale]
// maps layout units to points.
//
// # Styling
//
// Fill colors follow the node state: white for unexpanded, light blue for
// expanded, khaki while fetching and salmon after a failed fetch. The seed
// is drawn with a bold outline and pinned nodes with a dashed one.
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly and needs no system install.
package nodelink
