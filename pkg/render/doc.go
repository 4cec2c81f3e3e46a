// Package render turns exploration snapshots into static images.
//
// The [nodelink] subpackage writes Graphviz DOT with every node pinned at
// its simulated position and renders it to SVG or PNG in-process, so an
// export looks like the session it was taken from.
//
// [nodelink]: github.com/matzehuels/wikigraph/pkg/render/nodelink
package render
