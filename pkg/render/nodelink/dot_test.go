package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/wikigraph/pkg/graph"
)

func testSnapshot() graph.Graph {
	return graph.Graph{
		Seed: "Graph theory",
		Nodes: []graph.Node{
			{ID: "Graph theory", X: 0, Y: 0, State: "expanded", Expanded: true},
			{ID: "Vertex (graph theory)", X: 60, Y: 20, State: "unexpanded", Pinned: true},
			{ID: "Edge \"quoted\"", X: -40.5, Y: -10.25, State: "failed", Error: "TIMEOUT: slow"},
		},
		Edges: []graph.Edge{
			{From: "Graph theory", To: "Vertex (graph theory)"},
			{From: "Graph theory", To: "Edge \"quoted\""},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testSnapshot(), Options{Scale: 2})

	for _, want := range []string{
		"layout=neato;",
		`"Graph theory" [label="Graph theory", pos="0.00,0.00!", fillcolor=lightblue, penwidth=2.5];`,
		`"Vertex (graph theory)" [label="Vertex (graph theory)", pos="120.00,-40.00!", style="rounded,filled,dashed"];`,
		`"Edge \"quoted\"" [label="Edge \"quoted\"", pos="-81.00,20.50!", fillcolor=salmon];`,
		`"Graph theory" -> "Vertex (graph theory)";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testSnapshot(), Options{Detailed: true})
	if !strings.Contains(dot, `label="Edge \"quoted\"\nfailed\nTIMEOUT: slow"`) {
		t.Errorf("detailed label missing state and error:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="200pt" height="100pt" viewBox="0.00 0.00 200.00 100.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200.00 100.00" width="200" height="100"><g/></svg>`
	if out != want {
		t.Errorf("got  %s\nwant %s", out, want)
	}

	noBox := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(noBox); !bytes.Equal(got, noBox) {
		t.Errorf("SVG without viewBox changed: %s", got)
	}
}

func TestRender(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	ctx := context.Background()
	dot := ToDOT(testSnapshot(), Options{})

	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("Vertex (graph theory)")) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}

	png, err := RenderPNG(ctx, dot)
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("output is not a PNG: %q", png[:min(8, len(png))])
	}

	if _, err := RenderSVG(ctx, "digraph {"); err == nil {
		t.Error("RenderSVG should reject malformed DOT")
	}
}
