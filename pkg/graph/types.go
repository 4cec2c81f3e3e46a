package graph

import (
	"fmt"
	"strings"

	"github.com/matzehuels/wikigraph/pkg/errors"
	"github.com/matzehuels/wikigraph/pkg/geom"
	"github.com/matzehuels/wikigraph/pkg/store"
)

// =============================================================================
// Graph - Frame Snapshot Serialization
// =============================================================================

// Graph is the canonical serialization format for one frame of an
// exploration session. Presentation adapters render it; the HTTP API and
// WebSocket stream send it; export writes it to disk.
//
// A Graph is a value: it shares nothing with the store it was taken from.
type Graph struct {
	Session  string `json:"session,omitempty"`
	Language string `json:"language,omitempty"`
	Seed     string `json:"seed"`
	Tick     uint64 `json:"tick"`
	InFlight int    `json:"in_flight"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	Stats    *Stats `json:"stats,omitempty"`
}

// =============================================================================
// Node - Positioned Article
// =============================================================================

// Node is one article with its layout position and expansion state.
type Node struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Expanded  bool    `json:"expanded"`
	State     string  `json:"state"`                // "unexpanded", "fetching", "expanded" or "failed"
	Pinned    bool    `json:"pinned,omitempty"`     // Held by a drag
	Error     string  `json:"error,omitempty"`      // Last fetch failure, shown next to the node
	ErrorCode string  `json:"error_code,omitempty"` // Code of Error, e.g. "ARTICLE_NOT_FOUND"
}

// Pos returns the node position as a vector.
func (n Node) Pos() geom.Vec { return geom.Vec{X: n.X, Y: n.Y} }

// =============================================================================
// Edge - Directed Link
// =============================================================================

// Edge represents a directed link between two articles.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// =============================================================================
// Stats - Layout Health
// =============================================================================

// Stats mirrors the per-tick statistics of the layout simulation.
type Stats struct {
	Energy          float64 `json:"energy"`
	MaxDisplacement float64 `json:"max_displacement"`
}

// =============================================================================
// Store ↔ Graph Conversion
// =============================================================================

// FromStore converts a store into its serialization format. Nodes and edges
// keep insertion order so successive frames list them stably.
func FromStore(s *store.Store) Graph {
	nodes := s.Nodes()
	edges := s.Edges()
	out := Graph{
		Seed:  s.Seed(),
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromStore(n)
	}
	for i, e := range edges {
		out.Edges[i] = Edge{From: e.From, To: e.To}
	}
	return out
}

// ToStore rebuilds a store from a Graph, restoring positions, states and
// pins. Returns an error when the seed is missing or an edge references an
// unknown node.
func ToStore(gj Graph) (*store.Store, error) {
	if gj.Seed == "" && len(gj.Nodes) > 0 {
		gj.Seed = gj.Nodes[0].ID
	}
	s, err := store.New(gj.Seed)
	if err != nil {
		return nil, err
	}

	for _, nj := range gj.Nodes {
		n, created := s.AddNode(nj.ID)
		if n == nil {
			return nil, fmt.Errorf("add node: %w", store.ErrInvalidNodeID)
		}
		if !created && nj.ID != gj.Seed {
			return nil, fmt.Errorf("duplicate node %q", nj.ID)
		}
		n.Pos = nj.Pos()
		n.State = store.ParseState(nj.State)
		n.Pinned = nj.Pinned
		if n.State == store.StateFetchFailed && nj.Error != "" {
			n.Err = restoreError(nj)
		}
	}

	for _, ej := range gj.Edges {
		if !s.Has(ej.From) || !s.Has(ej.To) {
			return nil, fmt.Errorf("edge %s→%s: unknown endpoint", ej.From, ej.To)
		}
		s.AddEdge(ej.From, ej.To)
	}
	return s, nil
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Neighbors returns the outgoing link targets of id in insertion order,
// matching [store.Store.Neighbors] on the store the frame was taken from.
func (g Graph) Neighbors(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e.To)
		}
	}
	return out
}

// Bounds returns the bounding box of all node positions.
func (g Graph) Bounds() (lo, hi geom.Vec) {
	pts := make([]geom.Vec, len(g.Nodes))
	for i, n := range g.Nodes {
		pts[i] = n.Pos()
	}
	return geom.Bounds(pts)
}

// =============================================================================
// Internal Helpers
// =============================================================================

// nodeFromStore is the single point of conversion for store nodes.
func nodeFromStore(n *store.Node) Node {
	node := Node{
		ID:       n.ID,
		X:        n.Pos.X,
		Y:        n.Pos.Y,
		Expanded: n.Expanded(),
		State:    n.State.String(),
		Pinned:   n.Pinned,
	}
	if n.Err != nil {
		node.Error = n.Err.Error()
		node.ErrorCode = string(errors.GetCode(n.Err))
	}
	return node
}

// restoreError rebuilds a fetch error from its serialized form so that
// [errors.GetCode] keeps working on loaded snapshots.
func restoreError(n Node) error {
	if n.ErrorCode == "" {
		return fmt.Errorf("%s", n.Error)
	}
	return &errors.Error{
		Code:    errors.Code(n.ErrorCode),
		Message: strings.TrimPrefix(n.Error, n.ErrorCode+": "),
	}
}
