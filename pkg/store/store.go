package store

import (
	"errors"
	"slices"

	"github.com/matzehuels/wikigraph/pkg/geom"
)

// ErrInvalidNodeID is returned by [New] when the seed identifier is empty.
var ErrInvalidNodeID = errors.New("node ID must not be empty")

// State tags where a node is in its expansion lifecycle.
type State uint8

const (
	// StateUnexpanded is the initial state: links have not been fetched.
	StateUnexpanded State = iota
	// StateFetching means a link fetch is in flight.
	StateFetching
	// StateExpanded means the outgoing links were fetched and merged.
	StateExpanded
	// StateFetchFailed means the last fetch failed. Expanding again retries.
	StateFetchFailed
)

// String returns the lowercase name used in snapshots and logs.
func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateExpanded:
		return "expanded"
	case StateFetchFailed:
		return "failed"
	default:
		return "unexpanded"
	}
}

// ParseState is the inverse of [State.String]. Unknown names map to
// StateUnexpanded.
func ParseState(s string) State {
	switch s {
	case "fetching":
		return StateFetching
	case "expanded":
		return StateExpanded
	case "failed":
		return StateFetchFailed
	default:
		return StateUnexpanded
	}
}

// Node is one discovered article.
//
// Pos and Vel belong to the layout simulation. Other packages read them but
// only write Pos through a drag while the node is pinned.
type Node struct {
	ID     string
	State  State
	Pinned bool
	Pos    geom.Vec
	Vel    geom.Vec

	// Err holds the last fetch failure while State is StateFetchFailed.
	Err error

	slot int
}

// Expanded reports whether the node's links have been merged.
func (n *Node) Expanded() bool { return n.State == StateExpanded }

// Slot returns the node's current arena index. Slots are dense in
// [0, NodeCount) and change when an earlier node is removed.
func (n *Node) Slot() int { return n.slot }

// Edge is a directed link between two nodes.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Placer chooses the starting position of a new node from the positions of
// its anchors. anchors is empty for the seed and for nodes added without a
// known neighbor.
type Placer interface {
	Place(anchors []geom.Vec) geom.Vec
}

// PlacerFunc adapts a function to the [Placer] interface.
type PlacerFunc func(anchors []geom.Vec) geom.Vec

// Place calls f(anchors).
func (f PlacerFunc) Place(anchors []geom.Vec) geom.Vec { return f(anchors) }

// centroidPlacer places nodes exactly on the anchor centroid.
var centroidPlacer = PlacerFunc(geom.Centroid)

// Option configures a [Store].
type Option func(*Store)

// WithPlacer sets the placer used for new nodes. A nil placer keeps the
// default, which places nodes on the centroid of their anchors.
func WithPlacer(p Placer) Option {
	return func(s *Store) {
		if p != nil {
			s.placer = p
		}
	}
}

// Store is the arena of nodes and the directed edge set between them.
// The zero value is not usable; create one with [New].
type Store struct {
	seed     string
	slots    []*Node
	index    map[string]int
	edges    []Edge
	edgeSet  map[Edge]struct{}
	outgoing map[string][]string
	incoming map[string][]string
	placer   Placer
	version  uint64
}

// New creates a store holding only the seed node, placed at the placer's
// anchor-less position (the origin for the default placer).
func New(seed string, opts ...Option) (*Store, error) {
	if seed == "" {
		return nil, ErrInvalidNodeID
	}
	s := &Store{
		seed:     seed,
		index:    make(map[string]int),
		edgeSet:  make(map[Edge]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		placer:   centroidPlacer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.AddNode(seed)
	return s, nil
}

// Seed returns the identifier of the seed node.
func (s *Store) Seed() string { return s.seed }

// Version returns a counter that increases on every topology change.
func (s *Store) Version() uint64 { return s.version }

// AddNode returns the node for id, creating it when absent. A new node is
// positioned by the placer using the positions of the anchors that exist;
// unknown anchors are ignored. An empty id is rejected with (nil, false).
func (s *Store) AddNode(id string, anchors ...string) (*Node, bool) {
	if id == "" {
		return nil, false
	}
	if i, ok := s.index[id]; ok {
		return s.slots[i], false
	}

	var pts []geom.Vec
	for _, a := range anchors {
		if i, ok := s.index[a]; ok {
			pts = append(pts, s.slots[i].Pos)
		}
	}

	n := &Node{ID: id, Pos: s.placer.Place(pts), slot: len(s.slots)}
	s.slots = append(s.slots, n)
	s.index[id] = n.slot
	s.version++
	return n, true
}

// AddEdge inserts the edge from→to. It returns false without changing the
// store when either endpoint is missing, from == to, or the edge exists.
func (s *Store) AddEdge(from, to string) bool {
	if from == to {
		return false
	}
	if _, ok := s.index[from]; !ok {
		return false
	}
	if _, ok := s.index[to]; !ok {
		return false
	}
	e := Edge{From: from, To: to}
	if _, dup := s.edgeSet[e]; dup {
		return false
	}
	s.edgeSet[e] = struct{}{}
	s.edges = append(s.edges, e)
	s.outgoing[from] = append(s.outgoing[from], to)
	s.incoming[to] = append(s.incoming[to], from)
	s.version++
	return true
}

// RemoveNode deletes the node and every edge touching it. Nodes that become
// unreachable are left alone. Removing the seed or an unknown id is a no-op
// that returns false.
func (s *Store) RemoveNode(id string) bool {
	i, ok := s.index[id]
	if !ok || id == s.seed {
		return false
	}

	for _, to := range s.outgoing[id] {
		s.incoming[to] = slices.DeleteFunc(s.incoming[to], func(p string) bool { return p == id })
		delete(s.edgeSet, Edge{From: id, To: to})
	}
	for _, from := range s.incoming[id] {
		s.outgoing[from] = slices.DeleteFunc(s.outgoing[from], func(c string) bool { return c == id })
		delete(s.edgeSet, Edge{From: from, To: id})
	}
	delete(s.outgoing, id)
	delete(s.incoming, id)
	s.edges = slices.DeleteFunc(s.edges, func(e Edge) bool { return e.From == id || e.To == id })

	s.slots = slices.Delete(s.slots, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.slots); j++ {
		s.slots[j].slot = j
		s.index[s.slots[j].ID] = j
	}
	s.version++
	return true
}

// Node returns the node with the given id.
func (s *Store) Node(id string) (*Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.slots[i], true
}

// Has reports whether id is in the store.
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// At returns the node in the given slot. It panics if slot is out of range.
func (s *Store) At(slot int) *Node { return s.slots[slot] }

// Nodes returns the nodes in insertion order. The slice is a copy but the
// pointers refer to the live nodes.
func (s *Store) Nodes() []*Node { return slices.Clone(s.slots) }

// Edges returns a copy of all edges in insertion order.
func (s *Store) Edges() []Edge { return slices.Clone(s.edges) }

// HasEdge reports whether the edge from→to exists.
func (s *Store) HasEdge(from, to string) bool {
	_, ok := s.edgeSet[Edge{From: from, To: to}]
	return ok
}

// Neighbors returns the outgoing link targets of id in insertion order.
// The returned slice must not be modified.
func (s *Store) Neighbors(id string) []string { return s.outgoing[id] }

// Parents returns the nodes linking to id in insertion order.
// The returned slice must not be modified.
func (s *Store) Parents(id string) []string { return s.incoming[id] }

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.slots) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// ForEachEdge calls fn for every edge in insertion order with both endpoint
// nodes resolved. fn must not mutate the store.
func (s *Store) ForEachEdge(fn func(from, to *Node)) {
	for _, e := range s.edges {
		fn(s.slots[s.index[e.From]], s.slots[s.index[e.To]])
	}
}
