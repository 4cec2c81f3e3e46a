package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/wikigraph/pkg/geom"
	"github.com/matzehuels/wikigraph/pkg/store"
)

// goldenAngle spreads fallback separation directions for coincident nodes.
const goldenAngle = 2.399963229728653

// Stats summarizes one call to [Simulation.Step].
type Stats struct {
	Tick            uint64  // Number of steps taken so far, including this one
	Nodes           int     // Nodes in the store
	Edges           int     // Edges in the store
	Energy          float64 // Kinetic energy of the free nodes after integration
	MaxDisplacement float64 // Largest distance a node moved during this step
	TopologyChanged bool    // Store changed since the previous step
}

// Simulation is a force-directed layout over a [store.Store]. It is not safe
// for concurrent use and must be driven by the goroutine that owns the store.
type Simulation struct {
	params  Params
	rng     *rand.Rand
	forces  []geom.Vec
	ticks   uint64
	version uint64
}

// New creates a simulation. Zero-valued parameters fall back to defaults.
func New(p Params) *Simulation {
	p = p.WithDefaults()
	return &Simulation{
		params: p,
		rng:    rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15)),
	}
}

// Params returns the active parameters.
func (s *Simulation) Params() Params { return s.params }

// SetParams replaces the force parameters. The jitter generator keeps its
// current state, so changing Seed at runtime has no effect.
func (s *Simulation) SetParams(p Params) {
	s.params = p.WithDefaults()
}

// Ticks returns the number of steps taken.
func (s *Simulation) Ticks() uint64 { return s.ticks }

// Place implements [store.Placer]. Nodes without anchors start at the origin;
// others start at the anchor centroid offset by a random point in a disc of
// radius Params.Jitter.
func (s *Simulation) Place(anchors []geom.Vec) geom.Vec {
	if len(anchors) == 0 {
		return geom.Vec{}
	}
	angle := s.rng.Float64() * 2 * math.Pi
	r := s.params.Jitter * math.Sqrt(s.rng.Float64())
	return geom.Centroid(anchors).Add(geom.Vec{X: r * math.Cos(angle), Y: r * math.Sin(angle)})
}

// Step advances the simulation by one tick and returns its stats.
func (s *Simulation) Step(g *store.Store) Stats {
	s.ticks++
	n := g.NodeCount()
	st := Stats{
		Tick:            s.ticks,
		Nodes:           n,
		Edges:           g.EdgeCount(),
		TopologyChanged: g.Version() != s.version,
	}
	s.version = g.Version()

	if cap(s.forces) < n {
		s.forces = make([]geom.Vec, n)
	}
	s.forces = s.forces[:n]
	clear(s.forces)

	s.repel(g, n)
	s.attract(g)

	p := s.params
	for i := range n {
		node := g.At(i)
		if node.Pinned {
			node.Vel = geom.Vec{}
			continue
		}
		vel := node.Vel.Add(s.forces[i].Scale(p.TimeStep)).Scale(p.Damping).ClampLen(p.MaxSpeed)
		move := vel.Scale(p.TimeStep)
		pos := node.Pos.Add(move)
		if !pos.IsFinite() {
			node.Vel = geom.Vec{}
			continue
		}
		node.Vel = vel
		node.Pos = pos
		st.Energy += 0.5 * (vel.X*vel.X + vel.Y*vel.Y)
		st.MaxDisplacement = math.Max(st.MaxDisplacement, move.Len())
	}
	return st
}

// repel accumulates the pairwise 1/d² force for every unordered pair.
func (s *Simulation) repel(g *store.Store, n int) {
	k, floor := s.params.Repulsion, s.params.MinDistance
	for i := range n {
		pi := g.At(i).Pos
		for j := i + 1; j < n; j++ {
			delta := pi.Sub(g.At(j).Pos)
			d := delta.Len()
			var dir geom.Vec
			if d == 0 {
				a := float64(i*n+j) * goldenAngle
				dir = geom.Vec{X: math.Cos(a), Y: math.Sin(a)}
			} else {
				dir = delta.Scale(1 / d)
			}
			d = math.Max(d, floor)
			f := dir.Scale(k / (d * d))
			s.forces[i] = s.forces[i].Add(f)
			s.forces[j] = s.forces[j].Sub(f)
		}
	}
}

// attract accumulates the spring force of every edge.
func (s *Simulation) attract(g *store.Store) {
	k, rest := s.params.Attraction, s.params.RestLength
	g.ForEachEdge(func(from, to *store.Node) {
		delta := to.Pos.Sub(from.Pos)
		d := delta.Len()
		if d == 0 {
			return
		}
		f := delta.Scale(k * (d - rest) / d)
		s.forces[from.Slot()] = s.forces[from.Slot()].Add(f)
		s.forces[to.Slot()] = s.forces[to.Slot()].Sub(f)
	})
}

// Pin freezes the node so Step no longer moves it. It returns false if the
// node does not exist.
func (s *Simulation) Pin(g *store.Store, id string) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	n.Pinned = true
	n.Vel = geom.Vec{}
	return true
}

// Unpin returns the node to the simulation. It returns false if the node
// does not exist.
func (s *Simulation) Unpin(g *store.Store, id string) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	n.Pinned = false
	return true
}

// Drag moves a pinned node to pos. Unpinned or unknown nodes and
// non-finite positions are ignored and reported as false.
func (s *Simulation) Drag(g *store.Store, id string, pos geom.Vec) bool {
	n, ok := g.Node(id)
	if !ok || !n.Pinned || !pos.IsFinite() {
		return false
	}
	n.Pos = pos
	return true
}
