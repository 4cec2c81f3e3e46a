// Package layout runs the continuous force-directed simulation that positions
// the nodes of a [store.Store].
//
// # Model
//
// Every tick, [Simulation.Step] applies three forces:
//
//   - Repulsion between every unordered pair of nodes, proportional to
//     1/d². The distance is clamped below by MinDistance so coincident nodes
//     produce a large but finite push in a deterministic direction.
//   - Attraction along every edge, proportional to the deviation of the edge
//     length from RestLength (a linear spring).
//   - Damping of the integrated velocity, plus an optional MaxSpeed cap that
//     keeps freshly added nodes from being flung across the canvas.
//
// The simulation never reports completion. It is a perpetual relaxation that
// re-equilibrates as the store changes; [Stats] expose the kinetic energy so
// callers can display how settled the layout is.
//
// # Placement
//
// A Simulation is also a [store.Placer]: new nodes start at the centroid of
// their anchors plus jitter drawn from a PCG generator seeded with
// Params.Seed. Placement and stepping are the only consumers of the
// generator, so a fixed seed and a fixed sequence of operations always yield
// identical positions.
//
// # Dragging
//
// [Simulation.Pin] freezes a node: it keeps acting on its neighbors but is
// never moved by Step. While pinned, [Simulation.Drag] moves it directly.
// [Simulation.Unpin] hands it back to the simulation on the next tick.
//
// [store.Store]: github.com/matzehuels/wikigraph/pkg/store.Store
// [store.Placer]: github.com/matzehuels/wikigraph/pkg/store.Placer
package layout
