// Package explore turns expand and collapse requests into link fetches and
// store mutations, and drives the layout simulation.
//
// # Engine
//
// [Engine] owns a [store.Store] and a [layout.Simulation]. It is
// single-threaded: every method must be called from the goroutine that owns
// it. Link fetches run on their own goroutines and push results onto a
// channel that [Engine.Tick] drains before it steps the simulation, so a
// slow fetch never delays a frame.
//
// Node lifecycle:
//
//	Unexpanded ──Expand──▶ Fetching ──ok──▶ Expanded
//	                          │
//	                          └──error──▶ FetchFailed ──Expand──▶ Fetching
//
// The in-flight set is the only duplicate guard: a title is never fetched
// twice concurrently. A result whose node was collapsed in the meantime is
// discarded; the in-flight marker stays until that fetch returns.
//
// # Loop
//
// [Loop] runs an Engine on a fixed cadence for adapters that live on other
// goroutines (the HTTP server, the WebSocket stream). Inbound requests are
// queued as commands and applied between ticks; each tick publishes an
// immutable [graph.Graph] frame that any goroutine may read.
//
// [store.Store]: github.com/matzehuels/wikigraph/pkg/store.Store
// [layout.Simulation]: github.com/matzehuels/wikigraph/pkg/layout.Simulation
// [graph.Graph]: github.com/matzehuels/wikigraph/pkg/graph.Graph
package explore
