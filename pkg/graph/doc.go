// Package graph provides the serialization format for exploration frames.
//
// A [Graph] is an immutable snapshot of the store plus the layout
// positions: what presentation adapters draw, what the HTTP API and
// WebSocket stream send, and what `wikigraph export` writes.
//
// # Format
//
//	{
//	  "seed": "Graph theory",
//	  "tick": 412,
//	  "in_flight": 1,
//	  "nodes": [
//	    {"id": "Graph theory", "x": 0, "y": 0, "expanded": true, "state": "expanded"},
//	    {"id": "Leonhard Euler", "x": 61.2, "y": -8.4, "expanded": false, "state": "fetching"}
//	  ],
//	  "edges": [{"from": "Graph theory", "to": "Leonhard Euler"}]
//	}
//
// Common operations:
//
//	snap := graph.FromStore(s)                     // Store → Graph
//	graph.WriteGraphFile(snap, "frame.json")       // Graph → File
//	snap, _ = graph.ReadGraphFile("frame.json")    // File → Graph (validated)
//	s, _ = graph.ToStore(snap)                     // Graph → Store
//
// # Concurrency
//
// Graph values share no memory with the store and are safe to read from any
// goroutine once built.
package graph
