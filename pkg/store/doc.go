// Package store provides the canonical in-memory graph of discovered articles
// and the links between them.
//
// # Overview
//
// A [Store] is created with a single seed node (the article the session
// starts from) and grows as articles are expanded. Nodes are identified by a
// stable string key (the canonical article title) and kept in an arena of
// slots, so the graph can contain cycles (articles linking back to their
// ancestors) without any owning references between nodes. Iteration order
// is insertion order, which keeps everything built on top of the store (most
// importantly the layout simulation) deterministic.
//
// # Invariants
//
// The store enforces its invariants by refusing bad input instead of
// returning errors, because the expected violations are benign races (two
// expansions discovering the same target):
//
//   - [Store.AddNode] is idempotent; a second call returns the existing node
//     with created == false.
//   - [Store.AddEdge] returns false for a missing endpoint, a self-loop or a
//     duplicate (from, to) pair.
//   - [Store.RemoveNode] removes the node and every edge touching it, never
//     cascades, and refuses to remove the seed.
//
// # Placement
//
// New nodes receive an initial position from the configured [Placer], fed
// with the positions of the anchor nodes passed to AddNode (typically the
// node being expanded). The layout package provides a placer that adds
// seeded jitter so siblings never start on top of each other.
//
// # Concurrency
//
// A Store is not safe for concurrent use. All mutation is expected to happen
// on a single owner goroutine (see package explore).
package store
