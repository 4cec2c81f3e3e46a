// Package pkg provides the libraries behind wikigraph, an incremental
// Wikipedia link graph with a live force-directed layout.
//
// # Overview
//
// A session starts from one seed article. Expanding a node fetches the
// articles it links to and merges them into the graph; collapsing a node
// removes everything that is no longer reachable from the seed without it.
// A force simulation keeps positions settled while the graph changes.
//
//  1. [store] - The graph: nodes with expansion state, directed edges
//  2. [layout] - Force-directed simulation over a store
//  3. [explore] - Expansion engine and the session loop that owns it
//  4. [wiki] - MediaWiki link source with rate limiting and retries
//  5. [cache] - File, Redis and MongoDB caches for fetched link lists
//  6. [graph] - Immutable snapshots and their JSON form
//  7. [server] - HTTP and WebSocket access to a running session
//
// # Architecture
//
// The data flow of one expansion:
//
//	explore.Loop (owner goroutine)
//	         ↓
//	    [explore] Engine.Expand dispatches a fetch
//	         ↓
//	    [wiki] Source.FetchLinks (cache, then MediaWiki API)
//	         ↓
//	    result queued, applied on the next tick
//	         ↓
//	    [store] nodes and edges merged, [layout] steps
//	         ↓
//	    [graph] snapshot published to subscribers
//
// # Quick Start
//
//	import (
//	    "context"
//
//	    "github.com/matzehuels/wikigraph/pkg/cache"
//	    "github.com/matzehuels/wikigraph/pkg/explore"
//	    "github.com/matzehuels/wikigraph/pkg/wiki"
//	)
//
//	src := wiki.NewSource(cache.NewNullCache(), nil, wiki.Options{Language: "en"})
//	e, _ := explore.New(ctx, "Graph theory", src, explore.Config{})
//	defer e.Close()
//
//	e.Expand("Graph theory")
//	for e.InFlight() > 0 {
//	    e.Await(ctx)
//	}
//	for range 300 {
//	    e.Tick()
//	}
//	snapshot := e.Snapshot()
//
// # Supporting Packages
//
//   - [geom]: 2D vectors for the simulation
//   - [config]: TOML configuration with live reload
//   - [errors]: coded errors shared by the fetch path and adapters
//   - [httputil]: retry with backoff for transient HTTP failures
//   - [observability]: hooks the metrics layer plugs into
//   - [render/nodelink]: DOT, SVG and PNG output of a snapshot
//   - [buildinfo]: version information and the API User-Agent
//
// [store]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/store
// [layout]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/layout
// [explore]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/explore
// [wiki]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/wiki
// [cache]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/cache
// [graph]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/graph
// [server]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/server
// [geom]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/geom
// [config]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/observability
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/render/nodelink
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/wikigraph/pkg/buildinfo
package pkg
