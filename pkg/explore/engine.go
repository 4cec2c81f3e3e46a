package explore

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/matzehuels/wikigraph/pkg/errors"
	"github.com/matzehuels/wikigraph/pkg/geom"
	"github.com/matzehuels/wikigraph/pkg/graph"
	"github.com/matzehuels/wikigraph/pkg/layout"
	"github.com/matzehuels/wikigraph/pkg/observability"
	"github.com/matzehuels/wikigraph/pkg/store"
)

// Engine defaults.
const (
	DefaultMaxConcurrentFetches = 4
	DefaultFetchTimeout         = 30 * time.Second
)

// LinkSource returns the identifiers an article links to. Implementations
// must allow concurrent calls for distinct ids.
type LinkSource interface {
	FetchLinks(ctx context.Context, id string) ([]string, error)
}

// LinkSourceFunc adapts a function to [LinkSource].
type LinkSourceFunc func(ctx context.Context, id string) ([]string, error)

// FetchLinks calls f(ctx, id).
func (f LinkSourceFunc) FetchLinks(ctx context.Context, id string) ([]string, error) {
	return f(ctx, id)
}

// Config controls an [Engine]. Zero fields fall back to defaults.
type Config struct {
	MaxConcurrentFetches int64         // Fetches running at once; more wait their turn
	FetchTimeout         time.Duration // Deadline for a single fetch
	MaxLinks             int           // Links merged per expansion; 0 means all
	Language             string        // Copied into snapshots
	Layout               layout.Params
	Logger               *log.Logger
	OnEvent              func(Event) // Called on the owner goroutine
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrentFetches <= 0 {
		c.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.MaxLinks < 0 {
		c.MaxLinks = 0
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

// result is a finished fetch, delivered to the owner goroutine.
type result struct {
	id    string
	links []string
	err   error
}

// Engine is the expansion engine of one exploration session.
type Engine struct {
	cfg      Config
	src      LinkSource
	g        *store.Store
	sim      *layout.Simulation
	inflight map[string]struct{}
	results  chan result
	sem      *semaphore.Weighted
	stats    layout.Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine whose store holds only seed. Fetches run under ctx;
// cancelling it, or calling Close, abandons them.
func New(ctx context.Context, seed string, src LinkSource, cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	sim := layout.New(cfg.Layout)
	g, err := store.New(seed, store.WithPlacer(sim))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "seed")
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Engine{
		cfg:      cfg,
		src:      src,
		g:        g,
		sim:      sim,
		inflight: make(map[string]struct{}),
		results:  make(chan result, 64),
		sem:      semaphore.NewWeighted(cfg.MaxConcurrentFetches),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Close cancels outstanding fetches and waits for their goroutines.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// Store exposes the graph store for read access. Callers on the owner
// goroutine must not mutate it.
func (e *Engine) Store() *store.Store { return e.g }

// Simulation exposes the layout simulation.
func (e *Engine) Simulation() *layout.Simulation { return e.sim }

// InFlight returns the number of fetches that have not been applied yet.
func (e *Engine) InFlight() int { return len(e.inflight) }

// IsInFlight reports whether a fetch for id is outstanding.
func (e *Engine) IsInFlight(id string) bool {
	_, ok := e.inflight[id]
	return ok
}

// LastStats returns the statistics of the most recent tick.
func (e *Engine) LastStats() layout.Stats { return e.stats }

// Expand dispatches a link fetch for id. It is a no-op returning false when
// the node is missing, already fetching or expanded, or still has a fetch
// in flight. A FetchFailed node is retried.
func (e *Engine) Expand(id string) bool {
	n, ok := e.g.Node(id)
	if !ok || n.State == store.StateFetching || n.State == store.StateExpanded {
		return false
	}
	if _, busy := e.inflight[id]; busy {
		return false
	}

	n.State = store.StateFetching
	n.Err = nil
	e.inflight[id] = struct{}{}
	e.emit(Event{Kind: EventFetchStarted, ID: id})

	e.wg.Add(1)
	go e.fetch(id)
	return true
}

// fetch runs on its own goroutine and never touches the store.
func (e *Engine) fetch(id string) {
	defer e.wg.Done()

	res := result{id: id}
	if err := e.sem.Acquire(e.ctx, 1); err != nil {
		res.err = errors.Wrap(errors.ErrCodeTimeout, err, "waiting to fetch %q", id)
	} else {
		ctx, cancel := context.WithTimeout(e.ctx, e.cfg.FetchTimeout)
		hooks := observability.Expansion()
		hooks.OnFetchStart(ctx, id)
		start := time.Now()
		res.links, res.err = e.src.FetchLinks(ctx, id)
		if res.err != nil && ctx.Err() == context.DeadlineExceeded && errors.GetCode(res.err) == "" {
			res.err = errors.Wrap(errors.ErrCodeTimeout, res.err, "fetch %q", id)
		}
		hooks.OnFetchComplete(ctx, id, len(res.links), time.Since(start), res.err)
		cancel()
		e.sem.Release(1)
	}

	select {
	case e.results <- res:
	case <-e.ctx.Done():
	}
}

// Tick applies every finished fetch and then advances the layout by one
// step. It returns the step statistics.
func (e *Engine) Tick() layout.Stats {
	e.drain()
	start := time.Now()
	e.stats = e.sim.Step(e.g)
	observability.Layout().OnTick(e.ctx, e.stats.Nodes, e.stats.Edges, e.stats.Energy, time.Since(start))
	return e.stats
}

// Await blocks until at least one fetch result is available, then applies
// all available results. It returns immediately when nothing is in flight.
func (e *Engine) Await(ctx context.Context) error {
	if len(e.inflight) == 0 {
		return nil
	}
	select {
	case res := <-e.results:
		e.apply(res)
		e.drain()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) drain() {
	for {
		select {
		case res := <-e.results:
			e.apply(res)
		default:
			return
		}
	}
}

func (e *Engine) apply(res result) {
	delete(e.inflight, res.id)

	n, ok := e.g.Node(res.id)
	if !ok {
		e.cfg.Logger.Debug("discarding result for removed node", "title", res.id)
		e.emit(Event{Kind: EventStale, ID: res.id})
		return
	}

	if res.err != nil {
		n.State = store.StateFetchFailed
		n.Err = res.err
		e.cfg.Logger.Warn("fetch failed", "title", res.id, "code", errors.GetCode(res.err), "error", res.err)
		e.emit(Event{Kind: EventFetchFailed, ID: res.id, Err: res.err})
		return
	}

	// Filter before capping so skipped titles do not use up the cap.
	links := make([]string, 0, len(res.links))
	seen := make(map[string]bool, len(res.links))
	for _, link := range res.links {
		if link == "" || link == res.id || seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
		if e.cfg.MaxLinks > 0 && len(links) == e.cfg.MaxLinks {
			break
		}
	}
	added := 0
	for _, link := range links {
		if m, created := e.g.AddNode(link, res.id); created {
			added++
			// A node collapsed mid-fetch and rediscovered here still has
			// its old fetch outstanding.
			if _, busy := e.inflight[link]; busy {
				m.State = store.StateFetching
			}
		}
		e.g.AddEdge(res.id, link)
	}
	n.State = store.StateExpanded
	n.Err = nil
	e.cfg.Logger.Debug("expanded", "title", res.id, "links", len(links), "new", added)
	e.emit(Event{Kind: EventExpanded, ID: res.id, Added: added})
}

// Collapse removes id and every node that is no longer reachable from the
// seed without it. It returns the removed ids in insertion order. The seed
// and unknown ids are left alone and yield nil.
func (e *Engine) Collapse(id string) []string {
	if id == e.g.Seed() || !e.g.Has(id) {
		return nil
	}

	reached := map[string]bool{e.g.Seed(): true}
	queue := []string{e.g.Seed()}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range e.g.Neighbors(cur) {
			if next == id || reached[next] {
				continue
			}
			reached[next] = true
			queue = append(queue, next)
		}
	}

	var removed []string
	for _, n := range e.g.Nodes() {
		if !reached[n.ID] {
			removed = append(removed, n.ID)
		}
	}
	for _, r := range removed {
		e.g.RemoveNode(r)
	}

	observability.Expansion().OnCollapse(e.ctx, id, len(removed))
	e.cfg.Logger.Debug("collapsed", "title", id, "removed", len(removed))
	e.emit(Event{Kind: EventCollapsed, ID: id, Removed: len(removed)})
	return removed
}

// DragStart pins id so the simulation stops moving it.
func (e *Engine) DragStart(id string) bool { return e.sim.Pin(e.g, id) }

// DragMove moves a pinned node.
func (e *Engine) DragMove(id string, pos geom.Vec) bool { return e.sim.Drag(e.g, id, pos) }

// DragEnd releases id back to the simulation.
func (e *Engine) DragEnd(id string) bool { return e.sim.Unpin(e.g, id) }

// SetLayoutParams replaces the force parameters from the next tick on.
func (e *Engine) SetLayoutParams(p layout.Params) { e.sim.SetParams(p) }

// Snapshot builds an immutable frame of the current state.
func (e *Engine) Snapshot() graph.Graph {
	g := graph.FromStore(e.g)
	g.Language = e.cfg.Language
	g.Tick = e.sim.Ticks()
	g.InFlight = len(e.inflight)
	g.Stats = &graph.Stats{Energy: e.stats.Energy, MaxDisplacement: e.stats.MaxDisplacement}
	return g
}

func (e *Engine) emit(ev Event) {
	if e.cfg.OnEvent != nil {
		e.cfg.OnEvent(ev)
	}
}
