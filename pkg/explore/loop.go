package explore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/wikigraph/pkg/geom"
	"github.com/matzehuels/wikigraph/pkg/graph"
	"github.com/matzehuels/wikigraph/pkg/layout"
)

// DefaultTickInterval is the frame cadence of a [Loop].
const DefaultTickInterval = 33 * time.Millisecond

// ErrLoopStopped is returned by [Loop.Do] once Run has returned.
var ErrLoopStopped = errors.New("exploration loop stopped")

// Loop drives an [Engine] on a fixed cadence and makes it safe to use from
// other goroutines. All methods are safe for concurrent use.
type Loop struct {
	engine   *Engine
	interval time.Duration
	id       string
	logger   *log.Logger

	cmds chan func(*Engine)
	done chan struct{}
	once sync.Once

	frame atomic.Pointer[graph.Graph]

	mu      sync.Mutex
	subs    map[int]chan graph.Graph
	nextSub int
}

// NewLoop wraps e. A non-positive interval uses [DefaultTickInterval].
func NewLoop(e *Engine, interval time.Duration, logger *log.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	l := &Loop{
		engine:   e,
		interval: interval,
		id:       uuid.NewString(),
		logger:   logger,
		cmds:     make(chan func(*Engine), 256),
		done:     make(chan struct{}),
		subs:     make(map[int]chan graph.Graph),
	}
	l.publish()
	return l
}

// ID returns the session identifier stamped on every frame.
func (l *Loop) ID() string { return l.id }

// Run ticks until ctx is cancelled. Queued commands are applied as they
// arrive; a tick drains fetch results, steps the layout and publishes a
// frame. Run must be called at most once.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("session started", "session", l.id, "seed", l.engine.Store().Seed(), "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("session stopped", "session", l.id)
			return ctx.Err()
		case cmd := <-l.cmds:
			cmd(l.engine)
		case <-ticker.C:
			l.engine.Tick()
			l.publish()
		}
	}
}

func (l *Loop) stop() {
	l.once.Do(func() { close(l.done) })
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, ch := range l.subs {
		close(ch)
		delete(l.subs, id)
	}
}

func (l *Loop) publish() {
	g := l.engine.Snapshot()
	g.Session = l.id
	l.frame.Store(&g)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs {
		// Slow subscribers only ever see the newest frame.
		select {
		case <-ch:
		default:
		}
		ch <- g
	}
}

// Snapshot returns the most recently published frame.
func (l *Loop) Snapshot() graph.Graph { return *l.frame.Load() }

// Subscribe returns a channel receiving every published frame, dropping
// frames the receiver was too slow to take. The channel is closed when
// cancel is called or Run returns.
func (l *Loop) Subscribe() (<-chan graph.Graph, func()) {
	ch := make(chan graph.Graph, 1)
	l.mu.Lock()
	select {
	case <-l.done:
		close(ch)
		l.mu.Unlock()
		return ch, func() {}
	default:
	}
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			close(c)
			delete(l.subs, id)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*Engine)) error {
	finished := make(chan struct{})
	wrapped := func(e *Engine) {
		defer close(finished)
		fn(e)
	}
	select {
	case l.cmds <- wrapped:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue queues fn without waiting for it to run.
func (l *Loop) enqueue(fn func(*Engine)) {
	select {
	case l.cmds <- fn:
	case <-l.done:
	}
}

// OnExpandRequested queues an expansion of id.
func (l *Loop) OnExpandRequested(id string) {
	l.enqueue(func(e *Engine) { e.Expand(id) })
}

// OnCollapseRequested queues a collapse of id.
func (l *Loop) OnCollapseRequested(id string) {
	l.enqueue(func(e *Engine) { e.Collapse(id) })
}

// OnDragStart queues pinning id.
func (l *Loop) OnDragStart(id string) {
	l.enqueue(func(e *Engine) { e.DragStart(id) })
}

// OnDragMove queues moving a pinned node.
func (l *Loop) OnDragMove(id string, pos geom.Vec) {
	l.enqueue(func(e *Engine) { e.DragMove(id, pos) })
}

// OnDragEnd queues releasing id.
func (l *Loop) OnDragEnd(id string) {
	l.enqueue(func(e *Engine) { e.DragEnd(id) })
}

// SetLayoutParams queues a parameter change.
func (l *Loop) SetLayoutParams(p layout.Params) {
	l.enqueue(func(e *Engine) { e.SetLayoutParams(p) })
}
