package explore

import "fmt"

// EventKind identifies an engine event.
type EventKind int

const (
	// EventFetchStarted is emitted when a fetch is dispatched.
	EventFetchStarted EventKind = iota
	// EventExpanded is emitted when fetched links were merged.
	EventExpanded
	// EventFetchFailed is emitted when a fetch failed.
	EventFetchFailed
	// EventCollapsed is emitted after a collapse removed nodes.
	EventCollapsed
	// EventStale is emitted when a result arrived for a removed node.
	EventStale
)

// String returns the event name used in logs and on the wire.
func (k EventKind) String() string {
	switch k {
	case EventFetchStarted:
		return "fetch_started"
	case EventExpanded:
		return "expanded"
	case EventFetchFailed:
		return "fetch_failed"
	case EventCollapsed:
		return "collapsed"
	case EventStale:
		return "stale"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event reports something the user may want to see.
type Event struct {
	Kind    EventKind
	ID      string
	Added   int   // New nodes, for EventExpanded
	Removed int   // Removed nodes, for EventCollapsed
	Err     error // Cause, for EventFetchFailed
}

// String formats the event as a one-line status message.
func (e Event) String() string {
	switch e.Kind {
	case EventFetchStarted:
		return fmt.Sprintf("fetching %s", e.ID)
	case EventExpanded:
		return fmt.Sprintf("expanded %s (+%d)", e.ID, e.Added)
	case EventFetchFailed:
		return fmt.Sprintf("failed to expand %s: %v", e.ID, e.Err)
	case EventCollapsed:
		return fmt.Sprintf("collapsed %s (-%d)", e.ID, e.Removed)
	case EventStale:
		return fmt.Sprintf("discarded result for %s", e.ID)
	default:
		return e.Kind.String()
	}
}
