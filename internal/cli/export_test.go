package cli

import (
	"context"
	"testing"

	"github.com/matzehuels/wikigraph/pkg/store"
)

var exportLinks = map[string][]string{
	"A": {"B", "C"},
	"B": {"D"},
	"C": {"A", "E"},
	"D": {"F"},
}

func TestExpandBreadthFirst(t *testing.T) {
	tests := []struct {
		name      string
		depth     int
		maxNodes  int
		wantNodes int
		expanded  []string
		pending   []string
	}{
		{"depth zero", 0, 100, 1, nil, []string{"A"}},
		{"one round", 1, 100, 3, []string{"A"}, []string{"B", "C"}},
		{"two rounds", 2, 100, 5, []string{"A", "B", "C"}, []string{"D", "E"}},
		{"three rounds", 3, 100, 6, []string{"A", "B", "C", "D", "E"}, []string{"F"}},
		{"node limit", 3, 3, 3, []string{"A"}, []string{"B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, "A", exportLinks)
			rounds := 0
			err := expandBreadthFirst(context.Background(), e, tt.depth, tt.maxNodes, func(int) { rounds++ })
			if err != nil {
				t.Fatalf("expandBreadthFirst() error: %v", err)
			}

			s := e.Store()
			if s.NodeCount() != tt.wantNodes {
				t.Errorf("NodeCount() = %d, want %d", s.NodeCount(), tt.wantNodes)
			}
			for _, id := range tt.expanded {
				if n, ok := s.Node(id); !ok || n.State != store.StateExpanded {
					t.Errorf("%s should be expanded", id)
				}
			}
			for _, id := range tt.pending {
				if n, ok := s.Node(id); !ok || n.State != store.StateUnexpanded {
					t.Errorf("%s should be unexpanded", id)
				}
			}
			if tt.depth > 0 && rounds == 0 {
				t.Error("progress callback never called")
			}
		})
	}
}

func TestSettleCancelled(t *testing.T) {
	e := newTestEngine(t, "A", exportLinks)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := settle(ctx, e, 10); err != context.Canceled {
		t.Errorf("settle() error = %v, want context.Canceled", err)
	}
}

func TestSettle(t *testing.T) {
	e := newTestEngine(t, "A", exportLinks)
	if err := settle(context.Background(), e, 25); err != nil {
		t.Fatalf("settle() error: %v", err)
	}
	if got := e.Snapshot().Tick; got != 25 {
		t.Errorf("Tick = %d, want 25", got)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Graph theory", "graph_theory"},
		{"AC/DC", "ac_dc"},
		{"Zürich", "zürich"},
		{"C++", "c"},
		{"Spider-Man", "spider-man"},
		{"???", "graph"},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
