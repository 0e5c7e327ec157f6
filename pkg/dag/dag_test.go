package dag

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func build(t *testing.T, ids []string, edges ...[2]string) *DAG {
	t.Helper()
	g := New(nil)
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: got %v", err)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: got %v", err)
	}
	if n, _ := g.Node("a"); n.Meta == nil {
		t.Error("node metadata was not initialized")
	}
}

func TestAddEdge(t *testing.T) {
	g := build(t, []string{"a", "b"})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
		{"ok", Edge{From: "a", To: "b"}, nil},
		{"repeat", Edge{From: "a", To: "b"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge(%v) = %v, want %v", tt.edge, err, tt.want)
			}
		})
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1 after a repeated edge", g.EdgeCount())
	}
}

func TestFindCycle(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  []string
	}{
		{"acyclic", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}}, nil},
		{"self loop", []string{"a"}, [][2]string{{"a", "a"}}, []string{"a", "a"}},
		{"triangle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "b"}}, []string{"b", "c", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.ids, tt.edges...)
			if diff := cmp.Diff(tt.want, g.FindCycle()); diff != "" {
				t.Errorf("FindCycle() (-want +got):\n%s", diff)
			}
			_, err := g.TopoSort()
			if (err != nil) != (tt.want != nil) {
				t.Errorf("TopoSort() error = %v", err)
			}
		})
	}
}

func TestSourcesSinks(t *testing.T) {
	g := build(t, []string{"app", "lib", "leaf", "alone"}, [2]string{"app", "lib"}, [2]string{"lib", "leaf"})
	if diff := cmp.Diff([]string{"app", "alone"}, NodeIDs(g.Sources())); diff != "" {
		t.Errorf("Sources (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"leaf", "alone"}, NodeIDs(g.Sinks())); diff != "" {
		t.Errorf("Sinks (-want +got):\n%s", diff)
	}
}

func TestLabel(t *testing.T) {
	if got := (Node{ID: "/w/a", Meta: Metadata{"name": "a"}}).Label(); got != "a" {
		t.Errorf("Label() = %q", got)
	}
	if got := (Node{ID: "/w/a"}).Label(); got != "/w/a" {
		t.Errorf("Label() = %q", got)
	}
}
