package graph

import (
	"testing"

	"github.com/ductc/ductc/internal/moduleid"
	"github.com/google/go-cmp/cmp"
)

func TestAddModuleRejectsDuplicateID(t *testing.T) {
	g := New()
	if err := g.AddModule(&Module{ID: "a.js"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddModule(&Module{ID: "a.js"}); err == nil {
		t.Fatal("expected error on duplicate id")
	}
}

func TestAddEdgeIsIdempotent(t *testing.T) {
	g := New()
	g.AddEdge("a.js", "b.js")
	g.AddEdge("a.js", "b.js")
	g.AddEdge("a.js", "c.js")
	got := g.Edges("a.js")
	want := []moduleid.ID{"b.js", "c.js"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
}

func TestTransitiveDepsDiamond(t *testing.T) {
	g := New()
	g.AddEdge("a.js", "b.js")
	g.AddEdge("a.js", "c.js")
	g.AddEdge("b.js", "d.js")
	g.AddEdge("c.js", "d.js")

	got := g.TransitiveDeps("a.js")
	seen := map[moduleid.ID]bool{}
	for _, id := range got {
		if seen[id] {
			t.Fatalf("duplicate id %q in transitive deps: %v", id, got)
		}
		seen[id] = true
	}
	for _, want := range []moduleid.ID{"b.js", "c.js", "d.js"} {
		if !seen[want] {
			t.Fatalf("missing %q in transitive deps: %v", want, got)
		}
	}
	if seen["a.js"] {
		t.Fatal("transitive deps must not include the module itself")
	}
}

func TestRewriteTokenReplacesAllOccurrences(t *testing.T) {
	g := New()
	m := &Module{ID: "a.js", Code: `var x = require("__ductc_dep0__"); var y = require("__ductc_dep0__");`}
	if err := g.AddModule(m); err != nil {
		t.Fatal(err)
	}
	g.RewriteToken("a.js", "__ductc_dep0__", "b.js")
	want := `var x = require("b.js"); var y = require("b.js");`
	if m.Code != want {
		t.Fatalf("got %q want %q", m.Code, want)
	}
}

func TestAddEntrypointIsUnique(t *testing.T) {
	g := New()
	g.AddEntrypoint("a.js")
	g.AddEntrypoint("a.js")
	if len(g.Entrypoints()) != 1 {
		t.Fatalf("expected 1 entrypoint, got %v", g.Entrypoints())
	}
}
