// Package graph holds the module registry and dependency edges built up
// over the course of a compilation. A Graph is mutable only while the
// Build Engine is running; after the engine signals completion it is
// read-only and safe to share across the chunk templating step.
package graph

import (
	"fmt"
	"strings"

	"github.com/ductc/ductc/internal/moduleid"
)

// Kind classifies a module's syntax as it was found on disk.
type Kind int

const (
	CommonJS Kind = iota
	ESM
)

func (k Kind) String() string {
	if k == ESM {
		return "ESM"
	}
	return "CJS"
}

// Module is one built source file: its id, its absolute path, its
// lowered code (no import/export syntax remains), and its kind.
//
// Code is mutated exactly once per dependency, by the Build Engine,
// to rewrite a placeholder token into the dependency's resolved id.
// No other field changes after insertion.
type Module struct {
	ID   moduleid.ID
	Path string
	Code string
	Kind Kind
}

// Graph is the registry of built modules plus the directed dependency
// edges between them. It is owned exclusively by the Build Engine's
// main/dispatcher goroutine during a build; no locking is performed.
type Graph struct {
	modules     map[moduleid.ID]*Module
	edges       map[moduleid.ID][]moduleid.ID
	edgeSeen    map[moduleid.ID]map[moduleid.ID]bool
	entrypoints []moduleid.ID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		modules:  make(map[moduleid.ID]*Module),
		edges:    make(map[moduleid.ID][]moduleid.ID),
		edgeSeen: make(map[moduleid.ID]map[moduleid.ID]bool),
	}
}

// AddModule inserts a module. It is an error to insert the same id twice.
func (g *Graph) AddModule(m *Module) error {
	if _, exists := g.modules[m.ID]; exists {
		return fmt.Errorf("module %q already present in graph", m.ID)
	}
	g.modules[m.ID] = m
	return nil
}

// HasModule reports whether id has been inserted.
func (g *Graph) HasModule(id moduleid.ID) bool {
	_, ok := g.modules[id]
	return ok
}

// GetModule returns the module for id, or nil if absent.
func (g *Graph) GetModule(id moduleid.ID) *Module {
	return g.modules[id]
}

// AddEdge appends to -> dependency edge to from's ordered edge list.
// Idempotent per (from, to) pair: a repeated call is a no-op.
func (g *Graph) AddEdge(from, to moduleid.ID) {
	seen := g.edgeSeen[from]
	if seen == nil {
		seen = make(map[moduleid.ID]bool)
		g.edgeSeen[from] = seen
	}
	if seen[to] {
		return
	}
	seen[to] = true
	g.edges[from] = append(g.edges[from], to)
}

// Edges returns the ordered dependency list recorded for id.
func (g *Graph) Edges(id moduleid.ID) []moduleid.ID {
	return g.edges[id]
}

// AddEntrypoint records id as an entrypoint, once.
func (g *Graph) AddEntrypoint(id moduleid.ID) {
	for _, e := range g.entrypoints {
		if e == id {
			return
		}
	}
	g.entrypoints = append(g.entrypoints, id)
}

// Entrypoints returns the ordered entrypoint ids.
func (g *Graph) Entrypoints() []moduleid.ID {
	return g.entrypoints
}

// RewriteToken substitutes token for replacement everywhere it occurs in
// id's code. This is the single sanctioned post-insert mutation of a
// Module: the engine's deferred request -> resolved-id rewrite.
func (g *Graph) RewriteToken(id moduleid.ID, token, replacement string) {
	m := g.modules[id]
	if m == nil {
		return
	}
	m.Code = strings.ReplaceAll(m.Code, token, replacement)
}

// TransitiveDeps returns the set of module ids reachable from id via
// dependency edges, excluding id itself. The traversal (BFS) follows each
// module's recorded edge order; the Build Engine records a module's edges
// in its dependency-list order, so the result does not depend on goroutine
// scheduling during build.
func (g *Graph) TransitiveDeps(id moduleid.ID) []moduleid.ID {
	visited := map[moduleid.ID]bool{id: true}
	queue := append([]moduleid.ID{}, g.edges[id]...)
	for _, q := range queue {
		visited[q] = true
	}
	var order []moduleid.ID
	order = append(order, queue...)
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		for _, next := range g.edges[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
				order = append(order, next)
			}
		}
	}
	return order
}

// AllModules returns every module inserted into the graph, in no
// particular order. Used by watch mode to find the file set to watch.
func (g *Graph) AllModules() []*Module {
	out := make([]*Module, 0, len(g.modules))
	for _, m := range g.modules {
		out = append(out, m)
	}
	return out
}

// ModuleIDs returns the ids from order that are present in the graph, in
// the given order, each once. Chunk templating passes the entry followed by
// its TransitiveDeps, which fixes the registry iteration order (spec.md §5:
// "implementers choose, but the test suite fixes the choice").
func (g *Graph) ModuleIDs(order []moduleid.ID) []moduleid.ID {
	seen := make(map[moduleid.ID]bool, len(order))
	var out []moduleid.ID
	for _, id := range order {
		if g.HasModule(id) && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
