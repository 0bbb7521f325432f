// Package engine implements the Build Engine (spec.md §4.1 / §5): a
// dispatcher goroutine that starts one worker goroutine per work item
// (two kinds of work), and a result loop on the goroutine that calls
// Build, which drains the result channel and owns the graph, the
// `active` counter, and the `seen` set exclusively -- no locking, matching the teacher's own concurrency idiom
// of plain `go func` + channels (internal/bundler/linker.go) and the
// original Rust source's crossbeam-channel dispatcher
// (module_loader.rs's load_entrypoint).
package engine

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/ductc/ductc/internal/bundleerr"
	"github.com/ductc/ductc/internal/diagnostics"
	"github.com/ductc/ductc/internal/emitter"
	"github.com/ductc/ductc/internal/graph"
	"github.com/ductc/ductc/internal/lower"
	"github.com/ductc/ductc/internal/moduleid"
	"github.com/ductc/ductc/internal/parser"
	"github.com/ductc/ductc/internal/resolver"
)

// workMsg is the work-channel payload. Exactly one of its two fields is set.
type workMsg struct {
	build   *buildTask
	resolve *resolveTask
}

type buildTask struct {
	path string
}

type resolveTask struct {
	parentID   moduleid.ID
	sourceFile string
	request    string
	token      string
}

// resultMsg is the result-channel payload, produced by workers.
type resultMsg struct {
	build   *buildResult
	resolve *resolveResult
	err     error
}

type buildResult struct {
	path         string
	id           moduleid.ID
	code         string
	kind         graph.Kind
	dependencies []lower.Dependency
	duration     time.Duration
}

type resolveResult struct {
	parentID     moduleid.ID
	request      string
	token        string
	resolvedPath string
	resolvedID   moduleid.ID
}

// Engine drives the transitive closure of module discovery in parallel.
type Engine struct {
	Root     string
	Resolver *resolver.Resolver
	Sink     *diagnostics.Sink

	work   chan workMsg
	result chan resultMsg
}

// New returns an Engine rooted at projectRoot.
func New(projectRoot string, sink *diagnostics.Sink) *Engine {
	return &Engine{
		Root:     projectRoot,
		Resolver: resolver.New(),
		Sink:     sink,
		work:     make(chan workMsg),
		result:   make(chan resultMsg),
	}
}

// Build runs the full pipeline from entrypoint and returns the completed
// graph, or the first fatal error encountered.
func (e *Engine) Build(ctx context.Context, entrypointAbs string) (*graph.Graph, error) {
	g := graph.New()
	entryID := moduleid.From(e.Root, entrypointAbs)
	g.AddEntrypoint(entryID)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go e.dispatch(ctx, done)

	seen := map[moduleid.ID]bool{entryID: true}
	active := 1
	// A module's edges are added once all of its dependencies have resolved,
	// in its dependency-list order, so edge order does not depend on which
	// resolve task finishes first.
	depTokens := map[moduleid.ID][]string{}
	resolved := map[moduleid.ID]map[string]moduleid.ID{}
	e.work <- workMsg{build: &buildTask{path: entrypointAbs}}

	var firstErr error

	for active > 0 {
		select {
		case <-ctx.Done():
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			active = 0
		case r := <-e.result:
			if r.err != nil {
				if firstErr == nil {
					firstErr = r.err
					cancel()
				}
				active--
				continue
			}

			switch {
			case r.build != nil:
				b := r.build
				if err := g.AddModule(&graph.Module{ID: b.id, Path: b.path, Code: b.code, Kind: b.kind}); err != nil {
					if firstErr == nil {
						firstErr = err
						cancel()
					}
					active--
					continue
				}
				e.Sink.ModuleBuilt(string(b.id), b.duration)
				active--
				resolved[b.id] = map[string]moduleid.ID{}
				for _, dep := range b.dependencies {
					depTokens[b.id] = append(depTokens[b.id], dep.Token)
					active++
					e.work <- workMsg{resolve: &resolveTask{
						parentID:   b.id,
						sourceFile: b.path,
						request:    dep.Request,
						token:      dep.Token,
					}}
				}
			case r.resolve != nil:
				res := r.resolve
				got := resolved[res.parentID]
				got[res.token] = res.resolvedID
				if len(got) == len(depTokens[res.parentID]) {
					for _, tok := range depTokens[res.parentID] {
						g.AddEdge(res.parentID, got[tok])
					}
				}
				g.RewriteToken(res.parentID, res.token, string(res.resolvedID))
				if !seen[res.resolvedID] {
					seen[res.resolvedID] = true
					e.work <- workMsg{build: &buildTask{path: res.resolvedPath}}
				} else {
					active--
				}
			}
		}
	}

	close(done)
	if firstErr != nil {
		return nil, firstErr
	}
	return g, nil
}

// dispatch pulls work items off the work channel and runs each on its
// own goroutine, matching the teacher's plain `go func` worker style
// rather than a pool library. Runs until done is closed.
func (e *Engine) dispatch(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case w := <-e.work:
			switch {
			case w.build != nil:
				go e.runBuild(ctx, w.build)
			case w.resolve != nil:
				go e.runResolve(ctx, w.resolve)
			}
		}
	}
}

func (e *Engine) runBuild(ctx context.Context, t *buildTask) {
	start := time.Now()

	src, err := os.ReadFile(t.path)
	if err != nil {
		e.sendErr(bundleerr.New(bundleerr.Read, t.path, err))
		return
	}

	ast, err := parser.Parse(ctx, src, t.path)
	if err != nil {
		e.sendErr(bundleerr.New(bundleerr.Parse, t.path, err))
		return
	}

	lowered, err := lower.Lower(ast)
	if err != nil {
		e.sendErr(bundleerr.New(bundleerr.Lower, t.path, err))
		return
	}
	for _, w := range lowered.Warnings {
		e.Sink.Warn(t.path, w)
	}

	code, err := emitter.Emit(ast.Source, lowered.Edits, lowered.Preamble)
	if err != nil {
		e.sendErr(bundleerr.New(bundleerr.Emit, t.path, err))
		return
	}

	id := moduleid.From(e.Root, t.path)
	select {
	case e.result <- resultMsg{build: &buildResult{
		path:         t.path,
		id:           id,
		code:         string(code),
		kind:         lowered.Kind,
		dependencies: lowered.Dependencies,
		duration:     time.Since(start),
	}}:
	case <-ctx.Done():
	}
}

func (e *Engine) runResolve(ctx context.Context, t *resolveTask) {
	baseDir := dirOf(t.sourceFile)
	resolvedPath, err := e.Resolver.Resolve(t.request, baseDir)
	if err != nil {
		e.sendErr(bundleerr.New(bundleerr.Resolve, t.request, err))
		return
	}
	resolvedID := moduleid.From(e.Root, resolvedPath)

	select {
	case e.result <- resultMsg{resolve: &resolveResult{
		parentID:     t.parentID,
		request:      t.request,
		token:        t.token,
		resolvedPath: resolvedPath,
		resolvedID:   resolvedID,
	}}:
	case <-ctx.Done():
	}
}

func (e *Engine) sendErr(err error) {
	e.result <- resultMsg{err: err}
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
