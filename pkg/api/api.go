// Package api is the public entry point, mirroring the teacher's own
// pkg/api: a small Options/Result pair wrapping the internal pipeline so
// callers (the CLI, or any other Go program) never import internal/...
// directly.
package api

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/ductc/ductc/internal/bundleerr"
	"github.com/ductc/ductc/internal/chunk"
	"github.com/ductc/ductc/internal/diagnostics"
	"github.com/ductc/ductc/internal/engine"
	"github.com/ductc/ductc/internal/moduleid"
)

// BuildOptions configures a single bundling run.
type BuildOptions struct {
	// Entrypoint is a path to the entry source file, relative to cwd or
	// absolute.
	Entrypoint string

	// ProjectRoot is the directory module ids are computed relative to.
	// Defaults to the current working directory when empty, per spec.md
	// §6's "current working directory is the project root".
	ProjectRoot string
}

// BuildResult is the outcome of a Build call.
type BuildResult struct {
	// Chunk is the final JS source described in spec.md §4.4.
	Chunk string

	// Errors holds fatal diagnostics. Non-empty Errors means Chunk is
	// empty: no partial output is ever produced (spec.md §4.1 "Failure").
	Errors []error

	// Files lists every source file that fed the build, for callers that
	// want to watch the graph for changes.
	Files []string

	Duration time.Duration
}

// Build runs the full pipeline: discover, resolve, lower, and template.
func Build(ctx context.Context, opts BuildOptions) BuildResult {
	start := time.Now()

	entryAbs, err := filepath.Abs(opts.Entrypoint)
	if err != nil {
		return BuildResult{Errors: []error{bundleerr.New(bundleerr.Read, opts.Entrypoint, err)}}
	}

	root := opts.ProjectRoot
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return BuildResult{Errors: []error{bundleerr.New(bundleerr.Read, opts.Entrypoint, err)}}
		}
		root = cwd
	}

	sink := diagnostics.New()
	eng := engine.New(root, sink)

	g, err := eng.Build(ctx, entryAbs)
	if err != nil {
		return BuildResult{Errors: []error{err}, Duration: time.Since(start)}
	}

	entryID := moduleid.From(root, entryAbs)
	out, err := chunk.Render(g, entryID)
	if err != nil {
		return BuildResult{Errors: []error{bundleerr.New(bundleerr.Emit, string(entryID), err)}, Duration: time.Since(start)}
	}

	var files []string
	for _, m := range g.AllModules() {
		files = append(files, m.Path)
	}

	elapsed := time.Since(start)
	sink.Complete(elapsed)
	return BuildResult{Chunk: out, Files: files, Duration: elapsed}
}
