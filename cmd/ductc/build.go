package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ductc/ductc/pkg/api"
)

// runBuild runs one build (or, with watch set, rebuilds on every change to
// a file in the module graph) and writes the chunk to outDir/main.js.
func runBuild(ctx context.Context, entrypoint, outDir string, watch bool) error {
	if !watch {
		return buildOnce(entrypoint, outDir)
	}
	return buildAndWatch(ctx, entrypoint, outDir)
}

func buildOnce(entrypoint, outDir string) error {
	res := api.Build(context.Background(), api.BuildOptions{Entrypoint: entrypoint})
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("build failed")
	}

	// The diagnostics Sink already printed "Build complete in <ms>ms" to
	// stdout (spec.md §6) as part of api.Build; nothing to add here.
	return writeChunk(outDir, res.Chunk)
}

func writeChunk(outDir, chunk string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(outDir, "main.js")
	if err := os.WriteFile(outPath, []byte(chunk), 0o644); err != nil {
		return fmt.Errorf("write chunk: %w", err)
	}
	return nil
}

// buildAndWatch is the supplemented --watch feature: rebuild the chunk
// whenever a file that fed the previous build changes. Re-watches the
// full file set after every rebuild since the dependency graph (and so
// the set of files worth watching) can itself change between builds.
func buildAndWatch(ctx context.Context, entrypoint, outDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	rebuild := func() ([]string, error) {
		res := api.Build(ctx, api.BuildOptions{Entrypoint: entrypoint})
		if len(res.Errors) > 0 {
			for _, e := range res.Errors {
				fmt.Fprintln(os.Stderr, e)
			}
			return nil, fmt.Errorf("build failed")
		}
		if err := writeChunk(outDir, res.Chunk); err != nil {
			return nil, err
		}
		fmt.Fprintln(os.Stderr, "Build complete, watching for changes...")
		return res.Files, nil
	}

	watched := map[string]bool{}
	resync := func(files []string) {
		for f := range watched {
			_ = watcher.Remove(f)
			delete(watched, f)
		}
		for _, f := range files {
			if err := watcher.Add(f); err == nil {
				watched[f] = true
			}
		}
	}

	files, err := rebuild()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	} else {
		resync(files)
	}

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			debounce.Reset(50 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		case <-debounce.C:
			files, err := rebuild()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			resync(files)
		}
	}
}
