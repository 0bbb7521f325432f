package api

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestBuildSideEffectImport covers spec.md §8 scenario 1.
func TestBuildSideEffectImport(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "b.js", `console.log(2);`)
	entry := writeFixture(t, dir, "a.js", `import "./b"; console.log(1);`)

	res := Build(context.Background(), BuildOptions{Entrypoint: entry, ProjectRoot: dir})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if !strings.Contains(res.Chunk, "console.log(2);") || !strings.Contains(res.Chunk, "console.log(1);") {
		t.Fatalf("chunk missing expected bodies:\n%s", res.Chunk)
	}
	if !strings.Contains(res.Chunk, `require("b.js"`) {
		t.Fatalf("chunk must require the resolved module id, not a placeholder token:\n%s", res.Chunk)
	}
	if strings.Contains(res.Chunk, "__ductc_dep") {
		t.Fatalf("chunk still contains an unresolved dependency token:\n%s", res.Chunk)
	}
}

// TestBuildDiamondDependency covers spec.md §8 scenario 4.
func TestBuildDiamondDependency(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "d.js", `export const v = 1;`)
	writeFixture(t, dir, "b.js", `export { v } from "./d";`)
	writeFixture(t, dir, "c.js", `export { v } from "./d";`)
	entry := writeFixture(t, dir, "a.js", `import { v as bv } from "./b"; import { v as cv } from "./c"; console.log(bv, cv);`)

	res := Build(context.Background(), BuildOptions{Entrypoint: entry, ProjectRoot: dir})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	for _, id := range []string{"a.js", "b.js", "c.js", "d.js"} {
		if !strings.Contains(res.Chunk, `"`+id+`"`) {
			t.Fatalf("chunk missing module %q:\n%s", id, res.Chunk)
		}
	}
}

// TestBuildCycleDoesNotHang covers spec.md §8 scenario 5.
func TestBuildCycleDoesNotHang(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "b.js", `import { a } from "./a"; export const b = 2; console.log(a);`)
	entry := writeFixture(t, dir, "a.js", `import { b } from "./b"; export const a = 1; console.log(b);`)

	res := Build(context.Background(), BuildOptions{Entrypoint: entry})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Chunk == "" {
		t.Fatal("expected a rendered chunk for a cyclic graph")
	}
}

func TestBuildMissingEntrypointFailsCleanly(t *testing.T) {
	res := Build(context.Background(), BuildOptions{Entrypoint: "/does/not/exist.js"})
	if len(res.Errors) == 0 {
		t.Fatal("expected an error for a missing entrypoint")
	}
	if res.Chunk != "" {
		t.Fatal("expected no partial output on failure")
	}
}

func TestBuildUnresolvableImportFailsCleanly(t *testing.T) {
	dir := t.TempDir()
	entry := writeFixture(t, dir, "a.js", `import "./missing";`)

	res := Build(context.Background(), BuildOptions{Entrypoint: entry})
	if len(res.Errors) == 0 {
		t.Fatal("expected a resolve error")
	}
	if res.Chunk != "" {
		t.Fatal("expected no partial output on failure")
	}
}
