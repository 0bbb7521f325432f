package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveRelativeWithExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "util.ts"), "export const x = 1;")

	r := New()
	got, err := r.Resolve("./util", dir)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "util.ts")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolveRelativeIndexFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "widgets", "index.tsx"), "export default 1;")

	r := New()
	got, err := r.Resolve("./widgets", dir)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "widgets", "index.tsx")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolvePackageMainField(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "node_modules", "leftpad")
	writeFile(t, filepath.Join(pkgDir, "package.json"), `{"main": "lib/index.js"}`)
	writeFile(t, filepath.Join(pkgDir, "lib", "index.js"), "module.exports = {};")

	r := New()
	got, err := r.Resolve("leftpad", dir)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(pkgDir, "lib", "index.js")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolveNotFound(t *testing.T) {
	dir := t.TempDir()
	r := New()
	if _, err := r.Resolve("./missing", dir); err == nil {
		t.Fatal("expected error")
	}
}
