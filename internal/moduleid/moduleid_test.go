package moduleid

import "testing"

func TestFromWithinRoot(t *testing.T) {
	got := From("/proj", "/proj/src/a.ts")
	if got != "src/a.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestFromOutsideRoot(t *testing.T) {
	got := From("/proj", "/other/a.ts")
	if got != "/other/a.ts" {
		t.Fatalf("got %q", got)
	}
}

func TestFromNormalizesSlashes(t *testing.T) {
	got := From("/proj", "/proj/src/nested/b.tsx")
	if got != "src/nested/b.tsx" {
		t.Fatalf("got %q", got)
	}
}
