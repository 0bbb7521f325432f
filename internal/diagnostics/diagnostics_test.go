package diagnostics

import (
	"testing"
	"time"
)

func TestModuleBuiltRecordsEvent(t *testing.T) {
	s := New()
	s.ModuleBuilt("a.js", 5*time.Millisecond)
	if len(s.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(s.events))
	}
	if s.events[0].moduleID != "a.js" {
		t.Fatalf("got %q", s.events[0].moduleID)
	}
}

func TestWarnRecordsEvent(t *testing.T) {
	s := New()
	s.Warn("a.js", "complex require not supported")
	if len(s.events) != 1 || s.events[0].warning == "" {
		t.Fatalf("expected a warning event, got %+v", s.events)
	}
}
