package diagnostics

import (
	"strings"
	"testing"
)

func TestErrorfFormatsLocationAndIncrementsCount(t *testing.T) {
	var buf strings.Builder
	s := NewSink(&buf)
	s.Errorf(Location{Line: 4}, "variable %q already declared", "x")

	if s.Errors != 1 {
		t.Fatalf("expected Errors=1, got %d", s.Errors)
	}
	if !strings.Contains(buf.String(), "At line 4, error: variable \"x\" already declared.") {
		t.Fatalf("unexpected message: %q", buf.String())
	}
	if !s.HasErrors() {
		t.Fatal("expected HasErrors to report true")
	}
}

func TestErrorfWithNoLocationOmitsLinePrefix(t *testing.T) {
	var buf strings.Builder
	s := NewSink(&buf)
	s.Errorf(NoLocation, "out of memory")
	if !strings.HasPrefix(buf.String(), "error: out of memory.") {
		t.Fatalf("unexpected message: %q", buf.String())
	}
}

func TestWarnfDoesNotCountAsError(t *testing.T) {
	var buf strings.Builder
	s := NewSink(&buf)
	s.Warnf(Location{Line: 2}, "division by zero")
	if s.Errors != 0 || s.Warnings != 1 {
		t.Fatalf("expected Errors=0 Warnings=1, got Errors=%d Warnings=%d", s.Errors, s.Warnings)
	}
	if s.HasErrors() {
		t.Fatal("a warning must not count as an error")
	}
}

func TestFatalfReturnsAnError(t *testing.T) {
	var buf strings.Builder
	s := NewSink(&buf)
	err := s.Fatalf(Location{Line: 9}, "register allocation failed")
	if err == nil {
		t.Fatal("expected a non-nil *FatalError")
	}
	if !strings.Contains(err.Error(), "register allocation failed") {
		t.Fatalf("unexpected error text: %v", err)
	}
}
