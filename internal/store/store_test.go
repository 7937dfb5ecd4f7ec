package store

import (
	"testing"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/scenario"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

func TestStore_SaveThenLoadRoundTrips(t *testing.T) {
	t.Parallel()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b := scenario.Baseline{
		ScenarioID: "checkout-flow",
		CapturedAt: "2026-07-30T00:00:00Z",
		ApiCalls:   []types.CapturedApiCall{},
	}
	if err := s.Save(b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("checkout-flow")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ScenarioID != b.ScenarioID || got.CapturedAt != b.CapturedAt {
		t.Fatalf("got %+v", got)
	}
}

func TestStore_ExistsReflectsPersistence(t *testing.T) {
	t.Parallel()
	s, _ := New(t.TempDir())
	if s.Exists("nope") {
		t.Fatal("must not exist before Save")
	}
	_ = s.Save(scenario.Baseline{ScenarioID: "nope"})
	if !s.Exists("nope") {
		t.Fatal("must exist after Save")
	}
}

func TestStore_DeleteRemovesBaseline(t *testing.T) {
	t.Parallel()
	s, _ := New(t.TempDir())
	_ = s.Save(scenario.Baseline{ScenarioID: "x"})
	if err := s.Delete("x"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if s.Exists("x") {
		t.Fatal("must not exist after Delete")
	}
}

func TestStore_LoadMissingReturnsError(t *testing.T) {
	t.Parallel()
	s, _ := New(t.TempDir())
	if _, err := s.Load("missing"); err == nil {
		t.Fatal("want error loading a baseline that was never saved")
	}
}

func TestStore_SaveOverwritesPriorBaseline(t *testing.T) {
	t.Parallel()
	s, _ := New(t.TempDir())
	_ = s.Save(scenario.Baseline{ScenarioID: "x", CapturedAt: "first"})
	_ = s.Save(scenario.Baseline{ScenarioID: "x", CapturedAt: "second"})
	got, err := s.Load("x")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CapturedAt != "second" {
		t.Fatalf("got %q, want overwritten value", got.CapturedAt)
	}
}
