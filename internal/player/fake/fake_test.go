package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/player"
)

type stubScenario struct {
	id    string
	steps int
}

func (s stubScenario) StepCount() int    { return s.steps }
func (s stubScenario) ScenarioID() string { return s.id }

func TestDriver_ReturnsConfiguredResult(t *testing.T) {
	t.Parallel()
	want := player.RunResult{Summary: player.RunSummary{TotalSteps: 2, Passed: 2}}
	d := New(want)

	got, err := d.Run(context.Background(), stubScenario{id: "s1", steps: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Summary.TotalSteps != 2 || got.Summary.Passed != 2 {
		t.Fatalf("got %+v", got)
	}
	if len(d.Calls) != 1 || d.Calls[0].ScenarioID() != "s1" {
		t.Fatalf("scenario not recorded, got %+v", d.Calls)
	}
}

func TestDriver_PropagatesConfiguredError(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("boom")
	d := NewFailing(wantErr)

	_, err := d.Run(context.Background(), stubScenario{id: "s1"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}

func TestDriver_CancelledContextShortCircuits(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(player.RunResult{})
	_, err := d.Run(ctx, stubScenario{id: "s1"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v", err)
	}
}
