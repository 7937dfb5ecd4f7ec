// Package fake provides a scriptable ReplayDriver test double so
// internal/comparer and internal/scenario have something concrete to
// exercise end-to-end without a real headless browser. Grounded on the
// teacher's recording.testing_helpers.go pattern of exposing narrow,
// test-only seams for collaborators that are otherwise out of process.
package fake

import (
	"context"
	"errors"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/player"
)

// Driver is a ReplayDriver whose Run result is configured up front. It
// records every Scenario it was asked to run, for assertions in tests that
// exercise a caller of player.ReplayDriver.
type Driver struct {
	Result RunResultOrErr
	Calls  []player.Scenario
}

// RunResultOrErr lets a test configure either a successful result or a
// failure for the next Run call.
type RunResultOrErr struct {
	Result player.RunResult
	Err    error
}

// New builds a Driver that returns result for every Run call.
func New(result player.RunResult) *Driver {
	return &Driver{Result: RunResultOrErr{Result: result}}
}

// NewFailing builds a Driver whose Run always returns err.
func NewFailing(err error) *Driver {
	if err == nil {
		err = errors.New("fake: run failed")
	}
	return &Driver{Result: RunResultOrErr{Err: err}}
}

// Run implements player.ReplayDriver.
func (d *Driver) Run(ctx context.Context, s player.Scenario) (player.RunResult, error) {
	d.Calls = append(d.Calls, s)
	if ctx.Err() != nil {
		return player.RunResult{}, ctx.Err()
	}
	if d.Result.Err != nil {
		return player.RunResult{}, d.Result.Err
	}
	return d.Result.Result, nil
}
