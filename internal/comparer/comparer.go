// Package comparer implements the comparison facade (spec component H):
// run each of the three differs only when both sides provide that
// artifact, then AND together whatever actually ran. Metadata fields are
// opaque and round-tripped, never interpreted.
package comparer

import (
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/apidiff"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/domdiff"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/visualdiff"
)

// Artifacts bundles the three optional comparison inputs one side (baseline
// or actual) of a scenario run can provide.
type Artifacts struct {
	ApiCalls   []types.CapturedApiCall
	DomSnap    *types.DomSnapshot
	Screenshot *types.ScreenshotImage
}

// Options carries the per-differ configs plus opaque metadata that is
// round-tripped onto the result unexamined.
type Options struct {
	ApiConfig    *apidiff.Options
	DomConfig    *types.DomDiffConfig
	VisualConfig *types.VisualDiffConfig
	ScenarioID   string
	StepIndex    int
	BaselineID   string
	ActualID     string
}

// CompareResult aggregates whichever differs actually ran.
type CompareResult struct {
	Passed     bool                        `json:"passed"`
	Api        *apidiff.ApiDiffResult      `json:"api,omitempty"`
	Dom        *domdiff.DomDiffResult      `json:"dom,omitempty"`
	Visual     *visualdiff.VisualDiffResult `json:"visual,omitempty"`
	ScenarioID string                      `json:"scenarioId,omitempty"`
	StepIndex  int                         `json:"stepIndex,omitempty"`
	BaselineID string                      `json:"baselineId,omitempty"`
	ActualID   string                      `json:"actualId,omitempty"`
}

// Compare runs apidiff/domdiff/visualdiff over baseline vs actual, one per
// artifact pair both sides actually supplied.
func Compare(baseline, actual Artifacts, opts *Options) CompareResult {
	if opts == nil {
		opts = &Options{}
	}

	result := CompareResult{
		Passed:     true,
		ScenarioID: opts.ScenarioID,
		StepIndex:  opts.StepIndex,
		BaselineID: opts.BaselineID,
		ActualID:   opts.ActualID,
	}

	ranAny := false

	if baseline.ApiCalls != nil && actual.ApiCalls != nil {
		r := apidiff.CompareApiCalls(baseline.ApiCalls, actual.ApiCalls, opts.ApiConfig)
		result.Api = &r
		result.Passed = result.Passed && r.Passed
		ranAny = true
	}

	if baseline.DomSnap != nil && actual.DomSnap != nil {
		r := domdiff.CompareDomSnapshots(*baseline.DomSnap, *actual.DomSnap, opts.DomConfig)
		result.Dom = &r
		result.Passed = result.Passed && r.Passed
		ranAny = true
	}

	if baseline.Screenshot != nil && actual.Screenshot != nil {
		r := visualdiff.CompareScreenshots(*baseline.Screenshot, *actual.Screenshot, opts.VisualConfig)
		result.Visual = &r
		result.Passed = result.Passed && r.Passed
		ranAny = true
	}

	// No shared artifact on both sides means nothing was actually verified;
	// treat that as a non-passing comparison rather than a vacuous pass.
	if !ranAny {
		result.Passed = false
	}
	return result
}
