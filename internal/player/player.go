// Package player defines the replay driver contract (spec component I).
// This is an interface boundary only — step execution (click/type/assert
// against a real headless browser) is explicitly out of scope. Grounded on
// the teacher's own collaborator-as-interface pattern for out-of-process
// concerns (internal/recording's playback engine talks to an injected
// executor rather than owning browser control itself).
package player

import (
	"context"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// StepStatus is the terminal state of one executed scenario step.
type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult is the outcome of one executed step.
type StepResult struct {
	Index  int        `json:"index"`
	Status StepStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// RunSummary is the step-level summary a conforming player must produce
// per run (spec.md 4.I).
type RunSummary struct {
	TotalSteps int   `json:"totalSteps"`
	Passed     int   `json:"passed"`
	Failed     int   `json:"failed"`
	Skipped    int   `json:"skipped"`
	DurationMs int64 `json:"durationMs"`
}

// LabelledSnapshot is a DOM snapshot captured at a named point during a run.
type LabelledSnapshot struct {
	Label    string             `json:"label"`
	Snapshot types.DomSnapshot  `json:"snapshot"`
}

// LabelledScreenshot is a screenshot captured at a named point during a run.
type LabelledScreenshot struct {
	Label      string                `json:"label"`
	Screenshot types.ScreenshotImage `json:"screenshot"`
}

// RunResult is everything a conforming ReplayDriver must produce per run.
type RunResult struct {
	ApiCalls    []types.CapturedApiCall `json:"apiCalls"`
	Snapshots   []LabelledSnapshot      `json:"snapshots"`
	Screenshots []LabelledScreenshot    `json:"screenshots"`
	Summary     RunSummary              `json:"summary"`
	StepResults []StepResult            `json:"stepResults"`
}

// ReplayDriver drives a headless browser through a recorded scenario AST
// and produces the "actual" artifacts the comparison engine consumes. A
// conforming implementation MUST use a fresh interceptor instance per run
// and MUST stop it before Run returns; cancellation through ctx resolves
// any still-in-flight step as skipped rather than aborting the run outright.
type ReplayDriver interface {
	Run(ctx context.Context, scenario Scenario) (RunResult, error)
}

// Scenario is the minimal view of a scenario AST a driver needs: the
// ordered steps to execute. The full tagged-union AST lives in
// internal/scenario; this interface only depends on the step count and
// identity so internal/player stays decoupled from the wire format.
type Scenario interface {
	StepCount() int
	ScenarioID() string
}
