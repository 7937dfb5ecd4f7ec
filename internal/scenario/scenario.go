// Package scenario implements the versioned scenario AST (spec.md 6): a
// tagged-union Step type, a Selector that is either a plain string or a
// strategy-tagged object, and a Scenario envelope carrying schema-version
// acceptance. Grounded on the teacher's own tagged RecordingAction.Type
// switch (internal/recording/types.go) and its reproduction step
// generation (internal/reproduction/reproduction.go), generalized from a
// single flat action record into the spec's exhaustive step-type union.
package scenario

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/util"
)

// MAJOR is the current scenario AST major version. Any scenario whose
// meta.astSchemaVersion shares this major is accepted (spec.md 6).
const MAJOR = 1

// StepType discriminates a Step (spec.md 6).
type StepType string

const (
	StepNavigate      StepType = "navigate"
	StepClick         StepType = "click"
	StepTypeText      StepType = "type"
	StepKeypress      StepType = "keypress"
	StepWait          StepType = "wait"
	StepHover         StepType = "hover"
	StepScroll        StepType = "scroll"
	StepSelect        StepType = "select"
	StepAssertApi     StepType = "assertApi"
	StepAssertElement StepType = "assertElement"
	StepSnapshotDom   StepType = "snapshotDom"
)

// SelectorStrategy discriminates a tagged-object Selector.
type SelectorStrategy string

const (
	StrategyTestID SelectorStrategy = "testId"
	StrategyRole   SelectorStrategy = "role"
	StrategyCSS    SelectorStrategy = "css"
	StrategyXPath  SelectorStrategy = "xpath"
)

// Selector is either a plain CSS-like string or a tagged
// {strategy, value, role?, name?} object. JSON (de)serialization accepts
// both shapes transparently, matching the wire format's "string or object"
// union (spec.md 6).
type Selector struct {
	Plain    string           // set when the wire value was a bare string
	Strategy SelectorStrategy // set when the wire value was a tagged object
	Value    string
	Role     string
	Name     string
}

// IsPlain reports whether this selector was a bare string on the wire.
func (s Selector) IsPlain() bool { return s.Strategy == "" }

// MarshalJSON emits a bare string for a plain selector, or the tagged
// object otherwise.
func (s Selector) MarshalJSON() ([]byte, error) {
	if s.IsPlain() {
		return json.Marshal(s.Plain)
	}
	obj := map[string]string{"strategy": string(s.Strategy), "value": s.Value}
	if s.Role != "" {
		obj["role"] = s.Role
	}
	if s.Name != "" {
		obj["name"] = s.Name
	}
	return json.Marshal(obj)
}

// UnmarshalJSON accepts either a bare string or the tagged object shape.
func (s *Selector) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*s = Selector{Plain: plain}
		return nil
	}
	var obj struct {
		Strategy string `json:"strategy"`
		Value    string `json:"value"`
		Role     string `json:"role,omitempty"`
		Name     string `json:"name,omitempty"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("scenario: selector must be a string or a {strategy,value} object: %w", err)
	}
	*s = Selector{Strategy: SelectorStrategy(obj.Strategy), Value: obj.Value, Role: obj.Role, Name: obj.Name}
	return nil
}

// Step is a tagged union discriminated by Type. Only the fields relevant
// to a given Type are populated; exhaustive matching on Type belongs at
// the scenario-ingest boundary only, never at every step executor (spec.md
// 9 Design Notes).
type Step struct {
	Type     StepType  `json:"type"`
	Selector *Selector `json:"selector,omitempty"`
	Text     string    `json:"text,omitempty"`     // type, keypress
	URL      string    `json:"url,omitempty"`      // navigate
	TimeoutMs int64    `json:"timeoutMs,omitempty"` // wait
	DX       int       `json:"dx,omitempty"`       // scroll
	DY       int       `json:"dy,omitempty"`       // scroll
	Value    string    `json:"value,omitempty"`    // select
	URLPattern string  `json:"urlPattern,omitempty"` // assertApi
	Method   string    `json:"method,omitempty"`   // assertApi
	Label    string    `json:"label,omitempty"`    // snapshotDom
}

// Meta carries the scenario's schema version and is round-tripped
// otherwise unexamined.
type Meta struct {
	AstSchemaVersion string `json:"astSchemaVersion"`
}

// Scenario is the wire-format AST root (spec.md 6).
type Scenario struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Meta        Meta              `json:"meta"`
	Steps       []Step            `json:"steps"`
	Setup       []Step            `json:"setup,omitempty"`
	Teardown    []Step            `json:"teardown,omitempty"`
	Variables   map[string]string `json:"variables,omitempty"`
}

// StepCount implements player.Scenario.
func (s Scenario) StepCount() int { return len(s.Steps) }

// ScenarioID implements player.Scenario.
func (s Scenario) ScenarioID() string { return s.ID }

// AcceptVersion reports whether the scenario's meta.astSchemaVersion major
// matches MAJOR, per spec.md 6's "accepts any scenario whose major matches
// the current MAJOR".
func (s Scenario) AcceptVersion() error {
	major, err := parseMajor(s.Meta.AstSchemaVersion)
	if err != nil {
		return types.NewDiffInputError("scenario %s: %v", s.ID, err)
	}
	if major != MAJOR {
		return types.NewDiffInputError("scenario %s: astSchemaVersion major %d does not match supported major %d", s.ID, major, MAJOR)
	}
	return nil
}

func parseMajor(semver string) (int, error) {
	v := strings.TrimPrefix(semver, "v")
	parts := strings.SplitN(v, ".", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, fmt.Errorf("empty or malformed astSchemaVersion %q", semver)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed astSchemaVersion %q: %w", semver, err)
	}
	return major, nil
}

// Baseline is the persisted artifact triple captured at record time
// (spec.md 6).
type Baseline struct {
	ScenarioID      string              `json:"scenarioId"`
	CapturedAt      string              `json:"capturedAt"` // RFC3339
	ApiCalls        []types.CapturedApiCall `json:"apiCalls"`
	Snapshots       []LabelledSnapshot  `json:"snapshots"`
	FinalScreenshot *types.ScreenshotImage `json:"finalScreenshot,omitempty"`
}

// LabelledSnapshot is one named DOM+screenshot capture point inside a
// Baseline.
type LabelledSnapshot struct {
	Label      string                 `json:"label"`
	Snapshot   types.DomSnapshot      `json:"snapshot"`
	Screenshot *types.ScreenshotImage `json:"screenshot,omitempty"`
}

// Age reports how long ago this baseline was captured, or zero if
// CapturedAt is empty or malformed.
func (b Baseline) Age(now time.Time) time.Duration {
	t := util.ParseTimestamp(b.CapturedAt)
	if t.IsZero() {
		return 0
	}
	return now.Sub(t)
}
