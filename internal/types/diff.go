// diff.go — Diff result shapes shared by the API and DOM differs (the
// visual differ reports pixel counts instead). Mirrors the hand-rolled diff records in the
// teacher's capture/log-diff.go, generalized into a typed change record
// with a structural path instead of flat string fields.
package types

// ChangeKind classifies a single emitted difference.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeModified ChangeKind = "modified"
	ChangeArray    ChangeKind = "array"
	ChangeMoved    ChangeKind = "moved"
)

// DiffChange is one structural difference between two comparison views.
type DiffChange struct {
	Kind        ChangeKind `json:"kind"`
	Path        []string   `json:"path"`
	LHS         any        `json:"lhs,omitempty"`
	RHS         any        `json:"rhs,omitempty"`
	Description string     `json:"description"`
}

// DomChangeType classifies a DomDiffChange by the kind of DOM content it
// touches, inferred from the path shape (spec.md 4.F).
type DomChangeType string

const (
	DomChangeAttribute DomChangeType = "attribute"
	DomChangeText      DomChangeType = "text"
	DomChangeElement   DomChangeType = "element"
	DomChangeStructure DomChangeType = "structure"
)

// DomDiffChange is a DiffChange annotated with DOM-specific metadata.
type DomDiffChange struct {
	DiffChange
	ChangeType    DomChangeType `json:"changeType"`
	AttributeName string        `json:"attributeName,omitempty"`
	OldValue      string        `json:"oldValue,omitempty"`
	NewValue      string        `json:"newValue,omitempty"`
}

// Severity classifies an ApiPairResult (spec.md 4.E).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)
