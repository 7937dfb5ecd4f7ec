package diffutil

import (
	"testing"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

func TestDiff_ModifiedScalar(t *testing.T) {
	t.Parallel()
	got := Diff(
		map[string]any{"a": float64(1)},
		map[string]any{"a": float64(2)},
		nil,
	)
	if len(got) != 1 || got[0].Kind != types.ChangeModified {
		t.Fatalf("got %#v", got)
	}
	if got[0].Path[0] != "a" {
		t.Errorf("path = %v", got[0].Path)
	}
}

func TestDiff_AddedAndDeletedKeys(t *testing.T) {
	t.Parallel()
	got := Diff(
		map[string]any{"gone": 1},
		map[string]any{"new": 2},
		nil,
	)
	var sawAdded, sawDeleted bool
	for _, c := range got {
		switch c.Kind {
		case types.ChangeAdded:
			sawAdded = true
		case types.ChangeDeleted:
			sawDeleted = true
		}
	}
	if !sawAdded || !sawDeleted {
		t.Fatalf("got %#v", got)
	}
}

func TestDiff_NestedObjectPath(t *testing.T) {
	t.Parallel()
	got := Diff(
		map[string]any{"user": map[string]any{"name": "a"}},
		map[string]any{"user": map[string]any{"name": "b"}},
		nil,
	)
	if len(got) != 1 {
		t.Fatalf("got %#v", got)
	}
	if got[0].Path[0] != "user" || got[0].Path[1] != "name" {
		t.Errorf("path = %v", got[0].Path)
	}
}

func TestDiff_ArrayLengthMismatch(t *testing.T) {
	t.Parallel()
	got := Diff(
		map[string]any{"items": []any{"x"}},
		map[string]any{"items": []any{"x", "y"}},
		nil,
	)
	if len(got) != 1 || got[0].Kind != types.ChangeArray {
		t.Fatalf("got %#v", got)
	}
}

func TestDiff_IdenticalYieldsNoChanges(t *testing.T) {
	t.Parallel()
	v := map[string]any{"a": []any{float64(1), "x"}, "b": map[string]any{"c": true}}
	got := Diff(v, v, nil)
	if len(got) != 0 {
		t.Fatalf("got %#v", got)
	}
}

func TestIgnoreMatcher_ExactAndDescendant(t *testing.T) {
	t.Parallel()
	m := NewIgnoreMatcher([]string{"headers"})
	if !m.Matches("headers") {
		t.Error("exact match failed")
	}
	if !m.Matches("headers.date") {
		t.Error("descendant of exact prefix must be covered")
	}
	if m.Matches("body.headers") {
		t.Error("must not match unrelated path containing the same segment")
	}
}

func TestIgnoreMatcher_SingleStarOneSegment(t *testing.T) {
	t.Parallel()
	m := NewIgnoreMatcher([]string{"headers.x-*"})
	if !m.Matches("headers.x-request-id") {
		t.Error("single star should match one segment's worth of chars")
	}
	if m.Matches("headers.x-request-id.nested") {
		t.Error("single star must not cross a path boundary")
	}
}

func TestIgnoreMatcher_DoubleStarDescendant(t *testing.T) {
	t.Parallel()
	m := NewIgnoreMatcher([]string{"body.**.id"})
	if !m.Matches("body.items.0.id") {
		t.Error("double star should match any number of intermediate segments")
	}
	if !m.Matches("body.items.id") {
		t.Error("double star should match a single intermediate segment")
	}
	if m.Matches("body.items.0.name") {
		t.Error("must not match a differently-named leaf")
	}
}
