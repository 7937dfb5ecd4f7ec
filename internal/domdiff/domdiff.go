// Package domdiff implements the DOM differ (spec component F): filter
// both trees, recursively diff them in child order using a stable
// per-node key for move detection, then classify each difference.
// It emits the same types.DiffChange kind/path shape as internal/apidiff
// but does not use diffutil.Diff: the tree walk is bespoke (the node
// identity and move-detection rules are domain-specific, not a generic
// tree-diff library's concern).
package domdiff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// DomDiffSummary counts emitted changes by kind.
type DomDiffSummary struct {
	Added    int `json:"added"`
	Deleted  int `json:"deleted"`
	Modified int `json:"modified"`
	Moved    int `json:"moved"`
}

// DomDiffResult is the full output of CompareDomSnapshots.
type DomDiffResult struct {
	Passed  bool                    `json:"passed"`
	Changes []types.DomDiffChange   `json:"changes"`
	Summary DomDiffSummary          `json:"summary"`
}

// CompareDomSnapshots filters both snapshots per cfg, diffs them, and
// classifies each difference.
func CompareDomSnapshots(baseline, actual types.DomSnapshot, cfg *types.DomDiffConfig) DomDiffResult {
	var c types.DomDiffConfig
	if cfg != nil {
		c = *cfg
	} else {
		c = types.DefaultDomDiffConfig()
	}

	bFiltered := filterNode(baseline.Root, c, 0)
	aFiltered := filterNode(actual.Root, c, 0)

	var changes []types.DomDiffChange
	diffNodes(bFiltered, aFiltered, nil, &changes)

	summary := DomDiffSummary{}
	for _, ch := range changes {
		switch ch.Kind {
		case types.ChangeAdded:
			summary.Added++
		case types.ChangeDeleted:
			summary.Deleted++
		case types.ChangeModified:
			summary.Modified++
		case types.ChangeMoved:
			summary.Moved++
		}
	}

	return DomDiffResult{
		Passed:  len(changes) == 0,
		Changes: changes,
		Summary: summary,
	}
}

// filterNode applies the pre-filter pass (spec.md 4.F) and returns nil when
// the node itself is dropped.
func filterNode(n *types.SerializedNode, cfg types.DomDiffConfig, depth int) *types.SerializedNode {
	if n == nil {
		return nil
	}
	if cfg.MaxDepth > 0 && depth > cfg.MaxDepth {
		return nil
	}
	switch n.Type {
	case types.NodeComment:
		return nil
	case types.NodeText:
		content := n.Content
		if cfg.IgnoreWhitespace {
			content = strings.TrimSpace(content)
		}
		if !cfg.CompareText || content == "" {
			return nil
		}
		return &types.SerializedNode{Type: types.NodeText, Content: content}
	}

	if isIgnoredSelector(n.TagName, cfg.IgnoreSelectors) {
		return nil
	}

	out := &types.SerializedNode{
		Type:       n.Type,
		TagName:    n.TagName,
		Attributes: filterAttributes(n.Attributes, cfg.IgnoreAttributes),
	}
	if cfg.CompareStyles {
		out.ComputedStyle = filterStyles(n.ComputedStyle, cfg.StyleProperties)
	}
	for _, child := range n.Children {
		if fc := filterNode(child, cfg, depth+1); fc != nil {
			out.Children = append(out.Children, fc)
		}
	}
	return out
}

func isIgnoredSelector(tagName string, selectors []string) bool {
	lower := strings.ToLower(tagName)
	for _, s := range selectors {
		if strings.ToLower(strings.TrimPrefix(s, ".")) == lower {
			return true
		}
	}
	return false
}

func filterAttributes(attrs map[string]string, ignore []string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	skip := make(map[string]bool, len(ignore))
	for _, k := range ignore {
		skip[k] = true
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		if skip[k] {
			continue
		}
		out[k] = v
	}
	return out
}

func filterStyles(styles map[string]string, keep []string) map[string]string {
	if len(styles) == 0 {
		return nil
	}
	if len(keep) == 0 {
		out := make(map[string]string, len(styles))
		for k, v := range styles {
			out[k] = v
		}
		return out
	}
	out := make(map[string]string, len(keep))
	for _, k := range keep {
		if v, ok := styles[k]; ok {
			out[k] = v
		}
	}
	return out
}

// nodeKey is the stable per-node identity used for move detection:
// tagName#id#data-testid for elements, type:index for everything else.
func nodeKey(n *types.SerializedNode, index int) string {
	if n.Type == types.NodeElement {
		return n.TagName + "#" + n.Attributes["id"] + "#" + n.Attributes["data-testid"]
	}
	return string(n.Type) + ":" + strconv.Itoa(index)
}

func diffNodes(b, a *types.SerializedNode, path []string, out *[]types.DomDiffChange) {
	if b == nil && a == nil {
		return
	}
	if b == nil {
		*out = append(*out, types.DomDiffChange{
			DiffChange: types.DiffChange{Kind: types.ChangeAdded, Path: clone(path), RHS: summarize(a), Description: describeNode(path, a, "added")},
			ChangeType: classify(path, a),
		})
		return
	}
	if a == nil {
		*out = append(*out, types.DomDiffChange{
			DiffChange: types.DiffChange{Kind: types.ChangeDeleted, Path: clone(path), LHS: summarize(b), Description: describeNode(path, b, "deleted")},
			ChangeType: classify(path, b),
		})
		return
	}

	if b.Type != a.Type {
		*out = append(*out, types.DomDiffChange{
			DiffChange: types.DiffChange{Kind: types.ChangeModified, Path: clone(path), LHS: summarize(b), RHS: summarize(a), Description: describeNode(path, a, "modified")},
			ChangeType: types.DomChangeElement,
		})
		return
	}

	if b.Type == types.NodeText {
		if b.Content != a.Content {
			*out = append(*out, types.DomDiffChange{
				DiffChange: types.DiffChange{Kind: types.ChangeModified, Path: append(clone(path), "content"), LHS: b.Content, RHS: a.Content, Description: describeNode(path, a, "text changed")},
				ChangeType: types.DomChangeText,
				OldValue:   b.Content,
				NewValue:   a.Content,
			})
		}
		return
	}

	if b.TagName != a.TagName {
		*out = append(*out, types.DomDiffChange{
			DiffChange: types.DiffChange{Kind: types.ChangeModified, Path: clone(path), LHS: b.TagName, RHS: a.TagName, Description: describeNode(path, a, "element changed")},
			ChangeType: types.DomChangeElement,
		})
		return
	}

	diffAttributes(b.Attributes, a.Attributes, append(clone(path), "attributes"), types.DomChangeAttribute, out)
	if len(b.ComputedStyle) > 0 || len(a.ComputedStyle) > 0 {
		diffAttributes(b.ComputedStyle, a.ComputedStyle, append(clone(path), "computedStyle"), types.DomChangeElement, out)
	}
	diffChildren(b.Children, a.Children, path, out)
}

// diffAttributes diffs two flat string maps (element attributes, or a
// computed-style projection) under segment, tagging each change with
// changeType — spec.md 4.F's changeType is only "attribute" when the path
// literally contains "attributes"; a computedStyle diff is reported as an
// element-level change instead.
func diffAttributes(b, a map[string]string, segment []string, changeType types.DomChangeType, out *[]types.DomDiffChange) {
	seen := make(map[string]bool, len(b))
	for k, bv := range b {
		seen[k] = true
		av, ok := a[k]
		if !ok {
			*out = append(*out, types.DomDiffChange{
				DiffChange: types.DiffChange{Kind: types.ChangeDeleted, Path: append(clone(segment), k), LHS: bv, Description: fmt.Sprintf("%q removed", k)},
				ChangeType: changeType, AttributeName: k, OldValue: bv,
			})
			continue
		}
		if av != bv {
			*out = append(*out, types.DomDiffChange{
				DiffChange: types.DiffChange{Kind: types.ChangeModified, Path: append(clone(segment), k), LHS: bv, RHS: av, Description: fmt.Sprintf("%q changed", k)},
				ChangeType: changeType, AttributeName: k, OldValue: bv, NewValue: av,
			})
		}
	}
	for k, av := range a {
		if seen[k] {
			continue
		}
		*out = append(*out, types.DomDiffChange{
			DiffChange: types.DiffChange{Kind: types.ChangeAdded, Path: append(clone(segment), k), RHS: av, Description: fmt.Sprintf("%q added", k)},
			ChangeType: changeType, AttributeName: k, NewValue: av,
		})
	}
}

// diffChildren matches children across both sides by stable key to detect
// moves, then recurses in actual-side order.
func diffChildren(b, a []*types.SerializedNode, path []string, out *[]types.DomDiffChange) {
	bByKey := make(map[string][]int, len(b))
	for i, n := range b {
		k := nodeKey(n, i)
		bByKey[k] = append(bByKey[k], i)
	}
	consumed := make([]bool, len(b))

	for ai, an := range a {
		k := nodeKey(an, ai)
		idxs := bByKey[k]
		var bi = -1
		for _, cand := range idxs {
			if !consumed[cand] {
				bi = cand
				break
			}
		}
		childPath := append(clone(path), "children", strconv.Itoa(ai))
		if bi < 0 {
			diffNodes(nil, an, childPath, out)
			continue
		}
		consumed[bi] = true
		if bi != ai {
			*out = append(*out, types.DomDiffChange{
				DiffChange: types.DiffChange{Kind: types.ChangeMoved, Path: clone(childPath), Description: fmt.Sprintf("node moved from position %d to %d", bi, ai)},
				ChangeType: types.DomChangeStructure,
			})
		}
		diffNodes(b[bi], an, childPath, out)
	}

	for bi, bn := range b {
		if consumed[bi] {
			continue
		}
		childPath := append(clone(path), "children", strconv.Itoa(bi))
		diffNodes(bn, nil, childPath, out)
	}
}

func classify(path []string, n *types.SerializedNode) types.DomChangeType {
	for _, p := range path {
		if p == "attributes" {
			return types.DomChangeAttribute
		}
	}
	if n != nil && n.Type == types.NodeText {
		return types.DomChangeText
	}
	if n != nil && n.Type == types.NodeElement {
		return types.DomChangeElement
	}
	return types.DomChangeStructure
}

func summarize(n *types.SerializedNode) any {
	if n == nil {
		return nil
	}
	if n.Type == types.NodeText {
		return n.Content
	}
	return n.TagName
}

func describeNode(path []string, n *types.SerializedNode, verb string) string {
	loc := strings.Join(path, ".")
	if loc == "" {
		loc = "root"
	}
	if n != nil && n.Type == types.NodeElement {
		return fmt.Sprintf("%s <%s> %s", loc, n.TagName, verb)
	}
	return fmt.Sprintf("%s %s", loc, verb)
}

func clone(path []string) []string {
	out := make([]string, len(path))
	copy(out, path)
	return out
}
