// Package apidiff implements the API differ (spec component E): match
// baseline vs actual call lists, build comparison views per pair, run the
// shared deep diff, classify severity, and aggregate pass/fail. Grounded on
// the teacher's hand-rolled DiffRecordings/detectValueChanges shape in
// capture/log-diff.go, adapted to the request/response view split this
// spec requires.
package apidiff

import (
	"net/url"
	"sort"
	"strings"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/diffutil"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// ephemeralQueryParams are stripped during URL normalization for matching,
// exactly the spec's under-specified default set. Callers with real APIs
// that mint nonces or signed params should supply a Normalizer instead of
// relying on further built-in stripping (spec.md 9, open question).
var ephemeralQueryParams = map[string]bool{"_": true, "timestamp": true, "t": true}

// Normalizer overrides the default URL-normalization step used for
// matching. If nil, the built-in normalizer is used.
type Normalizer func(rawURL string) string

// ApiPairResult is the outcome of comparing one matched baseline/actual
// call pair.
type ApiPairResult struct {
	BaselineIndex int                  `json:"baselineIndex"`
	ActualIndex   int                  `json:"actualIndex"`
	Passed        bool                 `json:"passed"`
	Severity      types.Severity       `json:"severity"`
	Changes       []types.DiffChange   `json:"changes"`
}

// ApiDiffSummary is the aggregate count block spec.md 4.E requires.
type ApiDiffSummary struct {
	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Different int `json:"different"`
	Missing   int `json:"missing"`
	Extra     int `json:"extra"`
}

// ApiDiffResult is the full output of CompareApiCalls.
type ApiDiffResult struct {
	Passed       bool                      `json:"passed"`
	Pairs        []ApiPairResult           `json:"pairs"`
	MissingCalls []types.CapturedApiCall   `json:"missingCalls"`
	ExtraCalls   []types.CapturedApiCall   `json:"extraCalls"`
	Summary      ApiDiffSummary            `json:"summary"`
}

// Options bundles the diff config with an optional custom URL normalizer.
type Options struct {
	Config     types.ApiDiffConfig
	Normalizer Normalizer
}

// CompareApiCalls runs match → per-pair compare → aggregate over two call
// lists. A nil opts falls back to types.DefaultAPIDiffConfig; a non-nil
// opts' Config is used exactly as given.
func CompareApiCalls(baseline, actual []types.CapturedApiCall, opts *Options) ApiDiffResult {
	cfg := types.DefaultAPIDiffConfig()
	var normalize Normalizer
	if opts != nil {
		cfg = opts.Config
		normalize = opts.Normalizer
	}
	if normalize == nil {
		normalize = defaultNormalizeURL
	}

	matchedActual := make([]bool, len(actual))
	var pairs []ApiPairResult
	var missing []types.CapturedApiCall

	for bi, b := range baseline {
		ai := findMatch(b, actual, matchedActual, normalize)
		if ai < 0 {
			missing = append(missing, b)
			continue
		}
		matchedActual[ai] = true
		pairs = append(pairs, comparePair(bi, ai, b, actual[ai], cfg))
	}

	var extra []types.CapturedApiCall
	for i, used := range matchedActual {
		if !used {
			extra = append(extra, actual[i])
		}
	}

	passedCount := 0
	for _, p := range pairs {
		if p.Passed {
			passedCount++
		}
	}

	overallPassed := passedCount == len(pairs) && len(missing) == 0
	if cfg.Strict {
		overallPassed = overallPassed && len(extra) == 0
	}

	return ApiDiffResult{
		Passed:       overallPassed,
		Pairs:        pairs,
		MissingCalls: missing,
		ExtraCalls:   extra,
		Summary: ApiDiffSummary{
			Total:     len(baseline),
			Matched:   len(pairs),
			Different: len(pairs) - passedCount,
			Missing:   len(missing),
			Extra:     len(extra),
		},
	}
}

// findMatch implements the greedy one-pass matcher: first unmatched actual
// call with equal method and equal normalized URL, earliest-by-index.
func findMatch(b types.CapturedApiCall, actual []types.CapturedApiCall, used []bool, normalize Normalizer) int {
	bURL := normalize(b.Request.URL)
	for i, a := range actual {
		if used[i] {
			continue
		}
		if a.Request.Method != b.Request.Method {
			continue
		}
		if normalize(a.Request.URL) != bURL {
			continue
		}
		return i
	}
	return -1
}

func defaultNormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for k := range q {
		if ephemeralQueryParams[k] {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func comparePair(bi, ai int, b, a types.CapturedApiCall, cfg types.ApiDiffConfig) ApiPairResult {
	bView := requestView(b.Request, cfg)
	aView := requestView(a.Request, cfg)
	changes := diffutil.Diff(bView, aView, []string{"request"})

	statusChanged := false
	if b.Response != nil || a.Response != nil {
		bRespView := responseView(b.Response, cfg)
		aRespView := responseView(a.Response, cfg)
		changes = append(changes, diffutil.Diff(bRespView, aRespView, []string{"response"})...)
		bStatus := statusOf(b.Response)
		aStatus := statusOf(a.Response)
		statusChanged = bStatus != aStatus
	}

	changes = filterIgnored(changes, cfg.IgnorePaths)

	var responseDiffs, requestDiffs int
	for _, c := range changes {
		if len(c.Path) > 0 && c.Path[0] == "response" {
			responseDiffs++
		} else {
			requestDiffs++
		}
	}

	severity := types.SeverityInfo
	switch {
	case statusChanged:
		severity = types.SeverityError
	case responseDiffs > 0:
		severity = types.SeverityWarning
	}

	var passed bool
	if cfg.Strict {
		passed = len(changes) == 0
	} else {
		passed = !statusChanged && responseDiffs == 0
	}
	_ = requestDiffs

	return ApiPairResult{
		BaselineIndex: bi,
		ActualIndex:   ai,
		Passed:        passed,
		Severity:      severity,
		Changes:       changes,
	}
}

func statusOf(r *types.CapturedResponse) int {
	if r == nil {
		return -1
	}
	return r.Status
}

func requestView(r types.CapturedRequest, cfg types.ApiDiffConfig) map[string]any {
	v := map[string]any{"url": r.URL, "method": r.Method}
	if cfg.CompareRequestBodies && r.Body != nil {
		v["body"] = r.Body
	}
	if cfg.CompareHeaders {
		v["headers"] = filterHeaders(r.Headers, cfg.IgnoreHeaders)
	}
	return v
}

func responseView(r *types.CapturedResponse, cfg types.ApiDiffConfig) any {
	if r == nil {
		return nil
	}
	v := map[string]any{"status": float64(r.Status)}
	if cfg.CompareResponseBodies && r.Body != nil {
		v["body"] = r.Body
	}
	if cfg.CompareHeaders {
		v["headers"] = filterHeaders(r.Headers, cfg.IgnoreHeaders)
	}
	return v
}

func filterHeaders(h map[string]string, ignore []string) map[string]any {
	skip := make(map[string]bool, len(ignore))
	for _, k := range ignore {
		skip[strings.ToLower(k)] = true
	}
	out := make(map[string]any, len(h))
	for k, v := range h {
		if skip[strings.ToLower(k)] {
			continue
		}
		out[k] = v
	}
	return out
}

func filterIgnored(changes []types.DiffChange, ignorePaths []string) []types.DiffChange {
	if len(ignorePaths) == 0 {
		return changes
	}
	matcher := diffutil.NewIgnoreMatcher(ignorePaths)
	out := changes[:0:0]
	for _, c := range changes {
		joined := strings.Join(c.Path, ".")
		if matcher.Matches(joined) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SortByTimestamp returns calls ordered by request timestamp ascending,
// stable on ties — the facade's merged-view sort rule (spec.md 4.D).
func SortByTimestamp(calls []types.CapturedApiCall) []types.CapturedApiCall {
	out := append([]types.CapturedApiCall(nil), calls...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Request.Timestamp < out[j].Request.Timestamp
	})
	return out
}
