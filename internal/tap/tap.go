// tap.go — Shared lifecycle contract for FetchTap and XHRTap (spec.md
// 4.B/4.C). Each tap owns exactly one patched entry point, protected by its
// own mutex; there is no package-level singleton (spec.md 9's Design Notes
// explicitly call out the teacher's module-level originalFetch pattern as
// something an idiomatic rewrite should NOT copy — each NewFetchTap/
// NewXHRTap call returns an independent instance).
package tap

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/util"
)

// Config controls what a tap captures (spec.md 4.B step 1-2, spec.md 6
// defaults).
type Config struct {
	IgnorePatterns      []string // a pattern with a regex metacharacter is a regex (optionally /.../-wrapped); any other is a literal substring
	Filter              func(url, method string) bool
	CaptureRequestBody  bool
	CaptureResponseBody bool
	MaxBodySize         int

	OnRequest  func(*types.CapturedApiCall)
	OnResponse func(*types.CapturedApiCall)
	OnError    func(*types.CapturedApiCall)
}

// DefaultIgnorePatterns is the spec.md 6 default ignore-list.
var DefaultIgnorePatterns = []string{
	`^chrome-extension://`,
	`google-analytics\.com`,
	`googletagmanager\.com`,
	`facebook\.net`,
	`/analytics/`,
}

// DefaultConfig returns a Config seeded with the spec's documented
// defaults.
func DefaultConfig() Config {
	return Config{
		IgnorePatterns:      append([]string(nil), DefaultIgnorePatterns...),
		CaptureRequestBody:  true,
		CaptureResponseBody: true,
		MaxBodySize:         1 << 20,
	}
}

// validate enforces ConfigError (spec.md 7): a negative MaxBodySize or a
// malformed ignore pattern is rejected before the tap starts.
func (c Config) validate() error {
	if c.MaxBodySize < 0 {
		return types.NewConfigError("maxBodySize must be >= 0, got %d", c.MaxBodySize)
	}
	for _, p := range c.IgnorePatterns {
		if isRegexLike(p) {
			if _, err := regexp.Compile(stripRegexDelims(p)); err != nil {
				return types.NewConfigError("invalid ignore pattern %q: %v", p, err)
			}
		}
	}
	return nil
}

func isRegexLike(p string) bool {
	return strings.ContainsAny(p, `^$.*+?()[]{}|\`)
}

func stripRegexDelims(p string) string {
	if len(p) >= 2 && p[0] == '/' && p[len(p)-1] == '/' {
		return p[1 : len(p)-1]
	}
	return p
}

// shouldCapture implements spec.md 4.B step 1: not matched by ignorePatterns
// AND the user filter (if any) returns true.
func shouldCapture(cfg Config, url, method string) bool {
	for _, p := range cfg.IgnorePatterns {
		if matchesIgnore(p, url) {
			return false
		}
	}
	if cfg.Filter != nil && !cfg.Filter(url, method) {
		return false
	}
	return true
}

func matchesIgnore(pattern, url string) bool {
	if isRegexLike(pattern) {
		re, err := regexp.Compile(stripRegexDelims(pattern))
		if err != nil {
			return false // malformed patterns are rejected at start(), never here
		}
		return re.MatchString(url)
	}
	return strings.Contains(url, pattern)
}

// state is the inactive/active/inactive machine shared by both taps.
type state int

const (
	stateInactive state = iota
	stateActive
)

// nowMillis is overridable in tests to make responseTime deterministic.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// safeInvoke isolates a user callback from the request pipeline: a panic
// inside onRequest/onResponse/onError must never abort the page's request
// (spec.md 7's CaptureTransparencyFault). Mirrors the teacher's
// internal/util.SafeGo discipline, but synchronous: callbacks must observe
// calls in completion order, so they are not fired on a goroutine.
func safeInvoke(name string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			util.Logger.Error("tap callback panicked",
				zap.String("callback", name),
				zap.Any("recovered", r))
		}
	}()
	fn()
}

// inFlightTable is the per-tap pending-call store, keyed by request ID
// (never by URL — spec.md 5: two in-flight requests to the same URL are
// distinguished by id).
type inFlightTable struct {
	mu    sync.Mutex
	calls map[string]*types.CapturedApiCall
}

func newInFlightTable() *inFlightTable {
	return &inFlightTable{calls: make(map[string]*types.CapturedApiCall)}
}

func (t *inFlightTable) put(id string, call *types.CapturedApiCall) {
	t.mu.Lock()
	t.calls[id] = call
	t.mu.Unlock()
}

func (t *inFlightTable) take(id string) (*types.CapturedApiCall, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.calls[id]
	if ok {
		delete(t.calls, id)
	}
	return c, ok
}

func (t *inFlightTable) snapshot() []*types.CapturedApiCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*types.CapturedApiCall, 0, len(t.calls))
	for _, c := range t.calls {
		out = append(out, c)
	}
	return out
}

func (t *inFlightTable) clear() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.calls)
	t.calls = make(map[string]*types.CapturedApiCall)
	return n
}

// completedList is the append-only, response-completion-ordered list
// shared by both taps (spec.md 3: "append-only; on clear() the list is
// emptied").
type completedList struct {
	mu    sync.RWMutex
	calls []*types.CapturedApiCall
}

func (l *completedList) append(c *types.CapturedApiCall) {
	l.mu.Lock()
	l.calls = append(l.calls, c)
	l.mu.Unlock()
}

func (l *completedList) snapshot() []*types.CapturedApiCall {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*types.CapturedApiCall, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *completedList) clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.calls)
	l.calls = nil
	return n
}
