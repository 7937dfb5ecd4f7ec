// Package interceptor implements the Interceptor facade (spec component D):
// a unified lifecycle over the fetch and XHR taps, and a merged,
// timestamp-sorted view of everything they have captured. Grounded on the
// teacher's own Capture struct locking discipline (capture/capture-struct.go,
// capture/sync.go) generalized to compose two taps instead of one.
package interceptor

import (
	"net/http"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/tap"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// DefaultCaptureWindow is the TTL of the facade's capture-window entries.
// The window does not hide or drop calls: GetCalls re-inserts any call
// whose entry has expired, so every call in the taps' completed-lists is
// returned until Clear.
const DefaultCaptureWindow = 10 * time.Minute

// Interceptor merges FetchTap and XHRTap into one lifecycle and one
// timestamp-ordered view. Each instance is independent; there is no
// package-level shared state (spec.md 9's Design Notes explicitly steer
// away from the teacher's own module-level originalFetch/completedCalls
// singleton pattern).
type Interceptor struct {
	mu     sync.Mutex
	fetch  *tap.FetchTap
	xhr    *tap.XHRTap
	window *gocache.Cache
}

// New constructs an independent Interceptor instance with both taps
// inactive and a capture window whose entries expire after captureWindow.
func New(captureWindow time.Duration) *Interceptor {
	if captureWindow <= 0 {
		captureWindow = DefaultCaptureWindow
	}
	return &Interceptor{
		fetch:  tap.NewFetchTap(),
		xhr:    tap.NewXHRTap(),
		window: gocache.New(captureWindow, captureWindow/2),
	}
}

// Start activates both taps against the given entry points. Either
// original may be nil to run with only one tap active (e.g. a headless
// driver with no XHR surface).
func (i *Interceptor) Start(fetchOriginal http.RoundTripper, xhrOriginal tap.XHRSend, cfg tap.Config) error {
	if fetchOriginal != nil {
		if err := i.fetch.Start(fetchOriginal, cfg); err != nil {
			return err
		}
	}
	if xhrOriginal != nil {
		if err := i.xhr.Start(xhrOriginal, cfg); err != nil {
			return err
		}
	}
	return nil
}

// Stop deactivates both taps. Idempotent.
func (i *Interceptor) Stop() {
	i.fetch.Stop()
	i.xhr.Stop()
}

// IsActive reports whether either tap is active.
func (i *Interceptor) IsActive() bool {
	return i.fetch.IsActive() || i.xhr.IsActive()
}

// UpdateConfig applies update to both taps' configs without a restart.
func (i *Interceptor) UpdateConfig(update func(*tap.Config)) error {
	if err := i.fetch.UpdateConfig(update); err != nil {
		return err
	}
	return i.xhr.UpdateConfig(update)
}

// FetchRoundTripper exposes the fetch tap as an http.RoundTripper for
// wiring into an http.Client.
func (i *Interceptor) FetchRoundTripper() http.RoundTripper { return i.fetch }

// XHRSend exposes the XHR tap's Send method for wiring into whatever
// issues XHR-style requests.
func (i *Interceptor) XHRSend() tap.XHRSend { return i.xhr.Send }

// GetCalls returns fetch+XHR completed calls merged and sorted by
// request.timestamp ascending, stable on ties (spec.md 4.D). Each call's
// id is (re-)entered into the capture window first, so the window filter
// never removes a call.
func (i *Interceptor) GetCalls() []*types.CapturedApiCall {
	merged := append(i.fetch.GetCalls(), i.xhr.GetCalls()...)
	i.mu.Lock()
	for _, c := range merged {
		if _, found := i.window.Get(c.Request.ID); !found {
			i.window.SetDefault(c.Request.ID, struct{}{})
		}
	}
	i.mu.Unlock()

	out := merged[:0:0]
	for _, c := range merged {
		if _, found := i.window.Get(c.Request.ID); found {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Request.Timestamp < out[b].Request.Timestamp
	})
	return out
}

// GetPendingCalls returns both taps' in-flight snapshots.
func (i *Interceptor) GetPendingCalls() []*types.CapturedApiCall {
	return append(i.fetch.GetPendingCalls(), i.xhr.GetPendingCalls()...)
}

// Clear drops all completed and in-flight entries from both taps and
// resets the facade's capture window.
func (i *Interceptor) Clear() types.BufferClearCounts {
	fc := i.fetch.Clear()
	xc := i.xhr.Clear()
	i.mu.Lock()
	i.window.Flush()
	i.mu.Unlock()
	return types.BufferClearCounts{
		Completed: fc.Completed + xc.Completed,
		Pending:   fc.Pending + xc.Pending,
	}
}
