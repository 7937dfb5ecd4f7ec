// fetch_tap.go — The fetch-style tap (spec.md 4.B). Go has no window.fetch
// to monkey-patch; the idiomatic equivalent of "patch the page's fetch
// entry point" is to wrap the http.RoundTripper a caller already goes
// through — the same shape as the record/replay proxies seen across the
// pack's reference material (cloud.google.com/go/httpreplay's
// replayRoundTripper, ppiankov/chainwatch's intercept proxy): one
// synchronous call in, one (*http.Response, error) out.
package tap

import (
	"net/http"
	"sync"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/serializer"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// FetchTap wraps an http.RoundTripper, capturing every request/response
// pair that passes through it without altering what the caller observes.
type FetchTap struct {
	mu       sync.Mutex
	state    state
	cfg      Config
	original http.RoundTripper

	inFlight  *inFlightTable
	completed *completedList
}

// NewFetchTap constructs an inactive tap. No entry point is patched until
// Start is called.
func NewFetchTap() *FetchTap {
	return &FetchTap{
		inFlight:  newInFlightTable(),
		completed: &completedList{},
	}
}

// Start patches original as this tap's entry point. A no-op if already
// active (spec.md 4.B: "start(config) on an already-active tap is a
// no-op"). The first-ever Start pins `original`; subsequent Start calls
// (after a Stop) reuse whatever was passed this time — matching "store a
// bound reference to the original entry point" on first start while still
// letting a caller re-wrap a different transport after a full stop/start
// cycle.
func (t *FetchTap) Start(original http.RoundTripper, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == stateActive {
		return nil
	}
	t.original = original
	t.cfg = cfg
	t.state = stateActive
	return nil
}

// Stop restores the tap to inactive. Idempotent. In-flight requests are
// abandoned (spec.md 5: "a stop() leaves in-flight requests to resolve
// naturally ... but their records are abandoned").
func (t *FetchTap) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = stateInactive
}

// IsActive reports whether the tap is currently patched in.
func (t *FetchTap) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateActive
}

// UpdateConfig merges partial config changes without requiring a restart.
func (t *FetchTap) UpdateConfig(update func(*Config)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	candidate := t.cfg
	update(&candidate)
	if err := candidate.validate(); err != nil {
		return err
	}
	t.cfg = candidate
	return nil
}

// RoundTrip implements http.RoundTripper. This is the wrapper described in
// spec.md 4.B: its observable behavior (return value or panic-free error)
// must equal calling `original` directly, regardless of capture outcome.
func (t *FetchTap) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	active := t.state == stateActive
	cfg := t.cfg
	original := t.original
	t.mu.Unlock()

	if !active || original == nil {
		if original != nil {
			return original.RoundTrip(req)
		}
		return http.DefaultTransport.RoundTrip(req)
	}

	url := req.URL.String()
	method := req.Method
	if !shouldCapture(cfg, url, method) {
		return original.RoundTrip(req)
	}

	id := serializer.GenerateRequestID()
	timestamp := nowMillis()
	headers := serializer.SerializeHeaders(map[string][]string(req.Header))

	var body any
	if cfg.CaptureRequestBody {
		body = captureRequestBodySafely(req, headers["content-type"], cfg.MaxBodySize)
	}

	call := types.NewPendingCall(types.CapturedRequest{
		ID:        id,
		URL:       url,
		Method:    method,
		Headers:   headers,
		Body:      body,
		Timestamp: timestamp,
		Initiator: types.InitiatorFetch,
	})
	t.inFlight.put(id, call)
	safeInvoke("onRequest", func() {
		if cfg.OnRequest != nil {
			cfg.OnRequest(call)
		}
	})

	resp, err := original.RoundTrip(req)

	t.inFlight.take(id)
	responseTime := nowMillis() - timestamp

	if err != nil {
		errResp := types.NetworkErrorResponse(responseTime)
		call.Fail(err.Error(), errResp)
		t.completed.append(call)
		safeInvoke("onError", func() {
			if cfg.OnError != nil {
				cfg.OnError(call)
			}
		})
		return resp, err // re-raised unchanged
	}

	respHeaders := serializer.SerializeHeaders(map[string][]string(resp.Header))
	var respBody any
	if cfg.CaptureResponseBody {
		respBody = captureResponseBodySafely(resp, cfg.MaxBodySize)
	}
	call.Resolve(types.CapturedResponse{
		Status:       resp.StatusCode,
		StatusText:   resp.Status,
		Headers:      respHeaders,
		Body:         respBody,
		ResponseTime: responseTime,
	})
	t.completed.append(call)
	safeInvoke("onResponse", func() {
		if cfg.OnResponse != nil {
			cfg.OnResponse(call)
		}
	})
	return resp, nil
}

// GetCalls returns the completed-call list in response-completion order
// (spec.md 3/5).
func (t *FetchTap) GetCalls() []*types.CapturedApiCall { return t.completed.snapshot() }

// GetPendingCalls returns a snapshot of in-flight calls.
func (t *FetchTap) GetPendingCalls() []*types.CapturedApiCall { return t.inFlight.snapshot() }

// Clear atomically drops all completed and in-flight entries.
func (t *FetchTap) Clear() types.BufferClearCounts {
	return types.BufferClearCounts{
		Completed: t.completed.clear(),
		Pending:   t.inFlight.clear(),
	}
}

// captureRequestBodySafely never lets a body-parse failure reach the page
// (spec.md 7 CaptureBodyError): on exception, body is left undefined and
// the original call proceeds unaffected.
func captureRequestBodySafely(req *http.Request, contentType string, maxSize int) (body any) {
	defer func() {
		if recover() != nil {
			body = nil
		}
	}()
	if req.Body == nil {
		return nil
	}
	data, err := serializer.CloneRequestBody(req, maxSize)
	if err != nil {
		return nil
	}
	if data == nil {
		return nil
	}
	raw := serializer.RawBody{Binary: data}
	return serializer.ParseBody(raw, contentType, maxSize)
}

func captureResponseBodySafely(resp *http.Response, maxSize int) (body any) {
	defer func() {
		if recover() != nil {
			body = nil
		}
	}()
	return serializer.ParseResponseBody(resp, maxSize)
}
