// xhr_tap.go — The XHR-style tap (spec.md 4.C). Unlike fetch, XHR is
// event-driven: callers Open/SetRequestHeader/Send, and completion is
// signaled by a loadend event rather than a return value. XHRTap models
// that shape directly with an Open/SetHeader/Send API plus an explicit
// loadend hook, instead of forcing XHR's callback style through a
// synchronous RoundTripper interface — preserving the spec's documented
// distinction between the two taps (spec.md 4.B/4.C) instead of collapsing
// it in the Go port.
package tap

import (
	"sync"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/serializer"
	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// XHRSend is the original entry point an XHRTap wraps: it performs the
// request and invokes onLoadEnd exactly once, with the final result,
// win-or-lose — mirroring the browser's `loadend` event firing after
// either `load` or `error`/`abort`.
type XHRSend func(req XHRRequest, onLoadEnd func(XHRResult))

// XHRRequest is what Open/SetRequestHeader/Send accumulate before Send is
// invoked.
type XHRRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any // already shaped by the caller (string, form, etc.)
}

// XHRResult is what the original entry point reports back at loadend.
type XHRResult struct {
	Status      int
	StatusText  string
	Headers     map[string]string
	Body        any
	Err         error   // non-nil on network failure or abort
	Aborted     bool    // spec.md 9 open question: abort is a distinguishable NetworkError
}

// XHRTap wraps an XHRSend, capturing every request/result pair.
type XHRTap struct {
	mu       sync.Mutex
	state    state
	cfg      Config
	original XHRSend

	inFlight  *inFlightTable
	completed *completedList
}

// NewXHRTap constructs an inactive tap.
func NewXHRTap() *XHRTap {
	return &XHRTap{
		inFlight:  newInFlightTable(),
		completed: &completedList{},
	}
}

// Start pins original as this tap's entry point. No-op if already active.
func (t *XHRTap) Start(original XHRSend, cfg Config) error {
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

// Stop restores the tap to inactive. Idempotent.
func (t *XHRTap) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = stateInactive
}

// IsActive reports whether the tap is currently patched in.
func (t *XHRTap) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == stateActive
}

// UpdateConfig merges partial config changes without requiring a restart.
func (t *XHRTap) UpdateConfig(update func(*Config)) error {
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

// Send is the wrapped entry point: same observable contract as calling
// original.Send directly (onLoadEnd fires exactly once either way),
// regardless of capture outcome.
func (t *XHRTap) Send(req XHRRequest, onLoadEnd func(XHRResult)) {
	t.mu.Lock()
	active := t.state == stateActive
	cfg := t.cfg
	original := t.original
	t.mu.Unlock()

	if !active || original == nil {
		if original != nil {
			original(req, onLoadEnd)
		}
		return
	}

	if !shouldCapture(cfg, req.URL, req.Method) {
		original(req, onLoadEnd)
		return
	}

	id := serializer.GenerateRequestID()
	timestamp := nowMillis()
	headers := serializer.SerializeHeaders(req.Headers)

	var body any
	if cfg.CaptureRequestBody {
		body = safeParseXHRBody(req.Body, headers["content-type"], cfg.MaxBodySize)
	}

	call := types.NewPendingCall(types.CapturedRequest{
		ID:        id,
		URL:       req.URL,
		Method:    req.Method,
		Headers:   headers,
		Body:      body,
		Timestamp: timestamp,
		Initiator: types.InitiatorXHR,
	})
	t.inFlight.put(id, call)
	safeInvoke("onRequest", func() {
		if cfg.OnRequest != nil {
			cfg.OnRequest(call)
		}
	})

	original(req, func(result XHRResult) {
		t.finalize(cfg, call, result, onLoadEnd)
	})
}

// finalize runs on the loadend signal: resolve or fail the call, move it
// to the completed list, fire the matching callback, then hand the
// original, unaltered result to the caller's own loadend hook.
func (t *XHRTap) finalize(cfg Config, call *types.CapturedApiCall, result XHRResult, onLoadEnd func(XHRResult)) {
	t.inFlight.take(call.Request.ID)
	responseTime := nowMillis() - call.Request.Timestamp

	if result.Err != nil || result.Aborted {
		msg := "aborted"
		if result.Err != nil {
			msg = result.Err.Error()
		}
		call.Fail(msg, types.NetworkErrorResponse(responseTime))
		t.completed.append(call)
		safeInvoke("onError", func() {
			if cfg.OnError != nil {
				cfg.OnError(call)
			}
		})
	} else {
		call.Resolve(types.CapturedResponse{
			Status:       result.Status,
			StatusText:   result.StatusText,
			Headers:      serializer.SerializeHeaders(result.Headers),
			Body:         result.Body,
			ResponseTime: responseTime,
		})
		t.completed.append(call)
		safeInvoke("onResponse", func() {
			if cfg.OnResponse != nil {
				cfg.OnResponse(call)
			}
		})
	}

	if onLoadEnd != nil {
		onLoadEnd(result)
	}
}

func safeParseXHRBody(body any, contentType string, maxSize int) (parsed any) {
	defer func() {
		if recover() != nil {
			parsed = nil
		}
	}()
	switch v := body.(type) {
	case nil:
		return nil
	case string:
		return serializer.ParseBody(serializer.RawBody{Text: &v}, contentType, maxSize)
	case []byte:
		return serializer.ParseBody(serializer.RawBody{Binary: v}, contentType, maxSize)
	default:
		return v
	}
}

// GetCalls returns the completed-call list in response-completion order.
func (t *XHRTap) GetCalls() []*types.CapturedApiCall { return t.completed.snapshot() }

// GetPendingCalls returns a snapshot of in-flight calls.
func (t *XHRTap) GetPendingCalls() []*types.CapturedApiCall { return t.inFlight.snapshot() }

// Clear atomically drops all completed and in-flight entries.
func (t *XHRTap) Clear() types.BufferClearCounts {
	return types.BufferClearCounts{
		Completed: t.completed.clear(),
		Pending:   t.inFlight.clear(),
	}
}
