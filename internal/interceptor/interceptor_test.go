package interceptor

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/tap"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: 200,
		Status:     "200 OK",
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString("{}")),
	}
}

func TestInterceptor_MergesFetchAndXHRSortedByTimestamp(t *testing.T) {
	t.Parallel()
	ic := New(time.Minute)

	xhrSend := func(req tap.XHRRequest, onLoadEnd func(tap.XHRResult)) {
		onLoadEnd(tap.XHRResult{Status: 200})
	}
	fetchOriginal := roundTripFunc(func(req *http.Request) (*http.Response, error) { return okResponse(), nil })

	if err := ic.Start(fetchOriginal, xhrSend, tap.DefaultConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer ic.Stop()

	req, _ := http.NewRequest("GET", "https://example.com/fetch", nil)
	if _, err := ic.FetchRoundTripper().RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	ic.XHRSend()(tap.XHRRequest{Method: "GET", URL: "https://example.com/xhr"}, func(tap.XHRResult) {})

	calls := ic.GetCalls()
	if len(calls) != 2 {
		t.Fatalf("want 2 merged calls, got %d", len(calls))
	}
	if calls[0].Request.Timestamp > calls[1].Request.Timestamp {
		t.Fatalf("calls not sorted by request timestamp: %d then %d", calls[0].Request.Timestamp, calls[1].Request.Timestamp)
	}
}

func TestInterceptor_IsActiveReflectsEitherTap(t *testing.T) {
	t.Parallel()
	ic := New(time.Minute)
	if ic.IsActive() {
		t.Fatal("new interceptor must start inactive")
	}
	fetchOriginal := roundTripFunc(func(req *http.Request) (*http.Response, error) { return okResponse(), nil })
	if err := ic.Start(fetchOriginal, nil, tap.DefaultConfig()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !ic.IsActive() {
		t.Fatal("must be active once the fetch tap is started")
	}
	ic.Stop()
	if ic.IsActive() {
		t.Fatal("must be inactive after Stop")
	}
}

func TestInterceptor_ClearDropsCompletedAndPending(t *testing.T) {
	t.Parallel()
	ic := New(time.Minute)
	fetchOriginal := roundTripFunc(func(req *http.Request) (*http.Response, error) { return okResponse(), nil })
	_ = ic.Start(fetchOriginal, nil, tap.DefaultConfig())
	defer ic.Stop()

	req, _ := http.NewRequest("GET", "https://example.com/x", nil)
	_, _ = ic.FetchRoundTripper().RoundTrip(req)

	counts := ic.Clear()
	if counts.Completed != 1 {
		t.Fatalf("got %+v", counts)
	}
	if len(ic.GetCalls()) != 0 {
		t.Fatal("calls must be empty after Clear")
	}
}
