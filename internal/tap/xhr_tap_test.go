package tap

import (
	"errors"
	"testing"
)

func echoXHRSend(status int, respBody any) XHRSend {
	return func(req XHRRequest, onLoadEnd func(XHRResult)) {
		onLoadEnd(XHRResult{Status: status, StatusText: "OK", Body: respBody})
	}
}

func TestXHRTap_HappyPath(t *testing.T) {
	t.Parallel()
	tap := NewXHRTap()
	_ = tap.Start(echoXHRSend(200, map[string]any{"ok": true}), DefaultConfig())
	defer tap.Stop()

	var observed XHRResult
	tap.Send(XHRRequest{Method: "GET", URL: "https://example.com/x"}, func(r XHRResult) {
		observed = r
	})

	if observed.Status != 200 {
		t.Fatalf("caller must still observe the original result, got %+v", observed)
	}
	calls := tap.GetCalls()
	if len(calls) != 1 || calls[0].Pending() {
		t.Fatalf("want 1 completed call, got %#v", calls)
	}
	if calls[0].Response.Status != 200 {
		t.Errorf("status = %d", calls[0].Response.Status)
	}
}

func TestXHRTap_AbortIsNetworkError(t *testing.T) {
	t.Parallel()
	send := func(req XHRRequest, onLoadEnd func(XHRResult)) {
		onLoadEnd(XHRResult{Aborted: true})
	}
	tap := NewXHRTap()
	_ = tap.Start(send, DefaultConfig())
	defer tap.Stop()

	tap.Send(XHRRequest{Method: "GET", URL: "https://example.com/x"}, func(XHRResult) {})

	calls := tap.GetCalls()
	if len(calls) != 1 {
		t.Fatalf("want 1 completed call, got %d", len(calls))
	}
	if calls[0].Error == "" || calls[0].Response.Status != 0 {
		t.Fatalf("abort must resolve as a distinguishable NetworkError, got %+v", calls[0])
	}
}

func TestXHRTap_NetworkErrorReRaisesToCaller(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("dns failure")
	send := func(req XHRRequest, onLoadEnd func(XHRResult)) {
		onLoadEnd(XHRResult{Err: wantErr})
	}
	tap := NewXHRTap()
	_ = tap.Start(send, DefaultConfig())
	defer tap.Stop()

	var observed XHRResult
	tap.Send(XHRRequest{Method: "GET", URL: "https://example.com/x"}, func(r XHRResult) { observed = r })

	if observed.Err != wantErr {
		t.Fatalf("caller must re-receive the original error unchanged, got %v", observed.Err)
	}
}

func TestXHRTap_IsActiveReflectsStartStop(t *testing.T) {
	t.Parallel()
	xt := NewXHRTap()
	if xt.IsActive() {
		t.Fatal("new tap must start inactive")
	}
	_ = xt.Start(echoXHRSend(200, nil), DefaultConfig())
	if !xt.IsActive() {
		t.Fatal("tap must be active after Start")
	}
	xt.Stop()
	if xt.IsActive() {
		t.Fatal("tap must be inactive after Stop")
	}
}
