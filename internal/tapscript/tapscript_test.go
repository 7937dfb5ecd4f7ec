package tapscript

import (
	"testing"

	"github.com/dop251/goja"
)

// runHarness evaluates the named tap script followed by a harness IIFE,
// returning the harness's exported result as a map.
func runHarness(t *testing.T, script, harness string) map[string]any {
	t.Helper()
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		t.Fatalf("loading tap script: %v", err)
	}
	v, err := vm.RunString(harness)
	if err != nil {
		t.Fatalf("running harness: %v", err)
	}
	out, ok := v.Export().(map[string]any)
	if !ok {
		t.Fatalf("harness result is not an object: %#v", v.Export())
	}
	return out
}

func TestFetchTapJS_TransparentOnSuccess(t *testing.T) {
	t.Parallel()
	harness := `
	(function () {
		var callLog = [];
		function fakeOriginal(url, init) {
			callLog.push(url);
			return { then: function (onFulfilled) {
				var next = onFulfilled({ status: 200, statusText: "OK" });
				return { then: function (f) { return f(next); } };
			} };
		}
		var tap = __gasolineCreateFetchTap({});
		tap.start(fakeOriginal, {});
		var observed;
		tap.fetch("https://example.com/api").then(function (r) { observed = r; });
		return {
			observedStatus: observed.status,
			callCount: callLog.length,
			capturedCount: tap.getCalls().length,
			capturedStatus: tap.getCalls()[0].response.status,
		};
	})();
	`
	out := runHarness(t, FetchTapJS, harness)
	if out["observedStatus"] != int64(200) {
		t.Errorf("observedStatus = %v, want 200 (wrapper must be transparent)", out["observedStatus"])
	}
	if out["callCount"] != int64(1) {
		t.Errorf("callCount = %v, want 1", out["callCount"])
	}
	if out["capturedCount"] != int64(1) {
		t.Errorf("capturedCount = %v, want 1", out["capturedCount"])
	}
	if out["capturedStatus"] != int64(200) {
		t.Errorf("capturedStatus = %v, want 200", out["capturedStatus"])
	}
}

func TestFetchTapJS_TransparentOnError(t *testing.T) {
	t.Parallel()
	harness := `
	(function () {
		function fakeOriginal(url, init) {
			return { then: function (onFulfilled, onRejected) {
				try {
					onRejected(new Error("boom"));
				} catch (e) {
					return { then: function (f, g) { return g(e); } };
				}
				return { then: function (f) { return f(); } };
			} };
		}
		var tap = __gasolineCreateFetchTap({});
		tap.start(fakeOriginal, {});
		var caughtMessage = "";
		tap.fetch("https://example.com/api").then(
			function () {},
			function (err) { caughtMessage = err.message; }
		);
		return {
			caughtMessage: caughtMessage,
			capturedCount: tap.getCalls().length,
			capturedHasError: tap.getCalls()[0].error !== undefined,
		};
	})();
	`
	out := runHarness(t, FetchTapJS, harness)
	if out["caughtMessage"] != "boom" {
		t.Errorf("caughtMessage = %v, want original error re-raised unchanged", out["caughtMessage"])
	}
	if out["capturedCount"] != int64(1) || out["capturedHasError"] != true {
		t.Errorf("got %+v, want one captured failed call", out)
	}
}

func TestFetchTapJS_IgnorePatternBypassesCapture(t *testing.T) {
	t.Parallel()
	harness := `
	(function () {
		var tap = __gasolineCreateFetchTap({ ignorePatterns: ["/health"] });
		var originalCalled = false;
		tap.start(function (url) {
			originalCalled = true;
			return { then: function (onFulfilled) { return onFulfilled({ status: 200 }); } };
		}, { ignorePatterns: ["/health"] });
		tap.fetch("https://example.com/health").then(function () {});
		return { originalCalled: originalCalled, capturedCount: tap.getCalls().length };
	})();
	`
	out := runHarness(t, FetchTapJS, harness)
	if out["originalCalled"] != true {
		t.Error("ignored calls must still reach the original fetch")
	}
	if out["capturedCount"] != int64(0) {
		t.Errorf("capturedCount = %v, want 0 for an ignored URL", out["capturedCount"])
	}
}

func TestFetchTapJS_StoppedTapPassesThroughWithoutCapture(t *testing.T) {
	t.Parallel()
	harness := `
	(function () {
		var tap = __gasolineCreateFetchTap({});
		tap.start(function (url) {
			return { then: function (onFulfilled) { return onFulfilled({ status: 204 }); } };
		}, {});
		tap.stop();
		var observed;
		tap.fetch("https://example.com/x").then(function (r) { observed = r; });
		return { observedStatus: observed.status, capturedCount: tap.getCalls().length, active: tap.isActive() };
	})();
	`
	out := runHarness(t, FetchTapJS, harness)
	if out["observedStatus"] != int64(204) {
		t.Errorf("stopped tap must still pass through to the original: got %v", out["observedStatus"])
	}
	if out["capturedCount"] != int64(0) {
		t.Errorf("capturedCount = %v, want 0 while stopped", out["capturedCount"])
	}
	if out["active"] != false {
		t.Error("isActive should be false after stop")
	}
}

// fakeXHRConstructor is a minimal XMLHttpRequest stand-in: open/
// setRequestHeader/send/addEventListener plus status/statusText, enough
// for xhr_tap.js's wrapping logic to exercise without a real browser.
const fakeXHRHarness = `
var capturedHeaders = {};
function FakeXHR() {
	this._listeners = {};
}
FakeXHR.prototype.open = function (method, url) { this.method = method; this.url = url; };
FakeXHR.prototype.setRequestHeader = function (name, value) { capturedHeaders[name] = value; };
FakeXHR.prototype.addEventListener = function (name, fn) {
	this._listeners[name] = this._listeners[name] || [];
	this._listeners[name].push(fn);
};
FakeXHR.prototype.send = function (body) {
	var self = this;
	self.status = self._nextStatus;
	self.statusText = self._nextStatusText;
	var fns = self._listeners["loadend"] || [];
	for (var i = 0; i < fns.length; i++) fns[i]();
};
`

func TestXhrTapJS_RecordsRequestAndResponseTransparently(t *testing.T) {
	t.Parallel()
	harness := fakeXHRHarness + `
	(function () {
		var tap = __gasolineCreateXhrTap({});
		tap.start(FakeXHR, {});
		var Tapped = tap.TappedXHR();
		var xhr = new Tapped();
		xhr._nextStatus = 200;
		xhr._nextStatusText = "OK";
		xhr.open("GET", "https://example.com/api");
		xhr.setRequestHeader("X-Test", "1");
		xhr.send(null);
		return {
			observedStatus: xhr.status,
			capturedCount: tap.getCalls().length,
			capturedStatus: tap.getCalls()[0].response.status,
			capturedMethod: tap.getCalls()[0].request.method,
		};
	})();
	`
	out := runHarness(t, XHRTapJS, harness)
	if out["observedStatus"] != int64(200) {
		t.Errorf("observedStatus = %v, want 200 (wrapper must be transparent)", out["observedStatus"])
	}
	if out["capturedCount"] != int64(1) || out["capturedStatus"] != int64(200) {
		t.Errorf("got %+v", out)
	}
	if out["capturedMethod"] != "GET" {
		t.Errorf("capturedMethod = %v, want GET", out["capturedMethod"])
	}
}

func TestXhrTapJS_NetworkErrorRecordedAsFailedCall(t *testing.T) {
	t.Parallel()
	harness := fakeXHRHarness + `
	(function () {
		var tap = __gasolineCreateXhrTap({});
		tap.start(FakeXHR, {});
		var Tapped = tap.TappedXHR();
		var xhr = new Tapped();
		xhr._nextStatus = 0; // network error / abort, per the browser's status=0 convention
		xhr._nextStatusText = "";
		xhr.open("GET", "https://example.com/api");
		xhr.send(null);
		return {
			observedStatus: xhr.status,
			capturedCount: tap.getCalls().length,
			capturedHasError: tap.getCalls()[0].error !== undefined,
		};
	})();
	`
	out := runHarness(t, XHRTapJS, harness)
	if out["observedStatus"] != int64(0) {
		t.Errorf("observedStatus = %v, want 0 (wrapper must be transparent)", out["observedStatus"])
	}
	if out["capturedCount"] != int64(1) || out["capturedHasError"] != true {
		t.Errorf("got %+v, want one captured failed call", out)
	}
}

func TestXhrTapJS_StoppedTapSkipsCaptureButStillCompletes(t *testing.T) {
	t.Parallel()
	harness := fakeXHRHarness + `
	(function () {
		var tap = __gasolineCreateXhrTap({});
		tap.start(FakeXHR, {});
		tap.stop();
		var Tapped = tap.TappedXHR();
		var xhr = new Tapped();
		xhr._nextStatus = 201;
		xhr._nextStatusText = "Created";
		xhr.open("POST", "https://example.com/api");
		xhr.send(null);
		return { observedStatus: xhr.status, capturedCount: tap.getCalls().length };
	})();
	`
	out := runHarness(t, XHRTapJS, harness)
	if out["observedStatus"] != int64(201) {
		t.Errorf("observedStatus = %v, want 201", out["observedStatus"])
	}
	if out["capturedCount"] != int64(0) {
		t.Errorf("capturedCount = %v, want 0 while stopped", out["capturedCount"])
	}
}
