// Package tapscript carries the in-page JavaScript capture scripts a real
// browser extension or CDP session would inject to patch window.fetch and
// XMLHttpRequest.prototype (spec.md 4.B/4.C), embedded as string assets so
// a single source of truth ships inside the Go binary. It also hosts
// dop251/goja-based conformance tests that load each script into a JS VM
// against a fake fetch/XMLHttpRequest and assert the transparency property
// required of internal/tap's Go taps: the wrapped entry point's observable
// behavior must equal the original's, regardless of capture outcome.
//
// Grounded on vvoland-cagent's pkg/js package, which embeds and evaluates
// JS snippets with goja for a different purpose (templated tool-call
// expressions); the VM setup idiom (goja.New, vm.Set, vm.RunString) is
// reused here to conformance-test capture scripts instead.
package tapscript

import _ "embed"

//go:embed fetch_tap.js
var FetchTapJS string

//go:embed xhr_tap.js
var XHRTapJS string
