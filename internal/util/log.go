// log.go — Shared structured logger for capture-layer faults that are
// logged and swallowed at the point of occurrence rather than returned as
// Go errors (spec.md 7: CaptureTransparencyFault, CaptureBodyError,
// NetworkError never propagate to the caller). Grounded on
// sofatutor-llm-proxy's package-level zap.Logger, adopted here in place of
// the teacher's fmt.Fprintf(os.Stderr, ...) convention.
package util

import "go.uber.org/zap"

// Logger is used by SafeGo and the tap packages to report panics and
// transparency faults that must not interrupt the request they occurred
// on. Defaults to a production logger; a host binary may call SetLogger to
// inject one with its own configuration (e.g. development mode, a
// different output path).
var Logger = newDefaultLogger()

func newDefaultLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// SetLogger replaces the package-level Logger, e.g. so a CLI entry point
// can wire in the same *zap.Logger it uses everywhere else.
func SetLogger(l *zap.Logger) {
	if l != nil {
		Logger = l
	}
}
