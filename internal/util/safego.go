// safego.go — Panic-recovering goroutine launcher.
package util

import (
	"runtime/debug"

	"go.uber.org/zap"
)

// SafeGo launches fn in a goroutine with deferred panic recovery.
// On panic: logs the stack trace via Logger. Does NOT os.Exit — background
// panics should be survivable so the daemon stays up.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				Logger.Error("panic in background goroutine",
					zap.Any("recovered", r),
					zap.String("stack", string(debug.Stack())))
			}
		}()
		fn()
	}()
}
