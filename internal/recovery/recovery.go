// internal/recovery/recovery.go
// Package recovery turns a panic into a clean exit after the keyed outputs
// have been released.
package recovery

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
)

// Overridden in tests.
var (
	stderr io.Writer = os.Stderr
	exit             = os.Exit
)

// HandlePanic should be deferred at the top of main() or goroutines.
// It prints the panic and stack trace and exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		fatal(r, nil)
	}
}

// HandlePanicFunc is HandlePanic with cleanups, run in reverse order before
// exiting. A cleanup that panics itself does not stop the others.
func HandlePanicFunc(cleanups ...func()) {
	if r := recover(); r != nil {
		fatal(r, cleanups)
	}
}

func fatal(r any, cleanups []func()) {
	_, _ = fmt.Fprintf(stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, debug.Stack())
	for i := len(cleanups) - 1; i >= 0; i-- {
		runCleanup(cleanups[i])
	}
	exit(1)
}

func runCleanup(cleanup func()) {
	if cleanup == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(stderr, "cleanup failed: %v\n", r)
		}
	}()
	cleanup()
}
