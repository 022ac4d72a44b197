// internal/logging/logging.go
// Package logging builds the application's zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// TraceTimeFormat shows milliseconds so keying rhythm is readable in traces
const TraceTimeFormat = "15:04:05.000"

// New returns a console logger writing to w. Debug enables debug level,
// otherwise info and above are logged.
func New(w io.Writer, debug bool) zerolog.Logger {
	return newConsole(w, time.RFC3339, debug)
}

// NewTrace returns a console logger with millisecond timestamps, used by the
// console trace output.
func NewTrace(w io.Writer) zerolog.Logger {
	return newConsole(w, TraceTimeFormat, false)
}

func newConsole(w io.Writer, timeFormat string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: timeFormat,
		NoColor:    !isTerminal(w),
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
