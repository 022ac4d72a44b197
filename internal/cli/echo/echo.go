// internal/cli/echo/echo.go
// Package echo shows a transmission on the console: the verbose word and
// symbol echo, and a trace output for running without hardware.
package echo

import (
	"fmt"
	"io"
	"time"

	"github.com/ColonelBlimp/cwkeyer/internal/cw"
	"github.com/rs/zerolog"
)

// Printer is a cw.Observer that prints each word and the symbol of each
// of its characters as they are keyed:
//
//	SOS
//
//	S : ...
//	O : ---
//	S : ...
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// OnWordStart prints the word followed by a blank line.
func (p *Printer) OnWordStart(word string) {
	_, _ = fmt.Fprintf(p.w, "%s\n\n", word)
}

// OnCharacter prints "c : symbol"; skipped characters show no symbol.
func (p *Printer) OnCharacter(r rune, sym cw.Symbol) {
	_, _ = fmt.Fprintf(p.w, "%c : %s\n", r, sym)
}

// Trace is a cw.Output that logs every level change instead of driving
// hardware. The log timestamps show the keying rhythm.
type Trace struct {
	log  zerolog.Logger
	last time.Time
	now  func() time.Time
}

// NewTrace creates a trace output logging to log.
func NewTrace(log zerolog.Logger) *Trace {
	return &Trace{log: log, now: time.Now}
}

// Set logs the new level and how long the previous one lasted.
func (t *Trace) Set(level cw.Level) error {
	now := t.now()
	event := t.log.Info().Str("line", level.String())
	if !t.last.IsZero() {
		event = event.Dur("after", now.Sub(t.last))
	}
	event.Msg("key")
	t.last = now
	return nil
}
