// internal/cw/keyer.go
package cw

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOutputRequired indicates a keyer needs an output to drive
var ErrOutputRequired = errors.New("output is required")

// Level is the state of a digital output line.
type Level bool

const (
	// Low is the resting state: no tone, LED off
	Low Level = false
	// High keys the output for the length of a mark
	High Level = true
)

// String returns "high" or "low".
func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Output is a digital line the keyer drives (GPIO pin, sidetone, ...).
// Pin setup and teardown belong to whoever created the Output.
type Output interface {
	Set(level Level) error
}

// Observer is notified as a transmission progresses. Used for echo only;
// it never changes what is keyed or how long anything is held.
type Observer interface {
	// OnWordStart is called before the first character of each word.
	OnWordStart(word string)
	// OnCharacter is called before a character is keyed. sym is empty when
	// the character has no Morse symbol and will be skipped.
	OnCharacter(r rune, sym Symbol)
}

// Option configures a Keyer.
type Option func(*Keyer)

// WithObserver attaches an observer. An untyped nil means no observer; a
// nil pointer of a concrete type is called like any other observer.
func WithObserver(o Observer) Option {
	return func(k *Keyer) {
		k.observer = o
	}
}

// WithSleeper replaces time.Sleep as the way intervals are held.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(k *Keyer) {
		if sleep != nil {
			k.sleep = sleep
		}
	}
}

// Keyer turns words into timed level changes on a single Output.
// It is the only writer of its output; concurrent Transmit calls are
// serialized.
type Keyer struct {
	out      Output
	observer Observer
	sleep    func(time.Duration)

	mu sync.Mutex
}

// NewKeyer creates a keyer driving out.
func NewKeyer(out Output, opts ...Option) (*Keyer, error) {
	if out == nil {
		return nil, ErrOutputRequired
	}
	k := &Keyer{
		out:   out,
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Transmit keys words onto the output using the intervals in t and blocks
// until the trailing word pause has been held.
//
// For every supported character each mark is keyed high for its length and
// followed by a mark pause, then a character pause is held. Characters with
// no symbol are skipped without any pause. Every word, even an empty one,
// ends with a word pause.
//
// ctx is checked before each word, character, mark and pause. A mark, once
// started, is keyed through its mark pause, so a cancelled transmission
// always stops with the output low. Errors from the output are returned
// as-is and end the transmission where it stands.
func (k *Keyer) Transmit(ctx context.Context, words []string, t Timing) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, word := range words {
		if err := ctx.Err(); err != nil {
			return err
		}
		if k.observer != nil {
			k.observer.OnWordStart(word)
		}

		for _, r := range word {
			if err := ctx.Err(); err != nil {
				return err
			}
			sym, ok := Lookup(r)
			if k.observer != nil {
				k.observer.OnCharacter(r, sym)
			}
			if !ok {
				continue
			}
			if err := k.keySymbol(ctx, sym, t); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			k.sleep(t.CharPause)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		k.sleep(t.WordPause)
	}
	return nil
}

// keySymbol keys each mark of sym followed by its mark pause.
func (k *Keyer) keySymbol(ctx context.Context, sym Symbol, t Timing) error {
	for _, m := range sym.Marks() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := k.out.Set(High); err != nil {
			return err
		}
		k.sleep(t.MarkDuration(m))
		if err := k.out.Set(Low); err != nil {
			return err
		}
		k.sleep(t.MarkPause)
	}
	return nil
}

// Transmit is a one-shot helper: build a keyer for out and send words.
func Transmit(ctx context.Context, words []string, t Timing, out Output, observer Observer) error {
	k, err := NewKeyer(out, WithObserver(observer))
	if err != nil {
		return err
	}
	return k.Transmit(ctx, words, t)
}

// MultiOutput drives several outputs with the same level, in order.
// The first failing output aborts the Set.
type MultiOutput []Output

// Set sets every output to level.
func (m MultiOutput) Set(level Level) error {
	for _, out := range m {
		if err := out.Set(level); err != nil {
			return err
		}
	}
	return nil
}
