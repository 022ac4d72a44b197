// internal/cw/timing.go
package cw

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Morse code timing ratios (ITU standard), in dot units.
const (
	// DahDitRatio is the length of a dash in dots (ITU: 3:1)
	DahDitRatio = 3
	// IntraCharSpaceRatio is the gap after each mark inside a character (ITU: 1:1)
	IntraCharSpaceRatio = 1
	// InterCharSpaceRatio is the gap held after each character (ITU: 3:1)
	InterCharSpaceRatio = 3
	// WordSpaceRatio is the gap held after each word (ITU: 7:1)
	WordSpaceRatio = 7

	// DotSecondsAtOneWPM gives the dot length in seconds as DotSecondsAtOneWPM / wpm.
	// Note: twice the PARIS figure (1.2), so N wpm here keys like N/2 wpm PARIS.
	DotSecondsAtOneWPM = 2.4

	// DefaultWPM is the speed used when nothing is configured
	DefaultWPM = 25.0
)

// ErrInvalidWPM indicates WPM must be a positive, finite number
var ErrInvalidWPM = errors.New("WPM must be positive")

// Timing holds the five intervals of a transmission, all derived from WPM.
// Timing is a value: a different speed means a new Timing from TimingFromWPM.
type Timing struct {
	// WPM the intervals were derived from
	WPM float64
	// Dot is how long the output is held high for a dot
	Dot time.Duration
	// Dash is how long the output is held high for a dash
	Dash time.Duration
	// MarkPause is held low after every mark, including the last of a character
	MarkPause time.Duration
	// CharPause is held after every character
	CharPause time.Duration
	// WordPause is held after every word, including the last
	WordPause time.Duration
}

// TimingFromWPM derives the intervals for the given speed.
// All intervals are whole multiples of Dot so the 1:3:1:3:7 ratios are exact.
func TimingFromWPM(wpm float64) (Timing, error) {
	if math.IsNaN(wpm) || math.IsInf(wpm, 0) || wpm <= 0 {
		return Timing{}, fmt.Errorf("%w, got %v", ErrInvalidWPM, wpm)
	}

	ns := math.Round(DotSecondsAtOneWPM * float64(time.Second) / wpm)
	// The word pause is the longest interval and must still fit a Duration
	if ns > float64(math.MaxInt64/WordSpaceRatio) {
		return Timing{}, fmt.Errorf("%w, got %v (too slow to time)", ErrInvalidWPM, wpm)
	}
	dot := time.Duration(ns)
	if dot <= 0 {
		return Timing{}, fmt.Errorf("%w, got %v (too fast to time)", ErrInvalidWPM, wpm)
	}

	return Timing{
		WPM:       wpm,
		Dot:       dot,
		Dash:      DahDitRatio * dot,
		MarkPause: IntraCharSpaceRatio * dot,
		CharPause: InterCharSpaceRatio * dot,
		WordPause: WordSpaceRatio * dot,
	}, nil
}

// MarkDuration returns how long the output is held high for m.
func (t Timing) MarkDuration(m Mark) time.Duration {
	if m == Dash {
		return t.Dash
	}
	return t.Dot
}

// Duration returns the total time a transmission of words will take:
// the sum of every hold the keyer performs, trailing word pause included.
func (t Timing) Duration(words []string) time.Duration {
	var total time.Duration
	for _, word := range words {
		for _, r := range word {
			sym, ok := Lookup(r)
			if !ok {
				continue
			}
			for _, m := range sym.Marks() {
				total += t.MarkDuration(m) + t.MarkPause
			}
			total += t.CharPause
		}
		total += t.WordPause
	}
	return total
}

// String renders the timing for logs.
func (t Timing) String() string {
	return fmt.Sprintf("%gwpm dot=%v dash=%v gap=%v char=%v word=%v",
		t.WPM, t.Dot, t.Dash, t.MarkPause, t.CharPause, t.WordPause)
}
