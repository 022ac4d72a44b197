// internal/dsp/oscillator.go
package dsp

import (
	"errors"
	"math"
)

var (
	// ErrInvalidSampleRate indicates sample rate must be positive
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrInvalidFrequency indicates frequency must be positive and below Nyquist
	ErrInvalidFrequency = errors.New("tone frequency must be positive and less than Nyquist frequency")
	// ErrInvalidAmplitude indicates amplitude must be between 0 and 1
	ErrInvalidAmplitude = errors.New("amplitude must be between 0.0 and 1.0")
	// ErrInvalidRamp indicates ramp length must be non-negative
	ErrInvalidRamp = errors.New("ramp samples must be non-negative")
)

// OscillatorConfig holds configuration for the sidetone oscillator.
type OscillatorConfig struct {
	// Frequency of the tone in Hz (from config: tone_frequency)
	Frequency float64
	// SampleRate of the output stream in Hz (from config: sample_rate)
	SampleRate float64
	// Amplitude is the peak level, 0.0-1.0 (from config: volume)
	Amplitude float64
	// RampSamples is how many samples the envelope takes to rise or fall.
	// A hard on/off edge clicks; a few milliseconds of ramp removes it.
	RampSamples int
}

// Oscillator produces a keyed sine wave. Phase and envelope carry over
// between Fill calls so the tone is continuous across audio buffers.
// Not safe for concurrent use; it belongs to the audio callback.
type Oscillator struct {
	config OscillatorConfig
	phase  float64 // radians, kept in [0, 2π)
	step   float64 // phase increment per sample
	gain   float64 // envelope, 0.0-1.0
	slope  float64 // envelope change per sample
}

// NewOscillator creates an oscillator with the given configuration.
func NewOscillator(cfg OscillatorConfig) (*Oscillator, error) {
	if cfg.SampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.Frequency <= 0 || cfg.Frequency >= cfg.SampleRate/2 {
		return nil, ErrInvalidFrequency
	}
	if cfg.Amplitude < 0 || cfg.Amplitude > 1 {
		return nil, ErrInvalidAmplitude
	}
	if cfg.RampSamples < 0 {
		return nil, ErrInvalidRamp
	}

	slope := 1.0
	if cfg.RampSamples > 0 {
		slope = 1.0 / float64(cfg.RampSamples)
	}

	return &Oscillator{
		config: cfg,
		step:   2 * math.Pi * cfg.Frequency / cfg.SampleRate,
		slope:  slope,
	}, nil
}

// Fill writes len(buf) mono samples. While keyed the envelope rises to full
// amplitude, otherwise it falls to silence.
func (o *Oscillator) Fill(buf []float32, keyed bool) {
	for i := range buf {
		if keyed {
			o.gain = math.Min(1, o.gain+o.slope)
		} else {
			o.gain = math.Max(0, o.gain-o.slope)
		}

		if o.gain == 0 {
			buf[i] = 0
		} else {
			buf[i] = float32(math.Sin(o.phase) * o.gain * o.config.Amplitude)
		}

		o.phase += o.step
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
}

// Gain returns the current envelope level (for testing and monitoring)
func (o *Oscillator) Gain() float64 {
	return o.gain
}
