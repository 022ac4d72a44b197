// internal/dsp/oscillator_test.go
package dsp

import (
	"math"
	"testing"
)

// Test configuration constants - these mirror config file defaults
const (
	testSampleRate    = 48000.0
	testToneFrequency = 600.0
	testAmplitude     = 0.5
	testRampSamples   = 240 // 5ms at 48kHz
)

func testOscillatorConfig() OscillatorConfig {
	return OscillatorConfig{
		Frequency:   testToneFrequency,
		SampleRate:  testSampleRate,
		Amplitude:   testAmplitude,
		RampSamples: testRampSamples,
	}
}

// goertzelMagnitude measures the normalized magnitude of freq in samples.
// A full-scale sine at freq returns roughly its amplitude.
func goertzelMagnitude(samples []float32, freq, sampleRate float64) float64 {
	n := float64(len(samples))
	coeff := 2 * math.Cos(2*math.Pi*freq/sampleRate)

	var s1, s2 float64
	for _, x := range samples {
		s0 := float64(x) + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}

	power := s1*s1 + s2*s2 - coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power) * 2 / n
}

func peak(samples []float32) float64 {
	var p float64
	for _, s := range samples {
		p = math.Max(p, math.Abs(float64(s)))
	}
	return p
}

func TestNewOscillator_ValidConfig(t *testing.T) {
	o, err := NewOscillator(testOscillatorConfig())
	if err != nil {
		t.Fatalf("NewOscillator failed with valid config: %v", err)
	}
	if o == nil {
		t.Fatal("NewOscillator returned nil with valid config")
	}
	if o.Gain() != 0 {
		t.Errorf("initial Gain() = %v, want 0", o.Gain())
	}
}

func TestNewOscillator_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*OscillatorConfig)
		want   error
	}{
		{"zero sample rate", func(c *OscillatorConfig) { c.SampleRate = 0 }, ErrInvalidSampleRate},
		{"negative sample rate", func(c *OscillatorConfig) { c.SampleRate = -1 }, ErrInvalidSampleRate},
		{"zero frequency", func(c *OscillatorConfig) { c.Frequency = 0 }, ErrInvalidFrequency},
		{"at nyquist", func(c *OscillatorConfig) { c.Frequency = testSampleRate / 2 }, ErrInvalidFrequency},
		{"negative amplitude", func(c *OscillatorConfig) { c.Amplitude = -0.1 }, ErrInvalidAmplitude},
		{"amplitude above one", func(c *OscillatorConfig) { c.Amplitude = 1.1 }, ErrInvalidAmplitude},
		{"negative ramp", func(c *OscillatorConfig) { c.RampSamples = -1 }, ErrInvalidRamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testOscillatorConfig()
			tt.modify(&cfg)
			_, err := NewOscillator(cfg)
			if err != tt.want {
				t.Errorf("NewOscillator() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOscillator_SilentWhenNotKeyed(t *testing.T) {
	o, _ := NewOscillator(testOscillatorConfig())
	buf := make([]float32, 1024)
	for i := range buf {
		buf[i] = 1 // make sure Fill overwrites
	}

	o.Fill(buf, false)

	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d = %v, want 0", i, s)
		}
	}
}

func TestOscillator_KeyedToneFrequency(t *testing.T) {
	o, _ := NewOscillator(testOscillatorConfig())

	// Let the ramp finish, then measure a steady block
	o.Fill(make([]float32, testRampSamples), true)
	buf := make([]float32, 4800) // 100ms = 60 whole cycles of 600Hz
	o.Fill(buf, true)

	if p := peak(buf); math.Abs(p-testAmplitude) > 0.01 {
		t.Errorf("peak = %v, want ~%v", p, testAmplitude)
	}

	on := goertzelMagnitude(buf, testToneFrequency, testSampleRate)
	off := goertzelMagnitude(buf, 1000, testSampleRate)
	if math.Abs(on-testAmplitude) > testAmplitude*0.05 {
		t.Errorf("magnitude at %vHz = %v, want ~%v", testToneFrequency, on, testAmplitude)
	}
	if off > on*0.1 {
		t.Errorf("magnitude at 1000Hz = %v, too close to tone magnitude %v", off, on)
	}
}

func TestOscillator_RampUpAndDown(t *testing.T) {
	o, _ := NewOscillator(testOscillatorConfig())

	o.Fill(make([]float32, testRampSamples/2), true)
	if g := o.Gain(); math.Abs(g-0.5) > 1e-9 {
		t.Errorf("gain after half ramp = %v, want 0.5", g)
	}

	o.Fill(make([]float32, testRampSamples), true)
	if g := o.Gain(); g != 1 {
		t.Errorf("gain after full ramp = %v, want 1", g)
	}

	// Release: first samples are still non-zero, ends silent
	buf := make([]float32, testRampSamples*2)
	o.Fill(buf, false)
	if peak(buf[:testRampSamples/4]) == 0 {
		t.Error("tone cut off abruptly on release")
	}
	if peak(buf[testRampSamples:]) != 0 {
		t.Error("tone still audible after release ramp")
	}
	if o.Gain() != 0 {
		t.Errorf("gain after release = %v, want 0", o.Gain())
	}
}

func TestOscillator_NoRampIsImmediate(t *testing.T) {
	cfg := testOscillatorConfig()
	cfg.RampSamples = 0
	o, _ := NewOscillator(cfg)

	buf := make([]float32, 1)
	o.Fill(buf, true)
	if o.Gain() != 1 {
		t.Errorf("gain with no ramp = %v, want 1", o.Gain())
	}
	o.Fill(buf, false)
	if o.Gain() != 0 {
		t.Errorf("gain with no ramp after release = %v, want 0", o.Gain())
	}
}

func TestOscillator_PhaseContinuousAcrossBuffers(t *testing.T) {
	cfg := testOscillatorConfig()
	cfg.RampSamples = 0

	whole, _ := NewOscillator(cfg)
	a := make([]float32, 1000)
	whole.Fill(a, true)

	split, _ := NewOscillator(cfg)
	b := make([]float32, 1000)
	split.Fill(b[:333], true)
	split.Fill(b[333:], true)

	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-6 {
			t.Fatalf("sample %d: whole = %v, split = %v", i, a[i], b[i])
		}
	}
}
