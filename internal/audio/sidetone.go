// internal/audio/sidetone.go
// Package audio plays a keyed sidetone on a playback device, so the
// transmitted morse can be heard alongside (or instead of) the GPIO line.
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ColonelBlimp/cwkeyer/internal/cw"
	"github.com/ColonelBlimp/cwkeyer/internal/dsp"
	"github.com/gen2brain/malgo"
)

var (
	ErrNotInitialized = errors.New("sidetone not initialized")
	ErrAlreadyRunning = errors.New("sidetone already running")
	ErrNotRunning     = errors.New("sidetone not running")
)

// bytesPerSample is the size of one F32 sample
const bytesPerSample = 4

// Config holds sidetone configuration
type Config struct {
	DeviceIndex int     // -1 for default device
	SampleRate  uint32  // e.g., 48000
	Channels    uint32  // 1 for mono, 2 for stereo
	BufferSize  uint32  // frames per callback
	Frequency   float64 // tone in Hz
	Volume      float64 // 0.0-1.0
	RampMs      float64 // attack/release time in milliseconds
}

// DefaultConfig returns sensible defaults for a CW sidetone
func DefaultConfig() Config {
	return Config{
		DeviceIndex: -1,
		SampleRate:  48000,
		Channels:    1,
		BufferSize:  256,
		Frequency:   600,
		Volume:      0.5,
		RampMs:      5,
	}
}

// Sidetone is a cw.Output that sounds a tone while the line is high.
// Set only flips a flag; the audio callback turns it into samples.
type Sidetone struct {
	config Config
	osc    *dsp.Oscillator

	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	mu      sync.Mutex
	running atomic.Bool
	keyed   atomic.Bool

	mono []float32 // callback scratch, audio thread only
}

// New creates a sidetone. Call Init, then Start, before keying it.
func New(cfg Config) (*Sidetone, error) {
	osc, err := dsp.NewOscillator(dsp.OscillatorConfig{
		Frequency:   cfg.Frequency,
		SampleRate:  float64(cfg.SampleRate),
		Amplitude:   cfg.Volume,
		RampSamples: int(cfg.RampMs * float64(cfg.SampleRate) / 1000),
	})
	if err != nil {
		return nil, fmt.Errorf("sidetone oscillator: %w", err)
	}
	if cfg.Channels < 1 || cfg.Channels > 2 {
		return nil, fmt.Errorf("sidetone channels must be 1 or 2, got %d", cfg.Channels)
	}

	return &Sidetone{
		config: cfg,
		osc:    osc,
	}, nil
}

// Init initializes the audio backend
func (s *Sidetone) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	s.ctx = ctx

	return nil
}

// ListDevices returns available playback devices
func (s *Sidetone) ListDevices() ([]malgo.DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listDevices()
}

func (s *Sidetone) listDevices() ([]malgo.DeviceInfo, error) {
	if s.ctx == nil {
		return nil, ErrNotInitialized
	}

	infos, err := s.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}

	return infos, nil
}

// Start opens the playback device and begins streaming (silence until keyed).
// The device is stopped when ctx is cancelled.
func (s *Sidetone) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return ErrAlreadyRunning
	}
	if s.ctx == nil {
		return ErrNotInitialized
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.SampleRate = s.config.SampleRate
	deviceConfig.PeriodSizeInFrames = s.config.BufferSize
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = s.config.Channels

	// Select specific device if requested
	if s.config.DeviceIndex >= 0 {
		devices, err := s.listDevices()
		if err != nil {
			return err
		}
		if s.config.DeviceIndex >= len(devices) {
			return fmt.Errorf("device index %d out of range (have %d devices)",
				s.config.DeviceIndex, len(devices))
		}
		deviceConfig.Playback.DeviceID = devices[s.config.DeviceIndex].ID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(outputSamples, _ []byte, frameCount uint32) {
			s.render(outputSamples, frameCount)
		},
	}

	device, err := malgo.InitDevice(s.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start device: %w", err)
	}

	s.device = device
	s.running.Store(true)

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	return nil
}

// Set keys the tone on (High) or off (Low).
func (s *Sidetone) Set(level cw.Level) error {
	if !s.running.Load() {
		return ErrNotRunning
	}
	s.keyed.Store(bool(level))
	return nil
}

// render fills out with frameCount interleaved F32 frames.
func (s *Sidetone) render(out []byte, frameCount uint32) {
	frames := int(frameCount)
	if cap(s.mono) < frames {
		s.mono = make([]float32, frames)
	}
	mono := s.mono[:frames]
	s.osc.Fill(mono, s.keyed.Load())

	channels := int(s.config.Channels)
	for i, sample := range mono {
		for ch := 0; ch < channels; ch++ {
			offset := (i*channels + ch) * bytesPerSample
			if offset+bytesPerSample > len(out) {
				return
			}
			putFloat32(out[offset:], sample)
		}
	}
}

// Stop stops playback
func (s *Sidetone) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return ErrNotRunning
	}
	s.stopDevice()
	return nil
}

func (s *Sidetone) stopDevice() {
	s.keyed.Store(false)
	if s.device != nil {
		_ = s.device.Stop()
		s.device.Uninit()
		s.device = nil
	}
	s.running.Store(false)
}

// Close releases all audio resources
func (s *Sidetone) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		s.stopDevice()
	}

	if s.ctx != nil {
		if err := s.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninit context: %w", err)
		}
		s.ctx.Free()
		s.ctx = nil
	}
	return nil
}

// IsRunning returns true if playback is active
func (s *Sidetone) IsRunning() bool {
	return s.running.Load()
}

// putFloat32 writes v as little-endian IEEE 754 into b
func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
