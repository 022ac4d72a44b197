//go:build integration

package audio

import (
	"context"
	"testing"
	"time"

	"github.com/ColonelBlimp/cwkeyer/internal/cw"
)

// These tests require actual audio hardware and are skipped by default.
// Run with: go test -tags=integration ./internal/audio

func TestSidetone_ListDevices_Integration(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	devices, err := s.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}

	t.Logf("Found %d playback devices:", len(devices))
	for i, d := range devices {
		t.Logf("  [%d] %s", i, d.Name())
	}
}

func TestSidetone_KeySOS_Integration(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Error("IsRunning() = false after Start()")
	}

	timing, err := cw.TimingFromWPM(40)
	if err != nil {
		t.Fatalf("TimingFromWPM() error = %v", err)
	}
	if err := cw.Transmit(ctx, []string{"SOS"}, timing, s, nil); err != nil {
		t.Fatalf("Transmit() error = %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}
}

func TestSidetone_ContextCancellation_Integration(t *testing.T) {
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	cancel()

	// Give goroutine time to handle cancellation
	time.Sleep(100 * time.Millisecond)

	if s.IsRunning() {
		t.Error("IsRunning() = true after context cancellation")
	}
}
