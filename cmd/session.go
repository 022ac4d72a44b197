// cmd/session.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ColonelBlimp/cwkeyer/internal/audio"
	"github.com/ColonelBlimp/cwkeyer/internal/cli/echo"
	"github.com/ColonelBlimp/cwkeyer/internal/config"
	"github.com/ColonelBlimp/cwkeyer/internal/cw"
	"github.com/ColonelBlimp/cwkeyer/internal/gpio"
	"github.com/ColonelBlimp/cwkeyer/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// output is a keyed backend that must be released when the session ends
type output struct {
	name  string
	out   cw.Output
	close func() error
}

// session owns the outputs and keyer for one command run.
type session struct {
	settings *config.Settings
	log      zerolog.Logger
	outputs  []output
	keyer    *cw.Keyer
	timing   atomic.Pointer[cw.Timing]

	// stops the sidetone stream on release
	cancel      context.CancelFunc
	releaseOnce sync.Once
	releaseErr  error
}

func openSession(cmd *cobra.Command) (*session, error) {
	settings, err := config.Get()
	if err != nil {
		return nil, err
	}

	timing, err := cw.TimingFromWPM(settings.WPM)
	if err != nil {
		return nil, fmt.Errorf("timing: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		settings: settings,
		log:      logging.New(cmd.ErrOrStderr(), settings.Debug),
		cancel:   cancel,
	}
	s.timing.Store(&timing)

	for _, name := range settings.Outputs {
		o, err := s.openOutput(ctx, cmd, name)
		if err != nil {
			_ = s.release()
			return nil, err
		}
		s.outputs = append(s.outputs, o)
		s.log.Debug().Str("output", name).Msg("output ready")
	}

	outs := make(cw.MultiOutput, len(s.outputs))
	for i, o := range s.outputs {
		outs[i] = o.out
	}
	var opts []cw.Option
	if settings.Verbose {
		opts = append(opts, cw.WithObserver(echo.NewPrinter(cmd.OutOrStdout())))
	}
	if s.keyer, err = cw.NewKeyer(outs, opts...); err != nil {
		_ = s.release()
		return nil, err
	}

	s.log.Debug().
		Str("timing", timing.String()).
		Strs("outputs", settings.Outputs).
		Msg("session started")
	return s, nil
}

func (s *session) openOutput(ctx context.Context, cmd *cobra.Command, name string) (output, error) {
	switch name {
	case config.OutputGPIO:
		pin, err := gpio.Open(s.settings.GPIOPin)
		if err != nil {
			return output{}, fmt.Errorf("gpio: %w", err)
		}
		s.log.Debug().Str("pin", pin.Name()).Msg("gpio line claimed")
		return output{name: name, out: pin, close: pin.Close}, nil

	case config.OutputSidetone:
		cfg := audio.DefaultConfig()
		cfg.DeviceIndex = s.settings.DeviceIndex
		cfg.SampleRate = uint32(s.settings.SampleRate)
		cfg.Channels = uint32(s.settings.Channels)
		cfg.Frequency = s.settings.ToneFrequency
		cfg.Volume = s.settings.Volume
		cfg.RampMs = s.settings.RampMs

		tone, err := audio.New(cfg)
		if err != nil {
			return output{}, err
		}
		if err := tone.Init(); err != nil {
			return output{}, fmt.Errorf("sidetone: %w", err)
		}
		if err := tone.Start(ctx); err != nil {
			_ = tone.Close()
			return output{}, fmt.Errorf("sidetone: %w", err)
		}
		return output{name: name, out: tone, close: tone.Close}, nil

	case config.OutputConsole:
		trace := echo.NewTrace(logging.NewTrace(cmd.OutOrStdout()))
		return output{name: name, out: trace}, nil
	}
	return output{}, fmt.Errorf("unknown output %q", name)
}

// send keys words at the current speed and leaves every output low,
// whether or not the transmission completed.
func (s *session) send(ctx context.Context, words []string) error {
	t := *s.timing.Load()
	s.log.Debug().
		Float64("wpm", t.WPM).
		Dur("estimate", t.Duration(words)).
		Int("words", len(words)).
		Msg("transmitting")

	err := s.keyer.Transmit(ctx, words, t)
	if errors.Is(err, context.Canceled) {
		s.log.Info().Msg("transmission cancelled")
	}
	return errors.Join(err, s.driveLow())
}

// watchConfig picks up speed changes from the config file for the next phrase.
func (s *session) watchConfig() {
	config.Watch(func(settings *config.Settings, err error) {
		if err != nil {
			s.log.Warn().Err(err).Msg("config change ignored")
			return
		}
		t, err := cw.TimingFromWPM(settings.WPM)
		if err != nil {
			s.log.Warn().Err(err).Msg("config change ignored")
			return
		}
		s.timing.Store(&t)
		s.log.Info().Float64("wpm", t.WPM).Msg("speed changed")
	})
}

// driveLow sets every output low, reporting all failures.
func (s *session) driveLow() error {
	var errs []error
	for _, o := range s.outputs {
		if err := o.out.Set(cw.Low); err != nil {
			errs = append(errs, fmt.Errorf("%s low: %w", o.name, err))
		}
	}
	return errors.Join(errs...)
}

// release drives every output low and closes them in reverse order.
// Only the first call does any work.
func (s *session) release() error {
	s.releaseOnce.Do(func() {
		errs := []error{s.driveLow()}
		for i := len(s.outputs) - 1; i >= 0; i-- {
			o := s.outputs[i]
			if o.close == nil {
				continue
			}
			if err := o.close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", o.name, err))
			}
		}
		s.cancel()
		s.releaseErr = errors.Join(errs...)
		if s.releaseErr != nil {
			s.log.Error().Err(s.releaseErr).Msg("release outputs")
		}
	})
	return s.releaseErr
}
