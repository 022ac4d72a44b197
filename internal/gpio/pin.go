// internal/gpio/pin.go
// Package gpio drives a single GPIO line as a keyer output.
package gpio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ColonelBlimp/cwkeyer/internal/cw"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	// ErrPinNotFound indicates no GPIO matches the configured pin id
	ErrPinNotFound = errors.New("gpio pin not found")
	// ErrPinClosed indicates the pin has already been released
	ErrPinClosed = errors.New("gpio pin closed")
)

var hostInit = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

// Pin is a cw.Output backed by a GPIO line configured as output.
type Pin struct {
	mu     sync.Mutex
	pin    gpio.PinOut
	closed bool
}

// Open loads the host drivers and claims the pin named id ("17", "GPIO17",
// or a board alias), driving it low.
func Open(id string) (*Pin, error) {
	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("init gpio host: %w", err)
	}
	return openRegistered(id)
}

// openRegistered resolves id in the periph registry without touching host drivers.
func openRegistered(id string) (*Pin, error) {
	p := gpioreg.ByName(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrPinNotFound, id)
	}
	return New(p)
}

// New wraps an already resolved pin and configures it as a low output.
func New(p gpio.PinOut) (*Pin, error) {
	if p == nil {
		return nil, ErrPinNotFound
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure %s as output: %w", p, err)
	}
	return &Pin{pin: p}, nil
}

// Set drives the line high or low.
func (p *Pin) Set(level cw.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPinClosed
	}
	if err := p.pin.Out(gpio.Level(level)); err != nil {
		return fmt.Errorf("set %s %s: %w", p.pin, level, err)
	}
	return nil
}

// Close drives the line low and releases it. Safe to call more than once.
func (p *Pin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	lowErr := p.pin.Out(gpio.Low)
	haltErr := p.pin.Halt()
	if err := errors.Join(lowErr, haltErr); err != nil {
		return fmt.Errorf("release %s: %w", p.pin, err)
	}
	return nil
}

// Name returns the resolved pin name
func (p *Pin) Name() string {
	return p.pin.Name()
}
