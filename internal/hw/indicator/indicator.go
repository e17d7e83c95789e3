// Package indicator shows footprint availability on two status lamps.
package indicator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cjeanneret/FootprintGo/internal/debug"
	"github.com/cjeanneret/FootprintGo/internal/hw/gpio"
)

// Indicator reports whether the latest computation produced a footprint.
type Indicator interface {
	Show(hasProjection bool) error
	Close() error
}

// Nop is the indicator used when no lamps are wired.
type Nop struct{}

// Show does nothing.
func (Nop) Show(bool) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

// Lamp lights okPin while a footprint is available and faultPin otherwise.
// Both lamps are off until the first Show.
type Lamp struct {
	mu       sync.Mutex
	gpio     gpio.Driver
	okPin    int
	faultPin int
	shown    bool
	last     bool
}

// NewLamp configures both pins as outputs, lamps off.
func NewLamp(g gpio.Driver, okPin, faultPin int) (*Lamp, error) {
	if okPin == faultPin {
		return nil, fmt.Errorf("indicator: ok and fault pins must differ, both %d", okPin)
	}
	for _, pin := range [2]int{okPin, faultPin} {
		if err := g.SetupOutput(pin); err != nil {
			return nil, fmt.Errorf("indicator: setup pin %d: %w", pin, err)
		}
	}
	return &Lamp{gpio: g, okPin: okPin, faultPin: faultPin}, nil
}

// Show switches the lamps. Repeating the current state writes nothing.
func (l *Lamp) Show(hasProjection bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.shown && l.last == hasProjection {
		return nil
	}
	debug.Verbose("Indicator: footprint available=%v", hasProjection)

	// Switch the old lamp off first so both are never lit together.
	on, off := l.okPin, l.faultPin
	if !hasProjection {
		on, off = off, on
	}
	if err := l.gpio.WritePin(off, gpio.Low); err != nil {
		return err
	}
	if err := l.gpio.WritePin(on, gpio.High); err != nil {
		return err
	}
	l.shown, l.last = true, hasProjection
	return nil
}

// Close switches both lamps off and closes the driver.
func (l *Lamp) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return errors.Join(
		l.gpio.WritePin(l.okPin, gpio.Low),
		l.gpio.WritePin(l.faultPin, gpio.Low),
		l.gpio.Close(),
	)
}
