package core

import "errors"

// Prescaler is the divisor applied to the system clock before it drives the
// hardware counter.
type Prescaler uint16

// Supported prescaler divisors
const (
	Prescale1    Prescaler = 1
	Prescale8    Prescaler = 8
	Prescale64   Prescaler = 64
	Prescale256  Prescaler = 256
	Prescale1024 Prescaler = 1024

	// DefaultPrescaler replaces any unsupported divisor
	DefaultPrescaler = Prescale1024
)

// Valid reports whether the hardware can be set to p.
func (p Prescaler) Valid() bool {
	switch p {
	case Prescale1, Prescale8, Prescale64, Prescale256, Prescale1024:
		return true
	}
	return false
}

// Normalize returns p, or DefaultPrescaler when p is not supported.
// An unsupported divisor is not an error.
func (p Prescaler) Normalize() Prescaler {
	if !p.Valid() {
		return DefaultPrescaler
	}
	return p
}

// Resolution is a set of enabled conversion units
type Resolution uint8

const (
	ResolutionMs Resolution = 1 << iota
	ResolutionUs

	ResolutionAll = ResolutionMs | ResolutionUs
)

// Has reports whether every unit in r is enabled.
func (set Resolution) Has(r Resolution) bool {
	return set&r == r
}

// MinClockHz is the lowest clock the microsecond conversion can divide by
const MinClockHz = 1000

var ErrClockTooSlow = errors.New("clock frequency below 1 kHz")

// Config is the build-time RTC configuration.
type Config struct {
	ClockHz     uint32     // CPU clock feeding the prescaler
	Prescaler   Prescaler  // One of 1, 8, 64, 256, 1024
	Resolutions Resolution // Units the firmware reports
	Wide        bool       // Arm the overflow counter and count 32-bit ticks
}

// DefaultConfig returns the configuration of an 8 MHz ATmega328p with the
// slowest prescaler and every feature enabled.
func DefaultConfig() Config {
	return Config{
		ClockHz:     8000000,
		Prescaler:   Prescale1024,
		Resolutions: ResolutionAll,
		Wide:        true,
	}
}

// Normalized returns a copy of c with the prescaler normalized and the clock
// raised to MinClockHz if it is slower.
func (c Config) Normalized() Config {
	c.Prescaler = c.Prescaler.Normalize()
	if c.ClockHz < MinClockHz {
		c.ClockHz = MinClockHz
	}
	return c
}

// Validate checks values that would make conversion undefined.
func (c Config) Validate() error {
	if c.ClockHz < MinClockHz {
		return ErrClockTooSlow
	}
	return nil
}

// TickHz returns the hardware counter rate in ticks per second, truncated.
func (c Config) TickHz() uint32 {
	return c.ClockHz / uint32(c.Prescaler.Normalize())
}
