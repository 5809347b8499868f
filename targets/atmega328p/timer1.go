//go:build atmega328p

package main

import (
	"device/avr"
	"machine"
	"runtime/interrupt"

	"tickrtc/core"
)

// overflowHandler is called from the TIMER1_OVF vector
var overflowHandler func()

// Timer1 drives core.HardwareTimer from the ATmega328p 16-bit Timer1 in
// normal mode. Reading TCNT1L latches TCNT1H into the shared TEMP register,
// so every high byte read is preceded by a low byte read.
type Timer1 struct{}

func cpuFrequency() uint32 {
	return machine.CPUFrequency()
}

// Start implements core.HardwareTimer
func (Timer1) Start(p core.Prescaler) {
	var cs uint8
	switch p {
	case core.Prescale1:
		cs = avr.TCCR1B_CS10
	case core.Prescale8:
		cs = avr.TCCR1B_CS11
	case core.Prescale64:
		cs = avr.TCCR1B_CS10 | avr.TCCR1B_CS11
	case core.Prescale256:
		cs = avr.TCCR1B_CS12
	default: // 1024
		cs = avr.TCCR1B_CS12 | avr.TCCR1B_CS10
	}

	avr.TCCR1A.Set(0) // Normal mode, counts 0..0xFFFF
	avr.TCCR1B.ClearBits(avr.TCCR1B_CS10 | avr.TCCR1B_CS11 | avr.TCCR1B_CS12)
	avr.TCCR1B.SetBits(cs)
}

// ReadHigh implements core.HardwareTimer
func (Timer1) ReadHigh() uint8 {
	avr.TCNT1L.Get()
	return avr.TCNT1H.Get()
}

// ReadLow implements core.HardwareTimer
func (Timer1) ReadLow() uint8 {
	return avr.TCNT1L.Get()
}

// ReadLatched implements core.HardwareTimer
func (Timer1) ReadLatched() uint16 {
	low := avr.TCNT1L.Get()
	high := avr.TCNT1H.Get()
	return uint16(high)<<8 | uint16(low)
}

// OverflowPending implements core.HardwareTimer
func (Timer1) OverflowPending() bool {
	return avr.TIFR1.HasBits(avr.TIFR1_TOV1)
}

// EnableOverflow implements core.HardwareTimer
func (Timer1) EnableOverflow(handler func()) {
	overflowHandler = handler
	interrupt.New(avr.IRQ_TIMER1_OVF, timer1Overflow)

	// TOV1 is cleared by writing a one
	avr.TIFR1.Set(avr.TIFR1_TOV1)
	avr.TIMSK1.SetBits(avr.TIMSK1_TOIE1)
}

func timer1Overflow(interrupt.Interrupt) {
	if overflowHandler != nil {
		overflowHandler()
	}
}
