// Package sim models a 16-bit free-running timer peripheral on the host.
//
// Timer behaves like AVR Timer1: it counts at ClockHz/prescaler once
// started, sets an overflow flag on every wrap, and runs the registered
// overflow handler unless interrupts are masked. A wrap seen while masked
// stays pending until the mask is released; further wraps while pending are
// lost, as on the hardware. Register reads and handler execution are
// serialized so that a handler appears atomic to the reading goroutine,
// matching a single-core CPU where the handler preempts main code.
package sim

import (
	"context"
	"sync"
	"time"

	"tickrtc/core"
)

// Register identifies a register access passed to the read hook
type Register uint8

const (
	RegHigh Register = iota
	RegLow
	RegLatched
	RegFlag
)

// ReadHook runs after every register read, outside the peripheral lock.
// Tests use it to advance the counter between two reads.
type ReadHook func(reg Register)

// Timer is a simulated 16-bit timer with overflow interrupt.
type Timer struct {
	mu sync.Mutex

	clockHz   uint32
	prescaler core.Prescaler
	running   bool

	count   uint16
	pending bool
	armed   bool
	handler func()
	masked  int

	wraps     uint64
	delivered uint64

	hook ReadHook
}

// New creates a stopped timer driven by a clockHz system clock.
func New(clockHz uint32) *Timer {
	return &Timer{clockHz: clockHz}
}

// Start implements core.HardwareTimer
func (t *Timer) Start(p core.Prescaler) {
	t.mu.Lock()
	t.prescaler = p
	t.running = true
	t.mu.Unlock()
}

// ReadHigh implements core.HardwareTimer
func (t *Timer) ReadHigh() uint8 {
	t.mu.Lock()
	v := uint8(t.count >> 8)
	t.mu.Unlock()
	t.afterRead(RegHigh)
	return v
}

// ReadLow implements core.HardwareTimer
func (t *Timer) ReadLow() uint8 {
	t.mu.Lock()
	v := uint8(t.count)
	t.mu.Unlock()
	t.afterRead(RegLow)
	return v
}

// ReadLatched implements core.HardwareTimer
func (t *Timer) ReadLatched() uint16 {
	t.mu.Lock()
	v := t.count
	t.mu.Unlock()
	t.afterRead(RegLatched)
	return v
}

// OverflowPending implements core.HardwareTimer
func (t *Timer) OverflowPending() bool {
	t.mu.Lock()
	v := t.pending
	t.mu.Unlock()
	t.afterRead(RegFlag)
	return v
}

// EnableOverflow implements core.HardwareTimer. A stale flag is cleared.
func (t *Timer) EnableOverflow(handler func()) {
	t.mu.Lock()
	t.handler = handler
	t.armed = handler != nil
	t.pending = false
	t.mu.Unlock()
}

// Disable implements core.InterruptMask
func (t *Timer) Disable() core.InterruptState {
	t.mu.Lock()
	state := core.InterruptState(t.masked)
	t.masked++
	t.mu.Unlock()
	return state
}

// Restore implements core.InterruptMask. Unmasking delivers a pending overflow.
func (t *Timer) Restore(state core.InterruptState) {
	t.mu.Lock()
	t.masked = int(state)
	if t.masked == 0 && t.armed && t.pending {
		t.deliver()
	}
	t.mu.Unlock()
}

// SetReadHook installs hook, or removes it when hook is nil
func (t *Timer) SetReadHook(hook ReadHook) {
	t.mu.Lock()
	t.hook = hook
	t.mu.Unlock()
}

// Set loads the counter without raising an overflow
func (t *Timer) Set(count uint16) {
	t.mu.Lock()
	t.count = count
	t.mu.Unlock()
}

// Advance moves a running counter forward by n ticks, raising one overflow
// per wrap. A stopped counter ignores it.
func (t *Timer) Advance(n uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	for n > 0 {
		toWrap := 0x10000 - uint64(t.count)
		if n < toWrap {
			t.count += uint16(n)
			return
		}
		n -= toWrap
		t.count = 0
		t.wrap()
	}
}

// Prescaler returns the divisor passed to Start
func (t *Timer) Prescaler() core.Prescaler {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prescaler
}

// Running reports whether Start was called
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Wraps returns how many times the counter wrapped
func (t *Timer) Wraps() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wraps
}

// Delivered returns how many times the overflow handler ran
func (t *Timer) Delivered() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delivered
}

// Run advances the counter in real time until ctx is done, updating every
// interval. Start must have been called.
func (t *Timer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	var done uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			target := t.ticksIn(now.Sub(start))
			if target > done {
				t.Advance(target - done)
				done = target
			}
		}
	}
}

// ticksIn converts a wall-clock span into counter ticks
func (t *Timer) ticksIn(d time.Duration) uint64 {
	t.mu.Lock()
	rate := uint64(t.clockHz)
	div := uint64(t.prescaler.Normalize())
	t.mu.Unlock()

	secs := uint64(d / time.Second)
	frac := uint64(d % time.Second)
	return (secs*rate + frac*rate/uint64(time.Second)) / div
}

// wrap is called with t.mu held
func (t *Timer) wrap() {
	t.wraps++
	t.pending = true
	if t.armed && t.masked == 0 {
		t.deliver()
	}
}

// deliver runs the handler, then clears the flag. Called with t.mu held.
func (t *Timer) deliver() {
	t.handler()
	t.delivered++
	t.pending = false
}

func (t *Timer) afterRead(reg Register) {
	t.mu.Lock()
	hook := t.hook
	t.mu.Unlock()
	if hook != nil {
		hook(reg)
	}
}
