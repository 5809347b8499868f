package core

import "sync/atomic"

// readAttempts bounds the optimistic reads before falling back to a masked read
const readAttempts = 4

// carryThreshold splits the low half: below it, a pending overflow belongs to
// the sampled value; above it, the sample was taken before the wrap.
const carryThreshold = 0x8000

// Stats counts reads that exhausted their optimistic attempts
type Stats struct {
	Fallback16   uint32
	FallbackWide uint32
}

// Counter extends a 16-bit hardware counter with a software overflow count.
//
// The overflow count has a single writer, the overflow handler. Readers never
// lock it; they sample it on both sides of the hardware read and retry when it
// moved. Init must run once before any read.
type Counter struct {
	hw  HardwareTimer
	irq InterruptMask
	cfg Config

	overflows uint32 // written only by Overflow

	// Owned by the reading context
	stats Stats
}

// NewCounter creates a counter over hw that masks CPU interrupts for its
// fallback reads.
func NewCounter(hw HardwareTimer, cfg Config) *Counter {
	return NewCounterWithMask(hw, CPUInterrupts(), cfg)
}

// NewCounterWithMask creates a counter with an explicit interrupt mask.
func NewCounterWithMask(hw HardwareTimer, irq InterruptMask, cfg Config) *Counter {
	return &Counter{
		hw:  hw,
		irq: irq,
		cfg: cfg.Normalized(),
	}
}

// Init starts the hardware counter. With Wide set, the overflow count is
// reset and the overflow handler armed before the counter starts running.
// Not safe to call concurrently with reads.
func (c *Counter) Init() {
	if c.cfg.Wide {
		atomic.StoreUint32(&c.overflows, 0)
		c.hw.EnableOverflow(c.Overflow)
	}
	c.hw.Start(c.cfg.Prescaler)
	RecordEvent(EvtInit, uint32(c.cfg.Prescaler), c.cfg.ClockHz)
}

// Config returns the normalized configuration
func (c *Counter) Config() Config {
	return c.cfg
}

// Overflow is the overflow interrupt handler.
func (c *Counter) Overflow() {
	atomic.AddUint32(&c.overflows, 1)
}

// Read16 returns the hardware counter without a torn read.
//
// The high byte is read on both sides of the low byte; an unchanged high byte
// means the pair is consistent. After readAttempts failures the counter is
// read once with interrupts disabled.
func (c *Counter) Read16() uint16 {
	for i := 0; i < readAttempts; i++ {
		high := c.hw.ReadHigh()
		low := c.hw.ReadLow()
		if c.hw.ReadHigh() == high {
			return uint16(high)<<8 | uint16(low)
		}
	}

	state := c.irq.Disable()
	ticks := c.hw.ReadLatched()
	c.irq.Restore(state)

	c.stats.Fallback16++
	RecordEvent(EvtFallback16, uint32(ticks), 0)
	return ticks
}

// ReadWide returns the overflow count concatenated with the hardware counter.
// Without Wide it is Read16 widened.
func (c *Counter) ReadWide() uint32 {
	if !c.cfg.Wide {
		return uint32(c.Read16())
	}
	overflows, low := c.sample()
	return overflows<<16 | uint32(low)
}

// Uptime returns the full 48-bit tick count.
func (c *Counter) Uptime() uint64 {
	if !c.cfg.Wide {
		return uint64(c.Read16())
	}
	overflows, low := c.sample()
	return uint64(overflows)<<16 | uint64(low)
}

// Stats returns the fallback counters
func (c *Counter) Stats() Stats {
	return c.stats
}

// sample returns a consistent (overflow count, hardware count) pair
func (c *Counter) sample() (uint32, uint16) {
	for i := 0; i < readAttempts; i++ {
		before := atomic.LoadUint32(&c.overflows)
		low := c.Read16()
		pending := c.hw.OverflowPending()
		if atomic.LoadUint32(&c.overflows) == before {
			return carry(before, low, pending), low
		}
	}

	state := c.irq.Disable()
	overflows := atomic.LoadUint32(&c.overflows)
	low := c.hw.ReadLatched()
	pending := c.hw.OverflowPending()
	c.irq.Restore(state)

	overflows = carry(overflows, low, pending)
	c.stats.FallbackWide++
	RecordEvent(EvtFallbackWide, overflows, uint32(low))
	return overflows, low
}

// carry counts a wrap the handler has not processed yet. A pending flag with
// a small low half means the wrap happened before the low half was sampled.
func carry(overflows uint32, low uint16, pending bool) uint32 {
	if pending && low < carryThreshold {
		return overflows + 1
	}
	return overflows
}
