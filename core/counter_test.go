package core_test

import (
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickrtc/core"
	"tickrtc/sim"
)

func newCounter(t *testing.T, cfg core.Config) (*sim.Timer, *core.Counter) {
	t.Helper()
	core.ClearEvents()
	tm := sim.New(cfg.ClockHz)
	c := core.NewCounterWithMask(tm, tm, cfg)
	c.Init()
	require.True(t, tm.Running())
	return tm, c
}

// advanceOnce returns a hook that advances tm by n ticks on the first read of reg
func advanceOnce(tm *sim.Timer, reg sim.Register, n uint64) (sim.ReadHook, *bool) {
	fired := new(bool)
	return func(r sim.Register) {
		if !*fired && r == reg {
			*fired = true
			tm.Advance(n)
		}
	}, fired
}

func TestInitUnsupportedPrescaler(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Prescaler = core.Prescaler(3)

	tm, c := newCounter(t, cfg)
	assert.Equal(t, core.Prescale1024, tm.Prescaler())
	assert.Equal(t, core.Prescale1024, c.Config().Prescaler)
}

func TestInitSupportedPrescaler(t *testing.T) {
	for _, p := range []core.Prescaler{core.Prescale1, core.Prescale8, core.Prescale64, core.Prescale256, core.Prescale1024} {
		cfg := core.DefaultConfig()
		cfg.Prescaler = p
		tm, _ := newCounter(t, cfg)
		assert.Equal(t, p, tm.Prescaler())
	}
}

func TestRead16Idempotent(t *testing.T) {
	tm, c := newCounter(t, core.DefaultConfig())
	tm.Set(0x1234)

	for i := 0; i < 100; i++ {
		require.Equal(t, uint16(0x1234), c.Read16())
	}
	assert.Zero(t, c.Stats().Fallback16)
}

func TestRead16TornHighByte(t *testing.T) {
	tm, c := newCounter(t, core.DefaultConfig())
	tm.Set(0x12FF)

	// Low byte wraps between the first high read and the low read
	hook, fired := advanceOnce(tm, sim.RegHigh, 1)
	tm.SetReadHook(hook)

	got := c.Read16()
	require.True(t, *fired)
	assert.Equal(t, uint16(0x1300), got)
	assert.NotEqual(t, uint16(0x1200), got)
	assert.NotEqual(t, uint16(0x13FF), got)
	assert.Zero(t, c.Stats().Fallback16)
}

func TestRead16TornLowByte(t *testing.T) {
	tm, c := newCounter(t, core.DefaultConfig())
	tm.Set(0x12FF)

	// Low byte read before the wrap, high byte re-read after it
	hook, fired := advanceOnce(tm, sim.RegLow, 1)
	tm.SetReadHook(hook)

	got := c.Read16()
	require.True(t, *fired)
	assert.Equal(t, uint16(0x1300), got)
}

func TestRead16FallsBackWhenRetriesExhausted(t *testing.T) {
	tm, c := newCounter(t, core.DefaultConfig())
	tm.Set(0x1000)

	// Every low read moves the high byte
	tm.SetReadHook(func(r sim.Register) {
		if r == sim.RegLow {
			tm.Advance(0x100)
		}
	})

	assert.Equal(t, uint16(0x1400), c.Read16())
	assert.Equal(t, uint32(1), c.Stats().Fallback16)

	events := core.Events()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, uint8(core.EvtFallback16), last.Type)
	assert.Equal(t, uint32(0x1400), last.Value1)
}

func TestReadWideNarrowConfig(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Wide = false
	tm, c := newCounter(t, cfg)

	tm.Set(0xFFFE)
	tm.Advance(4)
	assert.Equal(t, uint32(2), c.ReadWide())
	assert.Equal(t, uint64(2), c.Uptime())
	assert.Zero(t, tm.Delivered())
}

func TestReadWideCountsPendingOverflow(t *testing.T) {
	tm, c := newCounter(t, core.DefaultConfig())
	tm.Set(0xFFF0)

	state := tm.Disable()
	tm.Advance(0x20)
	require.Zero(t, tm.Delivered())
	masked := c.ReadWide()
	tm.Restore(state)

	assert.Equal(t, uint32(0x10010), masked)
	assert.Equal(t, uint64(1), tm.Delivered())
	assert.Equal(t, uint32(0x10010), c.ReadWide())
	assert.Zero(t, c.Stats().FallbackWide)
}

func TestReadWideFallsBackWhenRetriesExhausted(t *testing.T) {
	tm, c := newCounter(t, core.DefaultConfig())
	tm.Set(0x0100)

	// A full wrap during every low read changes the overflow count
	tm.SetReadHook(func(r sim.Register) {
		if r == sim.RegLow {
			tm.Advance(0x10000)
		}
	})

	assert.Equal(t, uint32(0x40100), c.ReadWide())
	assert.Equal(t, uint32(1), c.Stats().FallbackWide)
	assert.Zero(t, c.Stats().Fallback16)

	tm.SetReadHook(nil)
	assert.Equal(t, uint32(0x40100), c.ReadWide())
}

func TestReadWideCountsEveryWrap(t *testing.T) {
	const wraps = 1000
	tm, c := newCounter(t, core.DefaultConfig())
	regs := []sim.Register{sim.RegHigh, sim.RegLow, sim.RegFlag}

	var prev uint32
	for i := 0; i < wraps; i++ {
		back := uint64(1 + i%7)
		tm.Set(uint16(0x10000 - back))

		hook, fired := advanceOnce(tm, regs[i%len(regs)], back+2)
		tm.SetReadHook(hook)

		masked := i%5 == 4
		var state core.InterruptState
		if masked {
			state = tm.Disable()
		}
		got := c.ReadWide()
		if masked {
			tm.Restore(state)
		}
		tm.SetReadHook(nil)
		require.True(t, *fired, "wrap %d", i)

		after := c.ReadWide()
		require.Equal(t, uint32(i+1)<<16|2, after, "wrap %d", i)
		require.GreaterOrEqual(t, got, prev, "wrap %d", i)
		require.LessOrEqual(t, got, after, "wrap %d", i)
		prev = after
	}

	assert.Equal(t, uint64(wraps), tm.Wraps())
	assert.Equal(t, uint64(wraps), tm.Delivered())
	assert.Equal(t, uint64(wraps)<<16|2, c.Uptime())
}

func TestReadWideMonotonicUnderConcurrentTicks(t *testing.T) {
	tm, c := newCounter(t, core.DefaultConfig())

	// The ticking goroutine may only run a few steps per read, so no read
	// can be delayed by a whole counter period.
	const stepsPerRead = 4
	var reads, steps atomic.Int64
	var stop atomic.Bool
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		rng := rand.New(rand.NewSource(1))
		for !stop.Load() {
			if steps.Load() >= reads.Load()*stepsPerRead {
				continue
			}
			tm.Advance(uint64(1 + rng.Intn(300)))
			steps.Add(1)
		}
	}()

	var prev uint32
	for tm.Wraps() < 100 {
		reads.Add(1)
		got := c.ReadWide()
		if got < prev {
			stop.Store(true)
			wg.Wait()
			t.Fatalf("read went backwards: %#x after %#x", got, prev)
		}
		prev = got
	}
	stop.Store(true)
	wg.Wait()

	assert.Equal(t, tm.Wraps(), uint64(c.ReadWide()>>16))
}

func TestDumpEvents(t *testing.T) {
	tm, c := newCounter(t, core.DefaultConfig())
	tm.SetReadHook(func(r sim.Register) {
		if r == sim.RegLow {
			tm.Advance(0x100)
		}
	})
	c.Read16()

	var lines []string
	core.SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer core.SetDebugWriter(func(string) {})

	core.DumpEvents()
	out := strings.Join(lines, "\n")
	assert.Contains(t, out, "[RTC] INIT v1=1024 v2=8000000")
	assert.Contains(t, out, "[RTC] FALLBACK16")
}
