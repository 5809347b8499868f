package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickrtc/core"
	"tickrtc/sim"
)

func TestConfigReportRoundTrip(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Resolutions = core.ResolutionMs

	report := NewConfigReport("atmega328p", cfg)
	assert.Equal(t, cfg, report.RTC())
}

func TestNewSampleReport(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Resolutions = core.ResolutionMs

	tm := sim.New(cfg.ClockHz)
	counter := core.NewCounterWithMask(tm, tm, cfg)
	counter.Init()
	clock := core.NewClock[uint32](counter)

	tm.Advance(0x10000 + 7812)
	sample := NewSampleReport(clock)

	require.Equal(t, uint32(0x10000+7812), sample.Ticks)
	assert.Equal(t, uint32((0x10000+7812)*128/1000), sample.Ms)
	assert.Zero(t, sample.Us)
	assert.Zero(t, sample.Fallback16)
}
