package protocol

import "tickrtc/core"

// NewConfigReport describes cfg for the host
func NewConfigReport(mcu string, cfg core.Config) *ConfigReport {
	return &ConfigReport{
		MCU:         mcu,
		ClockHz:     cfg.ClockHz,
		Prescaler:   uint32(cfg.Prescaler),
		Resolutions: uint32(cfg.Resolutions),
		Wide:        cfg.Wide,
	}
}

// RTC returns the configuration the firmware announced
func (m *ConfigReport) RTC() core.Config {
	return core.Config{
		ClockHz:     m.ClockHz,
		Prescaler:   core.Prescaler(m.Prescaler),
		Resolutions: core.Resolution(m.Resolutions),
		Wide:        m.Wide,
	}
}

// NewSampleReport reads clock once and converts the reading to every
// enabled resolution
func NewSampleReport(clock *core.Clock[uint32]) *SampleReport {
	counter := clock.Counter()
	cfg := counter.Config()
	conv := clock.Converter()

	ticks := clock.Now()
	sample := &SampleReport{Ticks: ticks}
	if cfg.Resolutions.Has(core.ResolutionMs) {
		sample.Ms = conv.ToMs(ticks)
	}
	if cfg.Resolutions.Has(core.ResolutionUs) {
		sample.Us = conv.ToUs(ticks)
	}

	stats := counter.Stats()
	sample.Fallback16 = stats.Fallback16
	sample.FallbackWide = stats.FallbackWide
	return sample
}
