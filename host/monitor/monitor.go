// Package monitor checks a stream of RTC reports: tick counts must not go
// backwards and the reported ms/us values must match the host's conversion.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"tickrtc/core"
	"tickrtc/protocol"
)

var (
	ErrBackwards = errors.New("tick count went backwards")
	ErrMismatch  = errors.New("conversion mismatch")
)

// Stats summarizes what the monitor has seen
type Stats struct {
	Samples     uint64
	Backwards   uint64
	Mismatches  uint64
	FrameErrors uint64
	Dropped     uint64
	LastTicks   uint32
}

// Monitor validates sample reports against a configuration
type Monitor struct {
	cfg     core.Config
	conv    core.Converter[uint32]
	log     zerolog.Logger
	metrics *Metrics

	last    *protocol.SampleReport
	stats   Stats
	dropped uint32
}

// New creates a monitor for cfg. metrics may be nil.
func New(cfg core.Config, log zerolog.Logger, metrics *Metrics) *Monitor {
	m := &Monitor{log: log, metrics: metrics}
	m.setConfig(cfg)
	return m
}

// Stats returns the counters so far
func (m *Monitor) Stats() Stats {
	return m.stats
}

// Config returns the configuration samples are checked against
func (m *Monitor) Config() core.Config {
	return m.cfg
}

func (m *Monitor) setConfig(cfg core.Config) {
	m.cfg = cfg.Normalized()
	m.conv = core.NewConverter[uint32](m.cfg)
	m.last = nil
}

// Handle processes one decoded message
func (m *Monitor) Handle(msg protocol.Message) error {
	switch msg := msg.(type) {
	case *protocol.ConfigReport:
		announced := msg.RTC().Normalized()
		if announced != m.cfg {
			m.log.Warn().
				Str("mcu", msg.MCU).
				Uint32("clock_hz", announced.ClockHz).
				Uint16("prescaler", uint16(announced.Prescaler)).
				Bool("wide", announced.Wide).
				Msg("firmware configuration differs from local config, using firmware values")
		} else {
			m.log.Info().Str("mcu", msg.MCU).Msg("firmware configuration matches")
		}
		m.setConfig(announced)
		return nil

	case *protocol.SampleReport:
		return m.Check(msg)
	}
	return fmt.Errorf("%w: %T", protocol.ErrUnknownMessage, msg)
}

// Check validates a sample against the previous one and the converter.
func (m *Monitor) Check(s *protocol.SampleReport) error {
	m.stats.Samples++
	m.stats.LastTicks = s.Ticks
	if m.metrics != nil {
		m.metrics.Samples.Inc()
		m.metrics.Fallbacks.WithLabelValues("16").Set(float64(s.Fallback16))
		m.metrics.Fallbacks.WithLabelValues("32").Set(float64(s.FallbackWide))
		m.metrics.UptimeMs.Set(float64(s.Ms))
	}

	var errs []error

	// Compared modulo 2^32 so the extended counter's own wrap is not flagged
	if m.last != nil && int32(s.Ticks-m.last.Ticks) < 0 {
		m.stats.Backwards++
		if m.metrics != nil {
			m.metrics.Backwards.Inc()
		}
		errs = append(errs, fmt.Errorf("%w: %d after %d", ErrBackwards, s.Ticks, m.last.Ticks))
	}

	if err := m.checkConversion(s); err != nil {
		m.stats.Mismatches++
		if m.metrics != nil {
			m.metrics.Mismatches.Inc()
		}
		errs = append(errs, err)
	}

	m.last = s
	err := errors.Join(errs...)

	ev := m.log.Debug()
	if err != nil {
		ev = m.log.Error().Err(err)
	}
	ev.Uint32("ticks", s.Ticks).
		Uint32("ms", s.Ms).
		Uint32("us", s.Us).
		Uint32("fallback16", s.Fallback16).
		Uint32("fallback32", s.FallbackWide).
		Msg("sample")
	return err
}

func (m *Monitor) checkConversion(s *protocol.SampleReport) error {
	if m.cfg.Resolutions.Has(core.ResolutionMs) {
		if want := m.conv.ToMs(s.Ticks); want != s.Ms {
			return fmt.Errorf("%w: ms=%d, host computes %d", ErrMismatch, s.Ms, want)
		}
	}
	if m.cfg.Resolutions.Has(core.ResolutionUs) {
		if want := m.conv.ToUs(s.Ticks); want != s.Us {
			return fmt.Errorf("%w: us=%d, host computes %d", ErrMismatch, s.Us, want)
		}
	}
	return nil
}

// Run decodes frames from r until ctx is done or r fails. Sample check
// failures are logged and counted, not returned. io.EOF ends the run cleanly.
func (m *Monitor) Run(ctx context.Context, r io.Reader) error {
	dec := protocol.NewDecoder()
	buf := make([]byte, 256)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, err := r.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])
			m.drain(dec)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read reports: %w", err)
		}
	}
}

func (m *Monitor) drain(dec *protocol.Decoder) {
	for {
		msg, err := dec.Next()
		if errors.Is(err, protocol.ErrNeedMore) {
			break
		}
		if err != nil {
			m.stats.FrameErrors++
			if m.metrics != nil {
				m.metrics.FrameErrors.Inc()
			}
			m.log.Warn().Err(err).Msg("frame discarded")
			continue
		}
		_ = m.Handle(msg)
	}

	if d := dec.Dropped(); d != m.dropped {
		m.stats.Dropped += uint64(d - m.dropped)
		if m.metrics != nil {
			m.metrics.Dropped.Add(float64(d - m.dropped))
		}
		m.dropped = d
	}
}
