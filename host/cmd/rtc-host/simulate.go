package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tickrtc/core"
	"tickrtc/host/monitor"
	"tickrtc/sim"
)

const simMCU = "sim"

type simulateFlags struct {
	duration time.Duration
	step     time.Duration
	interval time.Duration
}

func newSimulateCmd() *cobra.Command {
	var flags simulateFlags

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the RTC against a simulated timer and check its reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			rtc, err := hostConfig.RTC()
			if err != nil {
				return err
			}
			if !rtc.Wide {
				return fmt.Errorf("simulate needs a wide clock, config has wide=false")
			}

			reg := prometheus.NewRegistry()
			serveMetrics(reg)
			mon := monitor.New(rtc, logger, monitor.NewMetrics(reg))

			err = simulate(cmd.Context(), rtc, mon, flags)
			logSummary(mon.Stats())
			return err
		},
	}

	cmd.Flags().DurationVar(&flags.duration, "duration", 5*time.Second, "How long to run")
	cmd.Flags().DurationVar(&flags.step, "step", time.Millisecond, "Timer advance interval")
	cmd.Flags().DurationVar(&flags.interval, "interval", 250*time.Millisecond, "Report interval")
	return cmd
}

// simulate wires a simulated timer, the reporting loop and the monitor
// together through a pipe until the duration elapses.
func simulate(ctx context.Context, rtc core.Config, mon *monitor.Monitor, flags simulateFlags) error {
	tm := sim.New(rtc.ClockHz)
	counter := core.NewCounterWithMask(tm, tm, rtc)
	counter.Init()
	clock := core.NewClock[uint32](counter)

	ctx, cancel := context.WithTimeout(ctx, flags.duration)
	defer cancel()

	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tm.Run(gctx, flags.step)
	})
	g.Go(func() error {
		defer pw.Close()
		return monitor.Report(gctx, pw, simMCU, clock, flags.interval)
	})
	g.Go(func() error {
		return mon.Run(context.Background(), pr)
	})

	logger.Info().
		Uint32("clock_hz", rtc.ClockHz).
		Uint16("prescaler", uint16(rtc.Prescaler)).
		Dur("duration", flags.duration).
		Msg("simulating")

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info().
		Uint64("wraps", tm.Wraps()).
		Uint32("fallback16", counter.Stats().Fallback16).
		Uint32("fallback_wide", counter.Stats().FallbackWide).
		Msg("timer")

	if s := mon.Stats(); s.Backwards != 0 || s.Mismatches != 0 {
		return fmt.Errorf("%d backwards samples, %d conversion mismatches", s.Backwards, s.Mismatches)
	}
	return nil
}
