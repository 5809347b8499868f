package main

import (
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"tickrtc/host/monitor"
	"tickrtc/host/serial"
)

func newMonitorCmd() *cobra.Command {
	var device string
	var baud int

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Check sample reports from the firmware over a serial port",
		RunE: func(cmd *cobra.Command, args []string) error {
			rtc, err := hostConfig.RTC()
			if err != nil {
				return err
			}

			sc := hostConfig.Serial()
			if device != "" {
				sc.Device = device
			}
			if baud != 0 {
				sc.Baud = baud
			}

			port, err := serial.Open(sc)
			if err != nil {
				return err
			}
			defer port.Close()
			if err := port.Flush(); err != nil {
				logger.Warn().Err(err).Msg("flush serial input")
			}

			reg := prometheus.NewRegistry()
			serveMetrics(reg)
			mon := monitor.New(rtc, logger, monitor.NewMetrics(reg))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			logger.Info().Str("device", sc.Device).Int("baud", sc.Baud).Msg("monitoring")
			err = mon.Run(ctx, port)
			logSummary(mon.Stats())
			return err
		},
	}

	cmd.Flags().StringVarP(&device, "device", "d", "", "Serial device path (overrides config)")
	cmd.Flags().IntVarP(&baud, "baud", "b", 0, "Baud rate (overrides config)")
	return cmd
}

func logSummary(stats monitor.Stats) {
	logger.Info().
		Uint64("samples", stats.Samples).
		Uint64("backwards", stats.Backwards).
		Uint64("mismatches", stats.Mismatches).
		Uint64("frame_errors", stats.FrameErrors).
		Uint64("dropped", stats.Dropped).
		Uint32("last_ticks", stats.LastTicks).
		Msg("summary")
}
