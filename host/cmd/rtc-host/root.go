package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tickrtc/host/config"
)

// GlobalFlags are shared by every command
type GlobalFlags struct {
	ConfigPath  string
	Verbose     bool
	MetricsAddr string
}

var (
	globalFlags GlobalFlags
	hostConfig  *config.Config
	logger      zerolog.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rtc-host",
		Short: "Host tools for the overflow-extended RTC firmware",
		Long: `rtc-host reads RTC sample reports from the firmware over a serial port,
or from a simulated timer, and checks that tick counts never go backwards
and that millisecond and microsecond values match the host's conversion.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if globalFlags.Verbose {
				level = zerolog.DebugLevel
			}
			logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.TimeOnly}).
				Level(level).
				With().Timestamp().Logger()

			var err error
			hostConfig, err = config.LoadFile(globalFlags.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "JSON configuration file (default: built-in 8 MHz / 1024)")
	root.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Log every sample")
	root.PersistentFlags().StringVar(&globalFlags.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	root.AddCommand(newMonitorCmd(), newSimulateCmd(), newConvertCmd())
	return root
}

// Execute runs the root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// serveMetrics starts the metrics endpoint when --metrics-addr is set
func serveMetrics(reg *prometheus.Registry) {
	if globalFlags.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              globalFlags.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", globalFlags.MetricsAddr).Msg("metrics server stopped")
		}
	}()
	logger.Info().Str("addr", globalFlags.MetricsAddr).Msg("serving metrics")
}
