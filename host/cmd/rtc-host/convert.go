package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tickrtc/core"
)

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <ticks>...",
		Short: "Convert tick counts to milliseconds and microseconds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rtc, err := hostConfig.RTC()
			if err != nil {
				return err
			}
			cv := core.NewConverter[uint32](rtc)

			out := cmd.OutOrStdout()
			for _, arg := range args {
				ticks, err := strconv.ParseUint(arg, 0, 32)
				if err != nil {
					return fmt.Errorf("invalid tick count %q: %w", arg, err)
				}
				fmt.Fprintln(out, core.FormatTicks(cv, uint32(ticks)))
			}
			return nil
		},
	}
}
