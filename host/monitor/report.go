package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"tickrtc/core"
	"tickrtc/protocol"
)

// Report plays the firmware's part on the host: it announces the clock's
// configuration, then writes one sample frame every interval until ctx is
// done.
func Report(ctx context.Context, w io.Writer, mcu string, clock *core.Clock[uint32], interval time.Duration) error {
	out := protocol.NewScratchOutput()
	enc := protocol.NewEncoder(out)

	send := func(msg protocol.Message) error {
		out.Reset()
		enc.Encode(msg)
		if _, err := w.Write(out.Result()); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	}

	if err := send(protocol.NewConfigReport(mcu, clock.Counter().Config())); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := send(protocol.NewSampleReport(clock)); err != nil {
				return err
			}
		}
	}
}
