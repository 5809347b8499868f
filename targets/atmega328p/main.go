//go:build atmega328p

package main

import (
	"machine"

	"tickrtc/core"
	"tickrtc/protocol"
)

var (
	output  *protocol.ScratchOutput
	encoder *protocol.Encoder
)

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: baudRate})

	// Debug text shares the report UART, so it stays off unless enabled
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})

	core.SetHardwareTimer(Timer1{})
	counter := core.TimerInit(rtcConfig())
	clock := core.NewClock[uint32](counter)
	cfg := counter.Config()

	output = protocol.NewScratchOutput()
	encoder = protocol.NewEncoder(output)

	send(protocol.NewConfigReport(mcuName, cfg))

	interval := cfg.TickHz() / reportsPerSec
	conv := clock.Converter()
	var fallbacks uint32

	sched := core.NewScheduler(clock)
	sched.Schedule(&core.Task{
		WakeTime: clock.Now() + interval,
		Handler: func(t *core.Task) uint8 {
			t.WakeTime += interval

			sample := protocol.NewSampleReport(clock)
			core.RecordEvent(core.EvtReport, sample.Ticks, sample.Ms)
			core.DebugPrintln(core.FormatTicks(conv, sample.Ticks))
			if n := sample.Fallback16 + sample.FallbackWide; n != fallbacks && core.IsDebugEnabled() {
				fallbacks = n
				core.DumpEvents()
			}
			send(sample)
			return core.SF_RESCHEDULE
		},
	})

	for {
		sched.Dispatch()
	}
}

func send(msg protocol.Message) {
	output.Reset()
	encoder.Encode(msg)
	machine.Serial.Write(output.Result())
}
