//go:build atmega328p

package main

import "tickrtc/core"

// Build-time RTC configuration
const (
	rtcPrescaler   = core.Prescale1024
	rtcResolutions = core.ResolutionAll
	rtcWide        = true

	baudRate      = 57600
	reportsPerSec = 4
	mcuName       = "atmega328p"
)

func rtcConfig() core.Config {
	return core.Config{
		ClockHz:     cpuFrequency(),
		Prescaler:   rtcPrescaler,
		Resolutions: rtcResolutions,
		Wide:        rtcWide,
	}
}
