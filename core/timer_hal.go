package core

// HardwareTimer is the abstract 16-bit free-running counter that core code
// uses. Platform-specific implementations handle the actual registers.
type HardwareTimer interface {
	// Start selects the prescaler and lets the counter run
	Start(p Prescaler)

	// ReadHigh returns the live high byte of the counter
	ReadHigh() uint8

	// ReadLow returns the live low byte of the counter
	ReadLow() uint8

	// ReadLatched returns both bytes from a single access.
	// Only valid while interrupts are disabled.
	ReadLatched() uint16

	// OverflowPending reports a wrap whose handler has not run yet
	OverflowPending() bool

	// EnableOverflow registers handler and unmasks the overflow interrupt.
	// handler runs in interrupt context once per wrap.
	EnableOverflow(handler func())
}

// Global singleton used by firmware code.
var hardwareTimer HardwareTimer

// SetHardwareTimer is called by target-specific code to register its timer.
func SetHardwareTimer(t HardwareTimer) {
	hardwareTimer = t
}

// MustTimer returns the configured timer or panics if missing.
func MustTimer() HardwareTimer {
	if hardwareTimer == nil {
		panic("hardware timer not configured")
	}
	return hardwareTimer
}
