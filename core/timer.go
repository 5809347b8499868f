package core

// System counter used by firmware code that has no handle of its own
var systemCounter *Counter

// TimerInit creates the system counter over the registered hardware timer
// and starts it. Call once from main before any GetTime.
func TimerInit(cfg Config) *Counter {
	systemCounter = NewCounter(MustTimer(), cfg)
	systemCounter.Init()
	return systemCounter
}

// SystemCounter returns the counter created by TimerInit or panics if missing.
func SystemCounter() *Counter {
	if systemCounter == nil {
		panic("system timer not initialized")
	}
	return systemCounter
}

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return SystemCounter().ReadWide()
}

// GetUptime returns 48-bit uptime in timer ticks
func GetUptime() uint64 {
	return SystemCounter().Uptime()
}
