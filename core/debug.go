package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures an RTC event for post-mortem analysis
type Event struct {
	Type   uint8  // Event type code
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event type codes
const (
	EvtInit         = 1 // Counter started (prescaler, clock)
	EvtFallback16   = 2 // Read16 fell back to a masked read (ticks)
	EvtFallbackWide = 3 // ReadWide fell back to a masked read (overflows, low)
	EvtReport       = 4 // Sample reported to the host (ticks, ms)
)

const (
	EventRingSize = 16 // Keep last 16 events
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event ring buffer, written from the main context only
	eventRing     [EventRingSize]Event
	eventRingHead uint8
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent stores an event in the ring buffer. Never blocks.
// Must not be called from an interrupt handler.
func RecordEvent(eventType uint8, value1, value2 uint32) {
	idx := eventRingHead
	eventRing[idx] = Event{
		Type:   eventType,
		Value1: value1,
		Value2: value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events, oldest first
func Events() []Event {
	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Type == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// DumpEvents writes the ring buffer through the debug writer
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[RTC] === Event Dump ===")
	for _, evt := range Events() {
		var name string
		switch evt.Type {
		case EvtInit:
			name = "INIT"
		case EvtFallback16:
			name = "FALLBACK16"
		case EvtFallbackWide:
			name = "FALLBACK32"
		case EvtReport:
			name = "REPORT"
		default:
			name = "UNKNOWN"
		}
		debugPrintln("[RTC] " + name +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[RTC] === End Dump ===")
}

// ClearEvents clears the ring buffer
func ClearEvents() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
