package core

// Ticks is the system-wide tick width: uint16 for a bare hardware counter,
// uint32 for the overflow-extended counter.
type Ticks interface {
	~uint16 | ~uint32
}

// Converter turns raw ticks into milliseconds and microseconds.
//
// Clocks of exactly 1, 2, 4 or 8 MHz whose MHz value divides the prescaler
// multiply by a precomputed microseconds-per-tick quotient. Every other clock
// divides by the full frequency. Both paths widen to uint64 before
// multiplying and truncate toward zero. Results are truncated to T.
type Converter[T Ticks] struct {
	clockHz   uint64
	prescaler uint64
	quotient  uint64 // microseconds per tick on the exact path
	exact     bool
}

// NewConverter precomputes the arithmetic strategy for cfg.
func NewConverter[T Ticks](cfg Config) Converter[T] {
	cfg = cfg.Normalized()
	cv := Converter[T]{
		clockHz:   uint64(cfg.ClockHz),
		prescaler: uint64(cfg.Prescaler),
	}
	switch cfg.ClockHz {
	case 1000000, 2000000, 4000000, 8000000:
		mhz := uint64(cfg.ClockHz / 1000000)
		// prescaler 1 at 2 MHz would give a zero quotient
		if cv.prescaler%mhz == 0 {
			cv.quotient = cv.prescaler / mhz
			cv.exact = true
		}
	}
	return cv
}

// Exact reports whether the exact-MHz path is in use
func (cv Converter[T]) Exact() bool {
	return cv.exact
}

// ToMs converts ticks to milliseconds
func (cv Converter[T]) ToMs(ticks T) T {
	v := uint64(ticks)
	if cv.exact {
		return T(v * cv.quotient / 1000)
	}
	return T(v * 1000 * cv.prescaler / cv.clockHz)
}

// ToUs converts ticks to microseconds
func (cv Converter[T]) ToUs(ticks T) T {
	v := uint64(ticks)
	if cv.exact {
		return T(v * cv.quotient)
	}
	return T(v * 1000 * cv.prescaler / (cv.clockHz / 1000))
}

// TicksToMs converts ticks to milliseconds under cfg
func TicksToMs[T Ticks](cfg Config, ticks T) T {
	return NewConverter[T](cfg).ToMs(ticks)
}

// TicksToUs converts ticks to microseconds under cfg
func TicksToUs[T Ticks](cfg Config, ticks T) T {
	return NewConverter[T](cfg).ToUs(ticks)
}
