package core

// Clock reads a Counter at width T and converts the result.
type Clock[T Ticks] struct {
	counter *Counter
	conv    Converter[T]
	read    func() T
}

// NewClock creates a clock over c. A uint16 clock reads the hardware counter
// only; a uint32 clock reads the extended counter and panics if c was not
// configured Wide.
func NewClock[T Ticks](c *Counter) *Clock[T] {
	cl := &Clock[T]{
		counter: c,
		conv:    NewConverter[T](c.Config()),
	}
	if ^T(0) == 0xFFFF {
		cl.read = func() T { return T(c.Read16()) }
	} else {
		if !c.Config().Wide {
			panic("wide clock requires a Wide counter")
		}
		cl.read = func() T { return T(c.ReadWide()) }
	}
	return cl
}

// Now returns the current tick count
func (cl *Clock[T]) Now() T {
	return cl.read()
}

// NowMs returns milliseconds since Init
func (cl *Clock[T]) NowMs() T {
	return cl.conv.ToMs(cl.read())
}

// NowUs returns microseconds since Init
func (cl *Clock[T]) NowUs() T {
	return cl.conv.ToUs(cl.read())
}

// Since returns the ticks elapsed since start. Correct across one wrap of T.
func (cl *Clock[T]) Since(start T) T {
	return cl.read() - start
}

// Converter returns the clock's converter
func (cl *Clock[T]) Converter() Converter[T] {
	return cl.conv
}

// Counter returns the underlying counter
func (cl *Clock[T]) Counter() *Counter {
	return cl.counter
}
