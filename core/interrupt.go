package core

// InterruptState is the saved interrupt enable state returned by Disable
type InterruptState uintptr

// InterruptMask suppresses asynchronous handlers for a short critical section.
// Disable and Restore nest.
type InterruptMask interface {
	Disable() InterruptState
	Restore(state InterruptState)
}

// cpuInterrupts masks interrupts on the running CPU
type cpuInterrupts struct{}

func (cpuInterrupts) Disable() InterruptState {
	return disableInterrupts()
}

func (cpuInterrupts) Restore(state InterruptState) {
	restoreInterrupts(state)
}

// CPUInterrupts returns the mask backed by the processor's global interrupt flag
func CPUInterrupts() InterruptMask {
	return cpuInterrupts{}
}
