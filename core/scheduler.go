package core

// Task is a callback due at a wide tick deadline
type Task struct {
	WakeTime uint32
	Handler  func(*Task) uint8
	next     *Task
}

// Handler results
const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler runs tasks from the main loop once a Clock reaches their
// WakeTime. Deadlines compare by signed distance, so they stay ordered
// across the 32-bit wrap as long as no task is more than 2^31 ticks away.
type Scheduler struct {
	clock *Clock[uint32]
	list  *Task
}

// NewScheduler creates a Scheduler driven by clock
func NewScheduler(clock *Clock[uint32]) *Scheduler {
	return &Scheduler{clock: clock}
}

// Schedule adds t in deadline order
func (s *Scheduler) Schedule(t *Task) {
	if s.list == nil || before(t.WakeTime, s.list.WakeTime) {
		t.next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.next != nil && !before(t.WakeTime, current.next.WakeTime) {
		current = current.next
	}
	t.next = current.next
	current.next = t
}

// Pending reports whether any task is scheduled
func (s *Scheduler) Pending() bool {
	return s.list != nil
}

// Dispatch runs every task whose deadline has passed and returns how many ran.
// A handler returning SF_RESCHEDULE must have moved its WakeTime forward.
func (s *Scheduler) Dispatch() int {
	now := s.clock.Now()
	ran := 0
	for s.list != nil && !before(now, s.list.WakeTime) {
		t := s.list
		s.list = t.next
		t.next = nil

		ran++
		if t.Handler(t) == SF_RESCHEDULE {
			s.Schedule(t)
		}
	}
	return ran
}

func before(a, b uint32) bool {
	return int32(a-b) < 0
}
