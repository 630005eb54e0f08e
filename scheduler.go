package evergreen

import "time"

// Task is a handle to a repeating scheduled callback.
type Task interface {
	// Cancel stops future runs. It is safe to call more than once.
	Cancel()
}

// Scheduler runs callbacks periodically on the caller's logical thread.
type Scheduler interface {
	Every(period time.Duration, fn func()) Task
}

type frameTask struct {
	period    time.Duration
	accum     time.Duration
	fn        func()
	cancelled bool
}

func (t *frameTask) Cancel() {
	t.cancelled = true
}

// FrameScheduler is a Scheduler driven by frame time. Callbacks run inside
// Advance, so they never interleave with other scene mutation.
type FrameScheduler struct {
	tasks []*frameTask
}

// NewFrameScheduler creates an empty scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

// Every schedules fn to run once per elapsed period. The first run happens
// one full period after scheduling.
func (s *FrameScheduler) Every(period time.Duration, fn func()) Task {
	if period <= 0 {
		panic("evergreen: scheduler period must be positive")
	}
	t := &frameTask{period: period, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// Advance moves the clock forward by dt and runs every callback that came
// due, catching up on multiple periods if dt is large. Tasks scheduled from
// inside a callback start accumulating on the next Advance.
func (s *FrameScheduler) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	n := len(s.tasks)
	for i := 0; i < n; i++ {
		t := s.tasks[i]
		if t.cancelled {
			continue
		}
		t.accum += dt
		for t.accum >= t.period && !t.cancelled {
			t.accum -= t.period
			t.fn()
		}
	}

	// Compact out cancelled tasks, preserving order.
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
}

// Len returns the number of live tasks.
func (s *FrameScheduler) Len() int {
	c := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			c++
		}
	}
	return c
}
