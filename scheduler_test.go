package evergreen

import (
	"testing"
	"time"
)

func TestFrameSchedulerFiresPerPeriod(t *testing.T) {
	s := NewFrameScheduler()
	n := 0
	s.Every(70*time.Millisecond, func() { n++ })

	s.Advance(69 * time.Millisecond)
	if n != 0 {
		t.Fatalf("fired early: n = %d", n)
	}
	s.Advance(time.Millisecond)
	if n != 1 {
		t.Fatalf("n = %d after one period, want 1", n)
	}
	// A long frame catches up on every missed period.
	s.Advance(350 * time.Millisecond)
	if n != 6 {
		t.Errorf("n = %d after catch-up, want 6", n)
	}
}

func TestFrameSchedulerCancel(t *testing.T) {
	s := NewFrameScheduler()
	n := 0
	task := s.Every(10*time.Millisecond, func() { n++ })
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	task.Cancel()
	task.Cancel()
	if s.Len() != 0 {
		t.Errorf("Len after cancel = %d, want 0", s.Len())
	}
	s.Advance(time.Second)
	if n != 0 {
		t.Errorf("cancelled task ran %d times", n)
	}
}

func TestFrameSchedulerCancelInsideCallback(t *testing.T) {
	s := NewFrameScheduler()
	n := 0
	var task Task
	task = s.Every(10*time.Millisecond, func() {
		n++
		task.Cancel()
	})
	s.Advance(100 * time.Millisecond)
	if n != 1 {
		t.Errorf("n = %d, want 1: catch-up must stop once cancelled", n)
	}
}

func TestFrameSchedulerAddInsideCallback(t *testing.T) {
	s := NewFrameScheduler()
	inner := 0
	added := false
	s.Every(10*time.Millisecond, func() {
		if !added {
			added = true
			s.Every(10*time.Millisecond, func() { inner++ })
		}
	})
	s.Advance(10 * time.Millisecond)
	if inner != 0 {
		t.Fatalf("task added in a callback ran in the same Advance")
	}
	s.Advance(10 * time.Millisecond)
	if inner != 1 {
		t.Errorf("inner = %d, want 1", inner)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestFrameSchedulerInvalidPeriodPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero period")
		}
	}()
	NewFrameScheduler().Every(0, func() {})
}
