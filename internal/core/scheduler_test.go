package core

import (
	"testing"
	"time"
)

func TestSchedulerFiresInDeadlineThenArmOrder(t *testing.T) {
	s := NewScheduler(time.Unix(0, 0))
	var got []string
	s.After(20*time.Millisecond, func() { got = append(got, "c") })
	s.After(10*time.Millisecond, func() { got = append(got, "a") })
	s.After(10*time.Millisecond, func() { got = append(got, "b") })

	if n := s.Advance(5 * time.Millisecond); n != 0 {
		t.Fatalf("fired %d timers before deadline", n)
	}
	if n := s.Advance(20 * time.Millisecond); n != 3 {
		t.Fatalf("fired %d, want 3", n)
	}
	want := "abc"
	if g := got[0] + got[1] + got[2]; g != want {
		t.Errorf("order %q, want %q", g, want)
	}
	if !s.Now().Equal(time.Unix(0, 0).Add(25 * time.Millisecond)) {
		t.Errorf("clock at %v", s.Now())
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler(time.Unix(0, 0))
	fired := false
	tm := s.After(time.Second, func() { fired = true })
	tm.Cancel()
	tm.Cancel()
	s.Advance(2 * time.Second)
	if fired {
		t.Error("canceled timer fired")
	}
	if _, ok := s.NextDeadline(); ok {
		t.Error("NextDeadline reports a canceled timer")
	}
}

func TestSchedulerClockDuringFire(t *testing.T) {
	start := time.Unix(0, 0)
	s := NewScheduler(start)
	var at time.Time
	s.After(300*time.Millisecond, func() { at = s.Now() })
	s.Advance(time.Second)
	if want := start.Add(300 * time.Millisecond); !at.Equal(want) {
		t.Errorf("Now() inside timer = %v, want %v", at, want)
	}
}

func TestSchedulerTimerArmedDuringAdvance(t *testing.T) {
	s := NewScheduler(time.Unix(0, 0))
	count := 0
	s.After(100*time.Millisecond, func() {
		count++
		s.After(100*time.Millisecond, func() { count++ })
	})
	s.Advance(250 * time.Millisecond)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestSchedulerPostRunPending(t *testing.T) {
	s := NewScheduler(time.Unix(0, 0))
	var got []int
	s.Post(func() {
		got = append(got, 1)
		s.Post(func() { got = append(got, 3) })
	})
	s.Post(func() { got = append(got, 2) })

	if jobs, _ := s.Pending(); jobs != 2 {
		t.Fatalf("pending jobs = %d", jobs)
	}
	if n := s.RunPending(); n != 3 {
		t.Errorf("ran %d jobs, want 3", n)
	}
	for i, v := range []int{1, 2, 3} {
		if got[i] != v {
			t.Errorf("got %v", got)
			break
		}
	}
}
