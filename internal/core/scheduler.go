package core

import (
	"container/heap"
	"sync"
	"time"
)

// Scheduler is the single timer source and deferred-job queue of a System.
//
// Time is virtual: it only moves when Advance is called, so whoever drives
// the scheduler (a tick loop, a test) decides how fast it runs. Timers and
// jobs always execute on the goroutine calling Advance/RunPending.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers timerQueue
	jobs   []func()
}

// NewScheduler creates a scheduler whose clock starts at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Timer is a handle to a scheduled callback.
type Timer struct {
	at       time.Time
	seq      uint64
	index    int
	canceled bool
	fire     func()
}

// Cancel prevents the timer from firing. Safe to call more than once.
func (t *Timer) Cancel() {
	if t != nil {
		t.canceled = true
	}
}

// After arms fire to run once d has elapsed on the virtual clock.
func (s *Scheduler) After(d time.Duration, fire func()) *Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &Timer{at: s.now.Add(d), seq: s.seq, fire: fire}
	heap.Push(&s.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due timers in (fire-at, arm
// order) order. Timers armed while firing are honored if they fall inside
// the window. Returns the number of timers fired.
func (s *Scheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	deadline := s.now.Add(d)
	s.mu.Unlock()

	fired := 0
	for {
		s.mu.Lock()
		if len(s.timers) == 0 || s.timers[0].at.After(deadline) {
			s.now = deadline
			s.mu.Unlock()
			return fired
		}
		t := heap.Pop(&s.timers).(*Timer)
		if t.at.After(s.now) {
			s.now = t.at
		}
		s.mu.Unlock()

		if t.canceled {
			continue
		}
		t.fire()
		fired++
	}
}

// NextDeadline returns the fire time of the earliest live timer.
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.timers) > 0 && s.timers[0].canceled {
		heap.Pop(&s.timers)
	}
	if len(s.timers) == 0 {
		return time.Time{}, false
	}
	return s.timers[0].at, true
}

// Post queues a job for the next RunPending. Safe from any goroutine.
func (s *Scheduler) Post(job func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// RunPending runs queued jobs, including jobs posted by those jobs, until the
// queue is empty. Returns the number of jobs run.
func (s *Scheduler) RunPending() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.jobs) == 0 {
			s.mu.Unlock()
			return ran
		}
		job := s.jobs[0]
		s.jobs = s.jobs[1:]
		s.mu.Unlock()

		job()
		ran++
	}
}

// Pending reports queued jobs and live timers.
func (s *Scheduler) Pending() (jobs, timers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		if !t.canceled {
			timers++
		}
	}
	return len(s.jobs), timers
}

type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
