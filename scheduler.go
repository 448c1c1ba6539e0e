package room

import (
	"sort"
	"time"
)

// Scheduler runs deferred continuations on the frame loop. It has no
// goroutines: callbacks only ever run from Advance.
type Scheduler struct {
	now     time.Duration
	seq     uint64
	pending []task
}

type task struct {
	due time.Duration
	seq uint64
	fn  func()
}

// NewScheduler returns an idle scheduler at time zero
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now is the scheduler clock, the sum of every Advance
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending is the number of queued callbacks
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// After queues fn to run once `d` of frame time has passed. A zero delay
// runs on the next Advance.
func (s *Scheduler) After(d time.Duration, fn func()) {
	s.seq++
	s.pending = append(s.pending, task{due: s.now + d, seq: s.seq, fn: fn})
}

// Advance moves the clock forward by dt and runs everything now due, in
// due time then scheduling order. Callbacks queued while running with a
// zero delay wait for the next Advance. Returns the number of callbacks run.
func (s *Scheduler) Advance(dt time.Duration) int {
	s.now += dt

	due := []task{}
	keep := s.pending[:0]
	for _, t := range s.pending {
		if t.due <= s.now {
			due = append(due, t)
		} else {
			keep = append(keep, t)
		}
	}
	s.pending = keep

	sort.Slice(due, func(i, j int) bool {
		if due[i].due == due[j].due {
			return due[i].seq < due[j].seq
		}
		return due[i].due < due[j].due
	})

	for _, t := range due {
		t.fn()
	}
	return len(due)
}
