package arena

import "time"

// Scheduler runs delayed and periodic callbacks on the loop goroutine. Time
// only moves when the owner calls Advance, so tests drive it directly.
type Scheduler struct {
	now    time.Duration
	nextID uint64
	timers []*Timer
}

// Timer is a pending callback. Stop cancels it.
type Timer struct {
	id      uint64
	due     time.Duration
	period  time.Duration
	fn      func()
	stopped bool
}

// NewScheduler returns an empty scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the scheduler's clock.
func (s *Scheduler) Now() time.Duration { return s.now }

// After runs fn once, d after the current time.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	return s.add(d, 0, fn)
}

// minPeriod is the shortest period Every accepts.
const minPeriod = time.Millisecond

// Every runs fn every period, starting one period from now. Periods below
// minPeriod are raised to it.
func (s *Scheduler) Every(period time.Duration, fn func()) *Timer {
	if period < minPeriod {
		period = minPeriod
	}
	return s.add(period, period, fn)
}

func (s *Scheduler) add(d, period time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	s.nextID++
	t := &Timer{id: s.nextID, due: s.now + d, period: period, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Stop cancels the timer. Safe to call more than once and on nil.
func (t *Timer) Stop() {
	if t != nil {
		t.stopped = true
	}
}

// Active reports whether the timer can still fire.
func (t *Timer) Active() bool {
	return t != nil && !t.stopped
}

// Pending returns the number of live timers.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by dt, firing every timer that comes due
// in order of due time, ties in creation order. Callbacks may schedule or
// stop timers; new timers due within the window fire in the same call.
func (s *Scheduler) Advance(dt time.Duration) {
	target := s.now + dt
	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		s.now = t.due
		if t.period > 0 {
			t.due += t.period
		} else {
			t.stopped = true
		}
		t.fn()
	}
	s.now = target
	s.compact()
}

func (s *Scheduler) nextDue(target time.Duration) *Timer {
	var best *Timer
	for _, t := range s.timers {
		if t.stopped || t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.id < best.id) {
			best = t
		}
	}
	return best
}

func (s *Scheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live
}
