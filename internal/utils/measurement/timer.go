package measurement

import "time"

// Timer measures one run of a point. A nil timer is valid and measures nothing,
// the service hands out nil timers while measuring is inactive.
type Timer struct {
	point   *Point
	start   time.Time
	elapsed time.Duration
	done    bool
}

func newTimer(p *Point) *Timer {
	p.enter()
	return &Timer{point: p, start: time.Now()}
}

// Stop ends the run and records its duration. Only the first Stop or Fail counts.
func (t *Timer) Stop() time.Duration {
	if t == nil || t.done {
		return t.Elapsed()
	}
	t.done = true
	t.elapsed = time.Since(t.start)
	t.point.leave(t.elapsed, false)
	return t.elapsed
}

// Fail ends the run as failed, the duration is not part of the timings
func (t *Timer) Fail() {
	if t == nil || t.done {
		return
	}
	t.done = true
	t.elapsed = time.Since(t.start)
	t.point.leave(t.elapsed, true)
}

// Running true until the timer is stopped
func (t *Timer) Running() bool {
	return t != nil && !t.done
}

func (t *Timer) Elapsed() time.Duration {
	if t == nil {
		return 0
	}
	if !t.done {
		return time.Since(t.start)
	}
	return t.elapsed
}
