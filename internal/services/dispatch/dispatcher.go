// Package dispatch collapses bursts of ticker selections into one dispatch.
package dispatch

import (
	"strings"
	"sync"
	"time"
)

// DefaultWindow is the quiescence period a selection must survive.
const DefaultWindow = 300 * time.Millisecond

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. Tests inject a manual scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Dispatcher delivers the last ticker of a burst once no new trigger has
// arrived for the window. Each trigger takes a fresh token; a timer whose
// token is no longer current does nothing when it fires.
type Dispatcher struct {
	mu        sync.Mutex
	window    time.Duration
	sched     Scheduler
	fn        func(ticker string)
	seq       uint64
	timer     Timer
	pending   string
	has       bool
	stopped   bool
	lastFired time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithScheduler replaces the timer source.
func WithScheduler(s Scheduler) Option {
	return func(d *Dispatcher) {
		d.sched = s
	}
}

// New creates a dispatcher that calls fn with the surviving ticker.
func New(window time.Duration, fn func(ticker string), opts ...Option) *Dispatcher {
	if window <= 0 {
		window = DefaultWindow
	}
	d := &Dispatcher{
		window: window,
		sched:  realScheduler{},
		fn:     fn,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger records a selection and restarts the quiescence timer. The "$"
// sigil is stripped; blank selections are ignored.
func (d *Dispatcher) Trigger(ticker string) {
	ticker = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ticker), "$"))
	if ticker == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.seq++
	token := d.seq
	d.pending = ticker
	d.has = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.sched.AfterFunc(d.window, func() { d.fire(token) })
}

func (d *Dispatcher) fire(token uint64) {
	d.mu.Lock()
	if token != d.seq || d.stopped || !d.has {
		d.mu.Unlock()
		return
	}
	ticker := d.take()
	d.mu.Unlock()

	d.fn(ticker)
}

// take clears the pending selection. Callers hold mu.
func (d *Dispatcher) take() string {
	ticker := d.pending
	d.pending = ""
	d.has = false
	d.timer = nil
	d.lastFired = time.Now()
	return ticker
}

// Flush dispatches the pending selection immediately. It reports whether
// there was one.
func (d *Dispatcher) Flush() bool {
	d.mu.Lock()
	if d.stopped || !d.has {
		d.mu.Unlock()
		return false
	}
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
	ticker := d.take()
	d.mu.Unlock()

	d.fn(ticker)
	return true
}

// Pending returns the selection waiting for its window, if any.
func (d *Dispatcher) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.has
}

// LastFired returns when the last dispatch happened, zero if never.
func (d *Dispatcher) LastFired() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastFired
}

// Stop drops any pending selection and ignores later triggers.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.seq++
	d.has = false
	d.pending = ""
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
