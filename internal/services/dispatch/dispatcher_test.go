package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler records scheduled callbacks; tests fire them explicitly.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

// fireAll runs every scheduled callback, including stopped ones, the way a
// timer that lost the race with Stop would.
func (s *manualScheduler) fireAll() {
	s.mu.Lock()
	timers := append([]*manualTimer(nil), s.timers...)
	s.mu.Unlock()
	for _, t := range timers {
		t.f()
	}
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) fn(ticker string) {
	r.mu.Lock()
	r.calls = append(r.calls, ticker)
	r.mu.Unlock()
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestTrigger_BurstCollapsesToLast(t *testing.T) {
	sched := &manualScheduler{}
	rec := &recorder{}
	d := New(300*time.Millisecond, rec.fn, WithScheduler(sched))

	d.Trigger("AAPL")
	d.Trigger("TSLA")
	d.Trigger("NVDA")
	sched.fireAll()

	assert.Equal(t, []string{"NVDA"}, rec.got())
	_, pending := d.Pending()
	assert.False(t, pending)
	assert.False(t, d.LastFired().IsZero())
}

func TestTrigger_StripsSigil(t *testing.T) {
	sched := &manualScheduler{}
	rec := &recorder{}
	d := New(0, rec.fn, WithScheduler(sched))

	d.Trigger("$TSLA")
	ticker, ok := d.Pending()
	require.True(t, ok)
	assert.Equal(t, "TSLA", ticker)

	sched.fireAll()
	assert.Equal(t, []string{"TSLA"}, rec.got())
}

func TestTrigger_IgnoresBlank(t *testing.T) {
	sched := &manualScheduler{}
	rec := &recorder{}
	d := New(0, rec.fn, WithScheduler(sched))

	d.Trigger("  ")
	d.Trigger("$")
	assert.Empty(t, sched.timers)
}

func TestFlush_DispatchesImmediatelyAndCancelsTimer(t *testing.T) {
	sched := &manualScheduler{}
	rec := &recorder{}
	d := New(time.Hour, rec.fn, WithScheduler(sched))

	assert.False(t, d.Flush())

	d.Trigger("AMD")
	assert.True(t, d.Flush())
	sched.fireAll()

	assert.Equal(t, []string{"AMD"}, rec.got())
}

func TestStop_DropsPendingAndLaterTriggers(t *testing.T) {
	sched := &manualScheduler{}
	rec := &recorder{}
	d := New(0, rec.fn, WithScheduler(sched))

	d.Trigger("AAPL")
	d.Stop()
	d.Trigger("TSLA")
	sched.fireAll()

	assert.Empty(t, rec.got())
	assert.False(t, d.Flush())
}

func TestSeparateBurstsDispatchSeparately(t *testing.T) {
	sched := &manualScheduler{}
	rec := &recorder{}
	d := New(0, rec.fn, WithScheduler(sched))

	d.Trigger("AAPL")
	sched.fireAll()
	d.Trigger("TSLA")
	sched.fireAll()

	assert.Equal(t, []string{"AAPL", "TSLA"}, rec.got())
}

func TestRealScheduler_FiresOnceAfterQuiet(t *testing.T) {
	done := make(chan string, 4)
	d := New(20*time.Millisecond, func(ticker string) { done <- ticker })

	d.Trigger("AAPL")
	d.Trigger("TSLA")
	d.Trigger("NVDA")

	select {
	case got := <-done:
		assert.Equal(t, "NVDA", got)
	case <-time.After(time.Second):
		t.Fatal("dispatch never fired")
	}

	select {
	case extra := <-done:
		t.Fatalf("unexpected second dispatch %q", extra)
	case <-time.After(60 * time.Millisecond):
	}
}
