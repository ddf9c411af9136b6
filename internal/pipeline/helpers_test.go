package pipeline

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iiroan/formwatch/internal/avail"
	"github.com/iiroan/formwatch/internal/validate"
)

// manualClock only moves when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every timer that came due.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// pending counts timers that have neither fired nor been stopped.
func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type checkRequest struct {
	kind    validate.Kind
	value   string
	release chan validate.Result[string]
	call    *avail.Call
}

// heldChecker holds every check until the test releases it.
type heldChecker struct {
	mu       sync.Mutex
	requests []*checkRequest
}

func (c *heldChecker) CheckSync(_ context.Context, kind validate.Kind, value string) validate.Result[string] {
	return validate.Success(value)
}

func (c *heldChecker) CheckAsync(kind validate.Kind, value string) *avail.Call {
	req := &checkRequest{kind: kind, value: value, release: make(chan validate.Result[string], 1)}
	req.call = avail.Go(func(ctx context.Context) validate.Result[string] {
		select {
		case res := <-req.release:
			return res
		case <-ctx.Done():
			return validate.Failure(avail.UnverifiedReason(kind), value)
		}
	})

	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	return req.call
}

func (c *heldChecker) all() []*checkRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*checkRequest(nil), c.requests...)
}

func (c *heldChecker) last(t *testing.T) *checkRequest {
	t.Helper()
	reqs := c.all()
	require.NotEmpty(t, reqs, "no availability check issued")
	return reqs[len(reqs)-1]
}

// sinkEvent is one recorded Sink call. Kind is meaningless for submit events.
type sinkEvent struct {
	Submit  bool
	Kind    validate.Kind
	Reason  string
	Valid   bool
	Enabled bool
}

type recordingSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (s *recordingSink) FieldStatus(kind validate.Kind, reason string, valid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{Kind: kind, Reason: reason, Valid: valid})
}

func (s *recordingSink) SubmitEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, sinkEvent{Submit: true, Enabled: enabled})
}

func (s *recordingSink) snapshot() []sinkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkEvent(nil), s.events...)
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func status(kind validate.Kind, reason string, valid bool) sinkEvent {
	return sinkEvent{Kind: kind, Reason: reason, Valid: valid}
}

func submit(enabled bool) sinkEvent {
	return sinkEvent{Submit: true, Enabled: enabled}
}

// settle waits until the form goroutine has handled everything queued so far.
func settle(t *testing.T, f *Form) Snapshot {
	t.Helper()
	snap, err := f.Snapshot()
	require.NoError(t, err)
	return snap
}

// waitFor polls until cond holds; used where a result crosses a goroutine.
func waitFor(t *testing.T, f *Form, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		settle(t, f)
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
