package pipeline

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiroan/formwatch/internal/validate"
)

type stageHarness struct {
	clock *manualClock
	env   *env

	mu        sync.Mutex
	events    []event
	published []validate.Result[string]
}

func newStageHarness() *stageHarness {
	h := &stageHarness{clock: newManualClock()}
	h.env = &env{
		clock: h.clock,
		push: func(ev event) bool {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, ev)
			return true
		},
		publish: func(_ validate.Kind, res validate.Result[string]) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.published = append(h.published, res)
		},
		logger: log.New(io.Discard),
	}
	return h
}

func (h *stageHarness) fires() []fireEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []fireEvent
	for _, ev := range h.events {
		if fe, ok := ev.(fireEvent); ok {
			out = append(out, fe)
		}
	}
	return out
}

func (h *stageHarness) lastFire(t *testing.T) fireEvent {
	t.Helper()
	fires := h.fires()
	require.NotEmpty(t, fires, "debounce timer never fired")
	return fires[len(fires)-1]
}

func (h *stageHarness) results() []validate.Result[string] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]validate.Result[string](nil), h.published...)
}

func TestDebounceCoalescesBurst(t *testing.T) {
	h := newStageHarness()
	chk := &heldChecker{}
	f := newField(validate.Username, DefaultDebounce, chk, h.env)
	t.Cleanup(f.shutdown)

	f.edit("a")
	h.clock.Advance(100 * time.Millisecond)
	f.edit("ab")
	h.clock.Advance(100 * time.Millisecond)
	f.edit("abc")

	h.clock.Advance(799 * time.Millisecond)
	assert.Empty(t, h.fires(), "nothing may fire before 800ms of quiet")

	h.clock.Advance(time.Millisecond)
	fires := h.fires()
	require.Len(t, fires, 1)
	f.fire(fires[0].seq)

	reqs := chk.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "abc", reqs[0].value)
	assert.Equal(t, StateRemoteChecking, f.state)
}

func TestFieldSyntaxFailureSkipsRemote(t *testing.T) {
	h := newStageHarness()
	chk := &heldChecker{}
	f := newField(validate.Email, DefaultDebounce, chk, h.env)

	f.edit("not-an-email")
	h.clock.Advance(DefaultDebounce)
	f.fire(h.lastFire(t).seq)

	assert.Empty(t, chk.all())
	assert.Equal(t, StateSyntaxFailed, f.state)
	assert.Equal(t, []validate.Result[string]{
		validate.Failure(validate.ReasonEmailFormat, "not-an-email"),
	}, h.results())
}

func TestFieldDiscardsStaleGeneration(t *testing.T) {
	h := newStageHarness()
	chk := &heldChecker{}
	f := newField(validate.Username, DefaultDebounce, chk, h.env)
	t.Cleanup(f.shutdown)

	f.edit("alice")
	h.clock.Advance(DefaultDebounce)
	f.fire(h.lastFire(t).seq)
	require.Equal(t, StateRemoteChecking, f.state)
	first := chk.last(t)
	firstGen := f.gen
	assert.Equal(t, "alice", first.value)

	// the edit cancels the in-flight call right away, before any debounce
	f.edit("alice2")
	assert.Equal(t, StateDebouncing, f.state)
	assert.Greater(t, f.gen, firstGen)
	select {
	case <-first.call.Canceled():
	default:
		t.Fatal("in-flight call not canceled by edit")
	}

	// a result for the old generation that slipped through must not land
	f.resolve(firstGen, validate.Success("alice"), h.clock.Now())
	assert.Empty(t, h.results())
	assert.Equal(t, StateDebouncing, f.state)

	h.clock.Advance(DefaultDebounce)
	f.fire(h.lastFire(t).seq)
	second := chk.last(t)
	assert.Equal(t, "alice2", second.value)

	taken := validate.Failure("Username is already taken", "alice2")
	second.release <- taken
	f.resolve(f.gen, taken, h.clock.Now())
	assert.Equal(t, []validate.Result[string]{taken}, h.results())
	assert.Equal(t, StateResolved, f.state)

	// the same generation cannot resolve twice
	f.resolve(f.gen, validate.Success("alice2"), h.clock.Now())
	assert.Len(t, h.results(), 1)
}

func TestFieldIgnoresSupersededTimer(t *testing.T) {
	h := newStageHarness()
	f := newSimpleField(validate.Phone, DefaultDebounce, h.env)

	f.edit("98765")
	h.clock.Advance(DefaultDebounce)
	stale := h.lastFire(t)

	// a newer edit is handled before the queued firing
	f.edit("9876543210")
	f.fire(stale.seq)
	assert.Empty(t, h.results())

	h.clock.Advance(DefaultDebounce)
	f.fire(h.lastFire(t).seq)
	assert.Equal(t, []validate.Result[string]{validate.Success("9876543210")}, h.results())
	assert.Equal(t, StateResolved, f.state)
}

func TestShutdownMakesStageInert(t *testing.T) {
	h := newStageHarness()
	chk := &heldChecker{}
	f := newField(validate.Email, DefaultDebounce, chk, h.env)

	f.edit("x@y.com")
	h.clock.Advance(DefaultDebounce)
	seq := h.lastFire(t).seq
	f.shutdown()

	f.fire(seq)
	f.edit("z@y.com")
	assert.Empty(t, chk.all())
	assert.Empty(t, h.results())
	assert.Equal(t, StateClosed, f.state)
	assert.Zero(t, h.clock.pending())
}
