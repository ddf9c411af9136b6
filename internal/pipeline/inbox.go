package pipeline

import (
	"sync"
	"time"

	"github.com/iiroan/formwatch/internal/validate"
)

type event interface{}

type editEvent struct {
	kind validate.Kind
	text string
}

type fireEvent struct {
	kind validate.Kind
	seq  uint64
}

type resultEvent struct {
	kind    validate.Kind
	gen     uint64
	res     validate.Result[string]
	started time.Time
}

type snapshotEvent struct {
	reply chan Snapshot
}

// inbox is an unbounded FIFO feeding the coordinating goroutine. push never
// blocks, so sinks and timers can never deadlock against an Edit caller.
type inbox struct {
	mu     sync.Mutex
	queue  []event
	closed bool
	ready  chan struct{}
}

func newInbox() *inbox {
	return &inbox{ready: make(chan struct{}, 1)}
}

func (b *inbox) push(ev event) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.queue = append(b.queue, ev)
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
	return true
}

func (b *inbox) drain() []event {
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queue
	b.queue = nil
	return q
}

func (b *inbox) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.queue = nil
}
