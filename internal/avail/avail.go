// Package avail defines the remote availability check used after a field
// passes its syntactic rule, plus the checkers formwatch ships with.
package avail

import (
	"context"
	"fmt"
	"sync"

	"github.com/iiroan/formwatch/internal/validate"
)

// Checker reports whether a value is still free to claim.
type Checker interface {
	// CheckSync blocks until the verdict is known or ctx is done.
	CheckSync(ctx context.Context, kind validate.Kind, value string) validate.Result[string]
	// CheckAsync starts a check in the background.
	CheckAsync(kind validate.Kind, value string) *Call
}

// Call is a cancellable in-flight availability check.
type Call struct {
	done   chan validate.Result[string]
	ctx    context.Context
	cancel context.CancelFunc

	// mu orders delivery against Cancel.
	mu       sync.Mutex
	canceled bool
}

// Go runs fn in its own goroutine and returns a handle to its result. Once
// Cancel returns, Done yields nothing, even when fn finishes anyway. A result
// received from Done before that point is the caller's to discard.
func Go(fn func(ctx context.Context) validate.Result[string]) *Call {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Call{
		done:   make(chan validate.Result[string], 1),
		ctx:    ctx,
		cancel: cancel,
	}
	go func() {
		res := fn(ctx)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.canceled {
			return
		}
		c.done <- res
	}()
	return c
}

// Done delivers the verdict once.
func (c *Call) Done() <-chan validate.Result[string] {
	return c.done
}

// Cancel asks the check to stop and drops a result that is already waiting
// in Done. Safe to call more than once.
func (c *Call) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.canceled = true
	c.cancel()
	select {
	case <-c.done:
	default:
	}
}

// Canceled is closed once Cancel has been called.
func (c *Call) Canceled() <-chan struct{} {
	return c.ctx.Done()
}

// TakenReason is the message shown when a value is already claimed.
func TakenReason(kind validate.Kind) string {
	return kind.Label() + " is already taken"
}

// UnverifiedReason is the message shown when the check itself failed.
func UnverifiedReason(kind validate.Kind) string {
	return fmt.Sprintf("Unable to verify %s availability", kind)
}

func unsupported(kind validate.Kind, value string) validate.Result[string] {
	return validate.Failure(fmt.Sprintf("%s has no availability check", kind), value)
}
