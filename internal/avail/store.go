package avail

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iiroan/formwatch/internal/store"
	"github.com/iiroan/formwatch/internal/validate"
)

// StoreChecker answers availability from a store.Store.
type StoreChecker struct {
	store   store.Store
	timeout time.Duration
	logger  *log.Logger
}

// NewStoreChecker wraps s. A zero timeout leaves lookups unbounded.
func NewStoreChecker(s store.Store, timeout time.Duration, logger *log.Logger) *StoreChecker {
	if logger == nil {
		logger = discardLogger()
	}
	return &StoreChecker{store: s, timeout: timeout, logger: logger}
}

// CheckSync looks the value up in the store.
func (c *StoreChecker) CheckSync(ctx context.Context, kind validate.Kind, value string) validate.Result[string] {
	if !kind.Remote() {
		return unsupported(kind, value)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	taken, err := c.store.Taken(ctx, kind, value)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("availability lookup failed", "field", kind, "error", err)
		}
		return validate.Failure(UnverifiedReason(kind), value)
	}
	if taken {
		return validate.Failure(TakenReason(kind), value)
	}
	return validate.Success(value)
}

// CheckAsync runs CheckSync in the background.
func (c *StoreChecker) CheckAsync(kind validate.Kind, value string) *Call {
	return Go(func(ctx context.Context) validate.Result[string] {
		return c.CheckSync(ctx, kind, value)
	})
}
