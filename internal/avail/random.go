package avail

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/iiroan/formwatch/internal/validate"
)

// Default latencies of the demo checker.
const (
	DefaultEmailLatency    = 1200 * time.Millisecond
	DefaultUsernameLatency = 3000 * time.Millisecond
)

// Random is a demo checker that claims roughly five in twelve values are
// taken, after a fixed per-kind latency.
type Random struct {
	EmailLatency    time.Duration
	UsernameLatency time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandom returns a Random checker with the default latencies.
func NewRandom(seed int64) *Random {
	return &Random{
		EmailLatency:    DefaultEmailLatency,
		UsernameLatency: DefaultUsernameLatency,
		rnd:             rand.New(rand.NewSource(seed)),
	}
}

func (r *Random) latency(kind validate.Kind) time.Duration {
	if kind == validate.Username {
		return r.UsernameLatency
	}
	return r.EmailLatency
}

func (r *Random) roll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rnd == nil {
		r.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return r.rnd.Intn(12)
}

// CheckSync rolls the verdict without waiting.
func (r *Random) CheckSync(_ context.Context, kind validate.Kind, value string) validate.Result[string] {
	if !kind.Remote() {
		return unsupported(kind, value)
	}
	if r.roll() > 4 {
		return validate.Success(value)
	}
	return validate.Failure(TakenReason(kind), value)
}

// CheckAsync rolls the verdict after the kind's latency.
func (r *Random) CheckAsync(kind validate.Kind, value string) *Call {
	delay := r.latency(kind)
	return Go(func(ctx context.Context) validate.Result[string] {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return validate.Failure(UnverifiedReason(kind), value)
		case <-timer.C:
		}
		return r.CheckSync(ctx, kind, value)
	})
}
