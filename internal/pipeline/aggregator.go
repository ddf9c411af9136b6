package pipeline

import (
	"sync"

	"github.com/iiroan/formwatch/internal/validate"
)

// Aggregator folds the latest verdict of every field into the submit state.
// Nothing is ready until each field has reported at least once.
type Aggregator struct {
	mu       sync.Mutex
	kinds    []validate.Kind
	verdicts map[validate.Kind]bool
}

// NewAggregator tracks the given kinds.
func NewAggregator(kinds ...validate.Kind) *Aggregator {
	return &Aggregator{
		kinds:    append([]validate.Kind(nil), kinds...),
		verdicts: make(map[validate.Kind]bool, len(kinds)),
	}
}

// Observe records a field verdict. ready is false until every tracked field
// has reported; after that enabled is the AND of the latest verdicts and is
// returned on every call, changed or not.
func (a *Aggregator) Observe(kind validate.Kind, valid bool) (enabled bool, ready bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.tracks(kind) {
		return false, false
	}
	a.verdicts[kind] = valid
	return a.evaluate()
}

// Current returns the aggregate without recording anything.
func (a *Aggregator) Current() (enabled bool, ready bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.evaluate()
}

// Verdict returns the latest verdict of kind, if any.
func (a *Aggregator) Verdict(kind validate.Kind) (valid bool, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	valid, ok = a.verdicts[kind]
	return valid, ok
}

func (a *Aggregator) tracks(kind validate.Kind) bool {
	for _, k := range a.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (a *Aggregator) evaluate() (bool, bool) {
	enabled := true
	for _, k := range a.kinds {
		valid, ok := a.verdicts[k]
		if !ok {
			return false, false
		}
		enabled = enabled && valid
	}
	return enabled, true
}
