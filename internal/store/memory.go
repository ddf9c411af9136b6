package store

import (
	"context"
	"sync"

	"github.com/iiroan/formwatch/internal/validate"
)

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	taken map[validate.Kind]map[string]struct{}
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{taken: make(map[validate.Kind]map[string]struct{})}
}

func (m *Memory) Taken(_ context.Context, kind validate.Kind, value string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.taken[kind][value]
	return ok, nil
}

func (m *Memory) Claim(_ context.Context, kind validate.Kind, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.taken[kind]
	if !ok {
		set = make(map[string]struct{})
		m.taken[kind] = set
	}
	set[value] = struct{}{}
	return nil
}

func (m *Memory) Release(_ context.Context, kind validate.Kind, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.taken[kind], value)
	return nil
}

func (m *Memory) Close() error { return nil }
