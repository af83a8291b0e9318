package guard

import (
	"context"
	"sync"
)

// Memory is an in-process Guard. The zero value is ready to use.
type Memory struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemory returns an empty in-process guard.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) TryAcquire(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held == nil {
		m.held = make(map[string]struct{})
	}
	if _, ok := m.held[key]; ok {
		return false, nil
	}
	m.held[key] = struct{}{}
	return true, nil
}

// Release frees key. Releasing a key that is not held is a no-op.
func (m *Memory) Release(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	delete(m.held, key)
	m.mu.Unlock()
	return nil
}

// Held reports whether key is currently acquired.
func (m *Memory) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.held[key]
	return ok
}
