package storage

import (
	"context"
	"sync"
)

// Memory is an in-memory KV for tests and throwaway runs.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte

	// Error injection for testing error paths
	GetErr error
	SetErr error

	// Writes counts successful Set calls.
	Writes int
}

var _ KV = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

// Get implements KV.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements KV.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	m.Writes++
	return nil
}

// Close does nothing for memory
func (m *Memory) Close() error { return nil }
