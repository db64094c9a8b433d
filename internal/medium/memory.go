package medium

import (
	"context"
	"sync"
)

// Memory is a non-durable Medium for tests and throwaway servers.
type Memory struct {
	mu sync.RWMutex
	st *state
}

func NewMemory() *Memory {
	return &Memory{st: newState()}
}

func (m *Memory) Scalar(_ context.Context, region uint8) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st.scalars[region], nil
}

func (m *Memory) SetScalar(_ context.Context, region uint8, v uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.scalars[region] = v
	return nil
}

func (m *Memory) Read(_ context.Context, region uint8, key uint64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.st.read(region, key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *Memory) Write(_ context.Context, region uint8, key uint64, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.write(region, key, value)
	return nil
}

func (m *Memory) Erase(_ context.Context, region uint8, key uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.st.erase(region, key) {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) Scan(_ context.Context, region uint8) (Cursor, error) {
	m.mu.RLock()
	keys := m.st.keys(region)
	m.mu.RUnlock()
	return &snapshotCursor{keys: keys, read: func(key uint64) ([]byte, bool) {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return m.st.read(region, key)
	}}, nil
}

func (m *Memory) Close() error { return nil }
