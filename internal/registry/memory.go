package registry

import (
	"context"
	"sync"
)

// MemoryRegistry keeps the registry in process memory. It backs the render
// CLI when no registry file is configured and serves as a test double.
type MemoryRegistry struct {
	mu      sync.Mutex
	kv      map[string]string
	saveErr error
	saves   int
}

// NewMemoryRegistry creates a registry seeded with raw key-value entries.
func NewMemoryRegistry(kv map[string]string) *MemoryRegistry {
	m := &MemoryRegistry{kv: make(map[string]string, len(kv))}
	for k, v := range kv {
		m.kv[k] = v
	}
	return m
}

func (m *MemoryRegistry) Load(_ context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Decode(m.kv)
}

func (m *MemoryRegistry) Save(_ context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	kv, err := Encode(s)
	if err != nil {
		return err
	}
	m.kv = kv
	m.saves++
	return nil
}

// FailSaves makes every following Save return err. Pass nil to recover.
func (m *MemoryRegistry) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Get returns the raw stored value for key.
func (m *MemoryRegistry) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	return v, ok
}

// Saves counts successful saves.
func (m *MemoryRegistry) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
