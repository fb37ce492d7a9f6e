// pkg/vault/memory.go
package vault

import (
	"context"
	"sync"
)

type memVault struct {
	mu      sync.RWMutex
	secrets map[string]string
}

func NewMemoryVault() Store {
	return &memVault{secrets: map[string]string{}}
}

func (m *memVault) Get(ctx context.Context, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.secrets[name]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

func (m *memVault) Set(ctx context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[name] = value
	return nil
}

func (m *memVault) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[name]; !ok {
		return ErrNotFound
	}
	delete(m.secrets, name)
	return nil
}
