// Package store persists the image history as one JSON document in a
// namespaced key/value backend.
package store

import (
	"context"
	"errors"
	"maps"
	"sync"
)

// ErrInvalidKey is returned for keys a backend cannot address.
var ErrInvalidKey = errors.New("invalid storage key")

// Backend is a minimal string key/value store. Get reports ok=false for a
// key that was never written.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Memory is an in-process Backend.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Backend = (*Memory)(nil)

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Snapshot returns a copy of every stored value.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values)
}
