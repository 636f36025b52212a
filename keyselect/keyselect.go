// Package keyselect provides implementations of lynx.KeySelector, the
// capability the gemini provider consults before tiers that need an
// explicitly chosen paid key.
package keyselect

import (
	"context"
	"os"
	"sync"

	"github.com/mhpenta/lynx"
)

// Environment variables checked by Env, in order.
var EnvKeys = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// None is a selector for environments without any selection flow. It never
// has a key and cannot open a dialog.
type None struct{}

var _ lynx.KeySelector = None{}

func (None) HasSelectedKey(ctx context.Context) (bool, error) { return false, nil }

func (None) OpenSelectKey(ctx context.Context) (bool, error) { return false, nil }

// Static holds a key chosen ahead of time, typically from configuration.
// An empty Static reports no selection.
type Static struct {
	mu  sync.RWMutex
	key string
}

var (
	_ lynx.KeySelector = (*Static)(nil)
	_ lynx.KeySource   = (*Static)(nil)
)

// NewStatic returns a selector holding key.
func NewStatic(key string) *Static {
	return &Static{key: key}
}

func (s *Static) HasSelectedKey(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != "", nil
}

// OpenSelectKey has nothing to show; it succeeds only when a key is held.
func (s *Static) OpenSelectKey(ctx context.Context) (bool, error) {
	return s.HasSelectedKey(ctx)
}

func (s *Static) APIKey(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, nil
}

// Set replaces the held key.
func (s *Static) Set(key string) {
	s.mu.Lock()
	s.key = key
	s.mu.Unlock()
}

// Env treats a key present in the process environment as selected.
type Env struct {
	// Lookup defaults to os.LookupEnv
	Lookup func(string) (string, bool)
}

var (
	_ lynx.KeySelector = Env{}
	_ lynx.KeySource   = Env{}
)

func (e Env) HasSelectedKey(ctx context.Context) (bool, error) {
	key, _ := e.APIKey(ctx)
	return key != "", nil
}

func (e Env) OpenSelectKey(ctx context.Context) (bool, error) {
	return e.HasSelectedKey(ctx)
}

// APIKey returns the first non-empty variable from EnvKeys.
func (e Env) APIKey(ctx context.Context) (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range EnvKeys {
		if v, ok := lookup(name); ok && v != "" {
			return v, nil
		}
	}
	return "", nil
}
