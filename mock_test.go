package lynx

import (
	"context"
	"slices"
	"sync"
)

// MockGenerator is a mock implementation of Generator.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, settings GenerationSettings) ([]string, error)
	TiersFunc    func() []TierInfo
	CloseFunc    func() error

	mu    sync.Mutex
	calls []generateCall
}

type generateCall struct {
	Prompt   string
	Settings GenerationSettings
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, settings GenerationSettings) ([]string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, generateCall{Prompt: prompt, Settings: settings})
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, settings)
	}
	return []string{EncodeDataURI("image/png", []byte("fake-image"))}, nil
}

func (m *MockGenerator) Tiers() []TierInfo {
	if m.TiersFunc != nil {
		return m.TiersFunc()
	}
	return []TierInfo{}
}

func (m *MockGenerator) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *MockGenerator) Calls() []generateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// MockStore is an in-memory Store that records every save.
type MockStore struct {
	LoadFunc func(ctx context.Context) ([]GeneratedImage, error)
	SaveErr  error

	mu      sync.Mutex
	saved   [][]GeneratedImage
	ctxErrs []error
}

func (s *MockStore) Load(ctx context.Context) ([]GeneratedImage, error) {
	if s.LoadFunc != nil {
		return s.LoadFunc(ctx)
	}
	return nil, nil
}

func (s *MockStore) Save(ctx context.Context, history []GeneratedImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, slices.Clone(history))
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
	return s.SaveErr
}

func (s *MockStore) Saves() [][]GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.saved)
}

func (s *MockStore) Last() []GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return nil
	}
	return s.saved[len(s.saved)-1]
}

// SaveContextErrs returns ctx.Err() as observed by each Save.
func (s *MockStore) SaveContextErrs() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ctxErrs)
}
