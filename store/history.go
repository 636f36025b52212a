package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mhpenta/lynx"
)

// DefaultKey is the key the history document is stored under.
const DefaultKey = "lynx_history"

// History implements lynx.Store as a JSON array under a single key.
type History struct {
	backend Backend
	key     string
	logger  *slog.Logger
}

var _ lynx.Store = (*History)(nil)

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithKey overrides DefaultKey.
func WithKey(key string) HistoryOption {
	return func(h *History) {
		if key != "" {
			h.key = key
		}
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *slog.Logger) HistoryOption {
	return func(h *History) {
		h.logger = logger
	}
}

// NewHistory returns a History over backend.
func NewHistory(backend Backend, opts ...HistoryOption) *History {
	h := &History{
		backend: backend,
		key:     DefaultKey,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Key returns the storage key.
func (h *History) Key() string {
	return h.key
}

// Load returns the stored history, newest first. A missing document is an
// empty history. A malformed document is logged and also treated as empty;
// it stays in the backend until the next Save overwrites it.
func (h *History) Load(ctx context.Context) ([]lynx.GeneratedImage, error) {
	if h.backend == nil {
		return nil, lynx.ErrStorageNotConfigured
	}

	raw, ok, err := h.backend.Get(ctx, h.key)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if !ok || raw == "" {
		return []lynx.GeneratedImage{}, nil
	}

	var images []lynx.GeneratedImage
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		h.logger.Warn("discarding malformed history",
			"key", h.key,
			"bytes", len(raw),
			"error", err.Error(),
		)
		return []lynx.GeneratedImage{}, nil
	}
	if images == nil {
		return []lynx.GeneratedImage{}, nil
	}

	return h.dedupe(images), nil
}

// Save replaces the stored document with images.
func (h *History) Save(ctx context.Context, images []lynx.GeneratedImage) error {
	if h.backend == nil {
		return lynx.ErrStorageNotConfigured
	}
	if images == nil {
		images = []lynx.GeneratedImage{}
	}

	data, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := h.backend.Set(ctx, h.key, string(data)); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// dedupe keeps the first record for every id.
func (h *History) dedupe(images []lynx.GeneratedImage) []lynx.GeneratedImage {
	seen := make(map[string]struct{}, len(images))
	out := images[:0]
	for _, img := range images {
		if _, dup := seen[img.ID]; dup {
			h.logger.Warn("dropping duplicate history record", "key", h.key, "id", img.ID)
			continue
		}
		seen[img.ID] = struct{}{}
		out = append(out, img)
	}
	return out
}
