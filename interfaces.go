package lynx

import "context"

// Generator is the core interface for image generation clients.
// Implement this interface to add support for new providers.
type Generator interface {
	// Generate issues exactly one request for prompt and returns one data URI
	// per produced artifact. An empty result is always reported as an error.
	Generate(ctx context.Context, prompt string, settings GenerationSettings) ([]string, error)

	// Tiers returns the tiers supported by this generator.
	Tiers() []TierInfo

	// Close releases any resources held by the generator.
	Close() error
}

// Store persists the image history.
type Store interface {
	// Load returns the persisted history, newest first. A missing or
	// unreadable entry yields an empty history.
	Load(ctx context.Context) ([]GeneratedImage, error)

	// Save replaces the persisted history with history.
	Save(ctx context.Context, history []GeneratedImage) error
}

// KeySelector is the optional interactive credential-selection capability
// consulted before using tiers that require an explicitly selected key.
type KeySelector interface {
	// HasSelectedKey reports whether an authorized key is already selected.
	HasSelectedKey(ctx context.Context) (bool, error)

	// OpenSelectKey runs the interactive selection flow and reports whether
	// a key was selected. Cancellation is reported as false or an error.
	OpenSelectKey(ctx context.Context) (bool, error)
}

// KeySource provides the API key to use for the next request. Selectors that
// remember the chosen key implement it alongside KeySelector.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}
