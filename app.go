package lynx

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// App is the application state machine. It owns the current settings, the
// transient GenerationState and the image history, and mirrors the history
// into the configured Store after every change.
//
// At most one generation is in flight at a time. A Submit made while one is
// running is ignored rather than queued.
type App struct {
	generator Generator
	store     Store
	logger    *slog.Logger

	now      func() time.Time
	newID    func() string
	onChange func()

	settings GenerationSettings
	state    GenerationState
	history  []GeneratedImage

	// loadErr is set when the startup load failed; the store is then never
	// written, so a transient read error cannot overwrite the saved history
	loadErr error

	mu sync.Mutex
}

// New creates an App and loads the persisted history once.
//
// Example:
//
//	gen, err := gemini.New(gemini.WithAPIKey(apiKey))
//	if err != nil {
//	    return err
//	}
//	app := lynx.New(ctx, gen, lynx.WithStore(store.NewHistory(backend)))
func New(ctx context.Context, generator Generator, opts ...AppOption) *App {
	a := &App{
		generator: generator,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
		settings:  DefaultSettings(),
		history:   make([]GeneratedImage, 0),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.load(ctx)
	return a
}

func (a *App) load(ctx context.Context) {
	if a.store == nil {
		return
	}

	history, err := a.store.Load(ctx)
	if err != nil {
		a.loadErr = err
		a.logger.Error("failed to load history, saving disabled for this session",
			"error", err.Error(),
		)
		return
	}
	if history == nil {
		history = make([]GeneratedImage, 0)
	}

	a.history = history
	a.logger.Debug("history loaded",
		"image_count", len(history),
	)
}

// Submit generates images for prompt with the current settings.
//
// Blank prompts and submits made while a generation is in flight are ignored
// and return nil, nil without changing any state. Otherwise the pending error
// is cleared and the generator is called once; on success the new records are
// prepended to the history and returned, on failure the error message is
// recorded in State and the error is returned.
func (a *App) Submit(ctx context.Context, prompt string) ([]GeneratedImage, error) {
	if ValidatePrompt(prompt) != nil {
		return nil, nil
	}

	a.mu.Lock()
	if a.state.IsGenerating {
		a.mu.Unlock()
		a.logger.Debug("submit ignored, generation in progress")
		return nil, nil
	}
	a.state = GenerationState{IsGenerating: true}
	settings := a.settings
	a.mu.Unlock()
	a.notify()

	start := time.Now()
	a.logger.Debug("starting image generation",
		"model", string(settings.Model),
		"aspect_ratio", string(settings.AspectRatio),
		"prompt_length", len(prompt),
	)

	urls, err := a.generator.Generate(ctx, prompt, settings)
	duration := time.Since(start)

	if err == nil && len(urls) == 0 {
		err = NewGenerationError(KindEmptyResult, "", nil)
	}

	a.mu.Lock()
	defer a.notify()
	defer a.mu.Unlock()

	a.state.IsGenerating = false

	if err != nil {
		a.state.Error = errorMessage(err)
		a.logger.Error("generation failed",
			"model", string(settings.Model),
			"duration_ms", duration.Milliseconds(),
			"kind", ErrorKindOf(err).String(),
			"error", err.Error(),
		)
		return nil, err
	}

	createdAt := a.now().UnixMilli()
	images := make([]GeneratedImage, 0, len(urls))
	for _, url := range urls {
		images = append(images, GeneratedImage{
			ID:        a.newID(),
			URL:       url,
			Prompt:    prompt,
			Settings:  settings,
			CreatedAt: createdAt,
		})
	}

	a.history = append(slices.Clone(images), a.history...)
	a.persistLocked(ctx)

	a.logger.Info("generation completed",
		"model", string(settings.Model),
		"duration_ms", duration.Milliseconds(),
		"image_count", len(images),
		"history_size", len(a.history),
	)

	return images, nil
}

// DeleteImage removes the record with id. It reports whether a record was
// removed; unknown ids leave the history and the store untouched.
func (a *App) DeleteImage(ctx context.Context, id string) bool {
	a.mu.Lock()

	idx := slices.IndexFunc(a.history, func(img GeneratedImage) bool {
		return img.ID == id
	})
	if idx < 0 {
		a.mu.Unlock()
		return false
	}

	a.history = slices.Delete(slices.Clone(a.history), idx, idx+1)
	a.persistLocked(ctx)
	size := len(a.history)
	a.mu.Unlock()

	a.notify()
	a.logger.Info("image deleted",
		"id", id,
		"history_size", size,
	)
	return true
}

// DismissError clears the pending error message.
func (a *App) DismissError() {
	a.mu.Lock()
	if a.state.Error == "" {
		a.mu.Unlock()
		return
	}
	a.state.Error = ""
	a.mu.Unlock()

	a.notify()
}

// ChangeSettings replaces the current settings wholesale. Existing history
// records keep their own snapshots.
func (a *App) ChangeSettings(settings GenerationSettings) error {
	if err := ValidateSettings(settings); err != nil {
		return err
	}

	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()

	a.notify()
	return nil
}

// Settings returns the current settings.
func (a *App) Settings() GenerationSettings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// State returns the current generation state.
func (a *App) State() GenerationState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// History returns a copy of the history, newest first.
func (a *App) History() []GeneratedImage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.history)
}

// Image returns the record with id.
func (a *App) Image(id string) (GeneratedImage, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, img := range a.history {
		if img.ID == id {
			return img, true
		}
	}
	return GeneratedImage{}, false
}

// Tiers returns the tiers offered by the generator.
func (a *App) Tiers() []TierInfo {
	return a.generator.Tiers()
}

// Close releases the generator.
func (a *App) Close() error {
	return a.generator.Close()
}

// LoadErr returns the error from the startup load, if any. While it is
// non-nil the history lives in memory only.
func (a *App) LoadErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadErr
}

// persistLocked writes the full history. A failed write is logged and the
// in-memory history stays authoritative. The write outlives cancellation of
// ctx so that a completed generation is not lost to a timeout.
func (a *App) persistLocked(ctx context.Context) {
	if a.store == nil {
		return
	}
	if a.loadErr != nil {
		a.logger.Warn("history not saved, startup load failed",
			"image_count", len(a.history),
			"error", a.loadErr.Error(),
		)
		return
	}

	if err := a.store.Save(context.WithoutCancel(ctx), slices.Clone(a.history)); err != nil {
		a.logger.Error("failed to save history",
			"image_count", len(a.history),
			"error", err.Error(),
		)
	}
}

// notify runs the change hook. It is never called with mu held, so hooks
// may read state back from the App.
func (a *App) notify() {
	if a.onChange != nil {
		a.onChange()
	}
}

func errorMessage(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) && genErr.Message != "" {
		return genErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MessageUnknown
}
