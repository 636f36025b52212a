package lynx

import (
	"log/slog"
	"time"
)

// AppOption configures the App.
type AppOption func(*App)

// WithLogger sets a structured logger for the app.
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

// WithStore sets the persistence store for the history. Without one the
// history lives in memory only.
func WithStore(store Store) AppOption {
	return func(a *App) {
		a.store = store
	}
}

// WithSettings sets the initial settings. Invalid settings are ignored and
// the defaults are kept.
func WithSettings(settings GenerationSettings) AppOption {
	return func(a *App) {
		if err := ValidateSettings(settings); err != nil {
			a.logger.Warn("ignoring invalid initial settings",
				"error", err.Error(),
			)
			return
		}
		a.settings = settings
	}
}

// WithClock overrides the time source used to stamp new records.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) {
		a.now = now
	}
}

// WithIDGenerator overrides the record id generator (uuid by default).
func WithIDGenerator(newID func() string) AppOption {
	return func(a *App) {
		a.newID = newID
	}
}

// WithOnChange registers a hook that runs after every state change, e.g. to
// trigger a re-render.
func WithOnChange(fn func()) AppOption {
	return func(a *App) {
		a.onChange = fn
	}
}
