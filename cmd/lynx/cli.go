package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhpenta/lynx"
	"github.com/mhpenta/lynx/internal/config"
	"github.com/mhpenta/lynx/keyselect"
	"github.com/mhpenta/lynx/provider/gemini"
	"github.com/mhpenta/lynx/store"
)

// session is built once per invocation by the root command.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	in     *os.File

	// noPrompt disables the terminal key prompt while the TUI owns the screen
	noPrompt bool
}

type sessionKey struct{}

func sessionFrom(cmd *cobra.Command) *session {
	s, _ := cmd.Context().Value(sessionKey{}).(*session)
	return s
}

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lynx",
		Short: "Generate images with Gemini from the terminal",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Disable usage printing on errors
			cmd.SilenceUsage = true

			verbose, _ := cmd.Flags().GetBool("verbose")
			path, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadFrom(path, os.LookupEnv)
			if err != nil {
				return err
			}

			s := &session{
				cfg:    cfg,
				logger: newLogger(os.Stderr, verbose),
				out:    cmd.OutOrStdout(),
				in:     os.Stdin,
			}
			cmd.SetContext(context.WithValue(cmd.Context(), sessionKey{}, s))
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", config.ConfigPath(), "Path to the config file")

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(
		NewGenerateCmd(),
		NewListCmd(),
		NewDeleteCmd(),
		NewExportCmd(),
		NewSettingsCmd(),
		NewTUICmd(),
	)

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openApp wires the configured backend, key selection and provider into an
// App. The caller closes it.
func (s *session) openApp(ctx context.Context) (*lynx.App, error) {
	backend, err := newBackend(ctx, s.cfg)
	if err != nil {
		return nil, err
	}

	policy, err := gemini.ParseKeyPolicy(s.cfg.KeyPolicy)
	if err != nil {
		return nil, err
	}

	selector := s.keySelector()

	opts := []gemini.Option{
		gemini.WithKeySelector(selector),
		gemini.WithKeySource(selector),
		gemini.WithKeyPolicy(policy),
		gemini.WithLogger(s.logger),
	}
	if s.cfg.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(s.cfg.BaseURL))
	}

	gen, err := gemini.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}

	history := store.NewHistory(backend,
		store.WithKey(s.cfg.StorageKey),
		store.WithLogger(s.logger),
	)

	return lynx.New(ctx, gen,
		lynx.WithStore(history),
		lynx.WithLogger(s.logger),
		lynx.WithSettings(s.cfg.Defaults),
	), nil
}

type keySelector interface {
	lynx.KeySelector
	lynx.KeySource
}

func (s *session) keySelector() keySelector {
	if s.noPrompt {
		return keyselect.Env{}
	}
	return keyselect.NewTerminal(int(s.in.Fd()), s.in, os.Stderr,
		keyselect.WithFallback(keyselect.Env{}),
		keyselect.WithTerminalLogger(s.logger),
	)
}

func newBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return store.NewFile(cfg.DataDir), nil
	case config.BackendMemory:
		return store.NewMemory(), nil
	case config.BackendDynamoDB:
		return store.NewDynamoDBFromEnv(ctx, cfg.DynamoDBTable)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// withApp runs fn against a freshly opened App and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(*session, *lynx.App) error) error {
	s := sessionFrom(cmd)
	if s == nil {
		return errors.New("session not initialized")
	}

	app, err := s.openApp(cmd.Context())
	if err != nil {
		return err
	}
	if err := app.LoadErr(); err != nil {
		return errors.Join(fmt.Errorf("loading history: %w", err), app.Close())
	}

	return errors.Join(fn(s, app), app.Close())
}
