package keyselect

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/mhpenta/lynx"
	"golang.org/x/term"
)

// ErrCancelled is returned when the prompt is closed without a key.
var ErrCancelled = errors.New("key selection cancelled")

// Terminal asks for a key on the terminal the first time a tier needs one
// and remembers it for the rest of the process. When in is not a terminal
// the key is read as a plain line, which keeps piped input working.
type Terminal struct {
	fd     int
	in     io.Reader
	out    io.Writer
	logger *slog.Logger

	// fallback is consulted before prompting
	fallback lynx.KeySource

	mu  sync.Mutex
	key string
}

var (
	_ lynx.KeySelector = (*Terminal)(nil)
	_ lynx.KeySource   = (*Terminal)(nil)
)

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithFallback sets a source whose key counts as already selected.
func WithFallback(source lynx.KeySource) TerminalOption {
	return func(t *Terminal) {
		t.fallback = source
	}
}

// WithTerminalLogger sets the logger.
func WithTerminalLogger(logger *slog.Logger) TerminalOption {
	return func(t *Terminal) {
		t.logger = logger
	}
}

// NewTerminal prompts on out and reads from in. fd is the descriptor behind
// in, used to disable echo when it is a terminal.
func NewTerminal(fd int, in io.Reader, out io.Writer, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		fd:     fd,
		in:     in,
		out:    out,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) HasSelectedKey(ctx context.Context) (bool, error) {
	key, err := t.APIKey(ctx)
	return key != "", err
}

// OpenSelectKey prompts for a key. It reports false with ErrCancelled when
// the input is closed or the line is blank.
func (t *Terminal) OpenSelectKey(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprint(t.out, "The high-fidelity model requires an API key for a paid project.\nAPI key: ")
	key, err := t.readKey()
	fmt.Fprintln(t.out)
	if err != nil {
		return false, err
	}

	t.mu.Lock()
	t.key = key
	t.mu.Unlock()

	t.logger.Info("api key selected")
	return true, nil
}

// APIKey returns the prompted key, or the fallback's key before any prompt.
func (t *Terminal) APIKey(ctx context.Context) (string, error) {
	t.mu.Lock()
	key := t.key
	t.mu.Unlock()
	if key != "" || t.fallback == nil {
		return key, nil
	}
	return t.fallback.APIKey(ctx)
}

func (t *Terminal) readKey() (string, error) {
	var line string
	if term.IsTerminal(t.fd) {
		b, err := term.ReadPassword(t.fd)
		if err != nil {
			return "", fmt.Errorf("reading api key: %w", err)
		}
		line = string(b)
	} else {
		s, err := bufio.NewReader(t.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading api key: %w", err)
		}
		line = s
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrCancelled
	}
	return line, nil
}
