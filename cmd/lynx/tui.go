package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mhpenta/lynx"
	"github.com/mhpenta/lynx/internal/tui"
)

func NewTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive studio",
		Args:  cobra.NoArgs,
		RunE:  tuiHandler,
	}
	cmd.Flags().StringP("dir", "d", ".", "Directory for exported images")
	return cmd
}

func tuiHandler(cmd *cobra.Command, args []string) error {
	s := sessionFrom(cmd)
	if s == nil {
		return errors.New("session not initialized")
	}
	dir, _ := cmd.Flags().GetString("dir")
	verbose, _ := cmd.Flags().GetBool("verbose")

	// The alternate screen owns stdout and stderr, so logs go to a file.
	if err := os.MkdirAll(s.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(s.cfg.DataDir, "lynx.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	s.logger = newLogger(logFile, verbose)
	s.noPrompt = true

	return withApp(cmd, func(s *session, app *lynx.App) error {
		return tui.Run(app, tui.Options{
			ExportDir: dir,
			Timeout:   s.cfg.Timeout,
		})
	})
}
