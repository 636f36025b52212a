package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhpenta/lynx"
)

func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export ID...",
		Short: "Write images to files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  exportHandler,
	}
	cmd.Flags().StringP("dir", "d", ".", "Destination directory")
	return cmd
}

func exportHandler(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")

	return withApp(cmd, func(s *session, app *lynx.App) error {
		for _, id := range args {
			img, ok := app.Image(id)
			if !ok {
				return fmt.Errorf("%w: %s", lynx.ErrImageNotFound, id)
			}
			path, err := lynx.Export(img, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(s.out, path)
		}
		return nil
	})
}
