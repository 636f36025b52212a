package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhpenta/lynx"
)

func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID...",
		Aliases: []string{"rm"},
		Short:   "Delete images from the history",
		Args:    cobra.MinimumNArgs(1),
		RunE:    deleteHandler,
	}
}

func deleteHandler(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(s *session, app *lynx.App) error {
		var errs []error
		for _, id := range args {
			if !app.DeleteImage(cmd.Context(), id) {
				errs = append(errs, fmt.Errorf("%w: %s", lynx.ErrImageNotFound, id))
				continue
			}
			fmt.Fprintf(s.out, "deleted '%s'\n", id)
		}
		return errors.Join(errs...)
	})
}
