package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mhpenta/lynx"
)

func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate PROMPT...",
		Aliases: []string{"gen"},
		Short:   "Generate images for a prompt",
		Args:    cobra.MinimumNArgs(1),
		RunE:    generateHandler,
	}

	cmd.Flags().StringP("model", "m", "", "Model tier: flash or pro")
	cmd.Flags().StringP("ratio", "r", "", "Aspect ratio: 1:1, 3:4, 4:3, 16:9, 9:16")
	cmd.Flags().StringP("size", "s", "", "Image size for tiers that support it: 1K, 2K, 4K")
	cmd.Flags().IntP("count", "n", 0, "Number of images to record in the settings")
	cmd.Flags().StringP("out", "o", "", "Also export the generated images into this directory")

	return cmd
}

func generateHandler(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(s *session, app *lynx.App) error {
		settings, err := settingsFromFlags(cmd, app.Settings())
		if err != nil {
			return err
		}
		if err := app.ChangeSettings(settings); err != nil {
			return err
		}

		ctx := cmd.Context()
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}

		images, err := app.Submit(ctx, strings.Join(args, " "))
		if err != nil {
			if msg := app.State().Error; msg != "" {
				return errors.New(msg)
			}
			return err
		}
		if len(images) == 0 {
			return errors.New("nothing to generate")
		}

		out, _ := cmd.Flags().GetString("out")
		for _, img := range images {
			if out == "" {
				fmt.Fprintln(s.out, img.ID)
				continue
			}
			path, err := lynx.Export(img, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "%s\t%s\n", img.ID, path)
		}
		return nil
	})
}

// settingsFromFlags applies the flags that were set on top of base.
func settingsFromFlags(cmd *cobra.Command, base lynx.GenerationSettings) (lynx.GenerationSettings, error) {
	s := base
	flags := cmd.Flags()

	if flags.Changed("model") {
		v, _ := flags.GetString("model")
		m, err := lynx.ParseModel(v)
		if err != nil {
			return s, err
		}
		s = s.WithModel(m)
	}
	if flags.Changed("ratio") {
		v, _ := flags.GetString("ratio")
		r, err := lynx.ParseAspectRatio(v)
		if err != nil {
			return s, err
		}
		s = s.WithAspectRatio(r)
	}
	if flags.Changed("size") {
		v, _ := flags.GetString("size")
		size, err := lynx.ParseImageSize(v)
		if err != nil {
			return s, err
		}
		s = s.WithImageSize(size)
	}
	if flags.Changed("count") {
		n, _ := flags.GetInt("count")
		s = s.WithNumberOfImages(n)
	}

	return s, lynx.ValidateSettings(s)
}
