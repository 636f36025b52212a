package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mhpenta/lynx"
)

func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List generated images, newest first",
		Args:    cobra.NoArgs,
		RunE:    listHandler,
	}
}

func listHandler(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(s *session, app *lynx.App) error {
		renderHistory(s.out, app.History())
		return nil
	})
}

func renderHistory(w io.Writer, history []lynx.GeneratedImage) {
	var data [][]string
	for _, img := range history {
		size := img.Settings.ImageSize.String()
		if size == "" {
			size = "-"
		}
		data = append(data, []string{
			img.ID,
			lynx.TierLabel(img.Settings.Model),
			img.Settings.AspectRatio.String(),
			size,
			img.Created().Format("2006-01-02 15:04"),
			shorten(img.Prompt, 48),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "TIER", "RATIO", "SIZE", "CREATED", "PROMPT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return fmt.Sprintf("%s...", string(r[:n-3]))
	}
	return s
}
