package tui

import (
	"fmt"
	"strings"

	"github.com/mhpenta/lynx"
)

// maxVisible bounds the rendered history rows.
const maxVisible = 12

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("lynx"))
	b.WriteString("  ")
	b.WriteString(m.renderSettings())
	b.WriteString("\n\n")

	box := InputBoxStyle
	if m.focus == FocusPrompt {
		box = FocusedInputBoxStyle
	}
	b.WriteString(box.Render(m.input.View()))
	b.WriteString("\n")

	state := m.app.State()
	if m.busy() {
		b.WriteString(m.spinner.View() + " " + DimmedStyle.Render("Generating..."))
		b.WriteString("\n")
	}
	if state.HasError() {
		b.WriteString(ErrorBoxStyle.Render(ErrorStyle.Render(state.Error) + "\n" + HelpStyle.Render("esc to dismiss")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderHistory())

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderSettings() string {
	s := m.app.Settings()
	badges := []string{
		BadgeStyle.Render(lynx.TierLabel(s.Model)),
		BadgeStyle.Render(s.AspectRatio.String()),
	}
	if tier, ok := lynx.TierByModel(m.app.Tiers(), s.Model); ok && tier.SupportsImageSize {
		badges = append(badges, BadgeStyle.Render(s.ImageSize.String()))
	}
	return strings.Join(badges, " ")
}

func (m Model) renderHistory() string {
	history := m.app.History()
	if len(history) == 0 {
		return DimmedStyle.Render("No images yet. Type a prompt and press enter.")
	}

	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	end := min(len(history), start+maxVisible)

	promptWidth := 50
	if m.width > 40 {
		promptWidth = m.width - 36
	}

	var rows []string
	for i := start; i < end; i++ {
		img := history[i]
		meta := fmt.Sprintf("%-5s %-5s %s",
			lynx.TierLabel(img.Settings.Model),
			img.Settings.AspectRatio,
			img.Created().Format("Jan 02 15:04"),
		)
		prompt := truncate(img.Prompt, promptWidth)

		if m.focus == FocusHistory && i == m.cursor {
			rows = append(rows, SelectedStyle.Render("> "+prompt)+"  "+DimmedStyle.Render(meta))
		} else {
			rows = append(rows, ItemStyle.Render("  "+prompt)+"  "+DimmedStyle.Render(meta))
		}
	}

	header := SeparatorStyle.Render(fmt.Sprintf("History (%d)", len(history)))
	return header + "\n" + strings.Join(rows, "\n")
}

func (m Model) renderHelp() string {
	if m.focus == FocusPrompt {
		return HelpStyle.Render("enter generate • tab tier • ↓/esc history • ctrl+c quit")
	}
	return HelpStyle.Render("↑/↓ move • d delete • x export • tab tier • r ratio • s size • i prompt • q quit")
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func pluralImages(n int) string {
	if n == 1 {
		return "1 image"
	}
	return fmt.Sprintf("%d images", n)
}
