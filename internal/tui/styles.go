package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent    = lipgloss.Color("#7C9EF2")
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorDim       = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorSeparator = lipgloss.Color("#4B5563")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	// Active settings badges
	BadgeStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorSeparator).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	ItemStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	DimmedStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	// Error banner
	ErrorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	FocusedInputBoxStyle = InputBoxStyle.
				BorderForeground(colorAccent)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(colorSeparator)
)
