package tui

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mhpenta/lynx"
)

// Focus is the component receiving key presses.
type Focus int

const (
	FocusPrompt Focus = iota
	FocusHistory
)

// Options configures the Model.
type Options struct {
	// ExportDir receives files written with x
	ExportDir string

	// Timeout bounds a single generation; zero means no limit
	Timeout time.Duration
}

// Model is the main Bubbletea model
type Model struct {
	app     *lynx.App
	opts    Options
	focus   Focus
	cursor  int
	spinner spinner.Model
	input   textinput.Model
	status  string

	// generating covers the gap before the async submit marks the app busy
	generating bool

	width  int
	height int
}

// Messages for async operations
type generatedMsg struct {
	images []lynx.GeneratedImage
	err    error
}

type exportedMsg struct {
	path string
	err  error
}

type deletedMsg struct {
	id string
	ok bool
}

// New creates a Model over app.
func New(app *lynx.App, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ti := textinput.New()
	ti.Placeholder = "Describe the image to generate"
	ti.CharLimit = 2000
	ti.Width = 60
	ti.Focus()

	return Model{
		app:     app,
		opts:    opts,
		focus:   FocusPrompt,
		spinner: s,
		input:   ti,
	}
}

// Run starts the program and blocks until it exits.
func Run(app *lynx.App, opts Options) error {
	_, err := tea.NewProgram(New(app, opts), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-8)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generatedMsg:
		m.generating = false
		if msg.err == nil && len(msg.images) > 0 {
			m.cursor = 0
			m.input.SetValue("")
			m.status = SuccessStyle.Render(pluralImages(len(msg.images)) + " generated")
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.status = ErrorStyle.Render("Export failed: " + msg.err.Error())
		} else {
			m.status = SuccessStyle.Render("Saved " + msg.path)
		}
		return m, nil

	case deletedMsg:
		m.cursor = min(m.cursor, max(0, len(m.app.History())-1))
		if msg.ok {
			m.status = DimmedStyle.Render("Deleted " + msg.id)
		}
		return m, nil
	}

	if m.focus == FocusPrompt {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.app.State().HasError() {
			m.app.DismissError()
			return m, nil
		}
		if m.focus == FocusPrompt {
			m.focus = FocusHistory
			m.input.Blur()
		}
		return m, nil

	case "tab":
		return m.cycleTier(), nil
	}

	if m.focus == FocusPrompt {
		return m.handlePromptKey(msg)
	}
	return m.handleHistoryKey(msg)
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.busy() {
			return m, nil
		}
		prompt := m.input.Value()
		if err := lynx.ValidatePrompt(prompt); err != nil {
			return m, nil
		}
		m.status = ""
		m.generating = true
		return m, tea.Batch(m.spinner.Tick, m.generate(prompt))

	case "down":
		m.focus = FocusHistory
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	history := m.app.History()

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "i", "/":
		m.focus = FocusPrompt
		return m, m.input.Focus()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.focus = FocusPrompt
			return m, m.input.Focus()
		}

	case "down", "j":
		if m.cursor < len(history)-1 {
			m.cursor++
		}

	case "d":
		if m.cursor < len(history) {
			return m, m.delete(history[m.cursor].ID)
		}

	case "x":
		if m.cursor < len(history) {
			return m, m.export(history[m.cursor])
		}

	case "r":
		return m.cycleRatio(), nil

	case "s":
		return m.cycleSize(), nil
	}
	return m, nil
}

func (m Model) busy() bool {
	return m.generating || m.app.State().IsGenerating
}

func (m Model) cycleTier() Model {
	tiers := m.app.Tiers()
	if len(tiers) == 0 {
		return m
	}
	settings := m.app.Settings()
	i := slices.IndexFunc(tiers, func(t lynx.TierInfo) bool { return t.Model == settings.Model })
	next := tiers[(i+1)%len(tiers)]
	m.changeSettings(settings.WithModel(next.Model))
	return m
}

func (m Model) cycleRatio() Model {
	settings := m.app.Settings()
	m.changeSettings(settings.WithAspectRatio(nextOf(lynx.AspectRatios, settings.AspectRatio)))
	return m
}

// cycleSize only applies to tiers that accept an explicit size.
func (m Model) cycleSize() Model {
	settings := m.app.Settings()
	tier, ok := lynx.TierByModel(m.app.Tiers(), settings.Model)
	if !ok || !tier.SupportsImageSize {
		m.status = DimmedStyle.Render("Size is fixed for " + lynx.TierLabel(settings.Model))
		return m
	}
	sizes := tier.ImageConstraints.SupportedSizes
	if len(sizes) == 0 {
		sizes = lynx.ImageSizes
	}
	m.changeSettings(settings.WithImageSize(nextOf(sizes, settings.ImageSize)))
	return m
}

func (m *Model) changeSettings(s lynx.GenerationSettings) {
	if err := m.app.ChangeSettings(s); err != nil {
		m.status = ErrorStyle.Render(err.Error())
	}
}

// nextOf returns the element after cur, wrapping. An unknown cur yields
// the first element.
func nextOf[T comparable](values []T, cur T) T {
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// generate runs one submit. App records the error itself, so the message
// only carries what the view needs to reset the prompt.
func (m Model) generate(prompt string) tea.Cmd {
	app, timeout := m.app, m.opts.Timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		images, err := app.Submit(ctx, prompt)
		return generatedMsg{images: images, err: err}
	}
}

func (m Model) export(img lynx.GeneratedImage) tea.Cmd {
	dir := m.opts.ExportDir
	return func() tea.Msg {
		path, err := lynx.Export(img, dir)
		return exportedMsg{path: path, err: err}
	}
}

func (m Model) delete(id string) tea.Cmd {
	app := m.app
	return func() tea.Msg {
		return deletedMsg{id: id, ok: app.DeleteImage(context.Background(), id)}
	}
}
