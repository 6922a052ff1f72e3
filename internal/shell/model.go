package shell

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contactbook/internal/manager"
)

// entryKind classifies a transcript line for styling.
type entryKind int

const (
	entryBanner entryKind = iota
	entryEcho
	entryOutput
	entryError
)

type entry struct {
	kind entryKind
	text string
}

// chromeHeight is the number of rows below the transcript: input and help bar.
const chromeHeight = 2

// Model is the Bubble Tea model for an interactive session.
type Model struct {
	ctx        context.Context
	dispatcher *manager.Dispatcher
	prompt     string

	input      textinput.Model
	viewport   viewport.Model
	help       help.Model
	keys       keyMap
	transcript []entry

	done bool
	err  error
}

// NewModel creates a Model that dispatches each submitted line through d.
func NewModel(ctx context.Context, d *manager.Dispatcher, prompt, banner string) Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Focus()

	m := Model{
		ctx:        ctx,
		dispatcher: d,
		prompt:     prompt,
		input:      in,
		viewport:   viewport.New(0, 0),
		help:       help.New(),
		keys:       KeyMap(),
	}
	if banner != "" {
		m.transcript = append(m.transcript, entry{kind: entryBanner, text: banner})
	}
	m.refresh()
	return m
}

// Err returns the failure that ended the session, if any.
func (m Model) Err() error { return m.err }

// Done reports whether the session has ended.
func (m Model) Done() bool { return m.done }

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 0)
		m.input.Width = max(msg.Width-lipgloss.Width(m.prompt)-1, 0)
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.done {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.execute(eofLine)
		case key.Matches(msg, m.keys.Submit):
			line := m.input.Value()
			m.input.Reset()
			return m.execute(line)
		case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// execute dispatches one line and records it with its result.
func (m Model) execute(line string) (tea.Model, tea.Cmd) {
	m.transcript = append(m.transcript, entry{kind: entryEcho, text: m.prompt + line})

	res, err := m.dispatcher.Execute(m.ctx, line)
	if err != nil {
		m.transcript = append(m.transcript, entry{kind: entryError, text: "Error: " + err.Error()})
		m.done = true
		m.err = err
		m.refresh()
		return m, tea.Quit
	}

	kind := entryOutput
	if strings.HasPrefix(res.Output, "Error:") {
		kind = entryError
	}
	m.transcript = append(m.transcript, entry{kind: kind, text: res.Output})
	m.refresh()

	if res.Exit {
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) refresh() {
	lines := make([]string, len(m.transcript))
	for i, e := range m.transcript {
		lines[i] = render(e)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

func render(e entry) string {
	switch e.kind {
	case entryBanner:
		return bannerStyle.Render(e.text)
	case entryEcho:
		return echoStyle.Render(e.text)
	case entryError:
		return errorStyle.Render(e.text)
	default:
		return outputStyle.Render(e.text)
	}
}

// View renders the transcript, the input line, and the help bar. Once the
// session ends only the last transcript entry remains on screen.
func (m Model) View() string {
	if m.done {
		if n := len(m.transcript); n > 0 {
			return render(m.transcript[n-1]) + "\n"
		}
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.input.View(),
		m.help.View(m.keys),
	)
}
