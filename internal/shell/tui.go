package shell

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contactbook/internal/manager"
)

// TUIShell runs a session as a full-screen Bubble Tea program.
type TUIShell struct {
	dispatcher *manager.Dispatcher
	opts       Options
}

// Run starts the program and blocks until an exit verb or a failed save
// ends the session.
func (s *TUIShell) Run(ctx context.Context) error {
	model := NewModel(ctx, s.dispatcher, s.opts.Prompt, s.opts.Banner)
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(s.opts.In),
		tea.WithOutput(s.opts.Out),
	)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("shell: tui: %w", err)
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
