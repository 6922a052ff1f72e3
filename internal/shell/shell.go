// Package shell runs interactive command sessions against a Dispatcher.
package shell

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/smileynet/contactbook/internal/manager"
)

// eofLine is dispatched when input ends before an exit verb, so the book is
// still saved.
const eofLine = "exit"

// Shell reads command lines until an exit verb succeeds.
type Shell interface {
	Run(ctx context.Context) error
}

// Options configures shell creation.
type Options struct {
	In         io.Reader // Input source (default: os.Stdin).
	Out        io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force the line shell even if TTY.
	Prompt     string
	Banner     string // Printed once before the first prompt; empty prints nothing.
}

// New returns a TUI shell when Out is a TTY, or a plain line shell
// otherwise. ForcePlain overrides TTY detection.
func New(d *manager.Dispatcher, opts Options) Shell {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.ForcePlain || !IsTTY(opts.Out) {
		return NewPlain(d, opts)
	}
	return &TUIShell{dispatcher: d, opts: opts}
}

// IsTTY reports whether w is connected to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
