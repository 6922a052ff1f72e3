package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/smileynet/contactbook/internal/manager"
)

// PlainShell prompts for and answers one line at a time.
type PlainShell struct {
	dispatcher *manager.Dispatcher
	in         io.Reader
	out        io.Writer
	prompt     string
	banner     string
}

// NewPlain creates a PlainShell. Nil readers and writers in opts are not
// defaulted; use New for that.
func NewPlain(d *manager.Dispatcher, opts Options) *PlainShell {
	return &PlainShell{
		dispatcher: d,
		in:         opts.In,
		out:        opts.Out,
		prompt:     opts.Prompt,
		banner:     opts.Banner,
	}
}

// Run loops until an exit verb saves the book. End of input counts as exit.
// The returned error is a read failure, context cancellation, or a failed save.
func (s *PlainShell) Run(ctx context.Context) error {
	if s.banner != "" {
		_, _ = fmt.Fprintln(s.out, s.banner)
	}

	sc := bufio.NewScanner(s.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = fmt.Fprint(s.out, s.prompt)

		line := eofLine
		if sc.Scan() {
			line = sc.Text()
		} else {
			if err := sc.Err(); err != nil {
				return fmt.Errorf("shell: reading input: %w", err)
			}
			_, _ = fmt.Fprintln(s.out)
			slog.Debug("input closed, saving and exiting")
		}

		res, err := s.dispatcher.Execute(ctx, line)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(s.out, res.Output)
		if res.Exit {
			return nil
		}
	}
}
