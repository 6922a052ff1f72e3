package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/smileynet/contactbook/internal/contact"
)

// ErrMalformedCommand indicates a line has fewer tokens than its verb requires.
var ErrMalformedCommand = errors.New("manager: malformed command")

// Fixed user-facing messages returned by Guard.
const (
	MsgNotFound     = "Error: Contact not found"
	MsgInvalidInput = "Error: Invalid input"
	MsgInvalidFmt   = "Error: Invalid command format"
)

// ArityError reports too many arguments for a verb.
type ArityError struct {
	Verb string
	Min  int
	Max  int
	Got  int
}

func (e *ArityError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("%s takes %d %s but %d were given", e.Verb, e.Max, plural(e.Max), e.Got)
	}
	return fmt.Sprintf("%s takes %d to %d arguments but %d were given", e.Verb, e.Min, e.Max, e.Got)
}

func plural(n int) string {
	if n == 1 {
		return "argument"
	}
	return "arguments"
}

// PersistenceError reports a failed load or save of the address book.
type PersistenceError struct {
	Op  string // "loading" or "saving"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("manager: %s address book: %s", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Handler runs one command with its positional arguments and returns the text
// to display.
type Handler func(ctx context.Context, args []string) (string, error)

// Guard wraps h so that domain failures become fixed display strings.
// Errors outside that set, such as a failed save, are returned unchanged.
func Guard(h Handler) Handler {
	return func(ctx context.Context, args []string) (string, error) {
		out, err := h(ctx, args)
		if err == nil {
			return out, nil
		}
		if msg, ok := userMessage(err); ok {
			slog.Debug("Command rejected", "error", err)
			return msg, nil
		}
		return "", err
	}
}

func userMessage(err error) (string, bool) {
	var arity *ArityError
	switch {
	case errors.Is(err, contact.ErrNotFound):
		return MsgNotFound, true
	case errors.Is(err, contact.ErrValidation):
		return MsgInvalidInput, true
	case errors.Is(err, ErrMalformedCommand):
		return MsgInvalidFmt, true
	case errors.As(err, &arity):
		return "Error: " + arity.Error(), true
	default:
		return "", false
	}
}

// withArity rejects argument lists outside [lo, hi] before calling h.
func withArity(verb string, lo, hi int, h Handler) Handler {
	return func(ctx context.Context, args []string) (string, error) {
		if len(args) < lo {
			return "", fmt.Errorf("%w: %s needs %d %s, got %d", ErrMalformedCommand, verb, lo, plural(lo), len(args))
		}
		if len(args) > hi {
			return "", &ArityError{Verb: verb, Min: lo, Max: hi, Got: len(args)}
		}
		return h(ctx, args)
	}
}
