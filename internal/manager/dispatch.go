package manager

import (
	"context"
	"fmt"
	"strings"
)

// Result is the outcome of one dispatched line.
type Result struct {
	Output string
	// Exit is set after an exit-class verb has saved the book.
	Exit bool
}

// command describes one verb: its argument bounds, usage, and bound operation.
type command struct {
	verb  string
	min   int
	max   int
	usage string
	exit  bool
	run   func(ctx context.Context, m *Manager, args []string) (string, error)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

var commands = []command{
	{verb: "hello", usage: "hello", run: func(_ context.Context, m *Manager, _ []string) (string, error) {
		return m.Hello(), nil
	}},
	{verb: "add contact", min: 1, max: 2, usage: "add contact {name} {birthday}", run: func(_ context.Context, m *Manager, a []string) (string, error) {
		return m.AddContact(a[0], arg(a, 1))
	}},
	{verb: "add", min: 2, max: 2, usage: "add {name} {phone}", run: func(_ context.Context, m *Manager, a []string) (string, error) {
		return m.AddPhone(a[0], a[1])
	}},
	{verb: "change", min: 3, max: 3, usage: "change {name} {phone} {new_phone}", run: func(_ context.Context, m *Manager, a []string) (string, error) {
		return m.ChangePhone(a[0], a[1], a[2])
	}},
	{verb: "remove", min: 2, max: 2, usage: "remove {name} {phone}", run: func(_ context.Context, m *Manager, a []string) (string, error) {
		return m.RemovePhone(a[0], a[1])
	}},
	{verb: "phones", min: 1, max: 1, usage: "phones {name}", run: func(_ context.Context, m *Manager, a []string) (string, error) {
		return m.Phones(a[0])
	}},
	{verb: "birthday", min: 1, max: 1, usage: "birthday {name}", run: func(_ context.Context, m *Manager, a []string) (string, error) {
		return m.Birthday(a[0])
	}},
	{verb: "show all", usage: "show all", run: func(_ context.Context, m *Manager, _ []string) (string, error) {
		return m.ShowAll(), nil
	}},
	{verb: "search", min: 1, max: 1, usage: "search {string}", run: func(_ context.Context, m *Manager, a []string) (string, error) {
		return m.Search(a[0]), nil
	}},
	{verb: "good bye", exit: true, usage: "good bye", run: goodbye},
	{verb: "close", exit: true, usage: "close", run: goodbye},
	{verb: "exit", exit: true, usage: "exit", run: goodbye},
}

func goodbye(ctx context.Context, m *Manager, _ []string) (string, error) {
	return m.Goodbye(ctx)
}

// twoTokenVerbs maps a leading token to the second token that completes it.
var twoTokenVerbs = map[string]string{
	"show": "all",
	"good": "bye",
}

// Parse lower-cases and tokenizes line into a verb and its arguments.
// "add contact", "show all", and "good bye" are two-token verbs.
func Parse(line string) (verb string, args []string, err error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%w: empty line", ErrMalformedCommand)
	}

	if second, ok := twoTokenVerbs[fields[0]]; ok {
		if len(fields) < 2 {
			return "", nil, fmt.Errorf("%w: %q needs %q", ErrMalformedCommand, fields[0], second)
		}
		if fields[1] == second {
			return fields[0] + " " + second, fields[2:], nil
		}
		return fields[0], fields[1:], nil
	}

	if fields[0] == "add" && len(fields) >= 2 && fields[1] == "contact" {
		return "add contact", fields[2:], nil
	}
	return fields[0], fields[1:], nil
}

// Dispatcher routes command lines to a Manager's operations.
type Dispatcher struct {
	manager  *Manager
	handlers map[string]Handler
	exits    map[string]bool
	help     string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHelp sets the text returned by the help verb.
func WithHelp(text string) DispatcherOption {
	return func(d *Dispatcher) { d.help = strings.TrimRight(text, "\n") }
}

// NewDispatcher binds every verb to m. Each handler is arity-checked and
// wrapped with Guard.
func NewDispatcher(m *Manager, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		manager:  m,
		handlers: make(map[string]Handler, len(commands)),
		exits:    make(map[string]bool),
		help:     Usage(),
	}
	for _, c := range commands {
		run := c.run
		bound := func(ctx context.Context, args []string) (string, error) {
			return run(ctx, m, args)
		}
		d.handlers[c.verb] = Guard(withArity(c.verb, c.min, c.max, bound))
		if c.exit {
			d.exits[c.verb] = true
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Manager returns the Manager the verbs are bound to.
func (d *Dispatcher) Manager() *Manager { return d.manager }

// Execute parses and runs one line. The returned error is non-nil only for
// failures Guard does not absorb, such as a failed save on exit.
func (d *Dispatcher) Execute(ctx context.Context, line string) (Result, error) {
	verb, args, err := Parse(line)
	if err != nil {
		if msg, ok := userMessage(err); ok {
			return Result{Output: msg}, nil
		}
		return Result{}, err
	}

	if verb == "help" {
		return Result{Output: d.help}, nil
	}

	h, ok := d.handlers[verb]
	if !ok {
		return Result{Output: fmt.Sprintf("Error: Unknown command %q", verb)}, nil
	}

	out, err := h(ctx, args)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out, Exit: d.exits[verb]}, nil
}

// Usage returns one line per verb.
func Usage() string {
	var b strings.Builder
	b.WriteString("Commands:")
	for _, c := range commands {
		fmt.Fprintf(&b, "\n\t%s", c.usage)
	}
	return b.String()
}
