package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	contactbook "github.com/smileynet/contactbook"
	"github.com/smileynet/contactbook/internal/config"
	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/manager"
	"github.com/smileynet/contactbook/internal/shell"
	"github.com/smileynet/contactbook/internal/storage"
	"github.com/smileynet/contactbook/internal/storage/filestore"
	"github.com/smileynet/contactbook/internal/storage/sqlite"
	"github.com/smileynet/contactbook/pkg/logging"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals holds flags shared by every command.
type Globals struct {
	Config   string `help:"Extra config file, applied over user and project config." type:"existingfile"`
	Book     string `help:"Address book location (overrides storage.path)."`
	Backend  string `help:"Storage backend: file or sqlite."`
	LogLevel string `help:"Log level: debug, info, warn, error."`
}

// CLI is the top-level command structure for contactbook.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Shell   ShellCmd         `cmd:"" default:"withargs" help:"Start an interactive session (default)."`
	Exec    ExecCmd          `cmd:"" help:"Run one command line against the address book and save it."`
	Init    InitCmd          `cmd:"" help:"Create an empty address book."`
}

// ShellCmd starts an interactive session.
type ShellCmd struct {
	Plain    bool `help:"Force the line shell even if stdout is a TTY."`
	NoBanner bool `help:"Do not print the command list on start."`
}

// ExecCmd runs a single command line.
type ExecCmd struct {
	Words []string `arg:"" help:"Command line, e.g. add contact mark 1990-05-21."`
}

// InitCmd writes the first, empty snapshot.
type InitCmd struct {
	Force bool `help:"Overwrite an existing address book."`
}

// errBookExists is returned by init when a snapshot is already present.
var errBookExists = errors.New("address book already exists (use --force to overwrite)")

// loadConfig merges user, project, and --config layers, then env and flags.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(config.UserPath(), config.ProjectPath, g.Config)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if g.Book != "" {
		cfg.Storage.Path = g.Book
	}
	if g.Backend != "" {
		cfg.Storage.Backend = g.Backend
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openGateway returns the configured storage backend and a closer for it.
func openGateway(ctx context.Context, cfg *config.Config) (storage.Gateway, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		store, err := sqlite.New(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, nil, &manager.PersistenceError{Op: "opening", Err: err}
		}
		return store, store.Close, nil
	default:
		format, err := filestore.ParseFormat(cfg.Storage.Format, cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		return filestore.New(cfg.Storage.Path, format), func() error { return nil }, nil
	}
}

// setupLogging routes logs to w at the configured level.
func setupLogging(cfg *config.Config, w io.Writer) {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Setup(w, level)
}

// tuiLogWriter keeps logs off the TUI screen: they go to log.file, or nowhere.
func tuiLogWriter(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.Log.File == "" {
		return io.Discard, func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, f.Close, nil
}

// helpDir holds an optional help.txt that replaces the embedded help.
const helpDir = ".contactbook"

// openDispatcher loads the book and binds the verb table to it.
func openDispatcher(ctx context.Context, cfg *config.Config, help string) (*manager.Dispatcher, func() error, error) {
	gw, closeGW, err := openGateway(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	m, err := manager.New(ctx, gw)
	if err != nil {
		_ = closeGW()
		return nil, nil, err
	}
	return manager.NewDispatcher(m, manager.WithHelp(help)), closeGW, nil
}

// Run executes the shell command.
func (c *ShellCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}

	plain := c.Plain || cfg.Shell.Plain || !shell.IsTTY(os.Stdout)
	if plain {
		setupLogging(cfg, os.Stderr)
	} else {
		w, closeLog, err := tuiLogWriter(cfg)
		if err != nil {
			return fmt.Errorf("shell: %w", err)
		}
		defer func() { _ = closeLog() }()
		setupLogging(cfg, w)
	}

	help, err := contactbook.Help(helpDir)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}

	ctx := context.Background()
	d, closeGW, err := openDispatcher(ctx, cfg, help)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	defer func() { _ = closeGW() }()

	banner := ""
	if !c.NoBanner {
		banner = strings.TrimRight(help, "\n")
	}

	sh := shell.New(d, shell.Options{
		ForcePlain: plain,
		Prompt:     cfg.Shell.Prompt,
		Banner:     banner,
	})
	if err := sh.Run(ctx); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}

// Run executes the exec command.
func (c *ExecCmd) Run(g *Globals) error {
	return c.run(context.Background(), g, os.Stdout)
}

func (c *ExecCmd) run(ctx context.Context, g *Globals, w io.Writer) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	setupLogging(cfg, os.Stderr)

	help, err := contactbook.Help(helpDir)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	d, closeGW, err := openDispatcher(ctx, cfg, help)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	defer func() { _ = closeGW() }()

	res, err := d.Execute(ctx, strings.Join(c.Words, " "))
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	_, _ = fmt.Fprintln(w, res.Output)

	if !res.Exit {
		if _, err := d.Manager().Goodbye(ctx); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}
	return nil
}

// Run executes the init command.
func (c *InitCmd) Run(g *Globals) error {
	return c.run(context.Background(), g, os.Stdout)
}

func (c *InitCmd) run(ctx context.Context, g *Globals, w io.Writer) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	setupLogging(cfg, os.Stderr)

	if c.Force && cfg.Storage.Backend == config.BackendSQLite {
		if err := sqlite.Remove(cfg.Storage.Path); err != nil {
			return fmt.Errorf("init: %w", &manager.PersistenceError{Op: "removing", Err: err})
		}
	}

	gw, closeGW, err := openGateway(ctx, cfg)
	if errors.Is(err, storage.ErrCorruptSnapshot) {
		return fmt.Errorf("init: %s: unreadable snapshot present: %w", cfg.Storage.Path, errBookExists)
	}
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer func() { _ = closeGW() }()

	if !c.Force {
		_, err := gw.Load(ctx)
		switch {
		case err == nil:
			return fmt.Errorf("init: %s: %w", cfg.Storage.Path, errBookExists)
		case errors.Is(err, storage.ErrCorruptSnapshot):
			return fmt.Errorf("init: %s: unreadable snapshot present: %w", cfg.Storage.Path, errBookExists)
		case !errors.Is(err, storage.ErrNoSnapshot):
			return fmt.Errorf("init: %w", &manager.PersistenceError{Op: "loading", Err: err})
		}
	}

	if err := gw.Save(ctx, contact.NewAddressBook()); err != nil {
		return fmt.Errorf("init: %w", &manager.PersistenceError{Op: "saving", Err: err})
	}
	slog.Info("Address book initialized", "path", cfg.Storage.Path, "backend", cfg.Storage.Backend)
	_, _ = fmt.Fprintf(w, "Initialized empty address book at %s\n", cfg.Storage.Path)
	return nil
}

// Exit codes.
const (
	exitSuccess     = 0
	exitPersistence = 1
	exitSetup       = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var pe *manager.PersistenceError
	if errors.As(err, &pe) {
		return exitPersistence
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contactbook"),
		kong.Description("A command-line address book."),
		kong.Vars{"version": version + " " + commit + " " + date},
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
