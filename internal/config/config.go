// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/contactbook/pkg/logging"
)

// Backend names accepted by storage.backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all contactbook configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	Shell   Shell   `yaml:"shell"`
	Log     Log     `yaml:"log"`
}

// Storage selects where and how the address book snapshot is kept.
type Storage struct {
	Backend string `yaml:"backend"` // "file" | "sqlite"
	Path    string `yaml:"path"`
	Format  string `yaml:"format"` // "json" | "yaml"; empty means by extension
}

// Shell holds interactive session settings.
type Shell struct {
	Prompt string `yaml:"prompt"`
	Plain  bool   `yaml:"plain"`
}

// Log holds logging settings.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // TUI sessions only; empty discards
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: Storage{
			Backend: BackendFile,
			Path:    filepath.Join(".contactbook", "book.json"),
		},
		Shell: Shell{
			Prompt: "Enter a command: ",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// UserPath returns the per-user config location, or "" when the home
// directory cannot be determined.
func UserPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "contactbook", "config.yaml")
}

// ProjectPath is the config file consulted in the working directory.
const ProjectPath = ".contactbook/config.yaml"

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files and empty paths are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("config: storage.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Storage.Backend)
	}
	if c.Storage.Path == "" {
		return errors.New("config: storage.path cannot be empty")
	}
	switch c.Storage.Format {
	case "", "json", "yaml":
	default:
		return fmt.Errorf("config: storage.format must be \"json\" or \"yaml\", got %q", c.Storage.Format)
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Format != "" {
		return fmt.Errorf("config: storage.format does not apply to the %s backend", BackendSQLite)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTBOOK_BOOK, CONTACTBOOK_BACKEND, CONTACTBOOK_FORMAT, LOG_LEVEL.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CONTACTBOOK_BOOK"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("CONTACTBOOK_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("CONTACTBOOK_FORMAT"); v != "" {
		c.Storage.Format = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Storage *rawStorage `yaml:"storage"`
	Shell   *rawShell   `yaml:"shell"`
	Log     *rawLog     `yaml:"log"`
}

type rawStorage struct {
	Backend *string `yaml:"backend"`
	Path    *string `yaml:"path"`
	Format  *string `yaml:"format"`
}

type rawShell struct {
	Prompt *string `yaml:"prompt"`
	Plain  *bool   `yaml:"plain"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if s := layer.Storage; s != nil {
		set(&c.Storage.Backend, s.Backend)
		set(&c.Storage.Path, s.Path)
		set(&c.Storage.Format, s.Format)
	}
	if s := layer.Shell; s != nil {
		set(&c.Shell.Prompt, s.Prompt)
		set(&c.Shell.Plain, s.Plain)
	}
	if l := layer.Log; l != nil {
		set(&c.Log.Level, l.Level)
		set(&c.Log.File, l.File)
	}
}
