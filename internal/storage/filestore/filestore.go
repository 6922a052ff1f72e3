// Package filestore persists address book snapshots as a single JSON or YAML file.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/storage"
)

// Ensure FileStore implements storage.Gateway.
var _ storage.Gateway = (*FileStore)(nil)

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat indicates a Format other than json or yaml.
var ErrUnknownFormat = errors.New("filestore: unknown format")

// ParseFormat converts a config value into a Format. An empty value selects
// by file extension, defaulting to JSON.
func ParseFormat(s, path string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return FormatYAML, nil
		}
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FileStore reads and writes one snapshot file.
type FileStore struct {
	path   string
	format Format
}

// New creates a FileStore for the snapshot at path.
func New(path string, format Format) *FileStore {
	return &FileStore{path: path, format: format}
}

// Load reads and decodes the snapshot file.
func (s *FileStore) Load(_ context.Context) (*contact.AddressBook, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNoSnapshot, s.path)
		}
		return nil, fmt.Errorf("filestore: reading %s: %w", s.path, err)
	}

	doc, err := s.unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", storage.ErrCorruptSnapshot, s.path, err)
	}

	book, err := storage.Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("filestore: %s: %w", s.path, err)
	}
	slog.Debug("Snapshot loaded", "path", s.path, "format", s.format, "contacts", book.Len())
	return book, nil
}

// Save writes the complete snapshot to a temporary file and renames it over
// the previous one.
func (s *FileStore) Save(_ context.Context, book *contact.AddressBook) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("filestore: creating directory: %w", err)
	}

	data, err := s.marshal(storage.Encode(book))
	if err != nil {
		return fmt.Errorf("filestore: marshaling: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("filestore: replacing %s: %w", s.path, err)
	}

	slog.Debug("Snapshot saved", "path", s.path, "format", s.format, "contacts", book.Len())
	return nil
}

func (s *FileStore) marshal(doc storage.Document) ([]byte, error) {
	switch s.format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		return json.MarshalIndent(doc, "", "  ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, s.format)
	}
}

func (s *FileStore) unmarshal(data []byte) (storage.Document, error) {
	var doc storage.Document
	switch s.format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return storage.Document{}, err
		}
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return storage.Document{}, err
		}
	default:
		return storage.Document{}, fmt.Errorf("%w: %q", ErrUnknownFormat, s.format)
	}
	return doc, nil
}
