// Package storage provides the persistence gateway for address book snapshots.
package storage

import (
	"context"
	"errors"

	"github.com/smileynet/contactbook/internal/contact"
)

// ErrNoSnapshot indicates no snapshot exists at the configured location.
var ErrNoSnapshot = errors.New("storage: no snapshot")

// ErrCorruptSnapshot indicates a snapshot exists but cannot be decoded into a
// valid address book.
var ErrCorruptSnapshot = errors.New("storage: corrupt snapshot")

// Gateway loads and saves complete address book snapshots.
// Backends never persist partial state: Save replaces the previous snapshot.
type Gateway interface {
	// Load reads the full snapshot. It returns an error wrapping ErrNoSnapshot
	// if none exists, or ErrCorruptSnapshot if it cannot be decoded.
	Load(ctx context.Context) (*contact.AddressBook, error)

	// Save replaces the stored snapshot with book.
	Save(ctx context.Context, book *contact.AddressBook) error
}
