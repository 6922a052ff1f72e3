package storage

import (
	"context"
	"fmt"

	"github.com/smileynet/contactbook/internal/contact"
)

// Ensure Memory implements Gateway.
var _ Gateway = (*Memory)(nil)

// Memory keeps the snapshot as an in-process Document. Packages that depend on
// a Gateway use it in their tests.
type Memory struct {
	doc   *Document
	Saves int
	// SaveErr, when set, is returned by Save instead of storing the book.
	SaveErr error
}

// NewMemory returns a Memory gateway holding an empty snapshot.
func NewMemory() *Memory {
	return &Memory{doc: &Document{Version: DocumentVersion}}
}

// NewEmptyMemory returns a Memory gateway with no snapshot, so Load fails.
func NewEmptyMemory() *Memory {
	return &Memory{}
}

// Load decodes the stored Document into a fresh address book.
func (m *Memory) Load(_ context.Context) (*contact.AddressBook, error) {
	if m.doc == nil {
		return nil, fmt.Errorf("%w: memory", ErrNoSnapshot)
	}
	return Decode(*m.doc)
}

// Save encodes book and replaces the stored Document.
func (m *Memory) Save(_ context.Context, book *contact.AddressBook) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	doc := Encode(book)
	m.doc = &doc
	m.Saves++
	return nil
}

// Document returns the last saved Document, or nil if there is none.
func (m *Memory) Document() *Document {
	return m.doc
}
