package storage

import (
	"fmt"

	"github.com/smileynet/contactbook/internal/contact"
)

// DocumentVersion is the snapshot schema version written by this package.
const DocumentVersion = 1

// Document is the serialized form of an address book.
type Document struct {
	Version  int     `json:"version" yaml:"version"`
	Contacts []Entry `json:"contacts" yaml:"contacts"`
}

// Entry is the serialized form of one record.
type Entry struct {
	Name     string   `json:"name" yaml:"name"`
	Phones   []string `json:"phones" yaml:"phones"`
	Birthday string   `json:"birthday,omitempty" yaml:"birthday,omitempty"`
}

// Encode converts book into a Document, preserving record and phone order.
func Encode(book *contact.AddressBook) Document {
	doc := Document{Version: DocumentVersion, Contacts: make([]Entry, 0, book.Len())}
	for r := range book.Records() {
		doc.Contacts = append(doc.Contacts, Entry{
			Name:     r.Name().Value(),
			Phones:   r.PhoneValues(),
			Birthday: r.Birthday().Value(),
		})
	}
	return doc
}

// Decode rebuilds an address book from doc. Every field is revalidated, and any
// failure is reported as ErrCorruptSnapshot.
func Decode(doc Document) (*contact.AddressBook, error) {
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, doc.Version)
	}

	book := contact.NewAddressBook()
	for i, e := range doc.Contacts {
		r, err := decodeEntry(e)
		if err != nil {
			return nil, fmt.Errorf("%w: contact %d: %v", ErrCorruptSnapshot, i, err)
		}
		if _, dup := book.Find(e.Name); dup {
			return nil, fmt.Errorf("%w: duplicate contact %q", ErrCorruptSnapshot, e.Name)
		}
		book.AddRecord(r)
	}
	return book, nil
}

func decodeEntry(e Entry) (*contact.Record, error) {
	var (
		r   *contact.Record
		err error
	)
	if e.Birthday != "" {
		r, err = contact.NewRecordWithBirthday(e.Name, e.Birthday)
	} else {
		r, err = contact.NewRecord(e.Name)
	}
	if err != nil {
		return nil, err
	}
	for _, p := range e.Phones {
		if _, err := contact.NewPhone(p); err != nil {
			return nil, err
		}
		r.AddPhone(p)
	}
	return r, nil
}
