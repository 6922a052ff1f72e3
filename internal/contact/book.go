package contact

import (
	"iter"
	"log/slog"
	"slices"
)

// AddressBook holds records keyed by name, preserving insertion order.
// It is not safe for concurrent use.
type AddressBook struct {
	records map[string]*Record
	order   []string
}

// NewAddressBook returns an empty AddressBook.
func NewAddressBook() *AddressBook {
	return &AddressBook{records: make(map[string]*Record)}
}

// AddRecord stores record under its name. An existing record with the same
// name is replaced entirely and keeps its position in the iteration order.
func (b *AddressBook) AddRecord(record *Record) {
	key := record.Name().Value()
	if _, exists := b.records[key]; !exists {
		b.order = append(b.order, key)
	}
	b.records[key] = record
}

// Find returns the record stored under name.
func (b *AddressBook) Find(name string) (*Record, bool) {
	r, ok := b.records[name]
	return r, ok
}

// Delete removes the record stored under name and reports whether it existed.
func (b *AddressBook) Delete(name string) bool {
	if _, ok := b.records[name]; !ok {
		slog.Debug("Delete of missing contact", "name", name)
		return false
	}
	delete(b.records, name)
	b.order = slices.DeleteFunc(b.order, func(k string) bool { return k == name })
	return true
}

// Len returns the number of records.
func (b *AddressBook) Len() int { return len(b.order) }

// All iterates over (index, record) pairs in insertion order. Each range loop
// works on a snapshot taken when it starts, so mutating the book mid-loop does
// not change what the loop yields.
func (b *AddressBook) All() iter.Seq2[int, *Record] {
	return func(yield func(int, *Record) bool) {
		for i, r := range b.snapshot() {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Records iterates over records in insertion order, with the same snapshot
// semantics as All.
func (b *AddressBook) Records() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, r := range b.snapshot() {
			if !yield(r) {
				return
			}
		}
	}
}

func (b *AddressBook) snapshot() []*Record {
	out := make([]*Record, len(b.order))
	for i, k := range b.order {
		out[i] = b.records[k]
	}
	return out
}
