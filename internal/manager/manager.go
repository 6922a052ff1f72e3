// Package manager implements the contact commands: one operation per verb,
// each reading or mutating the address book and returning display text.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smileynet/contactbook/internal/contact"
	"github.com/smileynet/contactbook/internal/storage"
)

// Manager owns the address book for one session.
type Manager struct {
	book    *contact.AddressBook
	gateway storage.Gateway
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used for birthday arithmetic.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New loads the address book through gw. A load failure is returned as a
// *PersistenceError; there is no fallback to an empty book.
func New(ctx context.Context, gw storage.Gateway, opts ...Option) (*Manager, error) {
	book, err := gw.Load(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "loading", Err: err}
	}

	m := &Manager{book: book, gateway: gw, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	slog.Info("Address book loaded", "contacts", book.Len())
	return m, nil
}

func (m *Manager) find(name string) (*contact.Record, error) {
	r, ok := m.book.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", contact.ErrNotFound, name)
	}
	return r, nil
}

// Hello returns the greeting.
func (m *Manager) Hello() string {
	return "How can I help you"
}

// AddContact creates a record and stores it, replacing any record with the
// same name. An empty birthday means unknown.
func (m *Manager) AddContact(name, birthday string) (string, error) {
	var (
		r   *contact.Record
		err error
	)
	if birthday != "" {
		r, err = contact.NewRecordWithBirthday(name, birthday)
	} else {
		r, err = contact.NewRecord(name)
	}
	if err != nil {
		return "", err
	}

	if _, exists := m.book.Find(name); exists {
		slog.Warn("Replacing existing contact", "name", name)
	}
	m.book.AddRecord(r)
	return fmt.Sprintf("Contact %s with birthday %s added successfully", name, r.Birthday()), nil
}

// AddPhone appends phone to the named contact unless it is already present.
func (m *Manager) AddPhone(name, phone string) (string, error) {
	r, err := m.find(name)
	if err != nil {
		return "", err
	}
	if r.FindPhone(phone) {
		return fmt.Sprintf("Contact %s has already phone %s", name, phone), nil
	}
	if !r.AddPhone(phone) {
		return fmt.Sprintf("Phone %s can not be added to contact %s", phone, name), nil
	}
	return fmt.Sprintf("Contact %s add phone %s", name, phone), nil
}

// ChangePhone replaces phone with replacement on the named contact.
func (m *Manager) ChangePhone(name, phone, replacement string) (string, error) {
	r, err := m.find(name)
	if err != nil {
		return "", err
	}
	if !r.FindPhone(phone) {
		return fmt.Sprintf("Contact %s has no phone as %s", name, phone), nil
	}
	ok, err := r.EditPhone(phone, replacement)
	if err != nil {
		return "", err
	}
	if !ok {
		return fmt.Sprintf("Phone %s can not be replaced by %s", phone, replacement), nil
	}
	return fmt.Sprintf("Contact %s has changed old phone number %s to new one %s", name, phone, replacement), nil
}

// RemovePhone deletes phone from the named contact.
func (m *Manager) RemovePhone(name, phone string) (string, error) {
	r, err := m.find(name)
	if err != nil {
		return "", err
	}
	if !r.FindPhone(phone) {
		return fmt.Sprintf("Contact %s has no phone number as %s", name, phone), nil
	}
	r.RemovePhone(phone)
	return fmt.Sprintf("Contact %s has removed phone number %s", name, phone), nil
}

// Phones lists the named contact's phones.
func (m *Manager) Phones(name string) (string, error) {
	r, err := m.find(name)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Name: %s; Phones: %s", r.Name(), strings.Join(r.PhoneValues(), ", ")), nil
}

// ShowAll renders every contact in insertion order.
func (m *Manager) ShowAll() string {
	var b strings.Builder
	b.WriteString("Address Book")
	for i, r := range m.book.All() {
		fmt.Fprintf(&b, "\n%d contact: \n\tName: %s; \n\tPhones: %s; \n\tBirthday: %s.",
			i+1, r.Name(), strings.Join(r.PhoneValues(), ", "), r.Birthday())
	}
	return b.String()
}

// Birthday reports the days left until the named contact's birthday.
func (m *Manager) Birthday(name string) (string, error) {
	r, err := m.find(name)
	if err != nil {
		return "", err
	}
	days, ok := r.DaysToBirthday(m.now())
	if !ok {
		return "Date of birth is unknown", nil
	}
	return fmt.Sprintf("Left %d days to %s's birthday", days, name), nil
}

// Search matches names case-insensitively, or failing that, phones containing
// query as a substring.
func (m *Manager) Search(query string) string {
	lower := strings.ToLower(query)

	var b strings.Builder
	b.WriteString("Matching with")
	for r := range m.book.Records() {
		name := r.Name().Value()
		if strings.Contains(strings.ToLower(name), lower) {
			fmt.Fprintf(&b, "\n\tname %s", name)
			continue
		}
		for _, p := range r.PhoneValues() {
			if strings.Contains(p, query) {
				fmt.Fprintf(&b, "\n\t%s's phone number %s", name, p)
			}
		}
	}
	return b.String()
}

// Goodbye saves the address book and returns the farewell.
func (m *Manager) Goodbye(ctx context.Context) (string, error) {
	if err := m.gateway.Save(ctx, m.book); err != nil {
		return "", &PersistenceError{Op: "saving", Err: err}
	}
	slog.Info("Address book saved", "contacts", m.book.Len())
	return "Good bye!", nil
}
