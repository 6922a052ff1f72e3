package contact

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// Record is one contact: an immutable name, ordered phones, and an optional birthday.
type Record struct {
	name     Name
	phones   []Phone
	birthday Birthday
}

// NewRecord creates a Record with no phones and an unknown birthday.
func NewRecord(name string) (*Record, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	return &Record{name: n}, nil
}

// NewRecordWithBirthday creates a Record with no phones and the given birthday.
func NewRecordWithBirthday(name, birthday string) (*Record, error) {
	r, err := NewRecord(name)
	if err != nil {
		return nil, err
	}
	if err := r.SetBirthday(birthday); err != nil {
		return nil, err
	}
	return r, nil
}

// Name returns the record's name.
func (r *Record) Name() Name { return r.name }

// Birthday returns the record's birthday, which may be unknown.
func (r *Record) Birthday() Birthday { return r.birthday }

// SetBirthday validates raw and stores it. On failure the previous birthday is kept.
func (r *Record) SetBirthday(raw string) error {
	return r.birthday.Set(raw)
}

// Phones returns a copy of the record's phones in order.
func (r *Record) Phones() []Phone {
	return slices.Clone(r.phones)
}

// PhoneValues returns the phone digits in order.
func (r *Record) PhoneValues() []string {
	out := make([]string, len(r.phones))
	for i, p := range r.phones {
		out[i] = p.Value()
	}
	return out
}

// AddPhone appends a phone. It returns false, without an error, if value is not
// a valid phone number.
func (r *Record) AddPhone(value string) bool {
	p, err := NewPhone(value)
	if err != nil {
		slog.Warn("Phone can not be added", "name", r.name.Value(), "phone", value)
		return false
	}
	r.phones = append(r.phones, p)
	return true
}

// RemovePhone removes the first phone equal to value. Missing values are ignored.
func (r *Record) RemovePhone(value string) {
	if i := r.indexOf(value); i >= 0 {
		r.phones = slices.Delete(r.phones, i, i+1)
	}
}

// EditPhone replaces the first phone equal to old with replacement, keeping its
// position. It returns ErrNotFound if old is absent, and false without an error
// if replacement is not a valid phone number.
func (r *Record) EditPhone(old, replacement string) (bool, error) {
	i := r.indexOf(old)
	if i < 0 {
		return false, fmt.Errorf("%w: phone %s in %s", ErrNotFound, old, r.name.Value())
	}
	if err := r.phones[i].Set(replacement); err != nil {
		slog.Warn("Phone can not be replaced",
			"name", r.name.Value(),
			"phone", old,
			"replacement", replacement,
		)
		return false, nil
	}
	return true, nil
}

// FindPhone reports whether value is one of the record's phones.
func (r *Record) FindPhone(value string) bool {
	return r.indexOf(value) >= 0
}

func (r *Record) indexOf(value string) int {
	return slices.IndexFunc(r.phones, func(p Phone) bool { return p.Value() == value })
}

// DaysToBirthday returns the number of days from today until the next birthday.
// A birthday falling on today yields 0. ok is false if the birthday is unknown.
func (r *Record) DaysToBirthday(today time.Time) (days int, ok bool) {
	if !r.birthday.Known() {
		return 0, false
	}
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	bd := r.birthday.date
	next := time.Date(y, bd.Month(), bd.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(start) {
		next = time.Date(y+1, bd.Month(), bd.Day(), 0, 0, 0, 0, time.UTC)
	}
	return int(next.Sub(start).Hours() / 24), true
}
