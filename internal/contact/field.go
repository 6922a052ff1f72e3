// Package contact implements the validated contact model: field types,
// Record, and the insertion-ordered AddressBook.
package contact

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation indicates a field value was rejected by its predicate.
var ErrValidation = errors.New("contact: invalid value")

// ErrNotFound indicates a lookup found no matching contact or phone.
var ErrNotFound = errors.New("contact: not found")

// BirthdayLayout is the only accepted birthday format (YYYY-MM-DD).
const BirthdayLayout = "2006-01-02"

// PhoneLength is the exact number of digits in a phone number.
const PhoneLength = 10

func invalid(field, value string) error {
	return fmt.Errorf("%w: %s %q", ErrValidation, field, value)
}

// Name is a contact name: one or more ASCII letters.
type Name struct {
	value string
}

// NewName validates raw and returns a Name.
func NewName(raw string) (Name, error) {
	var n Name
	if !n.Validate(raw) {
		return Name{}, invalid("name", raw)
	}
	n.value = raw
	return n, nil
}

// Validate reports whether raw is non-empty and entirely ASCII alphabetic.
func (Name) Validate(raw string) bool {
	if raw == "" {
		return false
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Value returns the stored name.
func (n Name) Value() string { return n.value }

func (n Name) String() string { return n.value }

// Phone is a phone number of exactly PhoneLength decimal digits.
type Phone struct {
	value string
}

// NewPhone validates raw and returns a Phone.
func NewPhone(raw string) (Phone, error) {
	var p Phone
	if err := p.Set(raw); err != nil {
		return Phone{}, err
	}
	return p, nil
}

// Validate reports whether raw consists of exactly PhoneLength ASCII digits.
func (Phone) Validate(raw string) bool {
	if len(raw) != PhoneLength {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}

// Set replaces the stored value. On failure the previous value is kept.
func (p *Phone) Set(raw string) error {
	if !p.Validate(raw) {
		return invalid("phone", raw)
	}
	p.value = raw
	return nil
}

// Value returns the stored digits.
func (p Phone) Value() string { return p.value }

func (p Phone) String() string { return p.value }

// Birthday is an optional date of birth. The zero value means unknown.
type Birthday struct {
	value string
	date  time.Time
}

// ParseBirthday validates raw against BirthdayLayout and returns a known Birthday.
func ParseBirthday(raw string) (Birthday, error) {
	var b Birthday
	if err := b.Set(raw); err != nil {
		return Birthday{}, err
	}
	return b, nil
}

// Validate reports whether raw is a real calendar date in YYYY-MM-DD form.
func (Birthday) Validate(raw string) bool {
	_, err := time.Parse(BirthdayLayout, raw)
	return err == nil
}

// Set replaces the stored date. On failure the previous value is kept.
func (b *Birthday) Set(raw string) error {
	d, err := time.Parse(BirthdayLayout, raw)
	if err != nil {
		return invalid("birthday", raw)
	}
	b.value = raw
	b.date = d
	return nil
}

// Known reports whether a birthday has been set.
func (b Birthday) Known() bool { return b.value != "" }

// Value returns the stored date string, or "" when unknown.
func (b Birthday) Value() string { return b.value }

// String renders the date, or "None" when unknown.
func (b Birthday) String() string {
	if !b.Known() {
		return "None"
	}
	return b.value
}
