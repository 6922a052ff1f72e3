package contact

import (
	"errors"
	"testing"
)

func TestNewName(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "letters", raw: "John"},
		{name: "lowercase", raw: "mark"},
		{name: "digit", raw: "John1", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "space", raw: "john doe", wantErr: true},
		{name: "punctuation", raw: "o'neil", wantErr: true},
		{name: "non-ascii letter", raw: "José", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewName(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("NewName(%q) error = %v, want ErrValidation", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewName(%q) error = %v", tt.raw, err)
			}
			if n.Value() != tt.raw {
				t.Errorf("Value() = %q, want %q", n.Value(), tt.raw)
			}
		})
	}
}

func TestNewPhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "ten digits", raw: "1234567890"},
		{name: "too short", raw: "123", wantErr: true},
		{name: "too long", raw: "12345678901", wantErr: true},
		{name: "letters", raw: "12345abcde", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "plus prefix", raw: "+123456789", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPhone(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("NewPhone(%q) error = %v, want ErrValidation", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPhone(%q) error = %v", tt.raw, err)
			}
			if p.Value() != tt.raw {
				t.Errorf("Value() = %q, want %q", p.Value(), tt.raw)
			}
		})
	}
}

func TestPhone_SetKeepsPreviousOnFailure(t *testing.T) {
	// Given a valid phone
	p, err := NewPhone("1234567890")
	if err != nil {
		t.Fatal(err)
	}

	// When Set is called with an invalid value
	err = p.Set("123")

	// Then the error is returned and the old value stays
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Set() error = %v, want ErrValidation", err)
	}
	if p.Value() != "1234567890" {
		t.Errorf("Value() = %q, want unchanged %q", p.Value(), "1234567890")
	}
}

func TestParseBirthday(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "iso date", raw: "1990-05-21"},
		{name: "leap day", raw: "2000-02-29"},
		{name: "slashes", raw: "1990/05/21", wantErr: true},
		{name: "reordered", raw: "21-05-1990", wantErr: true},
		{name: "not padded", raw: "1990-5-21", wantErr: true},
		{name: "nonexistent day", raw: "1990-02-30", wantErr: true},
		{name: "nonexistent leap day", raw: "1999-02-29", wantErr: true},
		{name: "trailing text", raw: "1990-05-21x", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBirthday(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseBirthday(%q) error = %v, want ErrValidation", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBirthday(%q) error = %v", tt.raw, err)
			}
			if !b.Known() || b.Value() != tt.raw {
				t.Errorf("ParseBirthday(%q) = %+v, want known %q", tt.raw, b, tt.raw)
			}
		})
	}
}

func TestBirthday_ZeroValueIsUnknown(t *testing.T) {
	var b Birthday

	if b.Known() {
		t.Error("zero Birthday Known() = true, want false")
	}
	if b.String() != "None" {
		t.Errorf("String() = %q, want %q", b.String(), "None")
	}
}

func TestBirthday_SetKeepsPreviousOnFailure(t *testing.T) {
	b, err := ParseBirthday("1990-05-21")
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Set("1990/05/21"); !errors.Is(err, ErrValidation) {
		t.Fatalf("Set() error = %v, want ErrValidation", err)
	}
	if b.Value() != "1990-05-21" {
		t.Errorf("Value() = %q, want unchanged %q", b.Value(), "1990-05-21")
	}
}
