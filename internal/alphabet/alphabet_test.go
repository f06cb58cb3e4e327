package alphabet

import (
	"errors"
	"testing"
)

func TestDefaultAlphabet(t *testing.T) {
	a := Default()
	if a.Len() != 24 {
		t.Fatalf("expected 24 letters, got %d", a.Len())
	}
	if a.Contains('J') || a.Contains('Z') {
		t.Fatalf("expected J and Z to be excluded")
	}
	if a.String() != DefaultLetters {
		t.Fatalf("unexpected order %q", a.String())
	}
	if i, ok := a.Index('K'); !ok || i != 9 {
		t.Fatalf("expected K at 9, got %d %v", i, ok)
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmptyAlphabet) {
		t.Fatalf("expected ErrEmptyAlphabet, got %v", err)
	}
	if _, err := Parse(" , "); !errors.Is(err, ErrEmptyAlphabet) {
		t.Fatalf("expected ErrEmptyAlphabet, got %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "plain", in: "ABC", want: "ABC"},
		{name: "lower with commas", in: "a, b, c", want: "ABC"},
		{name: "duplicate", in: "ABA", wantErr: ErrInvalidLetter},
		{name: "digit", in: "A1", wantErr: ErrInvalidLetter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Parse(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.String() != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, a.String())
			}
		})
	}
}

func TestParseLetter(t *testing.T) {
	a := Default()
	if l, ok := a.ParseLetter(" b "); !ok || l != 'B' {
		t.Fatalf("expected B, got %q %v", l, ok)
	}
	if _, ok := a.ParseLetter("j"); ok {
		t.Fatalf("expected J to be rejected")
	}
	if _, ok := a.ParseLetter("ab"); ok {
		t.Fatalf("expected multi-rune input to be rejected")
	}
}

func TestFilterPhrase(t *testing.T) {
	a := Default()
	got := a.FilterPhrase("  Nice to   meet you, Jazz! ")
	if got != "NICE TO MEET YOU A" {
		t.Fatalf("unexpected filtered phrase %q", got)
	}
}
