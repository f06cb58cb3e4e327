// Package alphabet defines the closed set of fingerspelled letters a quiz draws from.
package alphabet

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// DefaultLetters lists the static ASL letters. J and Z require motion and are excluded.
const DefaultLetters = "ABCDEFGHIKLMNOPQRSTUVWXY"

var (
	// ErrEmptyAlphabet is returned when an alphabet has no letters.
	ErrEmptyAlphabet = errors.New("alphabet is empty")
	// ErrInvalidLetter is returned for non-letter runes or duplicates.
	ErrInvalidLetter = errors.New("invalid letter")
)

// Letter is a single upper-case fingerspelled letter.
type Letter rune

// String returns the letter as a one-rune string.
func (l Letter) String() string {
	return string(rune(l))
}

// Alphabet is an ordered, duplicate-free set of letters.
type Alphabet struct {
	letters []Letter
	index   map[Letter]int
}

// Default returns the reference 24-letter alphabet.
func Default() Alphabet {
	a, err := Parse(DefaultLetters)
	if err != nil {
		panic(err)
	}
	return a
}

// New builds an alphabet from letters, preserving order.
func New(letters []Letter) (Alphabet, error) {
	if len(letters) == 0 {
		return Alphabet{}, ErrEmptyAlphabet
	}
	a := Alphabet{
		letters: make([]Letter, 0, len(letters)),
		index:   make(map[Letter]int, len(letters)),
	}
	for _, l := range letters {
		r := rune(l)
		if r > unicode.MaxASCII || !unicode.IsUpper(r) {
			return Alphabet{}, fmt.Errorf("%w: %q", ErrInvalidLetter, r)
		}
		if _, ok := a.index[l]; ok {
			return Alphabet{}, fmt.Errorf("%w: duplicate %q", ErrInvalidLetter, r)
		}
		a.index[l] = len(a.letters)
		a.letters = append(a.letters, l)
	}
	return a, nil
}

// Parse builds an alphabet from text such as "ABC" or "a, b, c".
// Whitespace and commas are ignored and letters are upper-cased.
func Parse(s string) (Alphabet, error) {
	letters := make([]Letter, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == ',' {
			continue
		}
		letters = append(letters, Letter(unicode.ToUpper(r)))
	}
	return New(letters)
}

// Len returns the number of letters.
func (a Alphabet) Len() int {
	return len(a.letters)
}

// Letters returns a copy of the letters in order.
func (a Alphabet) Letters() []Letter {
	return append([]Letter(nil), a.letters...)
}

// At returns the letter at position i.
func (a Alphabet) At(i int) Letter {
	return a.letters[i]
}

// Index returns the position of l, or false when l is not a member.
func (a Alphabet) Index(l Letter) (int, bool) {
	i, ok := a.index[l]
	return i, ok
}

// Contains reports whether l is a member.
func (a Alphabet) Contains(l Letter) bool {
	_, ok := a.index[l]
	return ok
}

// String returns the letters joined together.
func (a Alphabet) String() string {
	var b strings.Builder
	for _, l := range a.letters {
		b.WriteRune(rune(l))
	}
	return b.String()
}

// ParseLetter converts user input to a single member letter.
func (a Alphabet) ParseLetter(s string) (Letter, bool) {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, false
	}
	l := Letter(unicode.ToUpper(runes[0]))
	return l, a.Contains(l)
}

// FilterPhrase upper-cases a phrase and keeps only member letters and single spaces.
func (a Alphabet) FilterPhrase(phrase string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToUpper(phrase) {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if a.Contains(Letter(r)) {
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}
