package adaptive

import (
	"fmt"
	"math"

	"github.com/verte-zerg/signquiz/internal/alphabet"
)

// floor is the minimum value of every count and error sum in a model.
const floor = 1.0

// LetterError holds one letter's accumulated error for each modality.
type LetterError struct {
	Letter     alphabet.Letter
	VideoError float64
	TextError  float64
}

// For returns the letter's accumulated error for a modality.
func (e LetterError) For(m Modality) float64 {
	if m == Video {
		return e.VideoError
	}
	return e.TextError
}

// ModalityStats holds one modality's trial count and total error.
type ModalityStats struct {
	Trials     int
	TotalError float64
}

// Rate returns total error divided by trials.
func (s ModalityStats) Rate() float64 {
	return s.TotalError / float64(s.Trials)
}

// Snapshot is a detached copy of a model's statistics.
type Snapshot struct {
	Video   ModalityStats
	Text    ModalityStats
	Letters []LetterError
}

// Modality returns the stats for m.
func (s Snapshot) Modality(m Modality) ModalityStats {
	if m == Video {
		return s.Video
	}
	return s.Text
}

// ErrorModel accumulates per-modality and per-letter error for one quiz session.
// It is not safe for concurrent use.
type ErrorModel struct {
	alpha   alphabet.Alphabet
	video   ModalityStats
	text    ModalityStats
	letters []LetterError
}

// NewErrorModel returns a model with every count and sum at 1.
func NewErrorModel(alpha alphabet.Alphabet) (*ErrorModel, error) {
	if alpha.Len() == 0 {
		return nil, ErrEmptyAlphabet
	}
	m := &ErrorModel{
		alpha:   alpha,
		video:   ModalityStats{Trials: 1, TotalError: floor},
		text:    ModalityStats{Trials: 1, TotalError: floor},
		letters: make([]LetterError, alpha.Len()),
	}
	for i, l := range alpha.Letters() {
		m.letters[i] = LetterError{Letter: l, VideoError: floor, TextError: floor}
	}
	return m, nil
}

// FromSnapshot rebuilds a model from explicit values. Values below the floor
// are rejected, never clamped.
func FromSnapshot(alpha alphabet.Alphabet, s Snapshot) (*ErrorModel, error) {
	if alpha.Len() == 0 {
		return nil, ErrEmptyAlphabet
	}
	if len(s.Letters) != alpha.Len() {
		return nil, fmt.Errorf("%w: %d letter entries for %d letters", ErrInvalidModelState, len(s.Letters), alpha.Len())
	}
	m := &ErrorModel{
		alpha:   alpha,
		video:   s.Video,
		text:    s.Text,
		letters: make([]LetterError, alpha.Len()),
	}
	for _, e := range s.Letters {
		i, ok := alpha.Index(e.Letter)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLetter, rune(e.Letter))
		}
		m.letters[i] = e
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate reports ErrInvalidModelState when any count or sum is below 1,
// including the zero value.
func (m *ErrorModel) Validate() error {
	if m == nil || m.alpha.Len() == 0 || len(m.letters) != m.alpha.Len() {
		return fmt.Errorf("%w: model is not initialized", ErrInvalidModelState)
	}
	if err := validStats("video", m.video); err != nil {
		return err
	}
	if err := validStats("text", m.text); err != nil {
		return err
	}
	for i, e := range m.letters {
		if e.Letter != m.alpha.At(i) {
			return fmt.Errorf("%w: letter entry %d is %q, expected %q", ErrInvalidModelState, i, rune(e.Letter), rune(m.alpha.At(i)))
		}
		if !atLeastFloor(e.VideoError) || !atLeastFloor(e.TextError) {
			return fmt.Errorf("%w: letter %s error below 1", ErrInvalidModelState, e.Letter)
		}
	}
	return nil
}

func validStats(name string, s ModalityStats) error {
	if s.Trials < 1 {
		return fmt.Errorf("%w: %s trials %d below 1", ErrInvalidModelState, name, s.Trials)
	}
	if !atLeastFloor(s.TotalError) {
		return fmt.Errorf("%w: %s total error %v below 1", ErrInvalidModelState, name, s.TotalError)
	}
	return nil
}

func atLeastFloor(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= floor
}

// Alphabet returns the letters the model tracks.
func (m *ErrorModel) Alphabet() alphabet.Alphabet {
	return m.alpha
}

// Snapshot returns a copy of the current statistics. It never mutates the model.
func (m *ErrorModel) Snapshot() Snapshot {
	return Snapshot{
		Video:   m.video,
		Text:    m.text,
		Letters: append([]LetterError(nil), m.letters...),
	}
}

func (m *ErrorModel) stats(mod Modality) *ModalityStats {
	if mod == Video {
		return &m.video
	}
	return &m.text
}
