package adaptive

import (
	"time"

	"github.com/verte-zerg/signquiz/internal/alphabet"
)

// QuizItem is one presented prompt.
type QuizItem struct {
	Modality Modality
	Target   alphabet.Letter
	Started  time.Time
	// Attempts counts wrong text submissions so far.
	Attempts int
}

// Elapsed returns the seconds since the item was shown.
func (it QuizItem) Elapsed(now time.Time) float64 {
	d := now.Sub(it.Started).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// Selector draws quiz items from a model.
type Selector struct {
	Model       *ErrorModel
	Rand        Rand
	Exploration float64
}

// NewSelector returns a Selector over model.
func NewSelector(model *ErrorModel, rng Rand, exploration float64) *Selector {
	return &Selector{Model: model, Rand: rng, Exploration: exploration}
}

// Next chooses a modality, then a letter for it.
func (s *Selector) Next(now time.Time) (QuizItem, error) {
	mod, err := SelectModality(s.Model, s.Rand, s.Exploration)
	if err != nil {
		return QuizItem{}, err
	}
	return s.NextFor(mod, now)
}

// NextFor chooses a letter for a fixed modality.
func (s *Selector) NextFor(mod Modality, now time.Time) (QuizItem, error) {
	letter, err := SelectLetter(s.Model, mod, s.Rand, s.Exploration)
	if err != nil {
		return QuizItem{}, err
	}
	return QuizItem{Modality: mod, Target: letter, Started: now}, nil
}
