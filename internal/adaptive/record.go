package adaptive

import (
	"fmt"
	"math"

	"github.com/verte-zerg/signquiz/internal/alphabet"
)

const (
	// FastSignSeconds is the time under which a correct sign adds no error.
	FastSignSeconds = 2.0
	// SlowSignSeconds is the time at which a correct sign adds a full error.
	SlowSignSeconds = 10.0
)

// VideoIncrement converts a video trial into an error increment in [0, 1].
// A miss costs 1; a hit costs nothing under two seconds and grows linearly
// to 1 at ten seconds.
func VideoIncrement(elapsedSeconds float64, correct bool) float64 {
	if !correct {
		return 1
	}
	if elapsedSeconds < FastSignSeconds {
		return 0
	}
	return math.Min(elapsedSeconds/SlowSignSeconds, 1)
}

// TextIncrement converts a text trial into an error increment in [0, 1).
// Each wrong submission costs 1; the final correct answer after n wrong
// submissions costs n/(n+1) on top of those.
func TextIncrement(incorrectAttempts int, correct bool) float64 {
	if !correct {
		return 1
	}
	n := float64(incorrectAttempts)
	return n / (n + 1)
}

// RecordVideoTrial folds the outcome of a video trial into the model.
func (m *ErrorModel) RecordVideoTrial(letter alphabet.Letter, elapsedSeconds float64, correct bool) error {
	if math.IsNaN(elapsedSeconds) || elapsedSeconds < 0 {
		return fmt.Errorf("%w: elapsed %v", ErrInvalidTrial, elapsedSeconds)
	}
	return m.record(Video, letter, VideoIncrement(elapsedSeconds, correct))
}

// RecordTextTrial folds the outcome of a text submission into the model. It is
// called once for every wrong submission and once for the final correct one.
func (m *ErrorModel) RecordTextTrial(letter alphabet.Letter, incorrectAttempts int, correct bool) error {
	if incorrectAttempts < 0 {
		return fmt.Errorf("%w: %d incorrect attempts", ErrInvalidTrial, incorrectAttempts)
	}
	return m.record(Text, letter, TextIncrement(incorrectAttempts, correct))
}

func (m *ErrorModel) record(mod Modality, letter alphabet.Letter, inc float64) error {
	if err := m.Validate(); err != nil {
		return err
	}
	i, ok := m.alpha.Index(letter)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLetter, rune(letter))
	}
	s := m.stats(mod)
	s.TotalError += inc
	s.Trials++
	if mod == Video {
		m.letters[i].VideoError += inc
	} else {
		m.letters[i].TextError += inc
	}
	return nil
}
