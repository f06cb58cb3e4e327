// Package adaptive implements the error model and the exploration-aware policy
// that chooses the next quiz modality and letter.
package adaptive

import (
	"errors"

	"github.com/verte-zerg/signquiz/internal/alphabet"
)

var (
	// ErrInvalidModelState is returned when a trial count or error sum is below its floor of 1.
	ErrInvalidModelState = errors.New("invalid error model state")
	// ErrEmptyAlphabet is returned when a model is built over no letters.
	ErrEmptyAlphabet = alphabet.ErrEmptyAlphabet
	// ErrUnknownLetter is returned when a trial names a letter outside the model's alphabet.
	ErrUnknownLetter = errors.New("unknown letter")
	// ErrInvalidTrial is returned for negative attempt counts or elapsed times.
	ErrInvalidTrial = errors.New("invalid trial outcome")
	// ErrInvalidExplorationRate is returned when epsilon is outside [0, 1].
	ErrInvalidExplorationRate = errors.New("exploration rate must be between 0 and 1")
)
