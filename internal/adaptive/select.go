package adaptive

import (
	"fmt"
	"math"

	"github.com/verte-zerg/signquiz/internal/alphabet"
)

// DefaultExploration is the reference exploration rate.
const DefaultExploration = 0.3

// VideoProbability returns the probability of choosing video on the
// exploitation branch. Error rates are weighted by the square root of the
// other modality's trial share so the less-tested modality gains ground.
func VideoProbability(m *ErrorModel) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return videoProbability(m), nil
}

func videoProbability(m *ErrorModel) float64 {
	videoTrials := float64(m.video.Trials)
	textTrials := float64(m.text.Trials)
	scoreVideo := m.video.Rate() * math.Sqrt(textTrials/videoTrials)
	scoreText := m.text.Rate() * math.Sqrt(videoTrials/textTrials)
	return scoreVideo / (scoreVideo + scoreText)
}

// SelectModality picks the next modality. With probability epsilon it picks
// uniformly, otherwise it favours the modality with the higher balanced error rate.
func SelectModality(m *ErrorModel, rng Rand, epsilon float64) (Modality, error) {
	if err := checkSelect(m, epsilon); err != nil {
		return 0, err
	}
	if rng.Float64() < epsilon {
		return Modalities[rng.Intn(len(Modalities))], nil
	}
	if rng.Float64() < videoProbability(m) {
		return Video, nil
	}
	return Text, nil
}

// LetterWeights returns the per-letter error weights for a modality in alphabet order.
func LetterWeights(m *ErrorModel, mod Modality) ([]float64, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if !mod.valid() {
		return nil, fmt.Errorf("unknown modality %d", int(mod))
	}
	weights := make([]float64, len(m.letters))
	for i, e := range m.letters {
		weights[i] = e.For(mod)
	}
	return weights, nil
}

// SelectLetter picks the next letter for a modality. With probability epsilon
// it picks uniformly, otherwise proportionally to each letter's accumulated error.
func SelectLetter(m *ErrorModel, mod Modality, rng Rand, epsilon float64) (alphabet.Letter, error) {
	if err := checkSelect(m, epsilon); err != nil {
		return 0, err
	}
	weights, err := LetterWeights(m, mod)
	if err != nil {
		return 0, err
	}
	if rng.Float64() < epsilon {
		return m.alpha.At(rng.Intn(len(weights))), nil
	}
	return m.alpha.At(weightedIndex(weights, rng)), nil
}

// weightedIndex does one cumulative-sum draw. Weights are all >= 1.
func weightedIndex(weights []float64, rng Rand) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

func checkSelect(m *ErrorModel, epsilon float64) error {
	if math.IsNaN(epsilon) || epsilon < 0 || epsilon > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidExplorationRate, epsilon)
	}
	return m.Validate()
}
