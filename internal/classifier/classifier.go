// Package classifier maps hand landmarks to fingerspelled letters.
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/detector"
)

// DefaultMinScore is the lowest template score accepted as a prediction.
const DefaultMinScore = 0.1

// ErrNoTemplates is returned when a template file holds no usable letters.
var ErrNoTemplates = errors.New("no letter templates")

// Prediction is a classified letter and its confidence in (0, 1].
type Prediction struct {
	Letter     alphabet.Letter
	Confidence float64
}

// Classifier predicts a letter for a hand.
type Classifier interface {
	Classify(hand *detector.HandLandmarks) (Prediction, bool)
}

// Templates maps each letter to its normalized reference poses.
type Templates map[alphabet.Letter][]detector.HandLandmarks

// TemplateClassifier picks the letter whose nearest template is closest to
// the normalized hand. Confidence is 1/(1+distance).
type TemplateClassifier struct {
	templates Templates
	letters   []alphabet.Letter
	minScore  float64
}

// NewTemplateClassifier normalizes every template and drops letters outside alpha.
func NewTemplateClassifier(templates Templates, alpha alphabet.Alphabet, minScore float64) (*TemplateClassifier, error) {
	c := &TemplateClassifier{templates: Templates{}, minScore: minScore}
	for letter, poses := range templates {
		if !alpha.Contains(letter) || len(poses) == 0 {
			continue
		}
		normalized := make([]detector.HandLandmarks, 0, len(poses))
		for i := range poses {
			normalized = append(normalized, *poses[i].Normalize())
		}
		c.templates[letter] = normalized
		c.letters = append(c.letters, letter)
	}
	if len(c.letters) == 0 {
		return nil, ErrNoTemplates
	}
	sort.Slice(c.letters, func(i, j int) bool { return c.letters[i] < c.letters[j] })
	return c, nil
}

// Letters returns the letters with at least one template.
func (c *TemplateClassifier) Letters() []alphabet.Letter {
	return append([]alphabet.Letter(nil), c.letters...)
}

// Classify returns the best letter, or false when no template scores above the minimum.
func (c *TemplateClassifier) Classify(hand *detector.HandLandmarks) (Prediction, bool) {
	if hand == nil {
		return Prediction{}, false
	}
	input := hand.Normalize()
	best := Prediction{}
	for _, letter := range c.letters {
		for i := range c.templates[letter] {
			score := 1 / (1 + detector.Distance(input, &c.templates[letter][i]))
			if score > best.Confidence {
				best = Prediction{Letter: letter, Confidence: score}
			}
		}
	}
	if best.Confidence < c.minScore || best.Confidence == 0 {
		return Prediction{}, false
	}
	return best, true
}

// Average collapses samples of one pose into a single template.
func Average(samples []detector.HandLandmarks) (detector.HandLandmarks, error) {
	if len(samples) == 0 {
		return detector.HandLandmarks{}, fmt.Errorf("no samples provided")
	}
	var out detector.HandLandmarks
	n := float64(len(samples))
	for i := range samples {
		norm := samples[i].Normalize()
		for p := range norm.Points {
			out.Points[p].X += norm.Points[p].X / n
			out.Points[p].Y += norm.Points[p].Y / n
			out.Points[p].Z += norm.Points[p].Z / n
		}
		out.Score += samples[i].Score / n
	}
	out.Handedness = samples[0].Handedness
	return out, nil
}

// LoadTemplates reads a JSON object keyed by letter, each holding a list of hands.
func LoadTemplates(path string) (Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}
	var raw map[string][]detector.HandLandmarks
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	out := make(Templates, len(raw))
	for key, poses := range raw {
		runes := []rune(key)
		if len(runes) != 1 {
			return nil, fmt.Errorf("invalid template key %q", key)
		}
		out[alphabet.Letter(runes[0])] = poses
	}
	return out, nil
}

// SaveTemplates writes templates atomically as indented JSON.
func SaveTemplates(path string, t Templates) error {
	raw := make(map[string][]detector.HandLandmarks, len(t))
	for letter, poses := range t {
		raw[letter.String()] = poses
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create templates dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "templates-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp templates: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close templates: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}
	return nil
}
