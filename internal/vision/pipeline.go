// Package vision runs the camera, hand detector and letter classifier as one loop.
package vision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/capture"
	"github.com/verte-zerg/signquiz/internal/classifier"
	"github.com/verte-zerg/signquiz/internal/detector"
	"github.com/verte-zerg/signquiz/internal/logging"
)

// DefaultInterval is the pause between frames.
const DefaultInterval = 10 * time.Millisecond

// DefaultMinStreak is how many consecutive frames must agree before a letter counts.
const DefaultMinStreak = 3

// Observation is the result of one processed frame.
type Observation struct {
	At time.Time
	// Hand reports whether a hand was found.
	Hand bool
	// Landmarks is the first detected hand, nil without one.
	Landmarks *detector.HandLandmarks
	// Letter and Confidence hold the frame's prediction when Predicted is set.
	Letter     alphabet.Letter
	Confidence float64
	Predicted  bool
	// Stable is set once the same letter was predicted MinStreak frames in a row.
	Stable bool
}

// Pipeline reads frames at Interval and emits one Observation per frame.
type Pipeline struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Classifier classifier.Classifier
	Interval   time.Duration
	MinStreak  int
	Logger     *logging.Logger
	Now        func() time.Time
}

// Run opens the camera and processes frames until ctx is done. Camera and
// detector are closed on return. Frame and detection errors are logged and skipped.
func (p *Pipeline) Run(ctx context.Context, emit func(Observation)) error {
	if p.Camera == nil || p.Detector == nil {
		return errors.New("pipeline requires a camera and a detector")
	}
	logger := p.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	minStreak := p.MinStreak
	if minStreak <= 0 {
		minStreak = DefaultMinStreak
	}

	if err := p.Camera.Open(); err != nil {
		return fmt.Errorf("failed to open camera: %w", err)
	}
	defer func() {
		if cerr := p.Camera.Close(); cerr != nil {
			logger.Warn("failed to close camera", "error", cerr)
		}
		if cerr := p.Detector.Close(); cerr != nil {
			logger.Warn("failed to close detector", "error", cerr)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		last   alphabet.Letter
		streak int
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		obs, err := p.process()
		if err != nil {
			logger.Debug("frame skipped", "error", err)
			continue
		}
		obs.At = now()
		if obs.Predicted && obs.Letter == last {
			streak++
		} else if obs.Predicted {
			last, streak = obs.Letter, 1
		} else {
			last, streak = 0, 0
		}
		obs.Stable = obs.Predicted && streak >= minStreak
		emit(obs)
	}
}

func (p *Pipeline) process() (Observation, error) {
	frame, err := p.Camera.ReadFrame()
	if err != nil {
		return Observation{}, fmt.Errorf("failed to read frame: %w", err)
	}
	hands, err := p.Detector.Detect(frame)
	frame.Close()
	if err != nil {
		return Observation{}, fmt.Errorf("failed to detect hands: %w", err)
	}
	if len(hands) == 0 {
		return Observation{}, nil
	}
	hand := hands[0]
	obs := Observation{Hand: true, Landmarks: &hand}
	if p.Classifier == nil {
		return obs, nil
	}
	if pred, ok := p.Classifier.Classify(&hand); ok {
		obs.Letter = pred.Letter
		obs.Confidence = pred.Confidence
		obs.Predicted = true
	}
	return obs, nil
}
