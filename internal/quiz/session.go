// Package quiz drives an adaptive quiz session: it draws items, turns learner
// responses into trial outcomes and keeps a running summary.
package quiz

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/signquiz/internal/adaptive"
	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/logging"
	"github.com/verte-zerg/signquiz/internal/model"
)

// DefaultVideoTimeout is how long a video item waits for a matching sign.
const DefaultVideoTimeout = 15 * time.Second

// ErrNoItem is returned when a response arrives with no active item.
var ErrNoItem = errors.New("no active quiz item")

// Config defines session behaviour.
type Config struct {
	Exploration  float64
	VideoEnabled bool
	// VideoTimeout records a video item as missed after this long. Zero disables it.
	VideoTimeout time.Duration
}

// Outcome is the result of a learner response.
type Outcome struct {
	Item      adaptive.QuizItem
	Correct   bool
	Resolved  bool
	Increment float64
}

type letterKey struct {
	letter   alphabet.Letter
	modality adaptive.Modality
}

// Session owns one error model for the lifetime of a quiz run.
type Session struct {
	id       string
	cfg      Config
	model    *adaptive.ErrorModel
	selector *adaptive.Selector
	now      func() time.Time
	logger   *logging.Logger

	started time.Time
	current adaptive.QuizItem
	active  bool

	items     int
	correct   int
	incorrect int
	skipped   int
	letters   map[letterKey]*model.LetterStats
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession builds a fresh model over alpha and a selector using rng.
func NewSession(alpha alphabet.Alphabet, rng adaptive.Rand, cfg Config, opts ...Option) (*Session, error) {
	m, err := adaptive.NewErrorModel(alpha)
	if err != nil {
		return nil, fmt.Errorf("failed to create error model: %w", err)
	}
	if cfg.Exploration < 0 || cfg.Exploration > 1 {
		return nil, fmt.Errorf("%w: %v", adaptive.ErrInvalidExplorationRate, cfg.Exploration)
	}
	s := &Session{
		id:       uuid.NewString(),
		cfg:      cfg,
		model:    m,
		selector: adaptive.NewSelector(m, rng, cfg.Exploration),
		now:      time.Now,
		logger:   logging.Nop(),
		letters:  map[letterKey]*model.LetterStats{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	s.started = s.now()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// Alphabet returns the quiz letters.
func (s *Session) Alphabet() alphabet.Alphabet {
	return s.model.Alphabet()
}

// DisableVideo stops drawing video items, e.g. after the camera fails. An
// active video item is dropped unrecorded.
func (s *Session) DisableVideo() {
	s.cfg.VideoEnabled = false
	if s.active && s.current.Modality == adaptive.Video {
		s.active = false
		s.items--
	}
}

// Current returns the active item, if any.
func (s *Session) Current() (adaptive.QuizItem, bool) {
	return s.current, s.active
}

// Snapshot returns the error model statistics without mutating them.
func (s *Session) Snapshot() adaptive.Snapshot {
	return s.model.Snapshot()
}

// Next draws and activates a new item. Any unresolved item is dropped unrecorded.
func (s *Session) Next() (adaptive.QuizItem, error) {
	now := s.now()
	var (
		item adaptive.QuizItem
		err  error
	)
	if s.cfg.VideoEnabled {
		item, err = s.selector.Next(now)
	} else {
		item, err = s.selector.NextFor(adaptive.Text, now)
	}
	if err != nil {
		return adaptive.QuizItem{}, fmt.Errorf("failed to select quiz item: %w", err)
	}
	s.current = item
	s.active = true
	s.items++
	s.logger.Debug("item selected", "modality", item.Modality.String(), "letter", item.Target.String())
	return item, nil
}

// SubmitText checks a typed answer for a text item. Every wrong answer is a
// trial of its own; the correct answer resolves the item.
func (s *Session) SubmitText(answer string) (Outcome, error) {
	if !s.active || s.current.Modality != adaptive.Text {
		return Outcome{}, ErrNoItem
	}
	letter, ok := s.model.Alphabet().ParseLetter(answer)
	correct := ok && letter == s.current.Target
	if !correct {
		s.current.Attempts++
		if err := s.model.RecordTextTrial(s.current.Target, s.current.Attempts, false); err != nil {
			return Outcome{}, fmt.Errorf("failed to record text trial: %w", err)
		}
		s.track(s.current, false, adaptive.TextIncrement(s.current.Attempts, false))
		return Outcome{Item: s.current, Increment: 1}, nil
	}
	inc := adaptive.TextIncrement(s.current.Attempts, true)
	if err := s.model.RecordTextTrial(s.current.Target, s.current.Attempts, true); err != nil {
		return Outcome{}, fmt.Errorf("failed to record text trial: %w", err)
	}
	s.track(s.current, true, inc)
	s.correct++
	return s.resolve(true, inc), nil
}

// Observe handles a recognized sign for a video item. Only a prediction that
// matches the target is a trial; anything else leaves the item open.
func (s *Session) Observe(letter alphabet.Letter) (Outcome, error) {
	if !s.active || s.current.Modality != adaptive.Video {
		return Outcome{}, ErrNoItem
	}
	if letter != s.current.Target {
		return Outcome{Item: s.current}, nil
	}
	elapsed := s.current.Elapsed(s.now())
	if err := s.model.RecordVideoTrial(s.current.Target, elapsed, true); err != nil {
		return Outcome{}, fmt.Errorf("failed to record video trial: %w", err)
	}
	inc := adaptive.VideoIncrement(elapsed, true)
	s.track(s.current, true, inc)
	s.correct++
	return s.resolve(true, inc), nil
}

// Expired reports whether the active video item has run past the timeout.
func (s *Session) Expired() bool {
	if !s.active || s.current.Modality != adaptive.Video || s.cfg.VideoTimeout <= 0 {
		return false
	}
	return s.now().Sub(s.current.Started) >= s.cfg.VideoTimeout
}

// Skip abandons the active item. A skipped video item counts as a miss; a
// skipped text item has already been charged for its wrong answers.
func (s *Session) Skip() (Outcome, error) {
	if !s.active {
		return Outcome{}, ErrNoItem
	}
	s.skipped++
	if s.current.Modality == adaptive.Video {
		return s.missVideo()
	}
	return s.resolve(false, 0), nil
}

// Timeout records the active video item as missed.
func (s *Session) Timeout() (Outcome, error) {
	if !s.active || s.current.Modality != adaptive.Video {
		return Outcome{}, ErrNoItem
	}
	return s.missVideo()
}

func (s *Session) missVideo() (Outcome, error) {
	elapsed := s.current.Elapsed(s.now())
	if err := s.model.RecordVideoTrial(s.current.Target, elapsed, false); err != nil {
		return Outcome{}, fmt.Errorf("failed to record video trial: %w", err)
	}
	s.track(s.current, false, 1)
	return s.resolve(false, 1), nil
}

func (s *Session) resolve(correct bool, inc float64) Outcome {
	out := Outcome{Item: s.current, Correct: correct, Resolved: true, Increment: inc}
	s.active = false
	s.logger.Debug("item resolved",
		"modality", out.Item.Modality.String(),
		"letter", out.Item.Target.String(),
		"correct", correct,
		"attempts", out.Item.Attempts,
		"increment", inc,
	)
	return out
}

func (s *Session) track(item adaptive.QuizItem, correct bool, inc float64) {
	key := letterKey{letter: item.Target, modality: item.Modality}
	ls, ok := s.letters[key]
	if !ok {
		ls = &model.LetterStats{Letter: item.Target.String(), Modality: item.Modality.String()}
		s.letters[key] = ls
	}
	ls.Trials++
	if correct {
		ls.Correct++
	} else {
		ls.Incorrect++
		s.incorrect++
	}
	ls.ErrorSum += inc
}

// Counts returns correct trials, incorrect trials and presented items.
func (s *Session) Counts() (correct, incorrect, items int) {
	return s.correct, s.incorrect, s.items
}

// Summary returns the session stats and per-letter outcomes.
func (s *Session) Summary() (model.SessionStats, []model.LetterStats) {
	end := s.now()
	stats := model.SessionStats{
		ID:          s.id,
		Mode:        model.ModeQuiz,
		StartedAt:   s.started,
		EndedAt:     end,
		Alphabet:    s.model.Alphabet().String(),
		Exploration: s.cfg.Exploration,
		Items:       s.items,
		Correct:     s.correct,
		Incorrect:   s.incorrect,
		Skipped:     s.skipped,
		DurationMs:  end.Sub(s.started).Milliseconds(),
	}
	letters := make([]model.LetterStats, 0, len(s.letters))
	for _, ls := range s.letters {
		letters = append(letters, *ls)
	}
	sort.Slice(letters, func(i, j int) bool {
		if letters[i].Letter != letters[j].Letter {
			return letters[i].Letter < letters[j].Letter
		}
		return letters[i].Modality < letters[j].Modality
	})
	return stats, letters
}
