// Package phrase walks a learner through fingerspelling a phrase letter by letter.
package phrase

import (
	"errors"
	"sort"
	"time"

	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/model"
)

// Modality labels phrase outcomes in session history.
const Modality = "phrase"

// DefaultPhrases are offered when no phrases are configured.
var DefaultPhrases = []string{
	"HELLO WORLD",
	"LEARN ASL",
	"SIGN LANGUAGE",
	"PRACTICE MAKES PERFECT",
	"GOOD MORNING",
	"NICE TO MEET YOU",
}

// ErrEmptyPhrase is returned when a phrase has no letters after filtering.
var ErrEmptyPhrase = errors.New("phrase has no letters in the alphabet")

// Walker tracks progress through one phrase.
type Walker struct {
	alpha   alphabet.Alphabet
	text    []rune
	pos     int
	errors  int
	correct int
	skipped int
	started time.Time
	counts  map[alphabet.Letter]*model.LetterStats
}

// New filters text against alpha and positions the walker on the first letter.
func New(text string, alpha alphabet.Alphabet) (*Walker, error) {
	filtered := alpha.FilterPhrase(text)
	if filtered == "" {
		return nil, ErrEmptyPhrase
	}
	w := &Walker{
		alpha:  alpha,
		text:   []rune(filtered),
		counts: map[alphabet.Letter]*model.LetterStats{},
	}
	w.skipSpaces()
	return w, nil
}

// Random picks one of phrases using intn, falling back to DefaultPhrases.
func Random(phrases []string, intn func(int) int) string {
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	return phrases[intn(len(phrases))]
}

// Text returns the filtered phrase.
func (w *Walker) Text() string {
	return string(w.text)
}

// Position returns the index of the current letter.
func (w *Walker) Position() int {
	return w.pos
}

// Len returns the phrase length including spaces.
func (w *Walker) Len() int {
	return len(w.text)
}

// Done reports whether every letter has been signed or skipped.
func (w *Walker) Done() bool {
	return w.pos >= len(w.text)
}

// Current returns the letter to sign next.
func (w *Walker) Current() (alphabet.Letter, bool) {
	if w.Done() {
		return 0, false
	}
	return alphabet.Letter(w.text[w.pos]), true
}

// Errors returns wrong predictions plus skips.
func (w *Walker) Errors() int {
	return w.errors
}

// Correct returns the number of letters signed correctly.
func (w *Walker) Correct() int {
	return w.correct
}

// Start stamps the first observation time for duration tracking.
func (w *Walker) Start(now time.Time) {
	if w.started.IsZero() {
		w.started = now
	}
}

// Started returns when the walk started.
func (w *Walker) Started() time.Time {
	return w.started
}

// Observe checks a recognized letter. A match advances past the letter and
// any following spaces; a mismatch counts as an error.
func (w *Walker) Observe(letter alphabet.Letter) bool {
	cur, ok := w.Current()
	if !ok {
		return false
	}
	entry := w.entry(cur)
	entry.Trials++
	if letter != cur {
		w.errors++
		entry.Incorrect++
		entry.ErrorSum++
		return false
	}
	w.correct++
	entry.Correct++
	w.pos++
	w.skipSpaces()
	return true
}

// Skip counts an error and moves to the next letter.
func (w *Walker) Skip() {
	cur, ok := w.Current()
	if !ok {
		return
	}
	entry := w.entry(cur)
	entry.Trials++
	entry.Incorrect++
	entry.ErrorSum++
	w.errors++
	w.skipped++
	w.pos++
	w.skipSpaces()
}

func (w *Walker) skipSpaces() {
	for w.pos < len(w.text) && w.text[w.pos] == ' ' {
		w.pos++
	}
}

func (w *Walker) entry(l alphabet.Letter) *model.LetterStats {
	e, ok := w.counts[l]
	if !ok {
		e = &model.LetterStats{Letter: l.String(), Modality: Modality}
		w.counts[l] = e
	}
	return e
}

// Attempted reports whether any letter was signed, mis-signed or skipped.
func (w *Walker) Attempted() bool {
	return len(w.counts) > 0
}

// Summary returns the walk as a phrase session with per-letter outcomes.
func (w *Walker) Summary(id string, end time.Time) (model.SessionStats, []model.LetterStats) {
	start := w.started
	if start.IsZero() {
		start = end
	}
	stats := model.SessionStats{
		ID:         id,
		Mode:       model.ModePhrase,
		StartedAt:  start,
		EndedAt:    end,
		Alphabet:   w.alpha.String(),
		Items:      w.correct + w.skipped,
		Correct:    w.correct,
		Incorrect:  w.errors,
		Skipped:    w.skipped,
		DurationMs: end.Sub(start).Milliseconds(),
	}
	letters := make([]model.LetterStats, 0, len(w.counts))
	for _, e := range w.counts {
		letters = append(letters, *e)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i].Letter < letters[j].Letter })
	return stats, letters
}
