package quiz

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/verte-zerg/signquiz/internal/adaptive"
	"github.com/verte-zerg/signquiz/internal/alphabet"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestSession(t *testing.T, cfg Config) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	s, err := NewSession(alphabet.Default(), rand.New(rand.NewSource(3)), cfg, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, clock
}

func wrongLetter(target alphabet.Letter) string {
	if target == 'A' {
		return "B"
	}
	return "A"
}

func TestTextOnlyWhenVideoDisabled(t *testing.T) {
	s, _ := newTestSession(t, Config{Exploration: 0.3})
	for i := 0; i < 50; i++ {
		item, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if item.Modality != adaptive.Text {
			t.Fatalf("expected text modality without camera, got %s", item.Modality)
		}
	}
}

func TestSubmitTextWrongThenRight(t *testing.T) {
	s, _ := newTestSession(t, Config{Exploration: 0.3})
	item, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	idx, _ := s.Alphabet().Index(item.Target)

	for i := 0; i < 3; i++ {
		out, err := s.SubmitText(wrongLetter(item.Target))
		if err != nil {
			t.Fatalf("SubmitText wrong: %v", err)
		}
		if out.Resolved || out.Correct || out.Increment != 1 {
			t.Fatalf("unexpected wrong outcome %+v", out)
		}
	}
	out, err := s.SubmitText(item.Target.String())
	if err != nil {
		t.Fatalf("SubmitText right: %v", err)
	}
	if !out.Resolved || !out.Correct || math.Abs(out.Increment-0.75) > 1e-9 {
		t.Fatalf("unexpected final outcome %+v", out)
	}
	if out.Item.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", out.Item.Attempts)
	}

	snap := s.Snapshot()
	if snap.Text.Trials != 5 {
		t.Fatalf("expected 5 text trials, got %d", snap.Text.Trials)
	}
	if math.Abs(snap.Letters[idx].TextError-4.75) > 1e-9 {
		t.Fatalf("expected letter text error 4.75, got %v", snap.Letters[idx].TextError)
	}
	if _, active := s.Current(); active {
		t.Fatalf("expected item to be resolved")
	}
	if _, err := s.SubmitText("A"); !errors.Is(err, ErrNoItem) {
		t.Fatalf("expected ErrNoItem after resolution, got %v", err)
	}
}

func TestSubmitTextAcceptsLowerCase(t *testing.T) {
	s, _ := newTestSession(t, Config{})
	item, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	lower := string(rune(item.Target) + ('a' - 'A'))
	out, err := s.SubmitText(lower)
	if err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	if !out.Correct || out.Increment != 0 {
		t.Fatalf("expected first-try correct with no error, got %+v", out)
	}
}

func nextVideo(t *testing.T, s *Session) adaptive.QuizItem {
	t.Helper()
	for i := 0; i < 200; i++ {
		item, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if item.Modality == adaptive.Video {
			return item
		}
	}
	t.Fatalf("no video item drawn")
	return adaptive.QuizItem{}
}

func TestObserveVideo(t *testing.T) {
	s, clock := newTestSession(t, Config{Exploration: 0.3, VideoEnabled: true})
	item := nextVideo(t, s)
	before := s.Snapshot().Video

	clock.Advance(time.Second)
	other := alphabet.Letter('A')
	if item.Target == 'A' {
		other = 'B'
	}
	out, err := s.Observe(other)
	if err != nil {
		t.Fatalf("Observe mismatch: %v", err)
	}
	if out.Resolved {
		t.Fatalf("expected mismatch to leave item open")
	}
	if s.Snapshot().Video != before {
		t.Fatalf("expected mismatch not to be a trial")
	}

	clock.Advance(4 * time.Second)
	out, err = s.Observe(item.Target)
	if err != nil {
		t.Fatalf("Observe match: %v", err)
	}
	if !out.Resolved || !out.Correct || math.Abs(out.Increment-0.5) > 1e-9 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	after := s.Snapshot().Video
	if after.Trials != before.Trials+1 || math.Abs(after.TotalError-before.TotalError-0.5) > 1e-9 {
		t.Fatalf("unexpected video stats %+v -> %+v", before, after)
	}
}

func TestVideoTimeoutAndSkip(t *testing.T) {
	s, clock := newTestSession(t, Config{Exploration: 0.3, VideoEnabled: true, VideoTimeout: 10 * time.Second})
	nextVideo(t, s)
	before := s.Snapshot().Video

	clock.Advance(9 * time.Second)
	if s.Expired() {
		t.Fatalf("expected item not expired at 9s")
	}
	clock.Advance(time.Second)
	if !s.Expired() {
		t.Fatalf("expected item expired at 10s")
	}
	out, err := s.Timeout()
	if err != nil {
		t.Fatalf("Timeout: %v", err)
	}
	if !out.Resolved || out.Correct || out.Increment != 1 {
		t.Fatalf("unexpected timeout outcome %+v", out)
	}
	after := s.Snapshot().Video
	if after.Trials != before.Trials+1 || after.TotalError != before.TotalError+1 {
		t.Fatalf("expected one missed trial, got %+v -> %+v", before, after)
	}

	nextVideo(t, s)
	out, err = s.Skip()
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if out.Correct || out.Increment != 1 {
		t.Fatalf("expected skipped video to count as miss, got %+v", out)
	}
}

func TestSkipTextRecordsNothingExtra(t *testing.T) {
	s, _ := newTestSession(t, Config{})
	item, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := s.SubmitText(wrongLetter(item.Target)); err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	before := s.Snapshot().Text
	if _, err := s.Skip(); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if s.Snapshot().Text != before {
		t.Fatalf("expected skip of text item to leave model unchanged")
	}
}

func TestSummary(t *testing.T) {
	s, clock := newTestSession(t, Config{Exploration: 0.3})
	item, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := s.SubmitText(wrongLetter(item.Target)); err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	if _, err := s.SubmitText(item.Target.String()); err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	clock.Advance(90 * time.Second)

	stats, letters := s.Summary()
	if stats.ID == "" || stats.ID != s.ID() {
		t.Fatalf("expected session id, got %q", stats.ID)
	}
	if stats.Items != 1 || stats.Correct != 1 || stats.Incorrect != 1 {
		t.Fatalf("unexpected summary %+v", stats)
	}
	if stats.DurationMs != 90000 {
		t.Fatalf("expected 90000ms, got %d", stats.DurationMs)
	}
	if len(letters) != 1 || letters[0].Letter != item.Target.String() || letters[0].Trials != 2 {
		t.Fatalf("unexpected letter stats %+v", letters)
	}
	if math.Abs(letters[0].ErrorSum-1.5) > 1e-9 {
		t.Fatalf("expected error sum 1.5, got %v", letters[0].ErrorSum)
	}
}

func TestNewSessionRejectsBadConfig(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewSession(alphabet.Alphabet{}, rng, Config{}); !errors.Is(err, adaptive.ErrEmptyAlphabet) {
		t.Fatalf("expected ErrEmptyAlphabet, got %v", err)
	}
	if _, err := NewSession(alphabet.Default(), rng, Config{Exploration: 2}); !errors.Is(err, adaptive.ErrInvalidExplorationRate) {
		t.Fatalf("expected ErrInvalidExplorationRate, got %v", err)
	}
}

func TestDisableVideoDropsActiveItem(t *testing.T) {
	s, _ := newTestSession(t, Config{Exploration: 0.3, VideoEnabled: true})
	nextVideo(t, s)
	before := s.Snapshot()
	_, _, items := s.Counts()

	s.DisableVideo()
	if _, ok := s.Current(); ok {
		t.Fatalf("expected active video item to be dropped")
	}
	if _, _, after := s.Counts(); after != items-1 {
		t.Fatalf("expected dropped item not to count, got %d items", after)
	}
	if s.Snapshot().Video != before.Video {
		t.Fatalf("expected no video trial to be recorded")
	}
	for i := 0; i < 20; i++ {
		item, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if item.Modality != adaptive.Text {
			t.Fatalf("expected only text items after disabling video")
		}
	}
}
