// Package model defines shared data structures.
package model

import "time"

// Session modes.
const (
	ModeQuiz   = "quiz"
	ModePhrase = "phrase"
)

// Config defines quiz settings.
type Config struct {
	Exploration  float64
	Alphabet     string
	Seed         int64
	Camera       bool
	VideoTimeout time.Duration
	ImagesDir    string
}

// CameraConfig defines camera and recognition pipeline settings.
type CameraConfig struct {
	Index         int
	FrameInterval time.Duration
	MaxHands      int
	MinConfidence float64
	MinTracking   float64
	MinScore      float64
	ScriptPath    string
	PythonPath    string
	TemplatesPath string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionStats captures a completed quiz or phrase session.
type SessionStats struct {
	ID          string
	Mode        string
	StartedAt   time.Time
	EndedAt     time.Time
	Alphabet    string
	Exploration float64
	Items       int
	Correct     int
	Incorrect   int
	Skipped     int
	DurationMs  int64
}

// LetterStats stores per-letter, per-modality outcomes for a session.
type LetterStats struct {
	Letter    string
	Modality  string
	Trials    int
	Correct   int
	Incorrect int
	ErrorSum  float64
}

// LetterAggregate aggregates letter stats across sessions.
type LetterAggregate struct {
	Letter    string
	Modality  string
	Trials    int
	Correct   int
	Incorrect int
	ErrorSum  float64
}

// Accuracy returns correct over trials, or 0 with no trials.
func (a LetterAggregate) Accuracy() float64 {
	if a.Trials == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Trials)
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  string
	Mode       string
	EndedAt    time.Time
	Items      int
	Correct    int
	Incorrect  int
	DurationMs int64
}
