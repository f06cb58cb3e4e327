// Package tui provides the Bubble Tea quiz and phrase practice interfaces.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/model"
	"github.com/verte-zerg/signquiz/internal/signimg"
	"github.com/verte-zerg/signquiz/internal/vision"
)

// tickInterval drives the elapsed timer and the video timeout check.
const tickInterval = 250 * time.Millisecond

var (
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	currentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A9AC8")).Bold(true).Underline(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	targetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A9AC8")).Bold(true).Padding(0, 2).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#3A9AC8"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	imageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0C080"))
	overlayFrame  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#3A9AC8")).Padding(1, 2)
	feedbackStyle = map[feedbackKind]lipgloss.Style{
		feedbackInfo:    mutedStyle,
		feedbackCorrect: correctStyle,
		feedbackWrong:   wrongStyle,
	}
)

// ObservationMsg carries one camera frame result into the update loop.
type ObservationMsg vision.Observation

// CameraErrMsg reports that the camera pipeline stopped.
type CameraErrMsg struct {
	Err error
}

type tickMsg time.Time

// Recorder persists finished sessions. *store.Store satisfies it.
type Recorder interface {
	InsertSession(ctx context.Context, stats model.SessionStats, letters []model.LetterStats) error
}

type feedbackKind int

const (
	feedbackInfo feedbackKind = iota
	feedbackCorrect
	feedbackWrong
)

type feedback struct {
	kind feedbackKind
	text string
}

func (f feedback) render() string {
	if f.text == "" {
		return ""
	}
	return feedbackStyle[f.kind].Render(f.text)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// judge gates stable predictions so one held sign counts once.
type judge struct {
	held bool
}

// take reports whether obs is a fresh stable prediction.
func (j *judge) take(obs ObservationMsg) bool {
	if !obs.Stable {
		j.held = false
		return false
	}
	if j.held {
		return false
	}
	j.held = true
	return true
}

func predictionLine(obs *ObservationMsg) string {
	switch {
	case obs == nil:
		return mutedStyle.Render("Waiting for camera...")
	case !obs.Hand:
		return mutedStyle.Render("No hand detected")
	case !obs.Predicted:
		return mutedStyle.Render("Hand detected, no letter recognized")
	default:
		return fmt.Sprintf("Seen: %s (%.0f%%)", titleStyle.Render(obs.Letter.String()), obs.Confidence*100)
	}
}

func signImage(images *signimg.Cache, letter alphabet.Letter) (string, bool) {
	if images == nil {
		return "", false
	}
	img, err := images.Get(letter)
	if err != nil {
		return "", false
	}
	return imageStyle.Render(img), true
}
