package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/logging"
	"github.com/verte-zerg/signquiz/internal/phrase"
	"github.com/verte-zerg/signquiz/internal/signimg"
)

// PhraseOptions configures a PhraseModel.
type PhraseOptions struct {
	// Text is practiced first; empty picks a random phrase.
	Text     string
	Phrases  []string
	Intn     func(int) int
	Images   *signimg.Cache
	Recorder Recorder
	Logger   *logging.Logger
	Now      func() time.Time
}

// PhraseModel implements phrase practice: sign each letter of a phrase in turn.
type PhraseModel struct {
	alpha    alphabet.Alphabet
	phrases  []string
	intn     func(int) int
	images   *signimg.Cache
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time

	walker    *phrase.Walker
	walkID    string
	feedback  feedback
	seen      *ObservationMsg
	judge     judge
	cameraErr error
	saveErr   error

	width  int
	height int
}

// NewPhraseModel starts practice on opts.Text or a random phrase.
func NewPhraseModel(alpha alphabet.Alphabet, opts PhraseOptions) (*PhraseModel, error) {
	m := &PhraseModel{
		alpha:    alpha,
		phrases:  opts.Phrases,
		intn:     opts.Intn,
		images:   opts.Images,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if m.logger == nil {
		m.logger = logging.Nop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.intn == nil {
		m.intn = func(int) int { return 0 }
	}
	text := opts.Text
	if text == "" {
		text = phrase.Random(m.phrases, m.intn)
	}
	if err := m.start(text); err != nil {
		return nil, err
	}
	return m, nil
}

// Init implements tea.Model.
func (m *PhraseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *PhraseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case ObservationMsg:
		m.seen = &msg
		if m.judge.take(msg) {
			m.attempt(msg.Letter, msg.At)
		}
		return m, nil
	case CameraErrMsg:
		m.cameraErr = msg.Err
		m.logger.Error("camera pipeline stopped", "error", msg.Err)
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.save()
			return m, tea.Quit
		case tea.KeyCtrlS:
			if cur, ok := m.walker.Current(); ok {
				m.walker.Start(m.now())
				m.walker.Skip()
				m.feedback = feedback{kind: feedbackInfo, text: fmt.Sprintf("Skipped %s.", cur)}
				m.checkDone()
			}
			return m, nil
		case tea.KeyCtrlN:
			m.save()
			if err := m.start(phrase.Random(m.phrases, m.intn)); err != nil {
				m.feedback = feedback{kind: feedbackWrong, text: err.Error()}
			}
			return m, nil
		case tea.KeyRunes:
			// Typed letters stand in for signs when no camera is available.
			for _, r := range msg.Runes {
				if letter, ok := m.alpha.ParseLetter(string(r)); ok {
					m.attempt(letter, m.now())
				}
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *PhraseModel) start(text string) error {
	w, err := phrase.New(text, m.alpha)
	if err != nil {
		return err
	}
	m.walker = w
	m.walkID = uuid.NewString()
	m.feedback = feedback{}
	m.judge = judge{}
	m.logger.Debug("phrase started", "phrase", w.Text(), "walk", m.walkID)
	return nil
}

func (m *PhraseModel) attempt(letter alphabet.Letter, at time.Time) {
	target, ok := m.walker.Current()
	if !ok {
		return
	}
	m.walker.Start(at)
	if m.walker.Observe(letter) {
		m.feedback = feedback{kind: feedbackCorrect, text: fmt.Sprintf("Correct! %s", target)}
		m.checkDone()
		return
	}
	m.feedback = feedback{kind: feedbackWrong, text: fmt.Sprintf("That looked like %s, sign %s.", letter, target)}
}

func (m *PhraseModel) checkDone() {
	if !m.walker.Done() {
		return
	}
	m.feedback = feedback{kind: feedbackCorrect, text: fmt.Sprintf("Phrase Completed! Errors: %d. Press ctrl+n for a new phrase.", m.walker.Errors())}
	m.save()
}

// save stores the current walk once if any letter was attempted.
func (m *PhraseModel) save() {
	if m.recorder == nil || m.walkID == "" || !m.walker.Attempted() {
		return
	}
	id := m.walkID
	m.walkID = ""
	summary, letters := m.walker.Summary(id, m.now())
	if err := m.recorder.InsertSession(context.Background(), summary, letters); err != nil {
		m.saveErr = err
		m.logger.Error("failed to save phrase session", "session", id, "error", err)
		return
	}
	m.logger.Info("phrase session saved", "session", id, "correct", summary.Correct, "errors", summary.Incorrect)
}

// Err returns the last save error, if any.
func (m *PhraseModel) Err() error {
	return m.saveErr
}

// View implements tea.Model.
func (m *PhraseModel) View() string {
	contentWidth := int(float64(m.width) * 0.70)
	text := []rune(m.walker.Text())
	lines := []string{
		titleStyle.Render("Fingerspell the phrase"),
		wrapStyledRunes(buildStyledRunes(text, m.walker.Position()), contentWidth),
		mutedStyle.Render(fmt.Sprintf("Progress: %d/%d letters", minInt(m.walker.Position(), m.walker.Len()), m.walker.Len())),
	}
	if cur, ok := m.walker.Current(); ok {
		lines = append(lines, "", "Sign: "+targetStyle.Render(cur.String()))
		if img, ok := signImage(m.images, cur); ok {
			lines = append(lines, img)
		}
		lines = append(lines, predictionLine(m.seen))
	}
	if fb := m.feedback.render(); fb != "" {
		lines = append(lines, "", fb)
	}
	if m.cameraErr != nil {
		lines = append(lines, wrongStyle.Render(fmt.Sprintf("Camera: %v", m.cameraErr)))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	footer := footerStyle.Render(strings.Join([]string{
		fmt.Sprintf("Errors %d", m.walker.Errors()),
		"ctrl+s skip letter · ctrl+n new phrase · esc quit",
	}, "  "))
	if m.width == 0 || m.height < 3 {
		return content + "\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
