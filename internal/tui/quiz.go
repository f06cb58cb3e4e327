package tui

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/signquiz/internal/adaptive"
	"github.com/verte-zerg/signquiz/internal/logging"
	"github.com/verte-zerg/signquiz/internal/quiz"
	"github.com/verte-zerg/signquiz/internal/signimg"
	"github.com/verte-zerg/signquiz/internal/stats"
)

// QuizOptions holds the collaborators of a QuizModel. Every field is optional.
type QuizOptions struct {
	Images   *signimg.Cache
	Recorder Recorder
	Logger   *logging.Logger
	Now      func() time.Time
}

// QuizModel implements the adaptive quiz UI.
type QuizModel struct {
	session  *quiz.Session
	images   *signimg.Cache
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time

	input    textinput.Model
	item     adaptive.QuizItem
	feedback feedback
	seen     *ObservationMsg
	judge    judge

	showStats bool
	cameraErr error
	saveErr   error
	saved     bool
	err       error

	width  int
	height int
}

// NewQuizModel draws the first item of session.
func NewQuizModel(session *quiz.Session, opts QuizOptions) (*QuizModel, error) {
	m := &QuizModel{
		session:  session,
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
	m.input = textinput.New()
	m.input.Placeholder = "type the letter"
	m.input.Prompt = "> "
	m.input.CharLimit = 1
	m.input.Width = 4
	if err := m.next(); err != nil {
		return nil, err
	}
	return m, nil
}

// Init implements tea.Model.
func (m *QuizModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

// Update implements tea.Model.
func (m *QuizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.session.Expired() {
			out, err := m.session.Timeout()
			if err != nil {
				return m.fail(err)
			}
			m.feedback = feedback{kind: feedbackWrong, text: fmt.Sprintf("Time's up! That was %s.", out.Item.Target)}
			if err := m.next(); err != nil {
				return m.fail(err)
			}
		}
		return m, tick()
	case ObservationMsg:
		return m.observe(msg)
	case CameraErrMsg:
		m.cameraErr = msg.Err
		m.logger.Error("camera pipeline stopped", "error", msg.Err)
		wasVideo := m.item.Modality == adaptive.Video
		m.session.DisableVideo()
		if wasVideo {
			m.feedback = feedback{kind: feedbackWrong, text: "Camera unavailable, switching to text items."}
			if err := m.next(); err != nil {
				return m.fail(err)
			}
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *QuizModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.save()
		return m, tea.Quit
	case tea.KeyTab:
		m.showStats = !m.showStats
		return m, nil
	case tea.KeyCtrlN:
		out, err := m.session.Skip()
		if err != nil {
			return m.fail(err)
		}
		m.feedback = feedback{kind: feedbackInfo, text: fmt.Sprintf("Skipped %s.", out.Item.Target)}
		if err := m.next(); err != nil {
			return m.fail(err)
		}
		return m, nil
	case tea.KeyEnter:
		if m.item.Modality != adaptive.Text {
			return m, nil
		}
		return m.submit()
	}
	if m.item.Modality != adaptive.Text || m.showStats {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *QuizModel) submit() (tea.Model, tea.Cmd) {
	answer := strings.TrimSpace(m.input.Value())
	if answer == "" {
		return m, nil
	}
	m.input.Reset()
	out, err := m.session.SubmitText(answer)
	if err != nil {
		return m.fail(err)
	}
	if !out.Resolved {
		m.item = out.Item
		m.feedback = feedback{kind: feedbackWrong, text: fmt.Sprintf("Not %s, try again.", strings.ToUpper(answer))}
		return m, nil
	}
	m.feedback = feedback{kind: feedbackCorrect, text: fmt.Sprintf("Correct! %s", out.Item.Target)}
	if err := m.next(); err != nil {
		return m.fail(err)
	}
	return m, nil
}

func (m *QuizModel) observe(obs ObservationMsg) (tea.Model, tea.Cmd) {
	m.seen = &obs
	if !m.judge.take(obs) || m.item.Modality != adaptive.Video {
		return m, nil
	}
	out, err := m.session.Observe(obs.Letter)
	if err != nil {
		return m.fail(err)
	}
	if !out.Resolved {
		return m, nil
	}
	m.feedback = feedback{kind: feedbackCorrect, text: fmt.Sprintf("Correct! %s in %.1fs", out.Item.Target, out.Item.Elapsed(obs.At))}
	if err := m.next(); err != nil {
		return m.fail(err)
	}
	return m, nil
}

func (m *QuizModel) next() error {
	item, err := m.session.Next()
	if err != nil {
		return err
	}
	m.item = item
	m.input.Reset()
	if item.Modality == adaptive.Text {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return nil
}

func (m *QuizModel) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.logger.Error("quiz stopped", "error", err)
	m.save()
	return m, tea.Quit
}

// save stores the session once. Sessions without any trial are not stored.
func (m *QuizModel) save() {
	if m.saved || m.recorder == nil {
		return
	}
	m.saved = true
	summary, letters := m.session.Summary()
	if len(letters) == 0 {
		return
	}
	if err := m.recorder.InsertSession(context.Background(), summary, letters); err != nil {
		m.saveErr = err
		m.logger.Error("failed to save session", "session", summary.ID, "error", err)
		return
	}
	m.logger.Info("session saved", "session", summary.ID, "items", summary.Items, "correct", summary.Correct)
}

// Err returns the error that stopped the quiz, if any.
func (m *QuizModel) Err() error {
	if m.err != nil {
		return m.err
	}
	return m.saveErr
}

// View implements tea.Model.
func (m *QuizModel) View() string {
	var content string
	if m.showStats {
		content = m.renderStats()
	} else {
		content = m.renderItem()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height < 3 {
		return content + "\n" + footer
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func (m *QuizModel) renderItem() string {
	lines := []string{}
	switch m.item.Modality {
	case adaptive.Video:
		lines = append(lines,
			titleStyle.Render("Sign this letter"),
			targetStyle.Render(m.item.Target.String()),
			predictionLine(m.seen),
			mutedStyle.Render(m.timer()),
		)
	default:
		lines = append(lines, titleStyle.Render("Which letter is this?"))
		if img, ok := signImage(m.images, m.item.Target); ok {
			lines = append(lines, img)
		} else {
			lines = append(lines, mutedStyle.Render("Image not found. Press ctrl+n to skip."))
		}
		if m.item.Attempts > 0 {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("Wrong answers: %d", m.item.Attempts)))
		}
		lines = append(lines, m.input.View())
	}
	if fb := m.feedback.render(); fb != "" {
		lines = append(lines, "", fb)
	}
	if m.cameraErr != nil {
		lines = append(lines, wrongStyle.Render(fmt.Sprintf("Camera: %v", m.cameraErr)))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *QuizModel) timer() string {
	elapsed := m.item.Elapsed(m.now())
	timeout := m.session.Config().VideoTimeout
	if timeout <= 0 {
		return fmt.Sprintf("%.0fs", math.Floor(elapsed))
	}
	return fmt.Sprintf("%.0fs / %.0fs", math.Floor(elapsed), timeout.Seconds())
}

func (m *QuizModel) renderStats() string {
	snap := m.session.Snapshot()
	var buf bytes.Buffer
	if err := stats.RenderSnapshot(&buf, snap); err != nil {
		return wrongStyle.Render(err.Error())
	}
	header := titleStyle.Render("Error model")
	if rebuilt, err := adaptive.FromSnapshot(m.session.Alphabet(), snap); err == nil {
		if p, err := adaptive.VideoProbability(rebuilt); err == nil && m.session.Config().VideoEnabled {
			header += mutedStyle.Render(fmt.Sprintf("  next video chance %.0f%%", p*100))
		}
	}
	weak := stats.WeakestLetters(snap, adaptive.Text, 5)
	names := make([]string, len(weak))
	for i, l := range weak {
		names[i] = l.String()
	}
	body := header + "\n\n" + strings.TrimRight(buf.String(), "\n") +
		"\n\n" + mutedStyle.Render("Weakest (text): "+strings.Join(names, " "))
	return overlayFrame.Render(body)
}

func (m *QuizModel) renderFooter() string {
	correct, incorrect, items := m.session.Counts()
	acc := 0.0
	if correct+incorrect > 0 {
		acc = float64(correct) / float64(correct+incorrect) * 100
	}
	segments := []string{
		fmt.Sprintf("Item %d", items),
		fmt.Sprintf("Correct %d", correct),
		fmt.Sprintf("Wrong %d", incorrect),
		fmt.Sprintf("Acc %.1f%%", acc),
		"enter submit · ctrl+n skip · tab stats · esc quit",
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
