package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/signquiz/internal/model"
	"github.com/verte-zerg/signquiz/internal/stats"
)

func fixedSource(report stats.Report, calls *[]model.StatsConfig) Source {
	return func(_ context.Context, cfg model.StatsConfig) (stats.Report, error) {
		*calls = append(*calls, cfg)
		return report, nil
	}
}

func sampleReport() stats.Report {
	aggs := []model.LetterAggregate{
		{Letter: "A", Modality: "text", Trials: 4, Correct: 4, ErrorSum: 2},
		{Letter: "B", Modality: "video", Trials: 3, Correct: 1, Incorrect: 2, ErrorSum: 2.5},
	}
	return stats.Report{
		Sessions: []model.SessionAggregate{
			{SessionID: "a", Mode: model.ModeQuiz, EndedAt: time.Unix(0, 0), Items: 7, Correct: 5, Incorrect: 2, DurationMs: 60000},
		},
		WindowSessionIDs: []string{"a"},
		LetterAggsAll:    aggs,
		LetterAggsWindow: aggs,
	}
}

func TestModelRendersTabs(t *testing.T) {
	var calls []model.StatsConfig
	m := NewModel(fixedSource(sampleReport(), &calls), model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	if !strings.Contains(view, "Overview") || !strings.Contains(view, "Sessions") {
		t.Fatalf("expected overview content:\n%s", view)
	}
	if lines := strings.Count(view, "\n") + 1; lines != 40 {
		t.Fatalf("expected view to fill 40 lines, got %d", lines)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabLetterTable {
		t.Fatalf("expected letter table tab, got %d", m.activeTab)
	}
	if view := m.View(); !strings.Contains(view, "Modality") || !strings.Contains(view, "33.33%") {
		t.Fatalf("expected letter table content:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if view := m.View(); !strings.Contains(view, " 1. B") {
		t.Fatalf("expected weakest letter B first:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected tabs to wrap around, got %d", m.activeTab)
	}
}

func TestCurveWindowKeysReload(t *testing.T) {
	var calls []model.StatsConfig
	m := NewModel(fixedSource(sampleReport(), &calls), model.StatsConfig{CurveWindow: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'='}})
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", m.cfg.CurveWindow)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'-'}})
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected window 1, got %d", m.cfg.CurveWindow)
	}
	if len(calls) != 3 {
		t.Fatalf("expected a reload per window change, got %d loads", len(calls))
	}
}

func TestFilterAppliesConfig(t *testing.T) {
	var calls []model.StatsConfig
	m := NewModel(fixedSource(sampleReport(), &calls), model.StatsConfig{CurveWindow: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[fieldMode].SetValue("Phrase")
	m.filterInputs[fieldLast].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode {
		t.Fatalf("expected filter mode to close, error %q", m.filterError)
	}
	got := calls[len(calls)-1]
	if got.Mode != model.ModePhrase || got.Last != 3 || got.CurveWindow != 1 {
		t.Fatalf("unexpected applied config %+v", got)
	}
}

func TestParseFilterErrors(t *testing.T) {
	tests := []struct {
		name  string
		field int
		value string
	}{
		{name: "mode", field: fieldMode, value: "race"},
		{name: "since", field: fieldSince, value: "05/01/2026"},
		{name: "last", field: fieldLast, value: "-1"},
		{name: "window", field: fieldWindow, value: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := newFilterInputs()
			inputs[tt.field].SetValue(tt.value)
			if _, err := parseFilter(inputs); err == nil {
				t.Fatalf("expected error for %s=%q", tt.name, tt.value)
			}
		})
	}
}

func TestSourceErrorShown(t *testing.T) {
	m := NewModel(func(context.Context, model.StatsConfig) (stats.Report, error) {
		return stats.Report{}, errors.New("database is locked")
	}, model.StatsConfig{})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if view := m.View(); !strings.Contains(view, "database is locked") {
		t.Fatalf("expected error in footer:\n%s", view)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if nextCurveWindow(1) != 5 || nextCurveWindow(5) != 10 || nextCurveWindow(7) != 10 {
		t.Fatalf("unexpected next window steps")
	}
	if prevCurveWindow(10) != 5 || prevCurveWindow(7) != 5 || prevCurveWindow(5) != 1 {
		t.Fatalf("unexpected previous window steps")
	}
}
