package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/signquiz/internal/model"
	"github.com/verte-zerg/signquiz/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "signquiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	ids := []string{"first", "second", "third"}
	for i, id := range ids {
		start := time.Unix(0, 0).UTC().Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		stats := model.SessionStats{
			ID:          id,
			Mode:        model.ModeQuiz,
			StartedAt:   start,
			EndedAt:     end,
			Alphabet:    "AB",
			Exploration: 0.3,
			Items:       10,
			Correct:     9,
			Incorrect:   1,
			DurationMs:  end.Sub(start).Milliseconds(),
		}
		letters := []model.LetterStats{
			{Letter: "A", Modality: "text", Trials: 5, Correct: 5, ErrorSum: 2.5},
			{Letter: "B", Modality: "video", Trials: 5, Correct: 4, Incorrect: 1, ErrorSum: 1.4},
		}
		if err := st.InsertSession(ctx, stats, letters); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Mode: model.ModeQuiz, Last: 2, CurveWindow: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != "second" || report.Sessions[1].SessionID != "third" {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != "third" {
		t.Fatalf("unexpected window session ids: %v", report.WindowSessionIDs)
	}
	if len(report.LetterAggsAll) != 2 || report.LetterAggsAll[0].Trials != 10 {
		t.Fatalf("unexpected aggregates for all sessions: %+v", report.LetterAggsAll)
	}
	if len(report.LetterAggsWindow) != 2 || report.LetterAggsWindow[0].Trials != 5 {
		t.Fatalf("unexpected aggregates for window sessions: %+v", report.LetterAggsWindow)
	}
}
