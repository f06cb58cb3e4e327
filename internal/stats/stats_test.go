package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/signquiz/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	acc, pace := SessionMetrics(30, 10, 120000)
	if math.Abs(acc-0.75) > 1e-9 {
		t.Fatalf("expected accuracy 0.75, got %f", acc)
	}
	if math.Abs(pace-15) > 1e-9 {
		t.Fatalf("expected 15 letters/min, got %f", pace)
	}
	acc, pace = SessionMetrics(3, 1, 0)
	if acc != 0.75 || pace != 0 {
		t.Fatalf("expected accuracy without pace for zero duration, got %f %f", acc, pace)
	}
	if acc, _ := SessionMetrics(0, 0, 1000); acc != 0 {
		t.Fatalf("expected zero accuracy without trials, got %f", acc)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %f, got %f", i, want[i], got[i])
		}
	}
	same := MovingAverage([]float64{1, 5}, 1)
	if same[0] != 1 || same[1] != 5 {
		t.Fatalf("expected copy for window 1, got %v", same)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 5, 10}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3}); got != "++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("unexpected empty output %q", buf.String())
	}
	buf.Reset()
	sessions := []model.SessionAggregate{
		{SessionID: "a", Items: 10, Correct: 8, Incorrect: 2, DurationMs: 60000},
		{SessionID: "b", Items: 10, Correct: 10, Incorrect: 0, DurationMs: 60000},
	}
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("RenderSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Items: 20 (18 correct)", "Avg Accuracy: 90.00%", "Best Accuracy: 100.00%", "Avg Letters/min: 9.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderLetterTableSortsByAccuracy(t *testing.T) {
	var buf bytes.Buffer
	err := RenderLetterTable(&buf, []model.LetterAggregate{
		{Letter: "A", Modality: "text", Trials: 4, Correct: 4, ErrorSum: 2},
		{Letter: "B", Modality: "video", Trials: 4, Correct: 1, Incorrect: 3, ErrorSum: 3.5},
	})
	if err != nil {
		t.Fatalf("RenderLetterTable: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected title, header and 2 rows, got %q", lines)
	}
	if !strings.HasPrefix(lines[2], "B") || !strings.Contains(lines[2], "25.00%") {
		t.Fatalf("expected weakest letter first, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "0.50") {
		t.Fatalf("expected average error 0.50 for A, got %q", lines[3])
	}
}

func TestRenderCurvesWithSize(t *testing.T) {
	var buf bytes.Buffer
	sessions := []model.SessionAggregate{
		{Correct: 5, Incorrect: 5, DurationMs: 60000},
		{Correct: 9, Incorrect: 1, DurationMs: 60000},
	}
	if err := RenderCurvesWithSize(&buf, sessions, 1, 40, 4, false); err != nil {
		t.Fatalf("RenderCurvesWithSize: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Learning Curve") || !strings.Contains(out, "Accuracy: min=50.00 max=90.00") {
		t.Fatalf("unexpected curves output:\n%s", out)
	}
	if !strings.Contains(out, "Letters/min:") {
		t.Fatalf("expected pace sparkline:\n%s", out)
	}
}
