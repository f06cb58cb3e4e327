package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{10, 20, 30, 20, 10}},
		{Name: "B", Values: []float64{0, 25, 50, 75, 100}},
	}, 10, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "B: min=0.00 max=100.00") {
		t.Fatalf("expected series range in output:\n%s", out)
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1+2+4+1 {
		t.Fatalf("expected 8 lines of output, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[3], axisLabelTop) || !strings.HasPrefix(lines[6], "  "+axisLabelBottom) {
		t.Fatalf("unexpected axis labels %q %q", lines[3], lines[6])
	}
}

func TestPlotSeriesSkipsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotSeries(&buf, "Empty", []Series{{Name: "A"}}, 10, 4); err != nil {
		t.Fatalf("PlotSeries: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPercentToRowClamps(t *testing.T) {
	if got := percentToRow(150, 8); got != 0 {
		t.Fatalf("expected top row, got %d", got)
	}
	if got := percentToRow(-5, 8); got != 7 {
		t.Fatalf("expected bottom row, got %d", got)
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := utf8.RuneCountInString(axisLabelTop) + utf8.RuneCountInString(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(5); got != minPlotWidth {
		t.Fatalf("expected min width for narrow terminals, got %d", got)
	}
}
