// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/signquiz/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy and letters per minute for a session.
func SessionMetrics(correct, incorrect int, durationMs int64) (accuracy, perMinute float64) {
	den := float64(correct + incorrect)
	if den > 0 {
		accuracy = float64(correct) / den
	}
	if durationMs <= 0 {
		return accuracy, 0
	}
	minutes := float64(durationMs) / 60000.0
	perMinute = float64(correct) / minutes
	return accuracy, perMinute
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal-minVal < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	top := float64(len(sparkChars) - 1)
	for _, v := range values {
		idx := int(math.Round((v - minVal) / (maxVal - minVal) * top))
		b.WriteByte(sparkChars[clampInt(idx, 0, len(sparkChars)-1)])
	}
	return b.String()
}

// RenderSummary prints a summary of recorded sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAcc, totalPace, bestAcc float64
	var items, correct int
	for _, s := range sessions {
		acc, pace := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalAcc += acc
		totalPace += pace
		bestAcc = math.Max(bestAcc, acc)
		items += s.Items
		correct += s.Correct
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Items: %d (%d correct)", items, correct),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", bestAcc*100),
		fmt.Sprintf("Avg Letters/min: %.2f", totalPace/count),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints the accuracy learning curve and a pace sparkline.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	paces := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, pace := SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		accs[i] = acc * 100
		paces[i] = pace
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	if err := PlotSeriesWithColor(w, "Learning Curve", []Series{
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
	}, width, height, useColor); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Letters/min: %s\n\n", Sparkline(MovingAverage(paces, window)))
	return err
}

// RenderLetterTable prints per-letter history aggregates, lowest accuracy first.
func RenderLetterTable(w io.Writer, aggs []model.LetterAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No letter stats found.")
		return err
	}
	rows := make([]model.LetterAggregate, len(aggs))
	copy(rows, aggs)
	sort.SliceStable(rows, func(i, j int) bool {
		ai, aj := rows[i].Accuracy(), rows[j].Accuracy()
		if ai == aj {
			if rows[i].Letter == rows[j].Letter {
				return rows[i].Modality < rows[j].Modality
			}
			return rows[i].Letter < rows[j].Letter
		}
		return ai < aj
	})

	if _, err := fmt.Fprintln(w, "Per-Letter (Windowed)"); err != nil {
		return err
	}
	headers := []string{"Letter", "Modality", "Accuracy", "Avg Error", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		avgErr := 0.0
		if r.Trials > 0 {
			avgErr = r.ErrorSum / float64(r.Trials)
		}
		tableRows = append(tableRows, []string{
			r.Letter,
			r.Modality,
			fmt.Sprintf("%.2f%%", r.Accuracy()*100),
			fmt.Sprintf("%.2f", avgErr),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
