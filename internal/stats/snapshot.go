package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/signquiz/internal/adaptive"
)

const (
	barFull   = "█"
	barLabel  = 2
	barNumber = 7
)

// RenderSnapshot prints the live error model: modality rates followed by a
// per-letter table sorted by highest combined error.
func RenderSnapshot(w io.Writer, snap adaptive.Snapshot) error {
	header := []string{
		fmt.Sprintf("Video: %d trials, error rate %.3f", snap.Video.Trials, snap.Video.Rate()),
		fmt.Sprintf("Text: %d trials, error rate %.3f", snap.Text.Trials, snap.Text.Rate()),
		"",
	}
	for _, line := range header {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	letters := make([]adaptive.LetterError, len(snap.Letters))
	copy(letters, snap.Letters)
	sort.SliceStable(letters, func(i, j int) bool {
		return letters[i].VideoError+letters[i].TextError > letters[j].VideoError+letters[j].TextError
	})
	rows := make([][]string, 0, len(letters))
	for _, e := range letters {
		rows = append(rows, []string{
			e.Letter.String(),
			fmt.Sprintf("%.2f", e.VideoError),
			fmt.Sprintf("%.2f", e.TextError),
			fmt.Sprintf("%.2f", e.VideoError+e.TextError),
		})
	}
	for _, line := range formatTable([]string{"Letter", "Video", "Text", "Combined"}, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderBars draws one horizontal bar per letter proportional to its error for
// a modality, in alphabet order. A width of 0 uses the terminal width.
func RenderBars(w io.Writer, snap adaptive.Snapshot, mod adaptive.Modality, width int) error {
	if width <= 0 {
		width = terminalWidth()
	}
	barWidth := maxInt(width-barLabel-runewidth.StringWidth(axisSeparator)-barNumber, 1)
	maxErr := 0.0
	for _, e := range snap.Letters {
		maxErr = math.Max(maxErr, e.For(mod))
	}
	if _, err := fmt.Fprintf(w, "%s error by letter\n", mod); err != nil {
		return err
	}
	for _, e := range snap.Letters {
		n := 0
		if maxErr > 0 {
			n = int(math.Round(e.For(mod) / maxErr * float64(barWidth)))
		}
		line := fmt.Sprintf("%-*s%s%s %.2f", barLabel, e.Letter, axisSeparator, strings.Repeat(barFull, n), e.For(mod))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
