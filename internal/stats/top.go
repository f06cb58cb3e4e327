package stats

import (
	"sort"

	"github.com/verte-zerg/signquiz/internal/model"
)

// TopLettersByTrials returns the n most practiced letters across modalities.
func TopLettersByTrials(aggs []model.LetterAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := mergeModalities(aggs)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Trials == items[j].Trials {
			return items[i].Letter < items[j].Letter
		}
		return items[i].Trials > items[j].Trials
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for _, agg := range items[:n] {
		out = append(out, agg.Letter)
	}
	return out
}
