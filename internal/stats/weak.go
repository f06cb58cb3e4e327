package stats

import (
	"sort"

	"github.com/verte-zerg/signquiz/internal/adaptive"
	"github.com/verte-zerg/signquiz/internal/alphabet"
	"github.com/verte-zerg/signquiz/internal/model"
)

// WeakestLetters returns up to n letters with the highest accumulated error for
// a modality. Ties keep alphabet order. n <= 0 returns every letter.
func WeakestLetters(snap adaptive.Snapshot, mod adaptive.Modality, n int) []alphabet.Letter {
	candidates := make([]adaptive.LetterError, len(snap.Letters))
	copy(candidates, snap.Letters)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].For(mod) > candidates[j].For(mod)
	})
	if n <= 0 || n > len(candidates) {
		n = len(candidates)
	}
	out := make([]alphabet.Letter, n)
	for i := range out {
		out[i] = candidates[i].Letter
	}
	return out
}

// WeakestFromHistory returns up to n letters with the lowest recorded accuracy
// across both modalities. Letters never attempted are not reported.
func WeakestFromHistory(aggs []model.LetterAggregate, n int) []string {
	merged := mergeModalities(aggs)
	sort.SliceStable(merged, func(i, j int) bool {
		ai, aj := merged[i].Accuracy(), merged[j].Accuracy()
		if ai == aj {
			return merged[i].Letter < merged[j].Letter
		}
		return ai < aj
	})
	if n <= 0 || n > len(merged) {
		n = len(merged)
	}
	out := make([]string, 0, n)
	for _, agg := range merged[:n] {
		out = append(out, agg.Letter)
	}
	return out
}

func mergeModalities(aggs []model.LetterAggregate) []model.LetterAggregate {
	byLetter := map[string]int{}
	var merged []model.LetterAggregate
	for _, agg := range aggs {
		if agg.Trials == 0 {
			continue
		}
		i, ok := byLetter[agg.Letter]
		if !ok {
			byLetter[agg.Letter] = len(merged)
			merged = append(merged, model.LetterAggregate{Letter: agg.Letter})
			i = len(merged) - 1
		}
		merged[i].Trials += agg.Trials
		merged[i].Correct += agg.Correct
		merged[i].Incorrect += agg.Incorrect
		merged[i].ErrorSum += agg.ErrorSum
	}
	return merged
}
