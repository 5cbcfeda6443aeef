package detect

import (
	"math"
	"sort"
)

// Deduplicate merges overlapping card hypotheses into a non-redundant set.
// Candidates are visited in descending confidence; a candidate survives
// only if its overlap with every already-kept card stays at or below the
// threshold, so the most confident hypothesis of each cluster wins.
//
// The overlap metric is a per-axis normalized center distance, not a true
// polygon intersection-over-union:
//
//	overlapAxis = max(0, 1 - |Δcenter| / avgDimension)
//	overlap     = overlapX × overlapY
//
// This approximation is intentionally preserved for parity with existing
// detection behavior; do not replace it with exact geometric intersection.
func Deduplicate(cards []DetectedCard, threshold float64) []DetectedCard {
	if len(cards) < 2 {
		return cards
	}

	sorted := make([]DetectedCard, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]DetectedCard, 0, len(sorted))
	for _, candidate := range sorted {
		redundant := false
		for _, k := range kept {
			if Overlap(candidate, k) > threshold {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// Overlap estimates how much two card hypotheses cover the same board
// region. Identical rectangles score 1.0; rectangles separated by a full
// average dimension on either axis score 0.
func Overlap(a, b DetectedCard) float64 {
	avgW := (a.Width + b.Width) / 2
	avgH := (a.Height + b.Height) / 2
	if avgW <= 0 || avgH <= 0 {
		return 0
	}

	ox := math.Max(0, 1-math.Abs(a.Center.X-b.Center.X)/avgW)
	oy := math.Max(0, 1-math.Abs(a.Center.Y-b.Center.Y)/avgH)
	return ox * oy
}
