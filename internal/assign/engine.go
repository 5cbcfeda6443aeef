package assign

import (
	"fmt"
	"math"
	"sort"

	"card-tracer/internal/board"
)

// DefaultThresholdMultiplier is the default scalar applied to the
// calibration distance to derive the maximum tree-to-dweller distance.
// UI-exposed range is roughly 0.3 to 1.5.
const DefaultThresholdMultiplier = 0.75

// Infer computes the full board state from labeled markers. It is a pure
// function: identical inputs always produce an identical result. Every
// dweller appears in exactly one of Assignments or Errors.
//
// Configuration problems (non-positive multiplier or calibration) fail
// fast with an error; marker layouts never do.
func Infer(trees, dwellers []board.LabeledMarker, calibration board.Calibration, multiplier float64) (*InferenceResult, error) {
	if multiplier <= 0 {
		return nil, fmt.Errorf("threshold multiplier must be positive, got %g", multiplier)
	}
	if calibration.Distance <= 0 {
		return nil, fmt.Errorf("calibration distance must be positive, got %g", calibration.Distance)
	}

	threshold := calibration.Distance * multiplier
	result := &InferenceResult{
		Assignments:      []Assignment{},
		Conflicts:        []SlotConflict{},
		Errors:           []AssignmentError{},
		CardSizeEstimate: calibration.Distance,
		ThresholdUsed:    threshold,
	}

	for _, dweller := range dwellers {
		if len(trees) == 0 {
			result.Errors = append(result.Errors, AssignmentError{
				Dweller: dweller,
				Kind:    ErrNoTreesAvailable,
				Detail:  "no tree markers on the board",
			})
			continue
		}

		tree, distance := nearestTree(dweller, trees)
		if distance > threshold {
			result.Errors = append(result.Errors, AssignmentError{
				Dweller: dweller,
				Kind:    ErrTooFarFromTree,
				Detail:  fmt.Sprintf("nearest tree is %.1f px away, threshold is %.1f px", distance, threshold),
			})
			continue
		}

		result.Assignments = append(result.Assignments, Assignment{
			Dweller:  dweller,
			Tree:     tree,
			Slot:     classifySlot(dweller, tree),
			Distance: distance,
		})
	}

	result.Conflicts = findConflicts(result.Assignments)
	return result, nil
}

// nearestTree returns the closest tree to the dweller. Ties resolve to the
// first tree encountered in iteration order.
func nearestTree(dweller board.LabeledMarker, trees []board.LabeledMarker) (board.LabeledMarker, float64) {
	best := trees[0]
	bestDist := dweller.Point.Distance(trees[0].Point)
	for _, tree := range trees[1:] {
		if d := dweller.Point.Distance(tree.Point); d < bestDist {
			best = tree
			bestDist = d
		}
	}
	return best, bestDist
}

// classifySlot maps the dweller's bearing from the tree onto one of the
// four slots. Angles are in image coordinates (+x right, +y down), so a
// dweller visually above the tree has a bearing near 270 degrees.
func classifySlot(dweller, tree board.LabeledMarker) Slot {
	angle := math.Atan2(dweller.Point.Y-tree.Point.Y, dweller.Point.X-tree.Point.X) * 180 / math.Pi
	angle = math.Mod(angle+360, 360)

	switch {
	case angle >= 45 && angle < 135:
		return SlotBottom
	case angle >= 135 && angle < 225:
		return SlotLeft
	case angle >= 225 && angle < 315:
		return SlotTop
	default:
		return SlotRight
	}
}

// findConflicts groups assignments by (tree, slot) and reports every group
// with two or more members, claimants sorted by ascending distance.
func findConflicts(assignments []Assignment) []SlotConflict {
	type slotKey struct {
		treeID string
		slot   Slot
	}

	groups := map[slotKey][]Assignment{}
	var order []slotKey
	for _, a := range assignments {
		key := slotKey{treeID: a.Tree.ID, slot: a.Slot}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], a)
	}

	conflicts := []SlotConflict{}
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		claimants := make([]Claimant, len(group))
		for i, a := range group {
			claimants[i] = Claimant{Dweller: a.Dweller, Distance: a.Distance}
		}
		sort.SliceStable(claimants, func(i, j int) bool {
			return claimants[i].Distance < claimants[j].Distance
		})

		conflicts = append(conflicts, SlotConflict{
			Tree:      group[0].Tree,
			Slot:      key.slot,
			Claimants: claimants,
		})
	}
	return conflicts
}
