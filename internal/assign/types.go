// Package assign computes the symbolic game state from labeled markers:
// which dweller occupies which slot of which tree. It is a pure engine:
// every dweller's fate is a result value, never an exception.
package assign

import (
	"card-tracer/internal/board"
)

// Slot is one of the four attachment positions a dweller can occupy on a
// tree.
type Slot int

const (
	SlotTop Slot = iota
	SlotBottom
	SlotLeft
	SlotRight
)

func (s Slot) String() string {
	switch s {
	case SlotTop:
		return "top"
	case SlotBottom:
		return "bottom"
	case SlotLeft:
		return "left"
	case SlotRight:
		return "right"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so slots serialize as
// their names in JSON maps and fields.
func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Assignment places one dweller on one slot of one tree.
type Assignment struct {
	Dweller  board.LabeledMarker `json:"dweller"`
	Tree     board.LabeledMarker `json:"tree"`
	Slot     Slot                `json:"slot"`
	Distance float64             `json:"distance"`
}

// ErrorKind classifies why a dweller could not be assigned.
type ErrorKind int

const (
	// ErrTooFarFromTree means the nearest tree exceeds the distance
	// threshold.
	ErrTooFarFromTree ErrorKind = iota
	// ErrNoTreesAvailable means the board has no tree markers at all.
	ErrNoTreesAvailable
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTooFarFromTree:
		return "too_far_from_tree"
	case ErrNoTreesAvailable:
		return "no_trees_available"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// AssignmentError records a dweller that could not be placed. These are
// expected outcomes, not failures.
type AssignmentError struct {
	Dweller board.LabeledMarker `json:"dweller"`
	Kind    ErrorKind           `json:"kind"`
	Detail  string              `json:"detail"`
}

// Claimant is one dweller competing for a contested slot.
type Claimant struct {
	Dweller  board.LabeledMarker `json:"dweller"`
	Distance float64             `json:"distance"`
}

// SlotConflict records a (tree, slot) pair claimed by two or more
// dwellers. Claimants are ordered by ascending distance, closest first.
type SlotConflict struct {
	Tree      board.LabeledMarker `json:"tree"`
	Slot      Slot                `json:"slot"`
	Claimants []Claimant          `json:"claimants"`
}

// InferenceResult is the aggregated, immutable outcome of one inference
// run. It is recomputed whenever inputs change and never persisted by the
// engine.
type InferenceResult struct {
	Assignments      []Assignment      `json:"assignments"`
	Conflicts        []SlotConflict    `json:"conflicts"`
	Errors           []AssignmentError `json:"errors"`
	CardSizeEstimate float64           `json:"card_size_estimate"` // calibration distance, pixels
	ThresholdUsed    float64           `json:"threshold_used"`     // pixels
}
