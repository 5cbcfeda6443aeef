// Package board provides the board-state domain model: markers placed on a
// photographed card layout, card identities, and the pixel calibration
// reference used to scale distances.
package board

import (
	"github.com/google/uuid"

	"card-tracer/pkg/geometry"
)

// CardKind classifies a card identity as a tree or a dweller.
type CardKind int

const (
	// KindTree is a tree card; trees anchor the layout and expose four
	// attachment slots.
	KindTree CardKind = iota
	// KindDweller is a dweller card; dwellers attach to a slot of the
	// nearest tree.
	KindDweller
)

func (k CardKind) String() string {
	switch k {
	case KindTree:
		return "tree"
	case KindDweller:
		return "dweller"
	default:
		return "unknown"
	}
}

// CardIdentity is a reference to an external card record. The engine only
// reads Kind; Name exists for reporting.
type CardIdentity struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Kind CardKind `json:"kind"`
}

// Marker is a point of interest on the photographed board.
type Marker struct {
	ID    string           `json:"id"`
	Point geometry.Point2D `json:"point"`
}

// NewMarker creates a marker with a fresh unique ID.
func NewMarker(p geometry.Point2D) Marker {
	return Marker{ID: uuid.NewString(), Point: p}
}

// LabeledMarker is a marker tagged with a card identity. Identity
// assignment happens outside this package (user input, OCR suggestion,
// or an external vision model); a nil Identity means unlabeled.
type LabeledMarker struct {
	Marker
	Identity *CardIdentity `json:"identity,omitempty"`
}

// IsTree reports whether the marker is labeled as a tree.
func (m LabeledMarker) IsTree() bool {
	return m.Identity != nil && m.Identity.Kind == KindTree
}

// IsDweller reports whether the marker is labeled as a dweller.
func (m LabeledMarker) IsDweller() bool {
	return m.Identity != nil && m.Identity.Kind == KindDweller
}
