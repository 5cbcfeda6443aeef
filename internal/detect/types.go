// Package detect locates card-shaped rectangles in a photographed board.
// Two native strategies run independently: a corner-feature path that
// reconstructs cards from L-shaped corner patterns, and a contour path
// that fits oriented rectangles to closed outlines. An external vision
// model can act as a third source producing the same DetectedCard shape.
package detect

import (
	"card-tracer/pkg/geometry"
)

// Quadrant identifies which corner of a card a detected feature point
// could be.
type Quadrant int

const (
	// QuadrantUnknown means the edge pattern around the point was too weak
	// to commit to a corner orientation.
	QuadrantUnknown Quadrant = iota
	// QuadrantTL is the top-left corner of a card extending down-right.
	QuadrantTL
	// QuadrantTR is the top-right corner of a card extending down-left.
	QuadrantTR
	// QuadrantBL is the bottom-left corner of a card extending up-right.
	QuadrantBL
	// QuadrantBR is the bottom-right corner of a card extending up-left.
	QuadrantBR
)

func (q Quadrant) String() string {
	switch q {
	case QuadrantTL:
		return "TL"
	case QuadrantTR:
		return "TR"
	case QuadrantBL:
		return "BL"
	case QuadrantBR:
		return "BR"
	default:
		return "unknown"
	}
}

// Opposite returns the diagonally opposite quadrant, or QuadrantUnknown.
func (q Quadrant) Opposite() Quadrant {
	switch q {
	case QuadrantTL:
		return QuadrantBR
	case QuadrantTR:
		return QuadrantBL
	case QuadrantBL:
		return QuadrantTR
	case QuadrantBR:
		return QuadrantTL
	default:
		return QuadrantUnknown
	}
}

// quadrantAngles maps each quadrant to its fixed corner angle in degrees.
// Downstream rotation math depends on these exact values.
var quadrantAngles = map[Quadrant]float64{
	QuadrantTR: 45,
	QuadrantTL: 135,
	QuadrantBL: 225,
	QuadrantBR: 315,
}

// Source indicates which detection strategy produced a card hypothesis.
type Source int

const (
	// SourceCorner is the native corner-feature reconstruction path.
	SourceCorner Source = iota
	// SourceContour is the native contour / minimal-area-rectangle path.
	SourceContour
	// SourceVision is an external vision model supplying card centers.
	SourceVision
)

func (s Source) String() string {
	switch s {
	case SourceCorner:
		return "corner"
	case SourceContour:
		return "contour"
	case SourceVision:
		return "vision"
	default:
		return "unknown"
	}
}

// idPrefix returns the short source tag used in card IDs.
func (s Source) idPrefix() string {
	switch s {
	case SourceCorner:
		return "cr"
	case SourceContour:
		return "ct"
	case SourceVision:
		return "vx"
	default:
		return "xx"
	}
}

// DetectedCorner is a candidate card corner. Corners are ephemeral:
// recomputed on every detection run, never persisted.
type DetectedCorner struct {
	Point    geometry.Point2D `json:"point"`
	Angle    float64          `json:"angle"`    // fixed per-quadrant angle, degrees
	Quadrant Quadrant         `json:"quadrant"`
	Strength float64          `json:"strength"` // 0-1
}

// DetectedCard is an oriented rectangle hypothesis for one physical card.
type DetectedCard struct {
	ID         string           `json:"id"`
	Center     geometry.Point2D `json:"center"`
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Angle      float64          `json:"angle"` // degrees
	Confidence float64          `json:"confidence"`
	Source     Source           `json:"source"`
}

// Oriented returns the card's shape as an oriented rectangle.
func (c DetectedCard) Oriented() geometry.OrientedRect {
	return geometry.OrientedRect{
		Center: c.Center,
		Width:  c.Width,
		Height: c.Height,
		Angle:  c.Angle,
	}
}

// Result holds the output of one detection run.
type Result struct {
	Cards   []DetectedCard   `json:"cards"`
	Corners []DetectedCorner `json:"corners,omitempty"` // corner-path intermediates
}
