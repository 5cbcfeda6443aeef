package board

import (
	"fmt"

	"card-tracer/pkg/geometry"
)

// Calibration is the pixel-length reference for one card's long edge,
// captured from two user-supplied points on the photograph. Values are
// immutable; recalibration constructs a new Calibration.
type Calibration struct {
	P1       geometry.Point2D `json:"p1"`
	P2       geometry.Point2D `json:"p2"`
	Distance float64          `json:"distance"`
}

// NewCalibration builds a calibration reference from two points. The points
// must not coincide: a zero-length reference would make every scaled
// threshold zero.
func NewCalibration(p1, p2 geometry.Point2D) (Calibration, error) {
	d := p1.Distance(p2)
	if d <= 0 {
		return Calibration{}, fmt.Errorf("calibration points coincide at (%.1f, %.1f)", p1.X, p1.Y)
	}
	return Calibration{P1: p1, P2: p2, Distance: d}, nil
}
