package geometry

import (
	"math"
)

// OrientedRect represents a rotated rectangle: a center, dimensions, and a
// rotation angle in degrees (counterclockwise-positive in math terms, which
// appears clockwise in image space since +y points down).
type OrientedRect struct {
	Center Point2D `json:"center"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"` // degrees
}

// Area returns the rectangle's area.
func (r OrientedRect) Area() float64 {
	return r.Width * r.Height
}

// Corners returns the four corner points in order TL, TR, BR, BL
// (relative to the unrotated rectangle).
func (r OrientedRect) Corners() [4]Point2D {
	rad := r.Angle * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	hw := r.Width / 2
	hh := r.Height / 2

	offsets := [4][2]float64{
		{-hw, -hh},
		{hw, -hh},
		{hw, hh},
		{-hw, hh},
	}

	var corners [4]Point2D
	for i, o := range offsets {
		corners[i] = Point2D{
			X: r.Center.X + o[0]*cos - o[1]*sin,
			Y: r.Center.Y + o[0]*sin + o[1]*cos,
		}
	}
	return corners
}

// Bounds returns the axis-aligned bounding box of the rotated rectangle.
func (r OrientedRect) Bounds() Rect {
	c := r.Corners()
	return BoundingBox(c[:])
}

// Normalized returns an equivalent rectangle with Width <= Height.
// If dimensions are swapped, 90 degrees is added to the angle.
func (r OrientedRect) Normalized() OrientedRect {
	if r.Width <= r.Height {
		return r
	}
	return OrientedRect{
		Center: r.Center,
		Width:  r.Height,
		Height: r.Width,
		Angle:  r.Angle + 90,
	}
}

// Contains returns true if the point lies inside the rotated rectangle.
// Uses cross products against each edge of the corner quad.
func (r OrientedRect) Contains(p Point2D) bool {
	c := r.Corners()
	sign := 0.0
	for i := 0; i < 4; i++ {
		a := c[i]
		b := c[(i+1)%4]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross == 0 {
			continue
		}
		if sign == 0 {
			sign = cross
		} else if (cross > 0) != (sign > 0) {
			return false
		}
	}
	return true
}
