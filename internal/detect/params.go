package detect

import (
	"fmt"
)

// Canonical card proportions. CardAspect is width/height of the physical
// cards; the corner path derives expected width from expected height with
// it. The contour path scores against the slightly looser ContourAspect.
const (
	CardAspect    = 0.714
	ContourAspect = 0.72
)

// strengthFloor is the minimum corner strength to commit to a quadrant;
// at or below it a corner classifies as QuadrantUnknown.
const strengthFloor = 0.3

// Params configures both native detection strategies. Defaults are tuned
// for a full board photographed from roughly overhead.
type Params struct {
	// Corner path (Shi-Tomasi feature extraction)
	MaxCorners         int     `yaml:"max_corners"`
	QualityLevel       float64 `yaml:"quality_level"`
	MinDistance        float64 `yaml:"min_distance"`
	ExpectedCardHeight float64 `yaml:"expected_card_height"` // pixels

	// Contour path
	MinAreaRatio    float64 `yaml:"min_area_ratio"` // fraction of image area
	MaxAreaRatio    float64 `yaml:"max_area_ratio"`
	MinAspectRatio  float64 `yaml:"min_aspect_ratio"` // width/height after normalization
	MaxAspectRatio  float64 `yaml:"max_aspect_ratio"`
	MinFillRatio    float64 `yaml:"min_fill_ratio"` // contour area / fitted rect area
	CannyThreshold1 float64 `yaml:"canny_threshold1"`
	CannyThreshold2 float64 `yaml:"canny_threshold2"`

	// Deduplication
	OverlapThreshold float64 `yaml:"overlap_threshold"`
}

// DefaultParams returns default detection parameters.
func DefaultParams() Params {
	return Params{
		MaxCorners:         100,
		QualityLevel:       0.01,
		MinDistance:        20,
		ExpectedCardHeight: 120,

		MinAreaRatio:    0.001,
		MaxAreaRatio:    0.25,
		MinAspectRatio:  0.4,
		MaxAspectRatio:  1.1,
		MinFillRatio:    0.7,
		CannyThreshold1: 50,
		CannyThreshold2: 150,

		OverlapThreshold: 0.5,
	}
}

// WithCardHeight returns a copy of params with the expected card height
// (in pixels) set from a calibration distance. The calibration reference
// is one card's long edge, which is its height in the canonical
// orientation.
func (p Params) WithCardHeight(pixels float64) Params {
	if pixels > 0 {
		p.ExpectedCardHeight = pixels
		// Keep corner candidates from clustering on one card edge
		p.MinDistance = pixels / 6
		if p.MinDistance < 10 {
			p.MinDistance = 10
		}
	}
	return p
}

// Validate reports a configuration error, if any. Detection fails fast on
// bad tunables rather than returning a silently empty result.
func (p Params) Validate() error {
	switch {
	case p.MaxCorners <= 0:
		return fmt.Errorf("invalid detection params: max_corners must be positive, got %d", p.MaxCorners)
	case p.QualityLevel <= 0 || p.QualityLevel >= 1:
		return fmt.Errorf("invalid detection params: quality_level must be in (0, 1), got %g", p.QualityLevel)
	case p.ExpectedCardHeight <= 0:
		return fmt.Errorf("invalid detection params: expected_card_height must be positive, got %g", p.ExpectedCardHeight)
	case p.MinAreaRatio < 0 || p.MaxAreaRatio <= p.MinAreaRatio:
		return fmt.Errorf("invalid detection params: area ratios must satisfy 0 <= min < max, got %g..%g", p.MinAreaRatio, p.MaxAreaRatio)
	case p.MinAspectRatio <= 0 || p.MaxAspectRatio <= p.MinAspectRatio:
		return fmt.Errorf("invalid detection params: aspect ratios must satisfy 0 < min < max, got %g..%g", p.MinAspectRatio, p.MaxAspectRatio)
	case p.OverlapThreshold <= 0 || p.OverlapThreshold > 1:
		return fmt.Errorf("invalid detection params: overlap_threshold must be in (0, 1], got %g", p.OverlapThreshold)
	}
	return nil
}
