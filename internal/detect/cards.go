package detect

import (
	"math"

	"card-tracer/pkg/geometry"
)

// BuildCards synthesizes oriented-rectangle card hypotheses from classified
// corners. Corners with an unknown quadrant or strength at or below the
// floor are ignored.
//
// Two passes run over the committed corners:
//  1. paired reconstruction: diagonally opposite corners at a plausible
//     diagonal separation define a card directly;
//  2. single-corner extrapolation: leftover corners project a card of the
//     expected size into the quadrant they open toward.
//
// Corner pairing is first-match-wins in stable index order (outer corner i,
// inner candidates j > i). When several valid pairings exist the earliest
// one claims both corners; this order dependence is inherited behavior and
// kept deterministic rather than resolved.
func BuildCards(corners []DetectedCorner, imageBounds geometry.Rect, params Params) []DetectedCard {
	expectedHeight := params.ExpectedCardHeight
	expectedWidth := expectedHeight * CardAspect
	expectedDiagonal := math.Hypot(expectedWidth, expectedHeight)

	usable := make([]DetectedCorner, 0, len(corners))
	for _, c := range corners {
		if c.Quadrant != QuadrantUnknown && c.Strength > strengthFloor {
			usable = append(usable, c)
		}
	}

	used := make([]bool, len(usable))
	var cards []DetectedCard

	// Pass 1: paired reconstruction
	for i := range usable {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(usable); j++ {
			if used[j] {
				continue
			}
			if usable[j].Quadrant != usable[i].Quadrant.Opposite() {
				continue
			}

			dist := usable[i].Point.Distance(usable[j].Point)
			if dist < 0.4*expectedDiagonal || dist > 1.4*expectedDiagonal {
				continue
			}

			cards = append(cards, cardFromPair(usable[i], usable[j], dist, expectedWidth, expectedHeight, expectedDiagonal))
			used[i] = true
			used[j] = true
			break
		}
	}

	// Pass 2: single-corner extrapolation
	margin := 0.3 * math.Max(expectedWidth, expectedHeight)
	allowed := imageBounds.Expand(margin)

	for i, c := range usable {
		if used[i] {
			continue
		}
		card, ok := cardFromSingle(c, expectedWidth, expectedHeight, allowed)
		if ok {
			cards = append(cards, card)
		}
	}

	return cards
}

// cardFromPair builds a card hypothesis from two diagonally opposite
// corners. The separation scales the canonical card size, and confidence
// degrades with distance from the ideal scale of 1.
func cardFromPair(a, b DetectedCorner, dist, expectedWidth, expectedHeight, expectedDiagonal float64) DetectedCard {
	scale := dist / expectedDiagonal
	delta := b.Point.Sub(a.Point)

	// The card diagonal sits 45 degrees off the card's own axis.
	angle := math.Atan2(delta.Y, delta.X)*180/math.Pi - 45

	confidence := (a.Strength + b.Strength) / 2 * (1 - math.Abs(scale-1))
	confidence = clamp(confidence, 0.3, 1)

	return DetectedCard{
		Center:     a.Point.Midpoint(b.Point),
		Width:      expectedWidth * scale,
		Height:     expectedHeight * scale,
		Angle:      angle,
		Confidence: confidence,
		Source:     SourceCorner,
	}
}

// cardFromSingle extrapolates a full card from one corner by offsetting
// half a card toward the quadrant the corner opens into. Cards whose
// projected center falls outside the allowed bounds are rejected; a single
// corner cannot justify a card that far off the photograph.
func cardFromSingle(c DetectedCorner, expectedWidth, expectedHeight float64, allowed geometry.Rect) (DetectedCard, bool) {
	hw := expectedWidth / 2
	hh := expectedHeight / 2

	var offset geometry.Point2D
	switch c.Quadrant {
	case QuadrantTL:
		offset = geometry.Point2D{X: hw, Y: hh}
	case QuadrantTR:
		offset = geometry.Point2D{X: -hw, Y: hh}
	case QuadrantBL:
		offset = geometry.Point2D{X: hw, Y: -hh}
	case QuadrantBR:
		offset = geometry.Point2D{X: -hw, Y: -hh}
	default:
		return DetectedCard{}, false
	}

	center := c.Point.Add(offset)
	if !allowed.Contains(center) {
		return DetectedCard{}, false
	}

	return DetectedCard{
		Center: center,
		Width:  expectedWidth,
		Height: expectedHeight,
		Angle:  0,
		// One confirming corner instead of two
		Confidence: c.Strength * 0.6,
		Source:     SourceCorner,
	}, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
