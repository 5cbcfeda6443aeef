package detect

import (
	"math"
	"testing"

	"card-tracer/pkg/geometry"
)

func testBounds() geometry.Rect {
	return geometry.NewRect(0, 0, 400, 400)
}

func TestBuildCardsFromDiagonalPair(t *testing.T) {
	params := DefaultParams() // expected height 120
	expectedWidth := params.ExpectedCardHeight * CardAspect
	expectedDiagonal := math.Hypot(expectedWidth, params.ExpectedCardHeight)

	// Separation exactly one expected diagonal along 45 degrees, so the
	// reconstructed card has scale 1 and angle 0.
	step := expectedDiagonal / math.Sqrt2
	a := DetectedCorner{Point: geometry.Point2D{X: 100, Y: 100}, Quadrant: QuadrantTL, Strength: 1}
	b := DetectedCorner{Point: geometry.Point2D{X: 100 + step, Y: 100 + step}, Quadrant: QuadrantBR, Strength: 1}

	cards := BuildCards([]DetectedCorner{a, b}, testBounds(), params)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card from diagonal pair, got %d", len(cards))
	}

	c := cards[0]
	wantCenter := a.Point.Midpoint(b.Point)
	if math.Abs(c.Center.X-wantCenter.X) > 1e-9 || math.Abs(c.Center.Y-wantCenter.Y) > 1e-9 {
		t.Errorf("expected center %v, got %v", wantCenter, c.Center)
	}
	if math.Abs(c.Width-expectedWidth) > 1e-6 {
		t.Errorf("expected width %f, got %f", expectedWidth, c.Width)
	}
	if math.Abs(c.Height-params.ExpectedCardHeight) > 1e-6 {
		t.Errorf("expected height %f, got %f", params.ExpectedCardHeight, c.Height)
	}
	if math.Abs(c.Angle) > 1e-6 {
		t.Errorf("expected angle 0, got %f", c.Angle)
	}
	if math.Abs(c.Confidence-1) > 1e-6 {
		t.Errorf("expected confidence 1 at perfect scale, got %f", c.Confidence)
	}
	if c.Source != SourceCorner {
		t.Errorf("expected corner source, got %s", c.Source)
	}
}

func TestBuildCardsScaledPair(t *testing.T) {
	params := DefaultParams()
	expectedWidth := params.ExpectedCardHeight * CardAspect
	expectedDiagonal := math.Hypot(expectedWidth, params.ExpectedCardHeight)

	// Separation at 1.2x the expected diagonal: accepted, confidence
	// degraded by the scale deviation.
	step := 1.2 * expectedDiagonal / math.Sqrt2
	a := DetectedCorner{Point: geometry.Point2D{X: 50, Y: 50}, Quadrant: QuadrantTR, Strength: 0.8}
	b := DetectedCorner{Point: geometry.Point2D{X: 50 - step, Y: 50 + step}, Quadrant: QuadrantBL, Strength: 0.6}

	cards := BuildCards([]DetectedCorner{a, b}, testBounds(), params)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}

	c := cards[0]
	if math.Abs(c.Width-1.2*expectedWidth) > 1e-6 {
		t.Errorf("expected width scaled to %f, got %f", 1.2*expectedWidth, c.Width)
	}
	wantConf := (0.8 + 0.6) / 2 * (1 - 0.2)
	if math.Abs(c.Confidence-wantConf) > 1e-9 {
		t.Errorf("expected confidence %f, got %f", wantConf, c.Confidence)
	}
}

func TestBuildCardsRejectsBadSeparation(t *testing.T) {
	params := DefaultParams()
	expectedWidth := params.ExpectedCardHeight * CardAspect
	expectedDiagonal := math.Hypot(expectedWidth, params.ExpectedCardHeight)

	// 30% of the expected diagonal is below the 40% floor: no pairing.
	// Both corners fall back to single-corner extrapolation.
	step := 0.3 * expectedDiagonal / math.Sqrt2
	a := DetectedCorner{Point: geometry.Point2D{X: 200, Y: 200}, Quadrant: QuadrantTL, Strength: 1}
	b := DetectedCorner{Point: geometry.Point2D{X: 200 + step, Y: 200 + step}, Quadrant: QuadrantBR, Strength: 1}

	cards := BuildCards([]DetectedCorner{a, b}, testBounds(), params)
	if len(cards) != 2 {
		t.Fatalf("expected 2 extrapolated cards, got %d", len(cards))
	}
	for _, c := range cards {
		if math.Abs(c.Confidence-0.6) > 1e-9 {
			t.Errorf("single-corner confidence should be strength*0.6, got %f", c.Confidence)
		}
	}
}

func TestBuildCardsSingleCornerProjection(t *testing.T) {
	params := DefaultParams()
	hw := params.ExpectedCardHeight * CardAspect / 2
	hh := params.ExpectedCardHeight / 2

	corner := DetectedCorner{Point: geometry.Point2D{X: 30, Y: 40}, Quadrant: QuadrantTL, Strength: 0.9}
	cards := BuildCards([]DetectedCorner{corner}, testBounds(), params)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}

	c := cards[0]
	if math.Abs(c.Center.X-(30+hw)) > 1e-9 || math.Abs(c.Center.Y-(40+hh)) > 1e-9 {
		t.Errorf("TL corner should project center down-right, got %v", c.Center)
	}
	if math.Abs(c.Confidence-0.54) > 1e-9 {
		t.Errorf("expected confidence 0.54, got %f", c.Confidence)
	}
}

func TestBuildCardsSingleCornerOutOfBounds(t *testing.T) {
	params := DefaultParams()

	// A TR corner projects its center left; at x=5 the projected center
	// lands beyond the 30% margin outside the image.
	corner := DetectedCorner{Point: geometry.Point2D{X: 5, Y: 200}, Quadrant: QuadrantTR, Strength: 1}
	cards := BuildCards([]DetectedCorner{corner}, testBounds(), params)
	if len(cards) != 0 {
		t.Fatalf("expected out-of-bounds projection to be discarded, got %d cards", len(cards))
	}
}

func TestBuildCardsIgnoresWeakAndUnknown(t *testing.T) {
	params := DefaultParams()
	corners := []DetectedCorner{
		{Point: geometry.Point2D{X: 100, Y: 100}, Quadrant: QuadrantUnknown, Strength: 0.9},
		{Point: geometry.Point2D{X: 200, Y: 200}, Quadrant: QuadrantTL, Strength: 0.2},
	}
	if cards := BuildCards(corners, testBounds(), params); len(cards) != 0 {
		t.Fatalf("expected no cards from unknown/weak corners, got %d", len(cards))
	}
}

func TestBuildCardsPairingIsIndexOrderStable(t *testing.T) {
	params := DefaultParams()
	expectedWidth := params.ExpectedCardHeight * CardAspect
	expectedDiagonal := math.Hypot(expectedWidth, params.ExpectedCardHeight)
	step := expectedDiagonal / math.Sqrt2

	tl := DetectedCorner{Point: geometry.Point2D{X: 100, Y: 100}, Quadrant: QuadrantTL, Strength: 1}
	// Two valid BR partners; the earlier one in the list must be claimed.
	br1 := DetectedCorner{Point: geometry.Point2D{X: 100 + step, Y: 100 + step}, Quadrant: QuadrantBR, Strength: 0.5}
	br2 := DetectedCorner{Point: geometry.Point2D{X: 100 + step + 1, Y: 100 + step + 1}, Quadrant: QuadrantBR, Strength: 0.9}

	cards := BuildCards([]DetectedCorner{tl, br1, br2}, testBounds(), params)

	// br1 pairs with tl; br2 is left to extrapolate alone.
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	wantCenter := tl.Point.Midpoint(br1.Point)
	if math.Abs(cards[0].Center.X-wantCenter.X) > 1e-9 {
		t.Errorf("first valid partner in index order should win the pairing")
	}
}
