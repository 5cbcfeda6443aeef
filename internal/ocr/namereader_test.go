package ocr

import (
	"math"
	"testing"

	"card-tracer/pkg/geometry"
)

func TestCleanName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Great Horned Owl\n", "Great Horned Owl"},
		{"  Oak  ", "Oak"},
		{"F1r3fly!", "Frfly"},
		{"Wolf\nSecond line ignored", "Wolf"},
		{"Will-o'-Wisp", "Will-o'-Wisp"},
		{"123 456", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanName(tc.raw); got != tc.want {
			t.Errorf("CleanName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNameBandUnrotated(t *testing.T) {
	card := geometry.OrientedRect{
		Center: geometry.Point2D{X: 100, Y: 200},
		Width:  72,
		Height: 100,
		Angle:  0,
	}

	band := NameBand(card)
	// Band covers the top of the card: full width, 18% of the height.
	if math.Abs(band.Width-72) > 1e-6 {
		t.Errorf("expected band width 72, got %f", band.Width)
	}
	if math.Abs(band.Height-18) > 1e-6 {
		t.Errorf("expected band height 18, got %f", band.Height)
	}
	if math.Abs(band.Y-150) > 1e-6 {
		t.Errorf("band should start at the card's top edge y=150, got %f", band.Y)
	}
}

func TestNameBandRotatedStaysNearCard(t *testing.T) {
	card := geometry.OrientedRect{
		Center: geometry.Point2D{X: 100, Y: 100},
		Width:  72,
		Height: 100,
		Angle:  30,
	}

	band := NameBand(card)
	cardBounds := card.Bounds().Expand(1)
	if !cardBounds.Contains(band.Center()) {
		t.Errorf("rotated name band center %v should stay within the card bounds %+v", band.Center(), cardBounds)
	}
}

func TestBandConfidenceBuckets(t *testing.T) {
	if bandConfidence("ab") >= bandConfidence("Oak") {
		t.Error("short noise should score below a short word")
	}
	if bandConfidence("Oak") >= bandConfidence("Firefly") {
		t.Error("short word should score below a full word")
	}
}
