package vision

import (
	"math"
	"testing"

	"card-tracer/internal/board"
	"card-tracer/internal/detect"
	"card-tracer/pkg/geometry"
)

func TestPixelFrameDenormalize(t *testing.T) {
	f, err := PixelFrame(800, 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cards, err := f.Denormalize([]Card{
		{Name: "Oak", Type: "tree", Center: geometry.Point2D{X: 0.5, Y: 0.5}, Confidence: 0.8},
		{Name: "Owl", Type: "dweller", Center: geometry.Point2D{X: 0.25, Y: 0.1}, Confidence: 1.7},
	}, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}

	if cards[0].Center.X != 400 || cards[0].Center.Y != 300 {
		t.Errorf("expected center (400, 300), got %v", cards[0].Center)
	}
	if cards[1].Center.X != 200 || cards[1].Center.Y != 60 {
		t.Errorf("expected center (200, 60), got %v", cards[1].Center)
	}
	if cards[1].Confidence != 1 {
		t.Errorf("confidence should clamp to 1, got %f", cards[1].Confidence)
	}
	if cards[0].Height != 120 || math.Abs(cards[0].Width-120*detect.CardAspect) > 1e-9 {
		t.Errorf("dimensions should come from the expected card size, got %fx%f", cards[0].Width, cards[0].Height)
	}
	if cards[0].Source != detect.SourceVision {
		t.Errorf("expected vision source, got %s", cards[0].Source)
	}
	if cards[0].ID != "card-vx-001" || cards[1].ID != "card-vx-002" {
		t.Errorf("unexpected IDs: %q %q", cards[0].ID, cards[1].ID)
	}
}

func TestPixelFrameRejectsBadDimensions(t *testing.T) {
	if _, err := PixelFrame(0, 600); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestDenormalizeRejectsBadCardHeight(t *testing.T) {
	f, _ := PixelFrame(800, 600)
	if _, err := f.Denormalize(nil, 0); err == nil {
		t.Error("expected error for zero card height")
	}
}

func TestFitFrameRecoversScaleAndOffset(t *testing.T) {
	// The model reported coordinates relative to a crop: true mapping is
	// scale (1000, 800) plus offset (50, 30).
	want := geometry.ScaleTranslate(1000, 800, 50, 30)
	normalized := []geometry.Point2D{
		{X: 0.1, Y: 0.2}, {X: 0.9, Y: 0.1}, {X: 0.5, Y: 0.8}, {X: 0.3, Y: 0.6},
	}
	pixel := make([]geometry.Point2D, len(normalized))
	for i, p := range normalized {
		pixel[i] = want.Apply(p)
	}

	f, err := FitFrame(normalized, pixel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, p := range normalized {
		got := f.Transform.Apply(p)
		if math.Abs(got.X-pixel[i].X) > 1e-6 || math.Abs(got.Y-pixel[i].Y) > 1e-6 {
			t.Errorf("point %d: expected %v, got %v", i, pixel[i], got)
		}
	}
}

func TestFitFrameValidation(t *testing.T) {
	pts := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 1}}
	if _, err := FitFrame(pts, pts); err == nil {
		t.Error("expected error for too few correspondences")
	}
	if _, err := FitFrame(pts, pts[:1]); err == nil {
		t.Error("expected error for mismatched point counts")
	}
}

func TestMarkersResolveIdentities(t *testing.T) {
	f, _ := PixelFrame(800, 600)
	identities := map[string]*board.CardIdentity{
		"Oak": {ID: "oak", Name: "Oak", Kind: board.KindTree},
	}
	lookup := func(name string) *board.CardIdentity { return identities[name] }

	markers := f.Markers([]Card{
		{Name: "Oak", Center: geometry.Point2D{X: 0.5, Y: 0.5}},
		{Name: "Mystery", Center: geometry.Point2D{X: 0.2, Y: 0.2}},
	}, lookup)

	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if !markers[0].IsTree() {
		t.Error("known card should resolve to a tree identity")
	}
	if markers[1].Identity != nil {
		t.Error("unknown card should stay unlabeled")
	}
	if markers[0].ID == "" || markers[0].ID == markers[1].ID {
		t.Error("markers should get distinct generated IDs")
	}
}
