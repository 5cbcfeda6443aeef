// Package vision adapts detections from an external vision model (e.g. a
// multimodal LLM asked to locate cards in the photograph) into the same
// shapes the native detectors produce. The model reports normalized (0-1)
// card centers plus semantic metadata; this package denormalizes them into
// pixel space. The rest of the pipeline treats the result like any other
// detection source.
package vision

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"card-tracer/internal/board"
	"card-tracer/internal/detect"
	"card-tracer/pkg/geometry"
)

// Card is one card reported by the external model.
type Card struct {
	Name       string           `json:"name"`
	Type       string           `json:"type"` // "tree" or "dweller"
	Center     geometry.Point2D `json:"center"` // normalized, 0-1
	AttachedTo string           `json:"attached_to,omitempty"` // tree name, if the model reports it
	Confidence float64          `json:"confidence"`
}

// Frame maps the model's normalized coordinate space into pixel space.
type Frame struct {
	Transform geometry.AffineTransform
}

// PixelFrame builds the plain frame for an image of the given dimensions:
// normalized (u, v) maps to (u*width, v*height).
func PixelFrame(width, height int) (Frame, error) {
	if width <= 0 || height <= 0 {
		return Frame{}, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}
	return Frame{Transform: geometry.ScaleTranslate(float64(width), float64(height), 0, 0)}, nil
}

// FitFrame solves the least-squares affine frame from point
// correspondences, for callers that have reference points (e.g. the two
// calibration clicks echoed back by the model). Models sometimes report
// coordinates relative to a crop rather than the full image; a fitted
// frame absorbs that offset where PixelFrame cannot. Needs at least 3
// correspondences.
func FitFrame(normalized, pixel []geometry.Point2D) (Frame, error) {
	if len(normalized) != len(pixel) {
		return Frame{}, fmt.Errorf("point count mismatch: %d vs %d", len(normalized), len(pixel))
	}
	if len(normalized) < 3 {
		return Frame{}, fmt.Errorf("need at least 3 correspondences, got %d", len(normalized))
	}

	n := len(normalized)
	a := mat.NewDense(2*n, 6, nil)
	b := mat.NewVecDense(2*n, nil)

	for i, p := range normalized {
		a.SetRow(2*i, []float64{p.X, p.Y, 1, 0, 0, 0})
		a.SetRow(2*i+1, []float64{0, 0, 0, p.X, p.Y, 1})
		b.SetVec(2*i, pixel[i].X)
		b.SetVec(2*i+1, pixel[i].Y)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return Frame{}, fmt.Errorf("degenerate correspondences: %w", err)
	}

	return Frame{Transform: geometry.AffineTransform{
		A: x.AtVec(0), B: x.AtVec(1), TX: x.AtVec(2),
		C: x.AtVec(3), D: x.AtVec(4), TY: x.AtVec(5),
	}}, nil
}

// Denormalize converts model cards into pixel-space card hypotheses. The
// model reports centers only, so dimensions come from the expected card
// height and the canonical aspect ratio. Confidence passes through,
// clamped to [0, 1].
func (f Frame) Denormalize(cards []Card, expectedCardHeight float64) ([]detect.DetectedCard, error) {
	if expectedCardHeight <= 0 {
		return nil, fmt.Errorf("expected card height must be positive, got %g", expectedCardHeight)
	}

	out := make([]detect.DetectedCard, 0, len(cards))
	for _, c := range cards {
		conf := c.Confidence
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}
		out = append(out, detect.DetectedCard{
			Center:     f.Transform.Apply(c.Center),
			Width:      expectedCardHeight * detect.CardAspect,
			Height:     expectedCardHeight,
			Angle:      0,
			Confidence: conf,
			Source:     detect.SourceVision,
		})
	}
	detect.AssignIDs(out)
	return out, nil
}

// Markers promotes model cards directly to labeled markers, using lookup
// to resolve each reported name to a card identity. Cards whose name
// resolves to nil stay unlabeled rather than being dropped; the caller
// decides their fate.
func (f Frame) Markers(cards []Card, lookup func(name string) *board.CardIdentity) []board.LabeledMarker {
	out := make([]board.LabeledMarker, 0, len(cards))
	for _, c := range cards {
		m := board.NewMarker(f.Transform.Apply(c.Center))
		out = append(out, board.LabeledMarker{Marker: m, Identity: lookup(c.Name)})
	}
	return out
}
