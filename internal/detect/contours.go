package detect

import (
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"card-tracer/pkg/geometry"
)

// DetectByContours finds card hypotheses by fitting oriented minimal
// bounding rectangles to closed outlines. Independent of the corner path:
// it works directly from full contours, so it handles cards whose corners
// are occluded but whose outline survives.
//
// Results are sorted by descending confidence.
func DetectByContours(gray gocv.Mat, params Params) ([]DetectedCard, error) {
	if gray.Empty() {
		return nil, errEmptyImage
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: 5, Y: 5}, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(params.CannyThreshold1), float32(params.CannyThreshold2))

	// Close small gaps so card outlines form closed contours
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()
	gocv.MorphologyEx(edges, &edges, gocv.MorphClose, kernel)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	imgArea := float64(gray.Cols() * gray.Rows())
	minArea := params.MinAreaRatio * imgArea
	maxArea := params.MaxAreaRatio * imgArea

	var cards []DetectedCard
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < minArea || area > maxArea {
			continue
		}

		rot := gocv.MinAreaRect(contour)
		rect := geometry.OrientedRect{
			Center: geometry.Point2D{X: float64(rot.Center.X), Y: float64(rot.Center.Y)},
			Width:  float64(rot.Width),
			Height: float64(rot.Height),
			Angle:  rot.Angle,
		}.Normalized()

		card, ok := cardFromContourRect(rect, area, params)
		if !ok {
			continue
		}
		cards = append(cards, card)
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Confidence > cards[j].Confidence
	})
	return cards, nil
}

// cardFromContourRect filters a fitted rectangle by aspect and fill ratio
// and scores it. Fill ratio is the contour area over the fitted rectangle
// area, i.e. how rectangular the outline actually is. Confidence blends fill
// with closeness to the canonical card aspect.
func cardFromContourRect(rect geometry.OrientedRect, contourArea float64, params Params) (DetectedCard, bool) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return DetectedCard{}, false
	}

	aspect := rect.Width / rect.Height
	if aspect < params.MinAspectRatio || aspect > params.MaxAspectRatio {
		return DetectedCard{}, false
	}

	fill := contourArea / rect.Area()
	if fill < params.MinFillRatio {
		return DetectedCard{}, false
	}

	confidence := 0.5*fill + 0.5*(1-math.Abs(aspect-ContourAspect)/0.3)
	confidence = clamp(confidence, 0, 1)

	return DetectedCard{
		Center:     rect.Center,
		Width:      rect.Width,
		Height:     rect.Height,
		Angle:      rect.Angle,
		Confidence: confidence,
		Source:     SourceContour,
	}, true
}
