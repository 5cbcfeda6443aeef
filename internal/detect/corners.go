package detect

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"card-tracer/internal/imgutil"
	"card-tracer/pkg/geometry"
)

// FindCorners extracts candidate feature points from a grayscale image and
// classifies each against the edge map. The returned corners include
// unknowns; callers that only want committed corners filter on Quadrant.
func FindCorners(gray gocv.Mat, params Params) ([]DetectedCorner, error) {
	if gray.Empty() {
		return nil, errEmptyImage
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Light blur so single-pixel noise doesn't register as features
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: 5, Y: 5}, 0, 0, gocv.BorderDefault)

	points := goodFeatures(blurred, params)
	edges := edgeMap(blurred, params)

	radius := neighborhoodRadius(params.ExpectedCardHeight)

	corners := make([]DetectedCorner, 0, len(points))
	for _, p := range points {
		corners = append(corners, ClassifyCorner(edges, p, radius))
	}
	return corners, nil
}

// goodFeatures runs Shi-Tomasi corner extraction and returns the candidate
// points.
func goodFeatures(gray gocv.Mat, params Params) []geometry.Point2D {
	found := gocv.NewMat()
	defer found.Close()
	gocv.GoodFeaturesToTrack(gray, &found, params.MaxCorners, params.QualityLevel, params.MinDistance)

	points := make([]geometry.Point2D, 0, found.Rows())
	for i := 0; i < found.Rows(); i++ {
		vec := found.GetVecfAt(i, 0)
		if len(vec) < 2 {
			continue
		}
		points = append(points, geometry.Point2D{X: float64(vec[0]), Y: float64(vec[1])})
	}
	return points
}

// edgeMap builds the binary edge image used by corner classification:
// Canny edges dilated once to close hairline breaks, copied to a plain
// Go grayscale image so classification stays independent of OpenCV.
func edgeMap(gray gocv.Mat, params Params) *image.Gray {
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, float32(params.CannyThreshold1), float32(params.CannyThreshold2))

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()
	gocv.Dilate(edges, &edges, kernel)

	return imgutil.MatToGray(edges)
}

// neighborhoodRadius derives the sampling radius for corner classification
// from the expected card height. 6% of a card height covers the corner's
// local edge pattern without reaching the opposite card edge.
func neighborhoodRadius(expectedCardHeight float64) int {
	r := int(expectedCardHeight * 0.06)
	if r < 6 {
		r = 6
	}
	return r
}

// patternOrder fixes the evaluation order of the four corner patterns.
// Score ties resolve to the earliest pattern, which keeps classification
// deterministic.
var patternOrder = [4]Quadrant{QuadrantTL, QuadrantTR, QuadrantBL, QuadrantBR}

// ClassifyCorner decides which card corner (if any) the point is, by
// counting edge pixels in the four axis-aligned quadrants around it. Each
// candidate corner is an L-shaped pattern: three quadrants carry edges and
// the diagonally opposite quadrant is empty. The pattern score rewards
// edge mass in the active quadrants and penalizes any in the empty one:
//
//	score = (sum of 3 active quadrant counts) / (opposite quadrant count + 1)
//
// Strength is the best score scaled by 10 and clamped to 1. At or below
// 0.3 the point classifies as QuadrantUnknown.
func ClassifyCorner(edges *image.Gray, p geometry.Point2D, radius int) DetectedCorner {
	counts := quadrantCounts(edges, p, radius)
	total := counts[QuadrantTL] + counts[QuadrantTR] + counts[QuadrantBL] + counts[QuadrantBR]

	best := QuadrantUnknown
	bestScore := 0.0
	for _, q := range patternOrder {
		opp := counts[q.Opposite()]
		score := float64(total-opp) / float64(opp+1)
		if score > bestScore {
			bestScore = score
			best = q
		}
	}

	strength := math.Min(1, bestScore/10)
	if strength <= strengthFloor {
		return DetectedCorner{Point: p, Quadrant: QuadrantUnknown, Strength: strength}
	}

	return DetectedCorner{
		Point:    p,
		Angle:    quadrantAngles[best],
		Quadrant: best,
		Strength: strength,
	}
}

// quadrantCounts counts edge pixels in each quadrant around p within the
// sampling radius. Pixels on the axes belong to no quadrant.
func quadrantCounts(edges *image.Gray, p geometry.Point2D, radius int) map[Quadrant]int {
	b := edges.Bounds()
	cx, cy := int(p.X), int(p.Y)

	counts := map[Quadrant]int{}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 || dy == 0 {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
				continue
			}
			if edges.GrayAt(x, y).Y == 0 {
				continue
			}
			switch {
			case dx < 0 && dy < 0:
				counts[QuadrantTL]++
			case dx > 0 && dy < 0:
				counts[QuadrantTR]++
			case dx < 0 && dy > 0:
				counts[QuadrantBL]++
			default:
				counts[QuadrantBR]++
			}
		}
	}
	return counts
}
