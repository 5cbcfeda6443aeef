package detect

import (
	"errors"
	"fmt"
	goimage "image"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"card-tracer/internal/imgutil"
	"card-tracer/pkg/geometry"
)

var errEmptyImage = errors.New("empty image")

// DetectFromImage runs the full detection pipeline on a Go image.Image.
func DetectFromImage(src goimage.Image, params Params) (*Result, error) {
	mat, err := imgutil.ImageToMat(src)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()
	return Detect(mat, params)
}

// Detect runs both native strategies over a BGR image and merges their
// hypotheses through the deduplicator. The strategies are independent, so
// they run concurrently; each works on its own copy of the grayscale
// image. Card IDs are assigned after deduplication in result order.
func Detect(src gocv.Mat, params Params) (*Result, error) {
	if src.Empty() {
		return nil, errEmptyImage
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	bounds := geometry.NewRect(0, 0, float64(src.Cols()), float64(src.Rows()))

	var (
		corners      []DetectedCorner
		cornerCards  []DetectedCard
		contourCards []DetectedCard
	)

	var g errgroup.Group

	cornerGray := gray.Clone()
	g.Go(func() error {
		defer cornerGray.Close()
		found, err := FindCorners(cornerGray, params)
		if err != nil {
			return fmt.Errorf("corner path: %w", err)
		}
		corners = found
		cornerCards = BuildCards(found, bounds, params)
		return nil
	})

	contourGray := gray.Clone()
	g.Go(func() error {
		defer contourGray.Close()
		found, err := DetectByContours(contourGray, params)
		if err != nil {
			return fmt.Errorf("contour path: %w", err)
		}
		contourCards = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]DetectedCard, 0, len(cornerCards)+len(contourCards))
	merged = append(merged, cornerCards...)
	merged = append(merged, contourCards...)
	cards := Deduplicate(merged, params.OverlapThreshold)
	AssignIDs(cards)

	return &Result{Cards: cards, Corners: corners}, nil
}

// AssignIDs gives each card a sequential ID tagged with its source,
// e.g. "card-cr-001" for the corner path. Cards that already carry an ID
// keep it.
func AssignIDs(cards []DetectedCard) {
	seq := map[Source]int{}
	for i := range cards {
		if cards[i].ID != "" {
			continue
		}
		seq[cards[i].Source]++
		cards[i].ID = fmt.Sprintf("card-%s-%03d", cards[i].Source.idPrefix(), seq[cards[i].Source])
	}
}
