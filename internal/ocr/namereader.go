// Package ocr reads the printed name band of detected cards to suggest
// identity labels. Suggestions are advisory: authoritative labels always
// come from the caller, and boards photographed at an angle or in poor
// light simply yield no suggestion.
package ocr

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"card-tracer/internal/detect"
	"card-tracer/pkg/geometry"
)

// nameBandFraction is the portion of the card height (from the top of the
// card in canonical orientation) occupied by the printed name band.
const nameBandFraction = 0.18

// Suggestion is a card-name reading with the recognizer's confidence.
type Suggestion struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-1
}

// Engine wraps a Tesseract client configured for card names.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates an OCR engine for the given tesseract language code
// ("eng" if empty). Card names are dictionary words, so unlike
// part-number OCR the language model stays enabled.
func NewEngine(language string) (*Engine, error) {
	if language == "" {
		language = "eng"
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// SuggestName reads the name band of one detected card from the full
// board image. Returns an empty suggestion (not an error) when the band
// contains no legible text.
func (e *Engine) SuggestName(img gocv.Mat, card detect.DetectedCard) (Suggestion, error) {
	if img.Empty() {
		return Suggestion{}, fmt.Errorf("empty image")
	}

	band := NameBand(card.Oriented())
	region, ok := clampedRegion(img, band)
	if !ok {
		return Suggestion{}, fmt.Errorf("card %s name band lies outside the image", card.ID)
	}
	defer region.Close()

	processed := preprocessBand(region)
	defer processed.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, processed)
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to encode band: %w", err)
	}
	defer buf.Close()

	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return Suggestion{}, fmt.Errorf("failed to set page mode: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return Suggestion{}, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return Suggestion{}, fmt.Errorf("OCR failed: %w", err)
	}

	cleaned := CleanName(text)
	if cleaned == "" {
		return Suggestion{}, nil
	}
	return Suggestion{Text: cleaned, Confidence: bandConfidence(cleaned)}, nil
}

// NameBand returns the axis-aligned crop covering the card's name band.
// The band sits at the top of the card in canonical orientation; for
// rotated cards the axis-aligned bounds of the band's corners are used,
// which over-crops slightly but keeps the text inside.
func NameBand(card geometry.OrientedRect) geometry.Rect {
	band := geometry.OrientedRect{
		Center: geometry.Point2D{
			X: card.Center.X,
			Y: card.Center.Y,
		},
		Width:  card.Width,
		Height: card.Height * nameBandFraction,
		Angle:  card.Angle,
	}

	// Shift the band from the card center to the top edge, along the
	// card's own up direction.
	offset := (card.Height - band.Height) / 2
	rad := card.Angle * math.Pi / 180
	band.Center.X += offset * math.Sin(rad)
	band.Center.Y -= offset * math.Cos(rad)

	return band.Bounds()
}

// CleanName normalizes raw OCR output into a plausible card name: first
// line only, trimmed, stripped of stray non-letter characters, title
// case preserved as read.
func CleanName(raw string) string {
	line := raw
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	var b strings.Builder
	for _, r := range line {
		if r == ' ' || r == '-' || r == '\'' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// bandConfidence scores a cleaned reading by length: one or two letters
// are usually noise, full words are usually right.
func bandConfidence(cleaned string) float64 {
	n := len(cleaned)
	switch {
	case n < 3:
		return 0.2
	case n < 6:
		return 0.6
	default:
		return 0.8
	}
}

// clampedRegion extracts a Mat region for the rect clamped to the image.
func clampedRegion(img gocv.Mat, r geometry.Rect) (gocv.Mat, bool) {
	x0, y0 := int(r.X), int(r.Y)
	x1, y1 := int(r.X+r.Width), int(r.Y+r.Height)

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > img.Cols() {
		x1 = img.Cols()
	}
	if y1 > img.Rows() {
		y1 = img.Rows()
	}
	if x1-x0 < 4 || y1-y0 < 4 {
		return gocv.Mat{}, false
	}
	return img.Region(image.Rect(x0, y0, x1, y1)), true
}

// preprocessBand prepares a name-band crop for recognition: grayscale,
// upscale so small print reaches a readable size, then Otsu threshold.
func preprocessBand(region gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(region, &gray, gocv.ColorBGRToGray)

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(gray, &scaled, image.Point{}, 3, 3, gocv.InterpolationCubic)

	binary := gocv.NewMat()
	gocv.Threshold(scaled, &binary, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
	return binary
}
