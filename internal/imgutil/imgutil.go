// Package imgutil provides conversions between Go images and OpenCV Mats
// plus the shared preprocessing steps used by the detectors.
package imgutil

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// MaxDetectionDimension caps the longer side of images fed to detection.
// Phone photographs are commonly 4000+ pixels; detection quality does not
// improve past this size but runtime does.
const MaxDetectionDimension = 2000

// Load decodes an image file (PNG, JPEG, TIFF, or BMP) and downscales it
// if its longer side exceeds MaxDetectionDimension. Returns the image and
// the scale factor applied (1.0 if untouched); callers map detected
// coordinates back to the original by dividing by the factor.
func Load(path string) (image.Image, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	longer := b.Dx()
	if b.Dy() > longer {
		longer = b.Dy()
	}
	if longer <= MaxDetectionDimension {
		return img, 1.0, nil
	}

	scale := float64(MaxDetectionDimension) / float64(longer)
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	return imaging.Resize(img, w, h, imaging.Lanczos), scale, nil
}

// ImageToMat converts a Go image.Image to a gocv.Mat in BGR format.
func ImageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return gocv.Mat{}, fmt.Errorf("empty image %dx%d", w, h)
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}

// MatToGray copies a single-channel 8-bit Mat into a Go *image.Gray.
func MatToGray(mat gocv.Mat) *image.Gray {
	rows, cols := mat.Rows(), mat.Cols()
	gray := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			gray.SetGray(x, y, color.Gray{Y: mat.GetUCharAt(y, x)})
		}
	}
	return gray
}

// GrayToMat copies a Go *image.Gray into a single-channel 8-bit Mat.
func GrayToMat(gray *image.Gray) gocv.Mat {
	b := gray.Bounds()
	mat := gocv.NewMatWithSize(b.Dy(), b.Dx(), gocv.MatTypeCV8U)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			mat.SetUCharAt(y, x, gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	return mat
}
