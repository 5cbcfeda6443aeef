package imgutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadKeepsSmallImages(t *testing.T) {
	path := writePNG(t, image.NewRGBA(image.Rect(0, 0, 640, 480)))

	img, scale, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if scale != 1.0 {
		t.Errorf("expected scale 1.0, got %g", scale)
	}
	b := img.Bounds()
	if b.Dx() != 640 || b.Dy() != 480 {
		t.Errorf("expected 640x480, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestLoadDownscalesLargeImages(t *testing.T) {
	path := writePNG(t, image.NewRGBA(image.Rect(0, 0, 4000, 3000)))

	img, scale, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if scale != 0.5 {
		t.Errorf("expected scale 0.5, got %g", scale)
	}
	b := img.Bounds()
	if b.Dx() != MaxDetectionDimension || b.Dy() != 1500 {
		t.Errorf("expected %dx1500, got %dx%d", MaxDetectionDimension, b.Dx(), b.Dy())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGrayMatRoundTrip(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8(x*31 + y*7)})
		}
	}

	m := GrayToMat(src)
	defer m.Close()
	got := MatToGray(m)

	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			if got.GrayAt(x, y) != src.GrayAt(x, y) {
				t.Fatalf("pixel (%d,%d) changed: %v != %v", x, y, got.GrayAt(x, y), src.GrayAt(x, y))
			}
		}
	}
}
