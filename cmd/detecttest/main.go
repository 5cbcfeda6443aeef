// Command detecttest runs card detection on a board photograph and
// prints the detected cards.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"card-tracer/internal/config"
	"card-tracer/internal/detect"
	"card-tracer/internal/imgutil"
	"card-tracer/internal/worker"
)

func main() {
	imagePath := flag.String("image", "", "Path to board photo (PNG, JPEG, TIFF, or BMP)")
	configPath := flag.String("config", "", "Optional YAML tunables file")
	cardHeight := flag.Float64("card-height", 0, "Expected card height in pixels (overrides config)")
	asJSON := flag.Bool("json", false, "Print results as JSON instead of a table")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: detecttest -image <path> [-config <path>] [-card-height 120] [-json]")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	params := cfg.Detect
	if *cardHeight > 0 {
		params = params.WithCardHeight(*cardHeight)
	}

	img, scale, err := imgutil.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded image: %dx%d pixels (scale %.3f)\n", bounds.Dx(), bounds.Dy(), scale)
	if scale != 1.0 {
		// Keep the expected size consistent with the working resolution
		params = params.WithCardHeight(params.ExpectedCardHeight * scale)
	}

	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Corners: max=%d quality=%.3f min-dist=%.1f\n",
		params.MaxCorners, params.QualityLevel, params.MinDistance)
	fmt.Printf("  Expected card: %.0fx%.0f px\n",
		params.ExpectedCardHeight*detect.CardAspect, params.ExpectedCardHeight)
	fmt.Printf("  Contours: area %.4f-%.4f aspect %.2f-%.2f fill min %.2f\n",
		params.MinAreaRatio, params.MaxAreaRatio,
		params.MinAspectRatio, params.MaxAspectRatio, params.MinFillRatio)
	fmt.Printf("  Canny: %.0f/%.0f  Overlap threshold: %.2f\n",
		params.CannyThreshold1, params.CannyThreshold2, params.OverlapThreshold)

	fmt.Printf("\nDetecting cards...\n")
	runner := worker.NewRunner(detect.DetectFromImage)
	runner.Submit(img, params)
	runner.Close()

	outcome, ok := <-runner.Results()
	if !ok {
		fmt.Fprintln(os.Stderr, "Detection produced no outcome")
		os.Exit(1)
	}
	if outcome.Err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", outcome.Err)
		os.Exit(1)
	}
	result := outcome.Result

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("\nDetected %d cards (%d corner candidates):\n",
		len(result.Cards), len(result.Corners))
	fmt.Printf("%-14s %9s %9s %8s %8s %8s %12s %8s\n",
		"ID", "X", "Y", "Width", "Height", "Angle", "Confidence", "Source")
	fmt.Println(strings.Repeat("-", 84))
	for _, c := range result.Cards {
		fmt.Printf("%-14s %9.1f %9.1f %8.1f %8.1f %8.1f %12.2f %8s\n",
			c.ID, c.Center.X, c.Center.Y, c.Width, c.Height, c.Angle, c.Confidence, c.Source)
	}

	fmt.Printf("\nTotal: %d cards detected\n", len(result.Cards))
}
