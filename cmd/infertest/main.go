// Command infertest runs spatial inference on an exported board session
// and prints the result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"card-tracer/internal/assign"
	"card-tracer/internal/board"
	"card-tracer/internal/config"
)

func main() {
	sessionPath := flag.String("session", "", "Path to an exported board session (JSON)")
	configPath := flag.String("config", "", "Optional YAML tunables file")
	multiplier := flag.Float64("multiplier", 0, "Threshold multiplier (overrides config)")
	flag.Parse()

	if *sessionPath == "" {
		fmt.Println("Usage: infertest -session <path> [-config <path>] [-multiplier 0.75]")
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
	m := cfg.ThresholdMultiplier
	if *multiplier > 0 {
		m = *multiplier
	}

	session, err := board.Import(*sessionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load session: %v\n", err)
		os.Exit(1)
	}

	calibration, ok := session.Calibration()
	if !ok {
		fmt.Fprintln(os.Stderr, "Session has no calibration; mark one card's long edge first")
		os.Exit(1)
	}

	trees, dwellers := session.SplitMarkers()
	fmt.Fprintf(os.Stderr, "Markers: %d trees, %d dwellers; calibration %.1f px, multiplier %.2f\n",
		len(trees), len(dwellers), calibration.Distance, m)

	result, err := assign.Infer(trees, dwellers, calibration, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Inference failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
}
