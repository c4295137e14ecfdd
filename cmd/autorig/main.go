package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"mesh-autorig/internal/batch"
	"mesh-autorig/internal/config"
	"mesh-autorig/internal/logging"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	testN := flag.Int("test", 0, "Rig only first N meshes for testing")
	inputDir := flag.String("input", "", "Directory of .obj meshes, or a single .obj file (default: meshes)")
	outputDir := flag.String("output", "", "Output directory (default: rigs)")
	weightsDir := flag.String("weights", "", "Directory of <mesh>.json sampled weights (default: seed from skeleton)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	doPreview := flag.Bool("preview", false, "Render a weight preview per mesh")
	format := flag.String("format", "", "Preview format: webp, tga or png (default: webp)")
	iter := flag.Int("iter", -1, "Diffusion iterations (default: 1)")
	threshold := flag.Float64("threshold", 0, "Weight threshold (default: 0.01)")
	alpha := flag.Float64("alpha", 0, "Inverse-distance exponent (default: 2)")
	samples := flag.Int("samples", 0, "Nearest samples per vertex (default: 7)")
	method := flag.String("method", "", "Sample method: nearest, inverse_distance, gaussian, average")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		InputDir:      *inputDir,
		OutputDir:     *outputDir,
		WeightsDir:    *weightsDir,
		SampleMethod:  *method,
		IterSteps:     *iter,
		Threshold:     *threshold,
		Alpha:         *alpha,
		Samples:       *samples,
		Workers:       *workers,
		Preview:       *doPreview,
		PreviewFormat: *format,
		LogLevel:      *logLevel,
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	}))

	inputs, err := listInputs(cfg.InputDir, cfg.InputGlob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing meshes: %v\n", err)
		os.Exit(1)
	}

	// Limit for testing
	if *testN > 0 && *testN < len(inputs) {
		inputs = inputs[:*testN]
	}

	if len(inputs) == 0 {
		fmt.Println("No meshes to rig.")
		os.Exit(0)
	}

	mode := ""
	if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}
	fmt.Printf("Mesh auto-rig%s\n", mode)
	fmt.Printf("Meshes: %d, Workers: %d\n", len(inputs), cfg.Workers)
	fmt.Printf("Diffusion: %s, k=%d, iter=%d, threshold=%g, alpha=%g\n",
		cfg.SampleMethod, cfg.NearestSamples, *cfg.IterSteps, cfg.Threshold, cfg.Alpha)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		OutputDir:     cfg.OutputDir,
		WeightsDir:    cfg.WeightsDir,
		ObjCharset:    cfg.ObjCharset,
		ExportFormat:  cfg.ExportFormat,
		ExtrudeScale:  cfg.ExtrudeScale,
		Seed:          cfg.Seed,
		Skinning:      cfg.Skinning(),
		Preview:       cfg.Preview,
		PreviewFormat: cfg.PreviewFormat,
		PreviewSize:   cfg.PreviewSize,
		Supersample:   cfg.Supersample,
		Workers:       cfg.Workers,
		Progress:      true,
		Logger:        logger,
	}

	results := batch.Run(batchCfg, inputs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed, fallbacks := 0, 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
			if r.Fallback {
				fallbacks++
			}
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rigged: %d/%d (fallback skeletons: %d)\n", success, len(inputs), fallbacks)

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(len(errors), 20)
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Input, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// listInputs accepts a single file or a directory filtered by glob.
func listInputs(path, glob string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	matches, err := filepath.Glob(filepath.Join(path, glob))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
