package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"ldctreader/pkg/config"
	"ldctreader/pkg/export"
	"ldctreader/pkg/mayo"
	"ldctreader/pkg/projection"
	"ldctreader/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing LDCT projection DICOM files")
	configPath := flag.String("config", "ldctreader.yaml", "Path to the YAML configuration file")
	selection := flag.String("select", "", "Projections to load: index list (2,0,1) or slice (start:stop:step)")
	numWorkers := flag.Int("workers", 0, "Number of projections processed concurrently (overrides config)")
	outputDir := flag.String("output", "", "Directory for exported arrays and images (overrides config)")
	saveArrays := flag.Bool("arrays", false, "Export proj_data, n_spec and t_spec as raw float32 files")
	saveImages := flag.Bool("images", false, "Save a JPEG quick-look of every projection")
	verbose := flag.Bool("verbose", false, "Log every loaded projection")
	flag.Parse()

	// Validate inputs
	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *numWorkers > 0 {
		cfg.Loader.NumWorkers = *numWorkers
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	cfg.Output.SaveArrays = cfg.Output.SaveArrays || *saveArrays
	cfg.Output.SaveImages = cfg.Output.SaveImages || *saveImages
	cfg.Loader.Verbose = cfg.Loader.Verbose || *verbose

	selector, err := projection.ParseSelector(*selection)
	if err != nil {
		log.Fatalf("Invalid selection: %v", err)
	}

	params := &projection.Params{
		InputDir:   *inputDir,
		Extension:  cfg.Loader.Extension,
		Selector:   selector,
		NumWorkers: cfg.Loader.NumWorkers,
		Verbose:    cfg.Loader.Verbose,
	}
	loader := projection.NewLoader(params, mayo.NewDecoder())

	fmt.Printf("Loading projections from %s...\n", *inputDir)
	startTime := time.Now()
	series, err := loader.Load()
	if err != nil {
		log.Fatalf("Loading failed: %v", err)
	}
	loadTime := time.Since(startTime)

	summary := series.Summarize()
	fmt.Printf("\nLoaded %d projections in %.2f seconds\n", summary.Projections, loadTime.Seconds())
	fmt.Printf("Pixel array:      %d x %d\n", summary.Rows, summary.Columns)
	fmt.Printf("Detector grid:    %d columns x %d rows\n", summary.DetectorColumns, summary.DetectorRows)
	fmt.Printf("Rescale:          slope %g, intercept %g\n", series.Reference.RescaleSlope, series.Reference.RescaleIntercept)
	fmt.Printf("Line integrals:   min %.4f, max %.4f, mean %.4f, std %.4f (g/cm^2)\n",
		summary.Min, summary.Max, summary.Mean, summary.StdDev)

	if cfg.Output.SaveArrays {
		fmt.Printf("\nExporting arrays to %s...\n", cfg.Output.Dir)
		manifest, err := export.WriteSeries(series, cfg.Output.Dir)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		for _, a := range manifest.Arrays {
			fmt.Printf("- %s %v -> %s\n", a.Name, a.Shape, a.File)
		}
	}

	if cfg.Output.SaveImages {
		imagesDir := filepath.Join(cfg.Output.Dir, "projections")
		fmt.Printf("\nSaving projection images to %s...\n", imagesDir)
		viewer := visualization.NewViewer(series)
		if err := viewer.SaveSliceSequence("projection", imagesDir); err != nil {
			log.Printf("Warning: Failed to save projection images: %v", err)
		}
	}
}
