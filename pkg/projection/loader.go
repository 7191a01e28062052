// Package projection loads a folder of LDCT projection files into projection
// data and the ray specification expected by an X-ray transform.
package projection

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"ldctreader/internal/models"
	"ldctreader/pkg/geometry"
	"ldctreader/pkg/mayo"
)

var (
	// ErrInvalidLocation is returned when the input folder is missing or not a directory
	ErrInvalidLocation = errors.New("invalid input location")

	// ErrEmptySeries is returned when no projection files are found
	ErrEmptySeries = errors.New("empty series")

	// ErrCorruptedFile wraps decode failures of a single file
	ErrCorruptedFile = errors.New("corrupted file")

	// ErrInconsistentSeries is returned when a projection does not match the
	// shape or rescale parameters of the first one
	ErrInconsistentSeries = errors.New("inconsistent series")
)

// DefaultExtension is the suffix of projection files
const DefaultExtension = ".dcm"

// Decoder turns a projection file into its metadata and raw pixels
type Decoder interface {
	Decode(path string) (*models.ScanMetadata, error)
}

// Params holds the loader configuration
type Params struct {
	// InputDir is the folder holding the projection files. Files are ordered
	// by name, so names must encode the acquisition order.
	InputDir string

	// Extension selects projection files by suffix. Defaults to ".dcm".
	Extension string

	// Selector picks and orders a subset of the sorted files. nil loads all.
	Selector Selector

	// NumWorkers is the number of projections processed concurrently.
	// Values below 2 load the series sequentially.
	NumWorkers int

	// Verbose enables per-projection progress logging
	Verbose bool
}

// Loader reads a projection series
type Loader struct {
	params  *Params
	decoder Decoder
}

// NewLoader creates a loader. A nil decoder uses the DICOM-CT-PD decoder.
func NewLoader(params *Params, decoder Decoder) *Loader {
	if decoder == nil {
		decoder = mayo.NewDecoder()
	}
	return &Loader{
		params:  params,
		decoder: decoder,
	}
}

// LoadProjections loads the projections of folder selected by selector
// (nil for all) using the DICOM-CT-PD decoder
func LoadProjections(folder string, selector Selector) (*Series, error) {
	return NewLoader(&Params{InputDir: folder, Selector: selector}, nil).Load()
}

// Load reads, validates and converts every selected projection. Any failure
// aborts the whole load.
func (l *Loader) Load() (*Series, error) {
	names, err := l.listFiles()
	if err != nil {
		return nil, err
	}

	if l.params.Selector != nil {
		indices, err := l.params.Selector.Select(len(names))
		if err != nil {
			return nil, err
		}
		selected := make([]string, len(indices))
		for i, idx := range indices {
			selected[i] = names[idx]
		}
		names = selected
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: selection is empty", ErrEmptySeries)
	}

	var projections []*Projection
	var ref *models.Reference
	if l.params.NumWorkers > 1 && len(names) > 1 {
		projections, ref, err = l.loadParallel(names)
	} else {
		projections, ref, err = l.loadSequential(names)
	}
	if err != nil {
		return nil, err
	}

	if l.params.Verbose {
		log.Printf("Loaded %d projections of %dx%d pixels from %s",
			len(projections), ref.Rows, ref.Columns, l.params.InputDir)
	}

	return &Series{Projections: projections, Reference: *ref}, nil
}

// listFiles returns the sorted names of the projection files in the input folder
func (l *Loader) listFiles() ([]string, error) {
	info, err := os.Stat(l.params.InputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLocation, l.params.InputDir)
	}

	entries, err := os.ReadDir(l.params.InputDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLocation, l.params.InputDir, err)
	}

	ext := l.params.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ext) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no %s files found in %s", ErrEmptySeries, ext, l.params.InputDir)
	}

	sort.Strings(names)
	return names, nil
}

func (l *Loader) loadSequential(names []string) ([]*Projection, *models.Reference, error) {
	projections := make([]*Projection, 0, len(names))
	var ref *models.Reference

	for i, name := range names {
		p, m, err := l.loadOne(name, ref)
		if err != nil {
			return nil, nil, err
		}
		if ref == nil {
			ref = models.NewReference(m)
		}
		projections = append(projections, p)

		if l.params.Verbose {
			log.Printf("Projection %d/%d: %s", i+1, len(names), name)
		}
	}
	return projections, ref, nil
}

// loadParallel processes the first file alone so that it defines the series
// reference, then fans the remaining files out to a worker pool. The error
// reported is the one of the earliest file in selection order.
func (l *Loader) loadParallel(names []string) ([]*Projection, *models.Reference, error) {
	projections := make([]*Projection, len(names))
	errs := make([]error, len(names))

	first, m, err := l.loadOne(names[0], nil)
	if err != nil {
		return nil, nil, err
	}
	projections[0] = first
	ref := models.NewReference(m)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < l.params.NumWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				projections[i], _, errs[i] = l.loadOne(names[i], ref)
			}
		}()
	}
	for i := 1; i < len(names); i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	return projections, ref, nil
}

// loadOne decodes a file, checks it against the reference (if any) and
// converts it into a projection
func (l *Loader) loadOne(name string, ref *models.Reference) (*Projection, *models.ScanMetadata, error) {
	m, err := l.decoder.Decode(filepath.Join(l.params.InputDir, name))
	if err != nil {
		log.Printf("Corrupted file: %s", name)
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrCorruptedFile, name, err)
	}
	if m.Rows <= 0 || m.Columns <= 0 || len(m.Pixels) != m.Rows*m.Columns {
		log.Printf("Corrupted file: %s", name)
		return nil, nil, fmt.Errorf("%w: %s: %d samples for a %dx%d pixel array",
			ErrCorruptedFile, name, len(m.Pixels), m.Rows, m.Columns)
	}

	if ref != nil {
		if err := checkConsistency(ref, m); err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrInconsistentSeries, name, err)
		}
	}

	p, err := newProjection(name, m)
	if err != nil {
		return nil, nil, err
	}
	return p, m, nil
}

func checkConsistency(ref *models.Reference, m *models.ScanMetadata) error {
	switch {
	case m.Rows != ref.Rows:
		return fmt.Errorf("rows %d, expected %d", m.Rows, ref.Rows)
	case m.Columns != ref.Columns:
		return fmt.Errorf("columns %d, expected %d", m.Columns, ref.Columns)
	case m.RescaleIntercept != ref.RescaleIntercept:
		return fmt.Errorf("rescale intercept %g, expected %g", m.RescaleIntercept, ref.RescaleIntercept)
	case m.RescaleSlope != ref.RescaleSlope:
		return fmt.Errorf("rescale slope %g, expected %g", m.RescaleSlope, ref.RescaleSlope)
	case m.DetectorColumns != ref.DetectorColumns || m.DetectorRows != ref.DetectorRows:
		return fmt.Errorf("detector %dx%d, expected %dx%d",
			m.DetectorColumns, m.DetectorRows, ref.DetectorColumns, ref.DetectorRows)
	}
	return nil
}

// newProjection rescales the raw samples into line integrals (g/cm²) and
// resolves the ray specification of the projection
func newProjection(name string, m *models.ScanMetadata) (*Projection, error) {
	data := Rescale(m.Pixels, m.RescaleSlope, m.RescaleIntercept)

	source := geometry.SourcePosition(m)
	detector, err := geometry.DetectorPositions(m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &Projection{
		FileName:   name,
		Data:       mat.NewDense(m.Rows, m.Columns, data),
		Source:     source,
		Directions: geometry.RayDirections(source, detector),
		Offsets:    geometry.RayOffsets(source, detector.Columns, detector.Rows),
	}, nil
}

// Rescale converts raw detector samples to physical values: raw*slope + intercept
func Rescale(raw []uint16, slope, intercept float64) []float64 {
	data := make([]float64, len(raw))
	for i, v := range raw {
		data[i] = float64(v)
	}
	floats.Scale(slope, data)
	floats.AddConst(intercept, data)
	return data
}
