package projection

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"ldctreader/internal/models"
	"ldctreader/pkg/geometry"
)

// Projection is one loaded detector readout with its ray specification
type Projection struct {
	// FileName is the name of the source file within the input folder
	FileName string

	// Data holds the line integrals (g/cm²), rows × columns
	Data *mat.Dense

	// Source is the cartesian position of the X-ray source
	Source r3.Vec

	// Directions holds the unit ray direction of every detector pixel (n_spec)
	Directions *geometry.Grid

	// Offsets holds the ray origin of every detector pixel (t_spec), which
	// is the source position for all pixels
	Offsets *geometry.Grid
}

// Series is an ordered set of projections sharing shape and rescale parameters
type Series struct {
	Projections []*Projection
	Reference   models.Reference
}

// Len returns the number of projections
func (s *Series) Len() int {
	return len(s.Projections)
}

// ProjData stacks the projection data into a flat array of shape
// [projections, rows, columns]
func (s *Series) ProjData() ([]float64, [3]int) {
	shape := [3]int{len(s.Projections), s.Reference.Rows, s.Reference.Columns}
	out := make([]float64, 0, shape[0]*shape[1]*shape[2])
	for _, p := range s.Projections {
		out = append(out, p.Data.RawMatrix().Data...)
	}
	return out, shape
}

// NSpec stacks the ray directions into a flat array of shape
// [projections, detector columns, detector rows, 3]
func (s *Series) NSpec() ([]float64, [4]int) {
	return s.stackGrids(func(p *Projection) *geometry.Grid { return p.Directions })
}

// TSpec stacks the ray offsets into a flat array of shape
// [projections, detector columns, detector rows, 3]
func (s *Series) TSpec() ([]float64, [4]int) {
	return s.stackGrids(func(p *Projection) *geometry.Grid { return p.Offsets })
}

func (s *Series) stackGrids(field func(*Projection) *geometry.Grid) ([]float64, [4]int) {
	shape := [4]int{len(s.Projections), s.Reference.DetectorColumns, s.Reference.DetectorRows, 3}
	out := make([]float64, 0, shape[0]*shape[1]*shape[2]*3)
	for _, p := range s.Projections {
		for _, v := range field(p).Points {
			out = append(out, v.X, v.Y, v.Z)
		}
	}
	return out, shape
}

// Summary describes a loaded series
type Summary struct {
	Projections     int
	Rows            int
	Columns         int
	DetectorColumns int
	DetectorRows    int

	// Statistics of the projection data over the whole series
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Summarize computes the series summary
func (s *Series) Summarize() Summary {
	summary := Summary{
		Projections:     len(s.Projections),
		Rows:            s.Reference.Rows,
		Columns:         s.Reference.Columns,
		DetectorColumns: s.Reference.DetectorColumns,
		DetectorRows:    s.Reference.DetectorRows,
	}

	data, _ := s.ProjData()
	if len(data) == 0 {
		return summary
	}
	summary.Min = floats.Min(data)
	summary.Max = floats.Max(data)
	summary.Mean, summary.StdDev = stat.MeanStdDev(data, nil)
	return summary
}
