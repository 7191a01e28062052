// Package geometry resolves source and detector positions of a helical CT
// projection from its scanner metadata and derives the ray specification
// (direction and offset per detector pixel) consumed by an X-ray transform.
//
// World frame: a point with cylindrical coordinates (radial, angular, axial)
// maps to x = radial*cos(-angular), y = radial*sin(-angular), z = -axial.
// Downstream operators depend on this exact frame; do not change the signs.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"ldctreader/internal/models"
)

// ErrUnsupportedGeometry is returned for detector shapes other than cylindrical
var ErrUnsupportedGeometry = errors.New("unsupported detector geometry")

const twoPi = 2 * math.Pi

// Grid is a (columns × rows) field of 3-vectors, one per detector pixel.
// Points are stored column-major: the vector for column c and row r is at
// index c*Rows + r.
type Grid struct {
	Columns int
	Rows    int
	Points  []r3.Vec
}

// NewGrid allocates a zeroed grid
func NewGrid(columns, rows int) *Grid {
	return &Grid{
		Columns: columns,
		Rows:    rows,
		Points:  make([]r3.Vec, columns*rows),
	}
}

// At returns the vector for column c and row r (both 0-based)
func (g *Grid) At(c, r int) r3.Vec {
	return g.Points[c*g.Rows+r]
}

// Set stores the vector for column c and row r
func (g *Grid) Set(c, r int, v r3.Vec) {
	g.Points[c*g.Rows+r] = v
}

// Len returns the number of detector pixels in the grid
func (g *Grid) Len() int {
	return len(g.Points)
}

// CylindricalToCartesian maps a cylindrical scanner coordinate to the world frame
func CylindricalToCartesian(radial, angular, axial float64) r3.Vec {
	return r3.Vec{
		X: radial * math.Cos(-angular),
		Y: radial * math.Sin(-angular),
		Z: -axial,
	}
}

// WrapAngle folds an angle into [0, 2π)
func WrapAngle(theta float64) float64 {
	w := math.Mod(theta, twoPi)
	if w < 0 {
		w += twoPi
	}
	// Tiny negative inputs round up to exactly 2π after the shift
	if w >= twoPi {
		w = 0
	}
	return w
}

// SourcePosition returns the cartesian position of the X-ray source, i.e. the
// detector focal center displaced by the flying focal spot shifts.
func SourcePosition(m *models.ScanMetadata) r3.Vec {
	return CylindricalToCartesian(
		m.FocalCenterRadial+m.SourceRadialShift,
		m.FocalCenterAngular+m.SourceAngularShift,
		m.FocalCenterAxial+m.SourceAxialShift,
	)
}

// DetectorPositions returns the cartesian position of every detector pixel.
//
// For a cylindrical detector the elements sit at a constant distance
// ConstantRadialDistance - FocalCenterRadial from the iso-center, opposite the
// focal center. Column c (1-based) lies on the arc at
// (c - CentralColumn) * ColumnSpacing, row r at an axial offset of
// (CentralRow - r) * RowSpacing from the focal center.
func DetectorPositions(m *models.ScanMetadata) (*Grid, error) {
	if m.DetectorShape != models.Cylindrical {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, m.DetectorShape)
	}
	if m.ConstantRadialDistance == 0 {
		return nil, fmt.Errorf("constant radial distance must be non-zero")
	}

	radial := m.ConstantRadialDistance - m.FocalCenterRadial

	thetas := make([]float64, m.DetectorColumns)
	for c := range thetas {
		arc := (float64(c+1) - m.CentralColumn) * m.ColumnSpacing
		thetas[c] = WrapAngle(m.FocalCenterAngular + math.Pi + arc/m.ConstantRadialDistance)
	}

	axials := make([]float64, m.DetectorRows)
	for r := range axials {
		axials[r] = m.FocalCenterAxial + (m.CentralRow-float64(r+1))*m.RowSpacing
	}

	grid := NewGrid(m.DetectorColumns, m.DetectorRows)
	for c, theta := range thetas {
		for r, axial := range axials {
			grid.Set(c, r, CylindricalToCartesian(radial, theta, axial))
		}
	}
	return grid, nil
}

// RayDirections returns the unit vectors pointing from the source to each
// detector pixel
func RayDirections(source r3.Vec, detector *Grid) *Grid {
	dirs := NewGrid(detector.Columns, detector.Rows)
	for i, p := range detector.Points {
		dirs.Points[i] = r3.Unit(r3.Sub(p, source))
	}
	return dirs
}

// RayOffsets broadcasts the source position over a (columns × rows) grid
func RayOffsets(source r3.Vec, columns, rows int) *Grid {
	offsets := NewGrid(columns, rows)
	for i := range offsets.Points {
		offsets.Points[i] = source
	}
	return offsets
}

// Rays resolves both ray fields of a projection in one call
func Rays(m *models.ScanMetadata) (directions, offsets *Grid, err error) {
	detector, err := DetectorPositions(m)
	if err != nil {
		return nil, nil, err
	}
	source := SourcePosition(m)
	return RayDirections(source, detector), RayOffsets(source, detector.Columns, detector.Rows), nil
}
