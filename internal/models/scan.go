package models

// DetectorShape is the detector layout reported by the scanner
type DetectorShape string

const (
	// Cylindrical is the only shape the geometry resolver supports
	Cylindrical DetectorShape = "CYLINDRICAL"
	Spherical   DetectorShape = "SPHERICAL"
	Flat        DetectorShape = "FLAT"
)

// ScanMetadata holds the decoded header of a single LDCT projection.
// Angles are in radians, distances in mm.
type ScanMetadata struct {
	// FocalCenterRadial, FocalCenterAngular and FocalCenterAxial locate the
	// detector focal center in cylindrical coordinates
	FocalCenterRadial  float64
	FocalCenterAngular float64
	FocalCenterAxial   float64

	// SourceRadialShift, SourceAngularShift and SourceAxialShift are the
	// flying focal spot offsets of the actual source from the focal center
	SourceRadialShift  float64
	SourceAngularShift float64
	SourceAxialShift   float64

	// ConstantRadialDistance is the distance from the focal center to the detector
	ConstantRadialDistance float64

	DetectorShape DetectorShape

	// ColumnSpacing is the transverse element spacing, RowSpacing the axial one
	ColumnSpacing float64
	RowSpacing    float64

	// CentralColumn and CentralRow are 1-based element indices
	CentralColumn float64
	CentralRow    float64

	DetectorColumns int
	DetectorRows    int

	// Rows and Columns describe the pixel array
	Rows    int
	Columns int

	RescaleSlope     float64
	RescaleIntercept float64

	// Pixels holds Rows*Columns raw samples in row-major order
	Pixels []uint16
}

// Reference is the series reference captured from the first projection.
// Every later projection must match it.
type Reference struct {
	Rows             int
	Columns          int
	RescaleSlope     float64
	RescaleIntercept float64

	DetectorColumns int
	DetectorRows    int
}

// NewReference captures the reference parameters of a projection
func NewReference(m *ScanMetadata) *Reference {
	return &Reference{
		Rows:             m.Rows,
		Columns:          m.Columns,
		RescaleSlope:     m.RescaleSlope,
		RescaleIntercept: m.RescaleIntercept,
		DetectorColumns:  m.DetectorColumns,
		DetectorRows:     m.DetectorRows,
	}
}
