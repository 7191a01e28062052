package mayo

import (
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Entry describes one private DICOM-CT-PD attribute
type Entry struct {
	Tag     tag.Tag
	VR      string
	VM      string
	Keyword string
}

// Private attributes of the Mayo Clinic DICOM-CT-PD projection format.
// Only the ones read by the decoder and the informational flying focal spot
// fields are listed.
var (
	NumberofDetectorRows               = Entry{tag.Tag{Group: 0x7029, Element: 0x1010}, "US", "1", "NumberofDetectorRows"}
	NumberofDetectorColumns            = Entry{tag.Tag{Group: 0x7029, Element: 0x1011}, "US", "1", "NumberofDetectorColumns"}
	DetectorElementTransverseSpacing   = Entry{tag.Tag{Group: 0x7029, Element: 0x1002}, "FL", "1", "DetectorElementTransverseSpacing"}
	DetectorElementAxialSpacing        = Entry{tag.Tag{Group: 0x7029, Element: 0x1006}, "FL", "1", "DetectorElementAxialSpacing"}
	DetectorShape                      = Entry{tag.Tag{Group: 0x7029, Element: 0x100B}, "CS", "1", "DetectorShape"}
	DetectorFocalCenterAngularPosition = Entry{tag.Tag{Group: 0x7031, Element: 0x1001}, "FL", "1", "DetectorFocalCenterAngularPosition"}
	DetectorFocalCenterAxialPosition   = Entry{tag.Tag{Group: 0x7031, Element: 0x1002}, "FL", "1", "DetectorFocalCenterAxialPosition"}
	DetectorFocalCenterRadialDistance  = Entry{tag.Tag{Group: 0x7031, Element: 0x1003}, "FL", "1", "DetectorFocalCenterRadialDistance"}
	ConstantRadialDistance             = Entry{tag.Tag{Group: 0x7031, Element: 0x1031}, "FL", "1", "ConstantRadialDistance"}
	DetectorCentralElement             = Entry{tag.Tag{Group: 0x7031, Element: 0x1033}, "FL", "2", "DetectorCentralElement"}
	SourceAngularPositionShift         = Entry{tag.Tag{Group: 0x7033, Element: 0x100B}, "FL", "1", "SourceAngularPositionShift"}
	SourceAxialPositionShift           = Entry{tag.Tag{Group: 0x7033, Element: 0x100C}, "FL", "1", "SourceAxialPositionShift"}
	SourceRadialDistanceShift          = Entry{tag.Tag{Group: 0x7033, Element: 0x100D}, "FL", "1", "SourceRadialDistanceShift"}
	FlyingFocalSpotMode                = Entry{tag.Tag{Group: 0x7033, Element: 0x100E}, "CS", "1", "FlyingFocalSpotMode"}
	NumberofSourceAngularSteps         = Entry{tag.Tag{Group: 0x7033, Element: 0x1013}, "US", "1", "NumberofSourceAngularSteps"}
)

// Dictionary lists every known private attribute
var Dictionary = []Entry{
	NumberofDetectorRows,
	NumberofDetectorColumns,
	DetectorElementTransverseSpacing,
	DetectorElementAxialSpacing,
	DetectorShape,
	DetectorFocalCenterAngularPosition,
	DetectorFocalCenterAxialPosition,
	DetectorFocalCenterRadialDistance,
	ConstantRadialDistance,
	DetectorCentralElement,
	SourceAngularPositionShift,
	SourceAxialPositionShift,
	SourceRadialDistanceShift,
	FlyingFocalSpotMode,
	NumberofSourceAngularSteps,
}

// Lookup finds a private attribute by keyword
func Lookup(keyword string) (Entry, bool) {
	for _, e := range Dictionary {
		if e.Keyword == keyword {
			return e, true
		}
	}
	return Entry{}, false
}

// Find finds a private attribute by tag
func Find(t tag.Tag) (Entry, bool) {
	for _, e := range Dictionary {
		if e.Tag == t {
			return e, true
		}
	}
	return Entry{}, false
}
