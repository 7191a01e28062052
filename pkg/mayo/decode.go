// Package mayo decodes LDCT projections stored in the Mayo Clinic
// DICOM-CT-PD format into typed scan metadata.
package mayo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"ldctreader/internal/models"
)

// ErrMissingField is returned when a required attribute is absent
var ErrMissingField = errors.New("missing required field")

// Decoder reads DICOM-CT-PD files from disk
type Decoder struct{}

// NewDecoder creates a new decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses the file at path and extracts its projection metadata and pixels
func (d *Decoder) Decode(path string) (*models.ScanMetadata, error) {
	dataset, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, err
	}
	return FromDataset(dataset)
}

// FromDataset converts a parsed dataset into scan metadata. Every geometry
// attribute is required; RescaleSlope and RescaleIntercept default to 1 and 0.
func FromDataset(ds dicom.Dataset) (*models.ScanMetadata, error) {
	r := &fieldReader{ds: ds}
	m := &models.ScanMetadata{
		FocalCenterRadial:      r.float(DetectorFocalCenterRadialDistance),
		FocalCenterAngular:     r.float(DetectorFocalCenterAngularPosition),
		FocalCenterAxial:       r.float(DetectorFocalCenterAxialPosition),
		SourceRadialShift:      r.float(SourceRadialDistanceShift),
		SourceAngularShift:     r.float(SourceAngularPositionShift),
		SourceAxialShift:       r.float(SourceAxialPositionShift),
		ConstantRadialDistance: r.float(ConstantRadialDistance),
		DetectorShape:          models.DetectorShape(r.str(DetectorShape)),
		ColumnSpacing:          r.float(DetectorElementTransverseSpacing),
		RowSpacing:             r.float(DetectorElementAxialSpacing),
		DetectorColumns:        r.integer(NumberofDetectorColumns),
		DetectorRows:           r.integer(NumberofDetectorRows),
	}

	central := r.floats(DetectorCentralElement, 2)
	if len(central) == 2 {
		m.CentralColumn, m.CentralRow = central[0], central[1]
	}

	m.Rows = r.integer(Entry{Tag: tag.Rows, VR: "US", Keyword: "Rows"})
	m.Columns = r.integer(Entry{Tag: tag.Columns, VR: "US", Keyword: "Columns"})
	m.RescaleSlope = r.optionalFloat(Entry{Tag: tag.RescaleSlope, VR: "DS", Keyword: "RescaleSlope"}, 1)
	m.RescaleIntercept = r.optionalFloat(Entry{Tag: tag.RescaleIntercept, VR: "DS", Keyword: "RescaleIntercept"}, 0)

	if r.err != nil {
		return nil, r.err
	}

	if m.Rows <= 0 || m.Columns <= 0 {
		return nil, fmt.Errorf("invalid pixel array shape %dx%d", m.Rows, m.Columns)
	}
	if m.DetectorColumns <= 0 || m.DetectorRows <= 0 {
		return nil, fmt.Errorf("invalid detector shape %dx%d", m.DetectorColumns, m.DetectorRows)
	}

	pixels, err := pixelData(ds)
	if err != nil {
		return nil, err
	}
	if len(pixels) != m.Rows*m.Columns {
		return nil, fmt.Errorf("pixel data holds %d samples, expected %dx%d", len(pixels), m.Rows, m.Columns)
	}
	m.Pixels = pixels

	return m, nil
}

// fieldReader extracts typed values and keeps the first error
type fieldReader struct {
	ds  dicom.Dataset
	err error
}

func (r *fieldReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *fieldReader) find(e Entry) (*dicom.Element, bool) {
	elem, err := r.ds.FindElementByTag(e.Tag)
	if err != nil || elem.Value == nil {
		return nil, false
	}
	return elem, true
}

func (r *fieldReader) floats(e Entry, n int) []float64 {
	elem, ok := r.find(e)
	if !ok {
		r.fail(fmt.Errorf("%w: %s %s", ErrMissingField, e.Keyword, e.Tag))
		return nil
	}
	values, err := decodeFloats(elem.Value.GetValue(), e.VR)
	if err != nil {
		r.fail(fmt.Errorf("decoding %s: %w", e.Keyword, err))
		return nil
	}
	if len(values) < n {
		r.fail(fmt.Errorf("%s: expected %d values, got %d", e.Keyword, n, len(values)))
		return nil
	}
	return values
}

func (r *fieldReader) float(e Entry) float64 {
	values := r.floats(e, 1)
	if len(values) == 0 {
		return 0
	}
	return values[0]
}

func (r *fieldReader) optionalFloat(e Entry, def float64) float64 {
	if _, ok := r.find(e); !ok {
		return def
	}
	return r.float(e)
}

func (r *fieldReader) integer(e Entry) int {
	return int(r.float(e))
}

func (r *fieldReader) str(e Entry) string {
	elem, ok := r.find(e)
	if !ok {
		r.fail(fmt.Errorf("%w: %s %s", ErrMissingField, e.Keyword, e.Tag))
		return ""
	}
	var s string
	switch v := elem.Value.GetValue().(type) {
	case []string:
		s = strings.Join(v, "\\")
	case []byte:
		s = string(v)
	default:
		r.fail(fmt.Errorf("decoding %s: unexpected value type %T", e.Keyword, v))
		return ""
	}
	return strings.Trim(s, " \x00")
}

// decodeFloats accepts both typed values and raw little-endian bytes, which
// is how private attributes arrive in implicit VR files
func decodeFloats(value any, vr string) ([]float64, error) {
	switch v := value.(type) {
	case []float64:
		return v, nil
	case []int:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []string:
		out := make([]float64, 0, len(v))
		for _, s := range v {
			for _, part := range strings.Split(s, "\\") {
				part = strings.Trim(part, " \x00")
				if part == "" {
					continue
				}
				f, err := strconv.ParseFloat(part, 64)
				if err != nil {
					return nil, err
				}
				out = append(out, f)
			}
		}
		return out, nil
	case []byte:
		return decodeBytes(v, vr)
	default:
		return nil, fmt.Errorf("unexpected value type %T", value)
	}
}

func decodeBytes(b []byte, vr string) ([]float64, error) {
	var size int
	switch vr {
	case "FL":
		size = 4
	case "FD":
		size = 8
	case "US":
		size = 2
	case "DS":
		return decodeFloats([]string{string(b)}, vr)
	default:
		return nil, fmt.Errorf("cannot decode raw bytes with VR %s", vr)
	}
	if len(b)%size != 0 {
		return nil, fmt.Errorf("%d bytes is not a multiple of %d", len(b), size)
	}

	out := make([]float64, len(b)/size)
	for i := range out {
		chunk := b[i*size : (i+1)*size]
		switch size {
		case 4:
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		case 8:
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk))
		case 2:
			out[i] = float64(binary.LittleEndian.Uint16(chunk))
		}
	}
	return out, nil
}

// pixelData returns the first frame as unsigned 16-bit samples
func pixelData(ds dicom.Dataset) ([]uint16, error) {
	elem, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("%w: PixelData %s", ErrMissingField, tag.PixelData)
	}
	if elem.Value.ValueType() != dicom.PixelData {
		return nil, fmt.Errorf("PixelData has unexpected value type")
	}
	info := dicom.MustGetPixelDataInfo(elem.Value)

	if info.IntentionallyUnprocessed {
		return samplesFromBytes(info.UnprocessedValueData)
	}
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("pixel data has no frames")
	}

	f := info.Frames[0]
	if f.Encapsulated {
		return nil, fmt.Errorf("encapsulated pixel data is not supported")
	}
	native, ok := f.NativeData.(*frame.NativeFrame[uint16])
	if !ok {
		return nil, fmt.Errorf("expected 16-bit samples, got %T", f.NativeData)
	}
	samples := make([]uint16, len(native.RawData))
	copy(samples, native.RawData)
	return samples, nil
}

func samplesFromBytes(b []byte) ([]uint16, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("odd pixel data length %d", len(b))
	}
	samples := make([]uint16, len(b)/2)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return samples, nil
}
