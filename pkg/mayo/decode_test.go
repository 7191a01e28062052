package mayo

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"ldctreader/internal/models"
)

func mustNewElement(t *testing.T, tg tag.Tag, data any) *dicom.Element {
	t.Helper()
	elem, err := dicom.NewElement(tg, data)
	if err != nil {
		t.Fatalf("Failed to create element %s: %v", tg, err)
	}
	return elem
}

// privateElement builds an element for a private attribute, which the
// standard tag dictionary does not know about
func privateElement(t *testing.T, e Entry, data any) *dicom.Element {
	t.Helper()
	value, err := dicom.NewValue(data)
	if err != nil {
		t.Fatalf("Failed to create value for %s: %v", e.Keyword, err)
	}
	return &dicom.Element{Tag: e.Tag, RawValueRepresentation: e.VR, Value: value}
}

func pixelElement(t *testing.T, rows, cols int, samples []uint16) *dicom.Element {
	t.Helper()
	nativeFrame := frame.NewNativeFrame[uint16](16, rows, cols, rows*cols, 1)
	copy(nativeFrame.RawData, samples)
	info := dicom.PixelDataInfo{
		Frames: []*frame.Frame{
			{
				Encapsulated: false,
				NativeData:   nativeFrame,
			},
		},
	}
	return mustNewElement(t, tag.PixelData, info)
}

// testDataset returns a valid 2x3 projection with typed private values
func testDataset(t *testing.T) []*dicom.Element {
	return []*dicom.Element{
		mustNewElement(t, tag.Rows, []int{2}),
		mustNewElement(t, tag.Columns, []int{3}),
		mustNewElement(t, tag.RescaleSlope, []string{"2.5"}),
		mustNewElement(t, tag.RescaleIntercept, []string{"-1024"}),
		privateElement(t, DetectorFocalCenterRadialDistance, []float64{595}),
		privateElement(t, DetectorFocalCenterAngularPosition, []float64{1.5}),
		privateElement(t, DetectorFocalCenterAxialPosition, []float64{-20}),
		privateElement(t, SourceRadialDistanceShift, []float64{0.5}),
		privateElement(t, SourceAngularPositionShift, []float64{0.25}),
		privateElement(t, SourceAxialPositionShift, []float64{-0.125}),
		privateElement(t, ConstantRadialDistance, []float64{1085.5}),
		privateElement(t, DetectorShape, []string{"CYLINDRICAL "}),
		privateElement(t, DetectorElementTransverseSpacing, []float64{1.25}),
		privateElement(t, DetectorElementAxialSpacing, []float64{1.0}),
		privateElement(t, DetectorCentralElement, []float64{2, 1.5}),
		privateElement(t, NumberofDetectorColumns, []int{3}),
		privateElement(t, NumberofDetectorRows, []int{2}),
		pixelElement(t, 2, 3, []uint16{0, 1, 2, 1000, 4, 65535}),
	}
}

func withoutTag(elems []*dicom.Element, tg tag.Tag) []*dicom.Element {
	var out []*dicom.Element
	for _, e := range elems {
		if e.Tag != tg {
			out = append(out, e)
		}
	}
	return out
}

func replaceElement(elems []*dicom.Element, replacement *dicom.Element) []*dicom.Element {
	out := withoutTag(elems, replacement.Tag)
	return append(out, replacement)
}

// TestFromDataset verifies that every field is mapped from its attribute
func TestFromDataset(t *testing.T) {
	m, err := FromDataset(dicom.Dataset{Elements: testDataset(t)})
	if err != nil {
		t.Fatalf("FromDataset failed: %v", err)
	}

	expected := models.ScanMetadata{
		FocalCenterRadial:      595,
		FocalCenterAngular:     1.5,
		FocalCenterAxial:       -20,
		SourceRadialShift:      0.5,
		SourceAngularShift:     0.25,
		SourceAxialShift:       -0.125,
		ConstantRadialDistance: 1085.5,
		DetectorShape:          models.Cylindrical,
		ColumnSpacing:          1.25,
		RowSpacing:             1.0,
		CentralColumn:          2,
		CentralRow:             1.5,
		DetectorColumns:        3,
		DetectorRows:           2,
		Rows:                   2,
		Columns:                3,
		RescaleSlope:           2.5,
		RescaleIntercept:       -1024,
	}
	pixels := m.Pixels
	m.Pixels = nil
	if !reflect.DeepEqual(*m, expected) {
		t.Errorf("Expected %+v, got %+v", expected, *m)
	}

	want := []uint16{0, 1, 2, 1000, 4, 65535}
	if len(pixels) != len(want) {
		t.Fatalf("Expected %d pixels, got %d", len(want), len(pixels))
	}
	for i := range want {
		if pixels[i] != want[i] {
			t.Errorf("Pixel %d: expected %d, got %d", i, want[i], pixels[i])
		}
	}
}

// TestFromDatasetRescaleDefaults verifies slope 1 and intercept 0 when absent
func TestFromDatasetRescaleDefaults(t *testing.T) {
	elems := withoutTag(testDataset(t), tag.RescaleSlope)
	elems = withoutTag(elems, tag.RescaleIntercept)

	m, err := FromDataset(dicom.Dataset{Elements: elems})
	if err != nil {
		t.Fatalf("FromDataset failed: %v", err)
	}
	if m.RescaleSlope != 1 || m.RescaleIntercept != 0 {
		t.Errorf("Expected slope 1 and intercept 0, got %f and %f", m.RescaleSlope, m.RescaleIntercept)
	}
}

// TestFromDatasetRawBytes verifies decoding of private values stored as raw bytes
func TestFromDatasetRawBytes(t *testing.T) {
	fl := func(values ...float32) []byte {
		b := make([]byte, 4*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
		}
		return b
	}
	us := func(v uint16) []byte {
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, v)
		return b
	}

	elems := testDataset(t)
	elems = replaceElement(elems, privateElement(t, DetectorFocalCenterRadialDistance, fl(600.5)))
	elems = replaceElement(elems, privateElement(t, DetectorCentralElement, fl(368.5, 32.5)))
	elems = replaceElement(elems, privateElement(t, NumberofDetectorColumns, us(3)))
	elems = replaceElement(elems, privateElement(t, DetectorShape, []byte("CYLINDRICAL\x00")))

	m, err := FromDataset(dicom.Dataset{Elements: elems})
	if err != nil {
		t.Fatalf("FromDataset failed: %v", err)
	}
	if m.FocalCenterRadial != 600.5 {
		t.Errorf("Expected focal radial 600.5, got %f", m.FocalCenterRadial)
	}
	if m.CentralColumn != 368.5 || m.CentralRow != 32.5 {
		t.Errorf("Expected central element (368.5, 32.5), got (%f, %f)", m.CentralColumn, m.CentralRow)
	}
	if m.DetectorColumns != 3 {
		t.Errorf("Expected 3 detector columns, got %d", m.DetectorColumns)
	}
	if m.DetectorShape != models.Cylindrical {
		t.Errorf("Expected shape %q, got %q", models.Cylindrical, m.DetectorShape)
	}
}

func TestFromDatasetMissingField(t *testing.T) {
	for _, e := range []Entry{ConstantRadialDistance, DetectorShape, DetectorCentralElement, NumberofDetectorRows} {
		t.Run(e.Keyword, func(t *testing.T) {
			elems := withoutTag(testDataset(t), e.Tag)
			_, err := FromDataset(dicom.Dataset{Elements: elems})
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("Expected ErrMissingField, got %v", err)
			}
		})
	}

	elems := withoutTag(testDataset(t), tag.PixelData)
	if _, err := FromDataset(dicom.Dataset{Elements: elems}); !errors.Is(err, ErrMissingField) {
		t.Errorf("Expected ErrMissingField without pixel data, got %v", err)
	}
}

func TestFromDatasetPixelCountMismatch(t *testing.T) {
	elems := replaceElement(testDataset(t), mustNewElement(t, tag.Rows, []int{4}))
	if _, err := FromDataset(dicom.Dataset{Elements: elems}); err == nil {
		t.Error("Expected an error for a pixel count mismatch")
	}
}

func TestFromDatasetCentralElementTooShort(t *testing.T) {
	elems := replaceElement(testDataset(t), privateElement(t, DetectorCentralElement, []float64{2}))
	if _, err := FromDataset(dicom.Dataset{Elements: elems}); err == nil {
		t.Error("Expected an error for a single-valued central element")
	}
}

// TestDecodeInvalidFile verifies that unreadable files produce an error
func TestDecodeInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.dcm")
	if err := os.WriteFile(path, []byte("not a dicom file"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	d := NewDecoder()
	if _, err := d.Decode(path); err == nil {
		t.Error("Expected an error for a non-DICOM file")
	}
	if _, err := d.Decode(filepath.Join(dir, "missing.dcm")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestDictionaryLookup(t *testing.T) {
	for _, e := range Dictionary {
		byKeyword, ok := Lookup(e.Keyword)
		if !ok || byKeyword != e {
			t.Errorf("Lookup(%q) = %v, %v", e.Keyword, byKeyword, ok)
		}
		byTag, ok := Find(e.Tag)
		if !ok || byTag != e {
			t.Errorf("Find(%s) = %v, %v", e.Tag, byTag, ok)
		}
	}

	if _, ok := Lookup("PatientName"); ok {
		t.Error("Lookup should not find standard attributes")
	}
}
