package projection

import (
	"errors"
	"reflect"
	"testing"
)

func TestIndicesSelect(t *testing.T) {
	tests := []struct {
		name     string
		indices  Indices
		n        int
		expected []int
		err      error
	}{
		{"reorder", Indices{2, 0, 1}, 3, []int{2, 0, 1}, nil},
		{"negative", Indices{-1, 0}, 4, []int{3, 0}, nil},
		{"repeat", Indices{1, 1}, 2, []int{1, 1}, nil},
		{"empty", Indices{}, 2, []int{}, nil},
		{"too large", Indices{0, 5}, 5, nil, ErrIndexOutOfRange},
		{"too negative", Indices{-6}, 5, nil, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.indices.Select(tt.n)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Expected error %v, got %v", tt.err, err)
			}
			if tt.err == nil && !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSliceSelect(t *testing.T) {
	tests := []struct {
		name     string
		slice    Slice
		n        int
		expected []int
	}{
		{"all", Slice{}, 4, []int{0, 1, 2, 3}},
		{"start", Slice{Start: 2}, 4, []int{2, 3}},
		{"range", Slice{Start: 1, Stop: 3}, 5, []int{1, 2}},
		{"step", Slice{Step: 2}, 5, []int{0, 2, 4}},
		{"negative start", Slice{Start: -2}, 5, []int{3, 4}},
		{"negative stop", Slice{Stop: -1}, 4, []int{0, 1, 2}},
		{"clamped", Slice{Start: 3, Stop: 100}, 5, []int{3, 4}},
		{"past end", Slice{Start: 10}, 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.slice.Select(tt.n)
			if err != nil {
				t.Fatalf("Select failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	if _, err := (Slice{Step: -1}).Select(3); err == nil {
		t.Error("Expected an error for a negative step")
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in       string
		expected Selector
	}{
		{"", nil},
		{"2,0,1", Indices{2, 0, 1}},
		{" 3 , -1 ", Indices{3, -1}},
		{"10:", Slice{Start: 10}},
		{":100:2", Slice{Stop: 100, Step: 2}},
		{"1:5", Slice{Start: 1, Stop: 5}},
	}

	for _, tt := range tests {
		got, err := ParseSelector(tt.in)
		if err != nil {
			t.Errorf("ParseSelector(%q) failed: %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("ParseSelector(%q): expected %#v, got %#v", tt.in, tt.expected, got)
		}
	}

	for _, bad := range []string{"a,b", "1:2:3:4", "1:x"} {
		if _, err := ParseSelector(bad); err == nil {
			t.Errorf("ParseSelector(%q): expected an error", bad)
		}
	}
}
