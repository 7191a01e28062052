// Package visualization renders projection data as grayscale quick-look images.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"ldctreader/pkg/projection"
)

// Viewer extracts 2D images from a stack of projections
type Viewer struct {
	// data holds the projection stack, [depth][height][width]
	data []float64

	// width is the number of pixel columns, height the number of pixel rows
	// and depth the number of projections
	width  int
	height int
	depth  int

	// lo and hi map to black and white
	lo float64
	hi float64
}

// NewViewer creates a viewer for a loaded series
func NewViewer(series *projection.Series) *Viewer {
	data, shape := series.ProjData()
	return NewStackViewer(data, shape[2], shape[1], shape[0])
}

// NewStackViewer creates a viewer over a raw [depth][height][width] stack
func NewStackViewer(data []float64, width, height, depth int) *Viewer {
	v := &Viewer{
		data:   data,
		width:  width,
		height: height,
		depth:  depth,
	}
	if len(data) > 0 {
		v.lo = floats.Min(data)
		v.hi = floats.Max(data)
	}
	return v
}

func (v *Viewer) gray(value float64) color.Gray16 {
	if v.hi <= v.lo {
		return color.Gray16{}
	}
	scaled := (value - v.lo) / (v.hi - v.lo) * 65535
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, scaled)))}
}

// ExtractSlice extracts a 2D image along the given axis:
//   - "projection": one detector readout (columns × rows)
//   - "row": the sinogram of one pixel row (columns × projections)
//   - "column": one pixel column over all projections (projections × rows)
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var img *image.Gray16

	switch axis {
	case "projection":
		if position >= v.depth {
			return nil, fmt.Errorf("position %d exceeds projection count %d", position, v.depth)
		}
		img = image.NewGray16(image.Rect(0, 0, v.width, v.height))
		for y := 0; y < v.height; y++ {
			for x := 0; x < v.width; x++ {
				img.SetGray16(x, y, v.gray(v.data[position*v.width*v.height+y*v.width+x]))
			}
		}

	case "row":
		if position >= v.height {
			return nil, fmt.Errorf("position %d exceeds row count %d", position, v.height)
		}
		img = image.NewGray16(image.Rect(0, 0, v.width, v.depth))
		for z := 0; z < v.depth; z++ {
			for x := 0; x < v.width; x++ {
				img.SetGray16(x, z, v.gray(v.data[z*v.width*v.height+position*v.width+x]))
			}
		}

	case "column":
		if position >= v.width {
			return nil, fmt.Errorf("position %d exceeds column count %d", position, v.width)
		}
		img = image.NewGray16(image.Rect(0, 0, v.depth, v.height))
		for y := 0; y < v.height; y++ {
			for z := 0; z < v.depth; z++ {
				img.SetGray16(z, y, v.gray(v.data[z*v.width*v.height+y*v.width+position]))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be projection, row, or column)", axis)
	}

	return img, nil
}

// SaveSlice saves an extracted image as JPEG
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every image along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "projection":
		maxPos = v.depth
	case "row":
		maxPos = v.height
	case "column":
		maxPos = v.width
	default:
		return fmt.Errorf("invalid axis: %s (must be projection, row, or column)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("%s_%04d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
