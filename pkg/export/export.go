// Package export writes a loaded series to disk as raw little-endian float32
// arrays described by a YAML manifest.
package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ldctreader/pkg/projection"
)

// ManifestFile is the name of the manifest written next to the arrays
const ManifestFile = "manifest.yaml"

// Array describes one exported array file
type Array struct {
	Name  string `yaml:"name"`
	File  string `yaml:"file"`
	DType string `yaml:"dtype"`
	Shape []int  `yaml:"shape"`
}

// Manifest describes an exported series
type Manifest struct {
	Files            []string `yaml:"files"`
	RescaleSlope     float64  `yaml:"rescaleSlope"`
	RescaleIntercept float64  `yaml:"rescaleIntercept"`
	Arrays           []Array  `yaml:"arrays"`
}

// WriteSeries writes proj_data, n_spec and t_spec into dir and returns the manifest
func WriteSeries(series *projection.Series, dir string) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manifest := &Manifest{
		RescaleSlope:     series.Reference.RescaleSlope,
		RescaleIntercept: series.Reference.RescaleIntercept,
	}
	for _, p := range series.Projections {
		manifest.Files = append(manifest.Files, p.FileName)
	}

	projData, projShape := series.ProjData()
	nSpec, nShape := series.NSpec()
	tSpec, tShape := series.TSpec()

	arrays := []struct {
		name  string
		data  []float64
		shape []int
	}{
		{"proj_data", projData, projShape[:]},
		{"n_spec", nSpec, nShape[:]},
		{"t_spec", tSpec, tShape[:]},
	}

	for _, a := range arrays {
		file := a.name + ".f32"
		if err := writeFloat32File(filepath.Join(dir, file), a.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", a.name, err)
		}
		manifest.Arrays = append(manifest.Arrays, Array{
			Name:  a.name,
			File:  file,
			DType: "float32",
			Shape: a.shape,
		})
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	return manifest, nil
}

func writeFloat32File(path string, data []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	var buf [4]byte
	for _, v := range data {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// ReadManifest loads the manifest of an exported series
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &manifest, nil
}

// ReadArray loads a raw float32 array file
func ReadArray(path string) ([]float32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raw, err := io.ReadAll(bufio.NewReader(file))
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%s: size %d is not a multiple of 4", path, len(raw))
	}

	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out, nil
}
