package projection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrIndexOutOfRange is returned when a selector refers to a missing file
var ErrIndexOutOfRange = errors.New("index out of range")

// Selector picks and orders projections out of a sorted series of n files
type Selector interface {
	Select(n int) ([]int, error)
}

// Indices selects files by position. Negative values count from the end of
// the series. Order and repetitions are kept.
type Indices []int

// Select implements Selector
func (ix Indices) Select(n int) ([]int, error) {
	out := make([]int, len(ix))
	for i, idx := range ix {
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: %d for %d files", ErrIndexOutOfRange, ix[i], n)
		}
		out[i] = idx
	}
	return out, nil
}

// Slice selects the half-open range [Start, Stop) every Step files.
// Negative bounds count from the end, bounds past the series are clamped,
// a zero Stop means the end of the series and a zero Step means 1.
type Slice struct {
	Start int
	Stop  int
	Step  int
}

// Select implements Selector
func (s Slice) Select(n int) ([]int, error) {
	step := s.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return nil, fmt.Errorf("slice step must be positive, got %d", step)
	}

	start := clampBound(s.Start, n)
	stop := n
	if s.Stop != 0 {
		stop = clampBound(s.Stop, n)
	}

	var out []int
	for i := start; i < stop; i += step {
		out = append(out, i)
	}
	return out, nil
}

func clampBound(b, n int) int {
	if b < 0 {
		b += n
	}
	return max(0, min(b, n))
}

// ParseSelector parses a comma separated index list ("2,0,1") or a slice
// in start:stop:step form ("10:", ":100:2"). An empty string selects all.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return nil, fmt.Errorf("invalid slice %q", s)
		}
		var bounds [3]int
		for i, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid slice %q: %w", s, err)
			}
			bounds[i] = v
		}
		return Slice{Start: bounds[0], Stop: bounds[1], Step: bounds[2]}, nil
	}

	var indices Indices
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid index list %q: %w", s, err)
		}
		indices = append(indices, v)
	}
	return indices, nil
}
