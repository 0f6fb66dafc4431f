package watershed

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/ctseg/internal/grid"
)

// Params controls a watershed run.
type Params struct {
	// Threshold is a fraction of the field maximum in [0, 1].
	Threshold float64

	// Level is a fraction of the field's dynamic range in [0, 1].
	Level float64

	Connectivity grid.Connectivity
}

// Result is the outcome of Segment.
type Result struct {
	// Labels holds one basin label per pixel, dense from 1.
	Labels *grid.LabelGrid

	// Basins is the number of basins after merging.
	Basins int

	// InitialBasins is the number of regional minima found by flooding.
	InitialBasins int

	// Merges is the number of basin merges performed.
	Merges int
}

// Segment computes the watershed partition of field.
//
// Parameters:
//   - field: Non-negative scalar field, typically a gradient magnitude. Not
//     modified.
//   - p: Threshold, merge level and connectivity.
//
// Returns:
//   - *Result: Dense labels, every pixel assigned to exactly one basin.
//   - error: grid.ErrInvalidGrid for a nil or empty field or non-finite or negative
//     samples, grid.ErrInvalidParameter for fractions outside [0, 1].
func Segment(field *grid.Grid, p Params) (*Result, error) {
	if err := field.Validate(); err != nil {
		return nil, err
	}
	if !(p.Threshold >= 0 && p.Threshold <= 1) {
		return nil, fmt.Errorf("%w: threshold %g outside [0, 1]", grid.ErrInvalidParameter, p.Threshold)
	}
	if !(p.Level >= 0 && p.Level <= 1) {
		return nil, fmt.Errorf("%w: level %g outside [0, 1]", grid.ErrInvalidParameter, p.Level)
	}
	if err := p.Connectivity.Validate(); err != nil {
		return nil, err
	}

	values, err := clampedValues(field, p.Threshold)
	if err != nil {
		return nil, err
	}

	lt := lattice{width: field.Width(), height: field.Height(), offsets: p.Connectivity.Offsets()}
	labels, minima := lt.immerse(values)
	initial := len(minima) - 1

	m := newMerger(minima)
	provisional := lt.resolveBoundaries(labels, values)
	var nb []int
	for i, a := range provisional {
		nb = lt.neighbors(i, nb[:0])
		for _, j := range nb {
			if j <= i {
				continue
			}
			if b := provisional[j]; a != b && a != 0 && b != 0 {
				m.link(a, b, math.Max(values[i], values[j]))
			}
		}
	}

	lo, hi := floats.Min(values), floats.Max(values)
	merges := m.run(p.Level * (hi - lo))

	merged := make([]uint32, len(labels))
	for i, l := range labels {
		if l != 0 {
			merged[i] = m.find(l)
		}
	}
	merged = lt.resolveBoundaries(merged, values)

	// Surviving roots keep their flooding order.
	remap := make([]uint32, initial+1)
	basins := 0
	for l := 1; l <= initial; l++ {
		if m.find(uint32(l)) == uint32(l) {
			basins++
			remap[l] = uint32(basins)
		}
	}

	out := grid.NewLabelGrid(lt.width, lt.height)
	for i, l := range merged {
		out.SetIndex(i, remap[l])
	}

	return &Result{
		Labels:        out,
		Basins:        basins,
		InitialBasins: initial,
		Merges:        merges,
	}, nil
}

// clampedValues copies the field, rejecting samples immersion cannot order,
// and zeroes samples below threshold*max.
func clampedValues(field *grid.Grid, threshold float64) ([]float64, error) {
	values := field.Values()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			x, y := field.Coord(i)
			return nil, fmt.Errorf("%w: sample %g at (%d,%d) is not a finite non-negative value", grid.ErrInvalidGrid, v, x, y)
		}
	}

	cut := threshold * floats.Max(values)
	for i, v := range values {
		if v < cut {
			values[i] = 0
		}
	}
	return values, nil
}
