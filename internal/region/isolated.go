package region

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/ironsheep/ctseg/internal/grid"
)

// IsolatedParams configures an isolated-connected run.
type IsolatedParams struct {
	// Seeds1 grow the region. Seeds2 must stay outside it.
	Seeds1 []grid.Point
	Seeds2 []grid.Point

	// Lower is the fixed lower bound of accepted values.
	Lower float64

	Connectivity grid.Connectivity
}

// IsolatedResult is the outcome of IsolatedConnected.
type IsolatedResult struct {
	Mask *grid.Mask

	// IsolatedValue is the upper bound used for Mask: the largest bound that
	// keeps some Seeds2 pixel out of the region grown from Seeds1.
	IsolatedValue float64

	// Isolated is false only when the seed sets are already connected with
	// the upper bound at Lower. IsolatedValue is then Lower and Mask is the
	// flood at [Lower, Lower].
	//
	// When Seeds2 cannot be reached at any bound, Isolated is true and
	// IsolatedValue is the largest sample >= Lower, or Lower when no sample
	// reaches it.
	Isolated bool

	// Evaluations counts the floods run, including the final one.
	Evaluations int
}

// IsolatedConnected finds the upper threshold that separates two seed sets
// and returns the region grown from Seeds1 at that threshold.
//
// # Algorithm
//
// Reaching Seeds2 is monotone in the upper bound: raising it only adds
// pixels. The candidate bounds are the distinct sample values >= Lower in
// ascending order, and a binary search finds the smallest candidate v whose
// flood from Seeds1 contains every Seeds2 pixel. The isolated value is then
// the greatest representable value below v: v-1 on integer grids, the next
// float64 towards -Inf on float grids. If no candidate reaches Seeds2 the
// isolated value is the grid maximum.
//
// Returns grid.ErrInvalidParameter when either seed set is empty, the sets
// share a pixel, or Lower is NaN.
func IsolatedConnected(g *grid.Grid, p IsolatedParams) (*IsolatedResult, error) {
	if err := checkInput(g, p.Connectivity); err != nil {
		return nil, err
	}
	if math.IsNaN(p.Lower) {
		return nil, fmt.Errorf("%w: lower bound is NaN", grid.ErrInvalidParameter)
	}
	seeds1, err := seedIndices(g, p.Seeds1, "seed1")
	if err != nil {
		return nil, err
	}
	seeds2, err := seedIndices(g, p.Seeds2, "seed2")
	if err != nil {
		return nil, err
	}
	for _, s := range seeds2 {
		if slices.Contains(seeds1, s) {
			x, y := g.Coord(s)
			return nil, fmt.Errorf("%w: (%d,%d) is in both seed sets", grid.ErrInvalidParameter, x, y)
		}
	}

	f := newFlooder(g, p.Connectivity)
	res := &IsolatedResult{}
	reaches := func(upper float64) bool {
		res.Evaluations++
		mask := f.run(seeds1, acceptRange(p.Lower, upper))
		for _, s := range seeds2 {
			if !mask.AtIndex(s) {
				return false
			}
		}
		return true
	}

	candidates := candidateBounds(g, p.Lower)
	k := sort.Search(len(candidates), func(i int) bool { return reaches(candidates[i]) })

	switch {
	case k == len(candidates):
		// Seeds2 unreachable at any bound: nothing to isolate against.
		res.IsolatedValue = p.Lower
		if k > 0 {
			res.IsolatedValue = candidates[k-1]
		}
		res.Isolated = true
	default:
		upper := predecessor(candidates[k], g.Kind())
		if upper < p.Lower {
			res.IsolatedValue = p.Lower
		} else {
			res.IsolatedValue = upper
			res.Isolated = true
		}
	}

	res.Evaluations++
	res.Mask = f.run(seeds1, acceptRange(p.Lower, res.IsolatedValue))
	return res, nil
}

// candidateBounds returns the sorted distinct sample values >= lower.
func candidateBounds(g *grid.Grid, lower float64) []float64 {
	values := g.Values()
	kept := values[:0]
	for _, v := range values {
		if v >= lower {
			kept = append(kept, v)
		}
	}
	slices.Sort(kept)
	return slices.Compact(kept)
}

// predecessor returns the greatest value of the grid's domain below v.
func predecessor(v float64, kind grid.Kind) float64 {
	if kind == grid.KindInteger {
		return v - 1
	}
	return math.Nextafter(v, math.Inf(-1))
}
