package region

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/ctseg/internal/grid"
)

// ConfidenceParams configures a confidence-connected run.
type ConfidenceParams struct {
	Seeds []grid.Point

	// Radius is the half-width of the square window around each seed used
	// for the initial statistics. 0 uses the seed pixels alone.
	Radius int

	// Multiplier f scales the standard deviation into the acceptance bounds
	// [mean - f*sigma, mean + f*sigma].
	Multiplier float64

	// Iterations is the maximum number of floods, at least 1.
	Iterations int

	Connectivity grid.Connectivity
}

// ConfidenceResult is the outcome of ConfidenceConnected.
type ConfidenceResult struct {
	Mask *grid.Mask

	// Mean and StdDev are the statistics of the final region.
	Mean   float64
	StdDev float64

	// Lower and Upper are the bounds of the flood that produced Mask.
	Lower float64
	Upper float64

	// Iterations is the number of floods performed.
	Iterations int

	// Converged reports whether a flood reproduced the previous region
	// before the iteration limit.
	Converged bool
}

// ConfidenceConnected grows a region whose bounds adapt to the region's own
// intensity statistics.
//
// # Algorithm
//
//  1. Estimate mean and standard deviation over the union of the
//     (2*Radius+1)² windows centered on the seeds, clipped to the grid.
//  2. Flood from the seeds accepting values in
//     [mean - Multiplier*sigma, mean + Multiplier*sigma].
//  3. Re-estimate mean and sigma over the flooded region and repeat from 2,
//     up to Iterations floods in total. Every flood restarts from the seeds.
//
// Iteration stops early once a flood yields the same region as the previous
// one, so running with more iterations than needed returns the same mask.
// The standard deviation is the unbiased sample estimate, 0 for a
// single-pixel sample. Failing to converge within Iterations is not an
// error.
func ConfidenceConnected(g *grid.Grid, p ConfidenceParams) (*ConfidenceResult, error) {
	if err := checkInput(g, p.Connectivity); err != nil {
		return nil, err
	}
	if p.Radius < 0 {
		return nil, fmt.Errorf("%w: radius %d must be >= 0", grid.ErrInvalidParameter, p.Radius)
	}
	if math.IsNaN(p.Multiplier) || p.Multiplier < 0 {
		return nil, fmt.Errorf("%w: multiplier %g must be >= 0", grid.ErrInvalidParameter, p.Multiplier)
	}
	if p.Iterations < 1 {
		return nil, fmt.Errorf("%w: iterations %d must be >= 1", grid.ErrInvalidParameter, p.Iterations)
	}
	seeds, err := seedIndices(g, p.Seeds, "seed")
	if err != nil {
		return nil, err
	}

	mean, sigma := meanStdDev(seedWindowValues(g, seeds, p.Radius))

	f := newFlooder(g, p.Connectivity)
	res := &ConfidenceResult{}
	for iter := 1; iter <= p.Iterations; iter++ {
		lower, upper := mean-p.Multiplier*sigma, mean+p.Multiplier*sigma
		mask := f.run(seeds, acceptRange(lower, upper))

		res.Iterations = iter
		res.Lower, res.Upper = lower, upper
		if res.Mask != nil && mask.Equal(res.Mask) {
			res.Converged = true
			break
		}
		res.Mask = mask
		mean, sigma = meanStdDev(maskValues(g, mask))
	}

	// After a converged flood the region equals the previous one, whose
	// statistics are already current.
	res.Mean, res.StdDev = mean, sigma
	return res, nil
}

// seedWindowValues collects the samples of the union of square windows of
// the given radius around each seed.
func seedWindowValues(g *grid.Grid, seeds []int, radius int) []float64 {
	seen := make(map[int]struct{}, len(seeds)*(2*radius+1)*(2*radius+1))
	var values []float64
	for _, s := range seeds {
		sx, sy := g.Coord(s)
		for y := sy - radius; y <= sy+radius; y++ {
			for x := sx - radius; x <= sx+radius; x++ {
				if !g.InBounds(x, y) {
					continue
				}
				i := g.Index(x, y)
				if _, ok := seen[i]; ok {
					continue
				}
				seen[i] = struct{}{}
				values = append(values, g.AtIndex(i))
			}
		}
	}
	return values
}

func maskValues(g *grid.Grid, m *grid.Mask) []float64 {
	values := make([]float64, 0, m.Count())
	for i := 0; i < g.Len(); i++ {
		if m.AtIndex(i) {
			values = append(values, g.AtIndex(i))
		}
	}
	return values
}

func meanStdDev(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}
