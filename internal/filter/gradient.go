package filter

import (
	"math"

	"github.com/ironsheep/ctseg/internal/grid"
)

// GradientMagnitude computes the magnitude of the discrete spatial gradient
// at every sample.
//
// Parameters:
//   - g: Source grid (integer or float). Must not be nil or empty.
//
// Returns:
//   - *grid.Grid: A KindFloat grid with g's dimensions, spacing and origin,
//     holding sqrt(Gx² + Gy²) per sample. All values are non-negative.
//   - error: ErrInvalidGrid if g is nil or has no samples.
//
// # Differences
//
// Interior samples use central differences:
//
//	Gx = (I[x+1] - I[x-1]) / (2 * spacingX)
//
// The first and last column use forward and backward differences
// respectively (I[1]-I[0] and I[w-1]-I[w-2], divided by spacingX); rows are
// treated the same way along Y. A dimension of size 1 contributes no
// derivative.
func GradientMagnitude(g *grid.Grid) (*grid.Grid, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	width, height := g.Width(), g.Height()
	spacing := g.Spacing()
	out := g.NewLike(grid.KindFloat)

	forEachRow(width, height, func(y int) {
		for x := 0; x < width; x++ {
			gx := derivative(g, x, y, 1, 0, width, spacing[0])
			gy := derivative(g, x, y, 0, 1, height, spacing[1])
			out.Set(x, y, math.Sqrt(gx*gx+gy*gy))
		}
	})

	return out, nil
}

// derivative returns the first difference of g at (x, y) along (dx, dy),
// central inside the grid and one-sided on its border. n is the extent of
// the grid along the chosen axis.
func derivative(g *grid.Grid, x, y, dx, dy, n int, spacing float64) float64 {
	if n < 2 {
		return 0
	}
	pos := x*dx + y*dy
	switch pos {
	case 0:
		return (g.At(x+dx, y+dy) - g.At(x, y)) / spacing
	case n - 1:
		return (g.At(x, y) - g.At(x-dx, y-dy)) / spacing
	default:
		return (g.At(x+dx, y+dy) - g.At(x-dx, y-dy)) / (2 * spacing)
	}
}
