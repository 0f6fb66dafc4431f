package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kind selects the value domain of a Grid.
type Kind int

const (
	// KindInteger grids store whole-number samples.
	KindInteger Kind = iota
	// KindFloat grids store arbitrary float64 samples.
	KindFloat
)

// String returns "integer" or "float".
func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Point is a pixel index into a grid.
type Point struct {
	X int `json:"x"` // Column (0 = leftmost)
	Y int `json:"y"` // Row (0 = topmost)
}

// Grid is a fixed-size 2D array of scalar samples with physical metadata.
//
// Spacing is the physical size of a pixel along X and Y (millimetres for
// CT slices, 1 by default) and Origin the physical position of sample
// (0, 0). Filters that differentiate the grid scale their derivatives by the
// spacing.
type Grid struct {
	width, height int
	kind          Kind
	spacing       [2]float64
	origin        [2]float64
	data          []float64
}

// New creates a zero-filled grid of the given dimensions.
//
// Returns ErrInvalidGrid if width or height is not positive or the kind is
// unknown.
func New(width, height int, kind Kind) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidGrid, width, height)
	}
	if kind != KindInteger && kind != KindFloat {
		return nil, fmt.Errorf("%w: unknown kind %v", ErrInvalidGrid, kind)
	}
	return &Grid{
		width:   width,
		height:  height,
		kind:    kind,
		spacing: [2]float64{1, 1},
		data:    make([]float64, width*height),
	}, nil
}

// FromValues creates a grid from row-major samples. The slice is copied.
//
// Returns ErrInvalidGrid if the dimensions are not positive or len(values)
// differs from width*height.
func FromValues(width, height int, kind Kind, values []float64) (*Grid, error) {
	g, err := New(width, height, kind)
	if err != nil {
		return nil, err
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: got %d samples for %dx%d grid", ErrInvalidGrid, len(values), width, height)
	}
	for i, v := range values {
		g.data[i] = g.normalize(v)
	}
	return g, nil
}

// FromRows creates a grid from a rectangular 2D slice indexed [y][x].
func FromRows(rows [][]float64, kind Kind) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: input must have at least one row and one column", ErrInvalidGrid)
	}
	w := len(rows[0])
	values := make([]float64, 0, w*len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has %d samples, want %d", ErrInvalidGrid, y, len(row), w)
		}
		values = append(values, row...)
	}
	return FromValues(w, len(rows), kind, values)
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Len returns the number of samples.
func (g *Grid) Len() int { return len(g.data) }

// Kind returns the value domain.
func (g *Grid) Kind() Kind { return g.kind }

// Spacing returns the physical pixel size along X and Y.
func (g *Grid) Spacing() [2]float64 { return g.spacing }

// SetSpacing sets the physical pixel size. Both components must be positive
// and finite.
func (g *Grid) SetSpacing(sx, sy float64) error {
	if !(sx > 0) || !(sy > 0) || math.IsInf(sx, 0) || math.IsInf(sy, 0) {
		return fmt.Errorf("%w: spacing (%g,%g) must be positive and finite", ErrInvalidParameter, sx, sy)
	}
	g.spacing = [2]float64{sx, sy}
	return nil
}

// Origin returns the physical position of sample (0, 0).
func (g *Grid) Origin() [2]float64 { return g.origin }

// SetOrigin sets the physical position of sample (0, 0).
func (g *Grid) SetOrigin(ox, oy float64) { g.origin = [2]float64{ox, oy} }

// Index maps (x, y) to its row-major index. No bounds checking is performed.
func (g *Grid) Index(x, y int) int { return y*g.width + x }

// Coord maps a row-major index back to (x, y).
func (g *Grid) Coord(i int) (x, y int) { return i % g.width, i / g.width }

// InBounds reports whether (x, y) lies within the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// CheckPoint returns ErrInvalidSeed if p lies outside the grid.
func (g *Grid) CheckPoint(p Point) error {
	if !g.InBounds(p.X, p.Y) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d grid", ErrInvalidSeed, p.X, p.Y, g.width, g.height)
	}
	return nil
}

// At returns the sample at (x, y). The caller must ensure the coordinates
// are in bounds.
func (g *Grid) At(x, y int) float64 { return g.data[y*g.width+x] }

// AtIndex returns the sample at a row-major index.
func (g *Grid) AtIndex(i int) float64 { return g.data[i] }

// Set stores v at (x, y), rounding it for integer grids.
func (g *Grid) Set(x, y int, v float64) { g.data[y*g.width+x] = g.normalize(v) }

// SetIndex stores v at a row-major index, rounding it for integer grids.
func (g *Grid) SetIndex(i int, v float64) { g.data[i] = g.normalize(v) }

// Values returns a copy of the row-major samples.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.data))
	copy(out, g.data)
	return out
}

// Range returns the minimum and maximum sample, or 0, 0 for an empty grid.
func (g *Grid) Range() (lo, hi float64) {
	if len(g.data) == 0 {
		return 0, 0
	}
	return floats.Min(g.data), floats.Max(g.data)
}

// Validate returns ErrInvalidGrid for a nil grid or one without samples,
// such as the zero Grid value. Grids built by New, FromValues or FromRows
// always pass.
func (g *Grid) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	if g.width <= 0 || g.height <= 0 || len(g.data) != g.width*g.height {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidGrid, g.width, g.height)
	}
	return nil
}

// Clone returns a deep copy with the same geometry and kind.
func (g *Grid) Clone() *Grid {
	c := *g
	c.data = g.Values()
	return &c
}

// NewLike returns a zero-filled grid with g's dimensions and geometry and
// the requested kind.
func (g *Grid) NewLike(kind Kind) *Grid {
	return &Grid{
		width:   g.width,
		height:  g.height,
		kind:    kind,
		spacing: g.spacing,
		origin:  g.origin,
		data:    make([]float64, len(g.data)),
	}
}

// Finite reports whether every sample is finite.
func (g *Grid) Finite() bool {
	for _, v := range g.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (g *Grid) normalize(v float64) float64 {
	if g.kind == KindInteger {
		return math.Round(v)
	}
	return v
}
