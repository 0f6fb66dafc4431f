package region

import (
	"fmt"

	"github.com/ironsheep/ctseg/internal/grid"
)

// acceptFunc decides whether a sample value joins the region.
type acceptFunc func(v float64) bool

// acceptRange accepts values in the closed interval [lo, hi].
func acceptRange(lo, hi float64) acceptFunc {
	return func(v float64) bool { return v >= lo && v <= hi }
}

const (
	unvisited uint8 = iota
	accepted
	rejected
)

// flooder runs repeated flood fills over one grid, reusing its visited
// array and queue between runs.
type flooder struct {
	g       *grid.Grid
	offsets [][2]int
	state   []uint8
	queue   []int
}

func newFlooder(g *grid.Grid, conn grid.Connectivity) *flooder {
	return &flooder{
		g:       g,
		offsets: conn.Offsets(),
		state:   make([]uint8, g.Len()),
		queue:   make([]int, 0, 64),
	}
}

// run grows a region from the seed indices and returns it as a new mask.
//
// Uses a queue-based breadth-first traversal (not recursive). A neighbor is
// examined once: accepted samples are marked and enqueued, rejected ones are
// remembered so the criterion is evaluated at most once per pixel.
func (f *flooder) run(seeds []int, accept acceptFunc) *grid.Mask {
	width, height := f.g.Width(), f.g.Height()
	mask := grid.NewMask(width, height)
	clear(f.state)
	f.queue = f.queue[:0]

	for _, s := range seeds {
		if f.state[s] == accepted {
			continue
		}
		f.state[s] = accepted
		mask.SetIndex(s, true)
		f.queue = append(f.queue, s)
	}

	for head := 0; head < len(f.queue); head++ {
		i := f.queue[head]
		x, y := i%width, i/width
		for _, d := range f.offsets {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || nx >= width || ny < 0 || ny >= height {
				continue
			}
			j := ny*width + nx
			if f.state[j] != unvisited {
				continue
			}
			if accept(f.g.AtIndex(j)) {
				f.state[j] = accepted
				mask.SetIndex(j, true)
				f.queue = append(f.queue, j)
			} else {
				f.state[j] = rejected
			}
		}
	}

	return mask
}

// seedIndices validates seeds against g and converts them to row-major
// indices.
func seedIndices(g *grid.Grid, seeds []grid.Point, name string) ([]int, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: at least one %s is required", grid.ErrInvalidParameter, name)
	}
	idx := make([]int, len(seeds))
	for n, p := range seeds {
		if err := g.CheckPoint(p); err != nil {
			return nil, fmt.Errorf("%s %d: %w", name, n, err)
		}
		idx[n] = g.Index(p.X, p.Y)
	}
	return idx, nil
}

func checkInput(g *grid.Grid, conn grid.Connectivity) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return conn.Validate()
}
