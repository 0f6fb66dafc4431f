package region

import (
	"fmt"
	"math"

	"github.com/ironsheep/ctseg/internal/grid"
)

// ThresholdParams configures a connected-threshold run.
type ThresholdParams struct {
	// Seeds are the starting pixels. At least one is required.
	Seeds []grid.Point

	// Lower and Upper bound the accepted values, inclusive.
	Lower, Upper float64

	// Connectivity selects 4- or 8-connected growth. Zero value is Conn4.
	Connectivity grid.Connectivity
}

// ConnectedThreshold grows the region of pixels connected to the seeds whose
// values lie in [Lower, Upper].
//
// Every pixel of the returned mask satisfies Lower <= value <= Upper, except
// the seeds themselves which are always included, and every pixel is
// reachable from a seed through accepted pixels.
//
// Returns grid.ErrInvalidParameter when Lower > Upper, a bound is NaN or no
// seed is given, and grid.ErrInvalidSeed when a seed lies outside g.
func ConnectedThreshold(g *grid.Grid, p ThresholdParams) (*grid.Mask, error) {
	if err := checkInput(g, p.Connectivity); err != nil {
		return nil, err
	}
	if math.IsNaN(p.Lower) || math.IsNaN(p.Upper) || p.Lower > p.Upper {
		return nil, fmt.Errorf("%w: threshold [%g, %g] is empty", grid.ErrInvalidParameter, p.Lower, p.Upper)
	}
	seeds, err := seedIndices(g, p.Seeds, "seed")
	if err != nil {
		return nil, err
	}

	return newFlooder(g, p.Connectivity).run(seeds, acceptRange(p.Lower, p.Upper)), nil
}
