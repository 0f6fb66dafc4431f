package imaging

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/ctseg/internal/grid"
)

// LabeledPoint represents a pixel coordinate with an optional descriptive label.
type LabeledPoint struct {
	X     int    // X coordinate (0-based)
	Y     int    // Y coordinate (0-based)
	Label string // Optional descriptive label for this point
}

// LabeledValue is the intensity at a point together with its neighborhood
// statistics.
type LabeledValue struct {
	Label string  `json:"label,omitempty"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Value float64 `json:"value"`

	// Mean and StdDev of the (2*radius+1)² window around the point, clipped
	// to the slice. With radius 0 they describe the point alone.
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// SampleResult contains samples in input order.
type SampleResult struct {
	Samples []LabeledValue `json:"samples"`
}

// SampleValues reads the intensity and window statistics at each point.
//
// The window statistics match those a confidence-connected run with the same
// radius starts from, so they help pick seeds and multipliers.
//
// Returns an error wrapping grid.ErrInvalidSeed if any point lies outside
// the slice; no partial results are returned.
func SampleValues(g *grid.Grid, points []LabeledPoint, radius int) (*SampleResult, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius %d must be >= 0", grid.ErrInvalidParameter, radius)
	}

	results := make([]LabeledValue, 0, len(points))
	for _, p := range points {
		if err := g.CheckPoint(grid.Point{X: p.X, Y: p.Y}); err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}

		var window []float64
		for y := p.Y - radius; y <= p.Y+radius; y++ {
			for x := p.X - radius; x <= p.X+radius; x++ {
				if g.InBounds(x, y) {
					window = append(window, g.At(x, y))
				}
			}
		}
		mean, std := window[0], 0.0
		if len(window) > 1 {
			mean, std = stat.MeanStdDev(window, nil)
		}

		results = append(results, LabeledValue{
			Label:  p.Label,
			X:      p.X,
			Y:      p.Y,
			Value:  g.At(p.X, p.Y),
			Mean:   round2(mean),
			StdDev: round2(std),
		})
	}

	return &SampleResult{Samples: results}, nil
}

// HistogramBin is one intensity interval [Low, High) of a histogram. The
// last bin also includes High.
type HistogramBin struct {
	Low        float64 `json:"low"`
	High       float64 `json:"high"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// HistogramResult holds all bins in value order and the most populated bins
// in descending order of count.
type HistogramResult struct {
	Bins  []HistogramBin `json:"bins"`
	Peaks []HistogramBin `json:"peaks"`
}

// Histogram bins the intensities of a slice, or of a rectangular part of it.
//
// Parameters:
//   - g: Source slice.
//   - bins: Number of equal-width bins, at least 1.
//   - peaks: Maximum number of peak bins to report.
//   - region: Optional rectangle to analyze. If nil, the whole slice is used.
//
// A constant slice yields a single bin holding every pixel.
func Histogram(g *grid.Grid, bins, peaks int, region *Region) (*HistogramResult, error) {
	if bins < 1 {
		return nil, fmt.Errorf("%w: bins %d must be >= 1", grid.ErrInvalidParameter, bins)
	}

	r := Region{X1: 0, Y1: 0, X2: g.Width(), Y2: g.Height()}
	if region != nil {
		r = *region
		if r.X1 < 0 || r.Y1 < 0 || r.X2 > g.Width() || r.Y2 > g.Height() || r.X1 >= r.X2 || r.Y1 >= r.Y2 {
			return nil, fmt.Errorf("%w: region (%d,%d)-(%d,%d) outside slice %dx%d",
				grid.ErrInvalidParameter, r.X1, r.Y1, r.X2, r.Y2, g.Width(), g.Height())
		}
	}

	values := make([]float64, 0, (r.X2-r.X1)*(r.Y2-r.Y1))
	for y := r.Y1; y < r.Y2; y++ {
		for x := r.X1; x < r.X2; x++ {
			values = append(values, g.At(x, y))
		}
	}
	slices.Sort(values)
	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		bins = 1
		hi = lo + 1
	}

	// stat.Histogram bins are half-open; nudge the last divider so the
	// maximum sample is counted.
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	last := dividers[bins]
	dividers[bins] = math.Nextafter(last, math.Inf(1))
	counts := stat.Histogram(nil, dividers, values, nil)

	total := float64(len(values))
	out := &HistogramResult{Bins: make([]HistogramBin, bins)}
	for i, c := range counts {
		high := dividers[i+1]
		if i == bins-1 {
			high = last
		}
		out.Bins[i] = HistogramBin{
			Low:        round2(dividers[i]),
			High:       round2(high),
			Count:      int(c),
			Percentage: round2(c / total * 100),
		}
	}

	ranked := slices.Clone(out.Bins)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	for _, b := range ranked {
		if len(out.Peaks) >= peaks || b.Count == 0 {
			break
		}
		out.Peaks = append(out.Peaks, b)
	}

	return out, nil
}
