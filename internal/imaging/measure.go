package imaging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/ctseg/internal/grid"
)

// Point is a 2D position with fractional coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is a rectangle with an inclusive top-left (X1, Y1) and exclusive
// bottom-right (X2, Y2) corner.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// RegionMeasurement summarizes a segmented region over its slice.
type RegionMeasurement struct {
	// Area is the number of pixels in the region.
	Area int `json:"area"`

	// PhysicalArea is Area times the pixel area given by the slice spacing.
	PhysicalArea float64 `json:"physical_area"`

	// Centroid is the mean pixel position.
	Centroid Point `json:"centroid"`

	// PhysicalCentroid is Centroid in physical coordinates: origin + index*spacing.
	PhysicalCentroid Point `json:"physical_centroid"`

	// Bounds is the bounding box of the region.
	Bounds Region `json:"bounds"`

	// FractionOfSlice is Area over the slice pixel count, in percent.
	FractionOfSlice float64 `json:"fraction_of_slice"`

	// Intensity statistics of the slice samples inside the region.
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// MeasureRegion computes size, position and intensity statistics of a mask
// over the slice it was grown on.
//
// Parameters:
//   - m: Region mask.
//   - g: Source slice with the same dimensions as m.
//
// Returns:
//   - *RegionMeasurement: Values rounded to two decimals. An empty mask yields
//     a zero measurement.
//   - error: grid.ErrInvalidGrid if the dimensions differ.
//
// StdDev is the unbiased sample standard deviation, 0 for a single pixel.
func MeasureRegion(m *grid.Mask, g *grid.Grid) (*RegionMeasurement, error) {
	if m.Width() != g.Width() || m.Height() != g.Height() {
		return nil, fmt.Errorf("%w: mask %dx%d does not match slice %dx%d",
			grid.ErrInvalidGrid, m.Width(), m.Height(), g.Width(), g.Height())
	}

	area := m.Count()
	if area == 0 {
		return &RegionMeasurement{}, nil
	}

	values := make([]float64, 0, area)
	var sumX, sumY float64
	for _, p := range m.Points() {
		values = append(values, g.At(p.X, p.Y))
		sumX += float64(p.X)
		sumY += float64(p.Y)
	}
	cx, cy := sumX/float64(area), sumY/float64(area)

	mean, std := values[0], 0.0
	if area > 1 {
		mean, std = stat.MeanStdDev(values, nil)
	}

	spacing := g.Spacing()
	origin := g.Origin()
	b := m.Bounds()

	return &RegionMeasurement{
		Area:         area,
		PhysicalArea: round2(float64(area) * spacing[0] * spacing[1]),
		Centroid:     Point{X: round2(cx), Y: round2(cy)},
		PhysicalCentroid: Point{
			X: round2(origin[0] + cx*spacing[0]),
			Y: round2(origin[1] + cy*spacing[1]),
		},
		Bounds:          Region{X1: b.Min.X, Y1: b.Min.Y, X2: b.Max.X, Y2: b.Max.Y},
		FractionOfSlice: round2(float64(area) / float64(g.Len()) * 100),
		Mean:            round2(mean),
		StdDev:          round2(std),
		Min:             floats.Min(values),
		Max:             floats.Max(values),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
