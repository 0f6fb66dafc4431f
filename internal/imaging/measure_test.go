package imaging

import (
	"errors"
	"testing"

	"github.com/ironsheep/ctseg/internal/grid"
)

func TestMeasureRegion(t *testing.T) {
	g := createIndexGrid(t, 4, 4)
	if err := g.SetSpacing(0.5, 2); err != nil {
		t.Fatal(err)
	}
	g.SetOrigin(100, 200)

	m := grid.NewMask(4, 4)
	for _, p := range [][2]int{{1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		m.Set(p[0], p[1], true)
	}

	got, err := MeasureRegion(m, g)
	if err != nil {
		t.Fatalf("MeasureRegion failed: %v", err)
	}

	want := RegionMeasurement{
		Area:             4,
		PhysicalArea:     4,
		Centroid:         Point{X: 1.5, Y: 1.5},
		PhysicalCentroid: Point{X: 100.75, Y: 203},
		Bounds:           Region{X1: 1, Y1: 1, X2: 3, Y2: 3},
		FractionOfSlice:  25,
		Mean:             16.5,
		StdDev:           5.8, // sqrt(101/3)
		Min:              11,
		Max:              22,
	}
	if *got != want {
		t.Errorf("measurement:\n got %+v\nwant %+v", *got, want)
	}
}

func TestMeasureRegion_EmptyAndSingle(t *testing.T) {
	g := createIndexGrid(t, 3, 3)

	empty, err := MeasureRegion(grid.NewMask(3, 3), g)
	if err != nil {
		t.Fatalf("MeasureRegion failed: %v", err)
	}
	if *empty != (RegionMeasurement{}) {
		t.Errorf("empty mask: got %+v, want zero", *empty)
	}

	m := grid.NewMask(3, 3)
	m.Set(2, 1, true)
	single, err := MeasureRegion(m, g)
	if err != nil {
		t.Fatalf("MeasureRegion failed: %v", err)
	}
	if single.Mean != 12 || single.StdDev != 0 || single.Area != 1 {
		t.Errorf("single pixel: got mean %g std %g area %d", single.Mean, single.StdDev, single.Area)
	}
}

func TestMeasureRegion_SizeMismatch(t *testing.T) {
	g := createIndexGrid(t, 3, 3)
	if _, err := MeasureRegion(grid.NewMask(2, 3), g); !errors.Is(err, grid.ErrInvalidGrid) {
		t.Errorf("got %v, want ErrInvalidGrid", err)
	}
}

// createIndexGrid builds a grid whose value at (x, y) is x + 10*y.
func createIndexGrid(t *testing.T, width, height int) *grid.Grid {
	t.Helper()
	g, err := grid.New(width, height, grid.KindInteger)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(x, y, float64(x+10*y))
		}
	}
	return g
}
