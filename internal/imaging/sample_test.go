package imaging

import (
	"errors"
	"testing"

	"github.com/ironsheep/ctseg/internal/grid"
)

func TestSampleValues(t *testing.T) {
	g := createIndexGrid(t, 5, 5)

	result, err := SampleValues(g, []LabeledPoint{
		{X: 0, Y: 0, Label: "corner"},
		{X: 2, Y: 3},
	}, 1)
	if err != nil {
		t.Fatalf("SampleValues failed: %v", err)
	}
	if len(result.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(result.Samples))
	}

	// Corner window is clipped to 0, 1, 10, 11.
	corner := result.Samples[0]
	if corner.Label != "corner" || corner.Value != 0 || corner.Mean != 5.5 || corner.StdDev != 5.8 {
		t.Errorf("corner sample: got %+v", corner)
	}
	if inner := result.Samples[1]; inner.Value != 32 || inner.Mean != 32 {
		t.Errorf("inner sample: got %+v, want value and mean 32", inner)
	}
}

func TestSampleValues_Errors(t *testing.T) {
	g := createIndexGrid(t, 3, 3)

	if _, err := SampleValues(g, []LabeledPoint{{X: 3, Y: 0}}, 0); !errors.Is(err, grid.ErrInvalidSeed) {
		t.Errorf("out of bounds: got %v, want ErrInvalidSeed", err)
	}
	if _, err := SampleValues(g, []LabeledPoint{{X: 0, Y: 0}}, -1); !errors.Is(err, grid.ErrInvalidParameter) {
		t.Errorf("negative radius: got %v, want ErrInvalidParameter", err)
	}
}

func TestHistogram(t *testing.T) {
	g := createTestGrid(t, [][]float64{{0, 0, 5, 10}})

	tests := []struct {
		name   string
		region *Region
		counts []int
		low    float64
		high   float64
	}{
		{"whole slice", nil, []int{2, 2}, 0, 10},
		{"right half", &Region{X1: 2, Y1: 0, X2: 4, Y2: 1}, []int{1, 1}, 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Histogram(g, 2, 1, tt.region)
			if err != nil {
				t.Fatalf("Histogram failed: %v", err)
			}
			if len(h.Bins) != len(tt.counts) {
				t.Fatalf("bins: got %d, want %d", len(h.Bins), len(tt.counts))
			}
			for i, c := range tt.counts {
				if h.Bins[i].Count != c {
					t.Errorf("bin %d count: got %d, want %d", i, h.Bins[i].Count, c)
				}
			}
			if h.Bins[0].Low != tt.low || h.Bins[len(h.Bins)-1].High != tt.high {
				t.Errorf("range: got [%g,%g], want [%g,%g]", h.Bins[0].Low, h.Bins[len(h.Bins)-1].High, tt.low, tt.high)
			}
			if len(h.Peaks) != 1 || h.Peaks[0] != h.Bins[0] {
				t.Errorf("peaks: got %+v, want first bin", h.Peaks)
			}
		})
	}
}

func TestHistogram_ConstantSlice(t *testing.T) {
	g := createTestGrid(t, [][]float64{{4, 4}, {4, 4}})

	h, err := Histogram(g, 16, 3, nil)
	if err != nil {
		t.Fatalf("Histogram failed: %v", err)
	}
	if len(h.Bins) != 1 || h.Bins[0].Count != 4 || h.Bins[0].Percentage != 100 {
		t.Errorf("constant slice: got %+v", h.Bins)
	}
}

func TestHistogram_Errors(t *testing.T) {
	g := createTestGrid(t, [][]float64{{1, 2}})

	if _, err := Histogram(g, 0, 1, nil); !errors.Is(err, grid.ErrInvalidParameter) {
		t.Errorf("zero bins: got %v", err)
	}
	if _, err := Histogram(g, 4, 1, &Region{X1: 1, Y1: 0, X2: 1, Y2: 1}); !errors.Is(err, grid.ErrInvalidParameter) {
		t.Errorf("empty region: got %v", err)
	}
}
