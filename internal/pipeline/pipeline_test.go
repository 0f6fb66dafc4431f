package pipeline_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/ctseg/internal/config"
	"github.com/ironsheep/ctseg/internal/filter"
	"github.com/ironsheep/ctseg/internal/grid"
	"github.com/ironsheep/ctseg/internal/imaging"
	"github.com/ironsheep/ctseg/internal/pipeline"
)

func TestSmooth_DisabledReturnsInput(t *testing.T) {
	g := halvesGrid(t)

	s := config.Default().Smoothing
	s.Enabled = false
	out, err := pipeline.Smooth(g, s)
	require.NoError(t, err)
	assert.Same(t, g, out)
}

func TestSmooth_PreservesStraightEdge(t *testing.T) {
	g := halvesGrid(t)

	out, err := pipeline.Smooth(g, config.Default().Smoothing)
	require.NoError(t, err)
	assert.NotSame(t, g, out)
	if diff := cmp.Diff(g.Values(), out.Values()); diff != "" {
		t.Errorf("smoothed values mismatch (-want +got):\n%s", diff)
	}
}

func TestConnected_FlatSlice(t *testing.T) {
	g, err := grid.New(10, 10, grid.KindInteger)
	require.NoError(t, err)
	for i := 0; i < g.Len(); i++ {
		g.SetIndex(i, 100)
	}

	cfg := config.Default()
	cfg.Threshold = config.Threshold{Lower: 90, Upper: 110}

	res, err := pipeline.Connected(g, cfg, []grid.Point{{X: 5, Y: 5}})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Mask.Count())
}

func TestConnected_Halves(t *testing.T) {
	g := halvesGrid(t)
	cfg := config.Default()
	cfg.Threshold = config.Threshold{Lower: 0, Upper: 100}

	res, err := pipeline.Connected(g, cfg, []grid.Point{{X: 2, Y: 2}})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Mask.Count())
	assert.True(t, res.Mask.At(4, 9))
	assert.False(t, res.Mask.At(5, 0))
}

func TestConfidence_Halves(t *testing.T) {
	g := halvesGrid(t)
	cfg := config.Default()
	cfg.Confidence.Radius = 1

	res, err := pipeline.Confidence(g, cfg, []grid.Point{{X: 2, Y: 2}})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Mask.Count())
	assert.True(t, res.Converged)
	assert.Equal(t, 50.0, res.Mean)
	assert.Equal(t, 0.0, res.StdDev)
}

func TestIsolated_Halves(t *testing.T) {
	g := halvesGrid(t)
	cfg := config.Default()

	res, err := pipeline.Isolated(g, cfg, []grid.Point{{X: 2, Y: 2}}, []grid.Point{{X: 7, Y: 7}})
	require.NoError(t, err)
	assert.True(t, res.Isolated)
	assert.Equal(t, 199.0, res.IsolatedValue)
	assert.Equal(t, 50, res.Mask.Count())
	assert.False(t, res.Mask.At(7, 7))
}

func TestWatershed_FlatSlice(t *testing.T) {
	g, err := grid.New(8, 8, grid.KindInteger)
	require.NoError(t, err)

	res, err := pipeline.Watershed(g, config.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Basins)
	for _, l := range res.Labels.Labels() {
		require.Equal(t, uint32(1), l)
	}
}

func TestWatershed_Halves(t *testing.T) {
	g := halvesGrid(t)

	res, err := pipeline.Watershed(g, config.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Basins)
	assert.Equal(t, uint32(1), res.Labels.At(0, 0))
	assert.Equal(t, uint32(2), res.Labels.At(9, 9))
	assert.Equal(t, 75.0, res.Gradient.At(4, 3))
	assert.Equal(t, 0.0, res.Gradient.At(0, 3))
}

// TestWatershed_GradientOfUnsmoothedSlice uses a bright square whose corner
// curvature flow would round off. The flooded field must still be the
// gradient of the slice as given, whatever the smoothing settings say.
func TestWatershed_GradientOfUnsmoothedSlice(t *testing.T) {
	g := squareGrid(t)
	cfg := config.Default()
	require.True(t, cfg.Smoothing.Enabled)

	want, err := filter.GradientMagnitude(g)
	require.NoError(t, err)

	smoothed, err := pipeline.Smooth(g, cfg.Smoothing)
	require.NoError(t, err)
	smoothedGradient, err := filter.GradientMagnitude(smoothed)
	require.NoError(t, err)
	require.NotEmpty(t, cmp.Diff(want.Values(), smoothedGradient.Values()), "smoothing should change this slice")

	res, err := pipeline.Watershed(g, cfg)
	require.NoError(t, err)
	if diff := cmp.Diff(want.Values(), res.Gradient.Values()); diff != "" {
		t.Errorf("gradient mismatch (-want +got):\n%s", diff)
	}

	disabled := config.Default()
	disabled.Smoothing.Enabled = false
	plain, err := pipeline.Watershed(g, disabled)
	require.NoError(t, err)
	assert.Equal(t, plain.Basins, res.Basins)
	if diff := cmp.Diff(plain.Labels.Labels(), res.Labels.Labels()); diff != "" {
		t.Errorf("labels depend on smoothing settings (-disabled +enabled):\n%s", diff)
	}
}

func TestPipelines_InvalidInput(t *testing.T) {
	g := halvesGrid(t)
	seeds := []grid.Point{{X: 2, Y: 2}}

	badConn := config.Default()
	badConn.Connectivity = "6"

	_, err := pipeline.Connected(g, badConn, seeds)
	assert.ErrorIs(t, err, grid.ErrInvalidParameter)

	_, err = pipeline.Connected(nil, config.Default(), seeds)
	assert.ErrorIs(t, err, grid.ErrInvalidGrid)

	_, err = pipeline.Connected(&grid.Grid{}, config.Default(), seeds)
	assert.ErrorIs(t, err, grid.ErrInvalidGrid)

	_, err = pipeline.Watershed(&grid.Grid{}, config.Default())
	assert.ErrorIs(t, err, grid.ErrInvalidGrid)

	_, err = pipeline.Confidence(g, config.Default(), []grid.Point{{X: 20, Y: 2}})
	assert.ErrorIs(t, err, grid.ErrInvalidSeed)

	_, err = pipeline.Isolated(g, config.Default(), seeds, seeds)
	assert.ErrorIs(t, err, grid.ErrInvalidParameter)

	badLevel := config.Default()
	badLevel.Watershed.Level = 2
	_, err = pipeline.Watershed(g, badLevel)
	assert.ErrorIs(t, err, grid.ErrInvalidParameter)
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		pattern string
		i       int
		want    string
	}{
		{"out/liver.png", 0, "out/liver0.png"},
		{"out/liver.png", 12, "out/liver12.png"},
		{"mask.tif", 3, "mask3.tif"},
		{"mask", 1, "mask1.png"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, pipeline.OutputName(tt.pattern, tt.i))
		})
	}
}

func TestBatch_SkipsFailingSlices(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{
		writeHalvesPNG(t, dir, "slice0.png"),
		filepath.Join(dir, "missing.png"),
		writeHalvesPNG(t, dir, "slice2.png"),
	}

	cfg := config.Default()
	cfg.Threshold = config.Threshold{Lower: 0, Upper: 100}
	cfg.Batch.Workers = 2

	report, err := pipeline.Batch(context.Background(), cfg, pipeline.BatchJob{
		Inputs: inputs,
		Output: filepath.Join(dir, "out", "liver.png"),
		Seeds:  []grid.Point{{X: 2, Y: 2}},
	})
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "out", "liver0.png"),
		filepath.Join(dir, "out", "liver2.png"),
	}
	assert.Equal(t, want, report.Written)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, inputs[1], report.Failed[0].Input)
	assert.Error(t, report.Failed[0].Err)

	for _, path := range report.Written {
		mask, err := imaging.LoadGrid(imaging.NewImageCache(), path)
		require.NoError(t, err)

		count := 0
		for _, v := range mask.Values() {
			if v == 255 {
				count++
			}
		}
		assert.Equal(t, 50, count, path)
	}
}

func TestBatch_Errors(t *testing.T) {
	seeds := []grid.Point{{X: 2, Y: 2}}

	tests := []struct {
		name string
		job  pipeline.BatchJob
	}{
		{"no inputs", pipeline.BatchJob{Output: "out.png", Seeds: seeds}},
		{"no output", pipeline.BatchJob{Inputs: []string{"a.png"}, Seeds: seeds}},
		{"no seeds", pipeline.BatchJob{Inputs: []string{"a.png"}, Output: "out.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Batch(context.Background(), config.Default(), tt.job)
			assert.ErrorIs(t, err, grid.ErrInvalidParameter)
		})
	}
}

func TestBatch_Canceled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pipeline.Batch(ctx, config.Default(), pipeline.BatchJob{
		Inputs: []string{writeHalvesPNG(t, dir, "slice.png")},
		Output: filepath.Join(dir, "mask.png"),
		Seeds:  []grid.Point{{X: 2, Y: 2}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// Helper functions

// halvesGrid returns a 10x10 integer slice whose left half is 50 and right
// half is 200.
func halvesGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(10, 10, grid.KindInteger)
	require.NoError(t, err)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := 50.0
			if x >= 5 {
				v = 200
			}
			g.Set(x, y, v)
		}
	}
	return g
}

// squareGrid is a 10x10 integer slice with a 200 square at (2..6, 2..6) on
// a background of 50.
func squareGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := grid.New(10, 10, grid.KindInteger)
	require.NoError(t, err)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := 50.0
			if x >= 2 && x <= 6 && y >= 2 && y <= 6 {
				v = 200
			}
			g.Set(x, y, v)
		}
	}
	return g
}

func writeHalvesPNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := uint8(50)
			if x >= 5 {
				v = 200
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}
