package pipeline

import (
	"fmt"

	"github.com/ironsheep/ctseg/internal/config"
	"github.com/ironsheep/ctseg/internal/filter"
	"github.com/ironsheep/ctseg/internal/grid"
	"github.com/ironsheep/ctseg/internal/region"
	"github.com/ironsheep/ctseg/internal/watershed"
)

// ConnectedResult is the outcome of a connected-threshold run.
type ConnectedResult struct {
	Mask *grid.Mask

	// Smoothed is the grid the region was grown on. It is the input slice
	// itself when smoothing is disabled.
	Smoothed *grid.Grid
}

// ConfidenceResult is the outcome of a confidence-connected run.
type ConfidenceResult struct {
	*region.ConfidenceResult
	Smoothed *grid.Grid
}

// IsolatedResult is the outcome of an isolated-connected run.
type IsolatedResult struct {
	*region.IsolatedResult
	Smoothed *grid.Grid
}

// WatershedResult is the outcome of a watershed run.
type WatershedResult struct {
	*watershed.Result

	// Gradient is the field that was flooded.
	Gradient *grid.Grid
}

// Smooth applies the configured curvature-flow pass. With smoothing disabled
// or zero iterations it returns g itself.
func Smooth(g *grid.Grid, s config.Smoothing) (*grid.Grid, error) {
	if !s.Enabled || s.Iterations == 0 {
		return g, nil
	}
	out, err := filter.CurvatureFlow(g, s.Iterations, s.TimeStep)
	if err != nil {
		return nil, fmt.Errorf("failed to smooth slice: %w", err)
	}
	return out, nil
}

// Connected grows the region of pixels within cfg.Threshold connected to
// the seeds.
func Connected(g *grid.Grid, cfg *config.Config, seeds []grid.Point) (*ConnectedResult, error) {
	conn, smoothed, err := prepare(g, cfg)
	if err != nil {
		return nil, err
	}

	mask, err := region.ConnectedThreshold(smoothed, region.ThresholdParams{
		Seeds:        seeds,
		Lower:        cfg.Threshold.Lower,
		Upper:        cfg.Threshold.Upper,
		Connectivity: conn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to grow connected-threshold region: %w", err)
	}
	return &ConnectedResult{Mask: mask, Smoothed: smoothed}, nil
}

// Confidence grows a region whose intensity interval adapts to the region's
// own statistics.
func Confidence(g *grid.Grid, cfg *config.Config, seeds []grid.Point) (*ConfidenceResult, error) {
	conn, smoothed, err := prepare(g, cfg)
	if err != nil {
		return nil, err
	}

	res, err := region.ConfidenceConnected(smoothed, region.ConfidenceParams{
		Seeds:        seeds,
		Radius:       cfg.Confidence.Radius,
		Multiplier:   cfg.Confidence.Multiplier,
		Iterations:   cfg.Confidence.Iterations,
		Connectivity: conn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to grow confidence-connected region: %w", err)
	}
	return &ConfidenceResult{ConfidenceResult: res, Smoothed: smoothed}, nil
}

// Isolated grows the largest region connected to seeds1 that excludes
// every seed in seeds2.
func Isolated(g *grid.Grid, cfg *config.Config, seeds1, seeds2 []grid.Point) (*IsolatedResult, error) {
	conn, smoothed, err := prepare(g, cfg)
	if err != nil {
		return nil, err
	}

	res, err := region.IsolatedConnected(smoothed, region.IsolatedParams{
		Seeds1:       seeds1,
		Seeds2:       seeds2,
		Lower:        cfg.Isolated.Lower,
		Connectivity: conn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to grow isolated-connected region: %w", err)
	}
	return &IsolatedResult{IsolatedResult: res, Smoothed: smoothed}, nil
}

// Watershed partitions the slice into basins of its gradient magnitude. The
// gradient is taken on the slice as given; cfg.Smoothing does not apply.
func Watershed(g *grid.Grid, cfg *config.Config) (*WatershedResult, error) {
	conn, err := validate(g, cfg)
	if err != nil {
		return nil, err
	}

	gradient, err := filter.GradientMagnitude(g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute gradient: %w", err)
	}

	res, err := watershed.Segment(gradient, watershed.Params{
		Threshold:    cfg.Watershed.Threshold,
		Level:        cfg.Watershed.Level,
		Connectivity: conn,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to segment watershed: %w", err)
	}
	return &WatershedResult{Result: res, Gradient: gradient}, nil
}

// validate checks the slice and configuration and resolves the
// connectivity.
func validate(g *grid.Grid, cfg *config.Config) (grid.Connectivity, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	if cfg == nil {
		return 0, fmt.Errorf("%w: nil configuration", grid.ErrInvalidParameter)
	}
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg.ConnectivityValue()
}

// prepare validates the inputs and smooths the slice for region growing.
func prepare(g *grid.Grid, cfg *config.Config) (grid.Connectivity, *grid.Grid, error) {
	conn, err := validate(g, cfg)
	if err != nil {
		return 0, nil, err
	}
	smoothed, err := Smooth(g, cfg.Smoothing)
	if err != nil {
		return 0, nil, err
	}
	return conn, smoothed, nil
}
