package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ctseg/internal/config"
	"github.com/ironsheep/ctseg/internal/grid"
	"github.com/ironsheep/ctseg/internal/imaging"
	"github.com/ironsheep/ctseg/internal/pipeline"
)

// smoothingFlags holds the curvature-flow flags of a region command.
type smoothingFlags struct {
	iterations int
	timeStep   float64
}

// addSmoothingFlags registers the curvature-flow flags on cmd.
func addSmoothingFlags(cmd *cobra.Command) *smoothingFlags {
	s := &smoothingFlags{}
	f := cmd.Flags()
	f.IntVar(&s.iterations, "smooth-iterations", 0, "curvature-flow iterations (default from config: 5)")
	f.Float64Var(&s.timeStep, "time-step", 0, "curvature-flow time step (default from config: 0.125)")
	return s
}

// apply copies the smoothing flags that were set on cmd into cfg.
func (s *smoothingFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("smooth-iterations") {
		cfg.Smoothing.Iterations = s.iterations
	}
	if f.Changed("time-step") {
		cfg.Smoothing.TimeStep = s.timeStep
	}
}

// loadSlice loads the input slice for a single-slice command.
func loadSlice(opts *options, path string) (*grid.Grid, error) {
	g, err := imaging.LoadGrid(imaging.NewImageCache(), path)
	if err != nil {
		return nil, err
	}
	opts.debugf("Loaded %s (%dx%d)", path, g.Width(), g.Height())
	return g, nil
}

// writeMask saves the mask and prints its measurement.
func writeMask(out io.Writer, g *grid.Grid, m *grid.Mask, cfg *config.Config, path string) error {
	if err := imaging.Save(imaging.MaskImage(m, uint8(cfg.Output.ReplaceValue)), path); err != nil {
		return err
	}
	meas, err := imaging.MeasureRegion(m, g)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Region: %d pixels (%.2f%% of slice), mean %.2f, std dev %.2f -> %s\n",
		meas.Area, meas.FractionOfSlice, meas.Mean, meas.StdDev, path)
	return nil
}

func newConnectedCmd(opts *options) *cobra.Command {
	var (
		seeds        []string
		lower, upper float64
		smoothing    *smoothingFlags
	)

	cmd := &cobra.Command{
		Use:   "connected <input> <output>",
		Short: "Grow the region within [lower, upper] connected to the seeds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			smoothing.apply(cmd, cfg)
			if cmd.Flags().Changed("lower") {
				cfg.Threshold.Lower = lower
			}
			if cmd.Flags().Changed("upper") {
				cfg.Threshold.Upper = upper
			}
			points, err := parseSeeds(seeds)
			if err != nil {
				return err
			}

			g, err := loadSlice(opts, args[0])
			if err != nil {
				return err
			}
			res, err := pipeline.Connected(g, cfg, points)
			if err != nil {
				return err
			}
			return writeMask(cmd.OutOrStdout(), g, res.Mask, cfg, args[1])
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&seeds, "seed", nil, "seed pixel as x,y (repeatable)")
	f.Float64Var(&lower, "lower", 0, "lowest accepted intensity")
	f.Float64Var(&upper, "upper", 0, "highest accepted intensity")
	smoothing = addSmoothingFlags(cmd)
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func newConfidenceCmd(opts *options) *cobra.Command {
	var (
		seeds      []string
		radius     int
		multiplier float64
		iterations int
		smoothing  *smoothingFlags
	)

	cmd := &cobra.Command{
		Use:   "confidence <input> <output>",
		Short: "Grow a region bounded by mean ± multiplier × std dev of the region",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			smoothing.apply(cmd, cfg)
			f := cmd.Flags()
			if f.Changed("radius") {
				cfg.Confidence.Radius = radius
			}
			if f.Changed("multiplier") {
				cfg.Confidence.Multiplier = multiplier
			}
			if f.Changed("iterations") {
				cfg.Confidence.Iterations = iterations
			}
			points, err := parseSeeds(seeds)
			if err != nil {
				return err
			}

			g, err := loadSlice(opts, args[0])
			if err != nil {
				return err
			}
			res, err := pipeline.Confidence(g, cfg, points)
			if err != nil {
				return err
			}
			opts.debugf("Confidence interval [%g, %g] after %d iterations (converged: %t)",
				res.Lower, res.Upper, res.Iterations, res.Converged)
			return writeMask(cmd.OutOrStdout(), g, res.Mask, cfg, args[1])
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&seeds, "seed", nil, "seed pixel as x,y (repeatable)")
	f.IntVar(&radius, "radius", 0, "seed neighborhood radius (default from config: 3)")
	f.Float64Var(&multiplier, "multiplier", 0, "interval width in standard deviations (default from config: 3)")
	f.IntVar(&iterations, "iterations", 0, "maximum statistics updates (default from config: 5)")
	smoothing = addSmoothingFlags(cmd)
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func newIsolatedCmd(opts *options) *cobra.Command {
	var (
		seeds1, seeds2 []string
		lower          float64
		smoothing      *smoothingFlags
	)

	cmd := &cobra.Command{
		Use:   "isolated <input> <output>",
		Short: "Grow the largest region from seed1 that does not reach any seed2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			smoothing.apply(cmd, cfg)
			if cmd.Flags().Changed("lower") {
				cfg.Isolated.Lower = lower
			}
			points1, err := parseSeeds(seeds1)
			if err != nil {
				return err
			}
			points2, err := parseSeeds(seeds2)
			if err != nil {
				return err
			}

			g, err := loadSlice(opts, args[0])
			if err != nil {
				return err
			}
			res, err := pipeline.Isolated(g, cfg, points1, points2)
			if err != nil {
				return err
			}
			if !res.Isolated {
				fmt.Fprintf(cmd.OutOrStdout(), "Seed sets are connected at the lower threshold %g\n", cfg.Isolated.Lower)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Isolated value: %g (%d evaluations)\n", res.IsolatedValue, res.Evaluations)
			return writeMask(cmd.OutOrStdout(), g, res.Mask, cfg, args[1])
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&seeds1, "seed1", nil, "seed inside the organ as x,y (repeatable)")
	f.StringArrayVar(&seeds2, "seed2", nil, "seed inside the structure to exclude as x,y (repeatable)")
	f.Float64Var(&lower, "lower", 0, "lowest accepted intensity")
	smoothing = addSmoothingFlags(cmd)
	_ = cmd.MarkFlagRequired("seed1")
	_ = cmd.MarkFlagRequired("seed2")
	return cmd
}

func newWatershedCmd(opts *options) *cobra.Command {
	var threshold, level float64

	cmd := &cobra.Command{
		Use:   "watershed <input> <output>",
		Short: "Segment the gradient magnitude into catchment basins",
		Long: `Segment the gradient magnitude of the slice into catchment basins.

The gradient is computed on the slice as loaded; curvature-flow smoothing is
not applied.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			f := cmd.Flags()
			if f.Changed("threshold") {
				cfg.Watershed.Threshold = threshold
			}
			if f.Changed("level") {
				cfg.Watershed.Level = level
			}

			g, err := loadSlice(opts, args[0])
			if err != nil {
				return err
			}
			res, err := pipeline.Watershed(g, cfg)
			if err != nil {
				return err
			}
			if err := imaging.Save(imaging.ColorizeLabels(res.Labels), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Basins: %d (%d before merging, %d merges) -> %s\n",
				res.Basins, res.InitialBasins, res.Merges, args[1])
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&threshold, "threshold", 0, "fraction of the maximum gradient flattened to zero (default from config: 0.01)")
	f.Float64Var(&level, "level", 0, "fraction of the gradient range merged away (default from config: 0.2)")
	return cmd
}
