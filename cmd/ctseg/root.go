package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ctseg/internal/config"
	"github.com/ironsheep/ctseg/internal/grid"
)

// logLevelEnv enables debug logging when set to "debug".
const logLevelEnv = "CTSEG_LOG_LEVEL"

// options holds the flags shared by all subcommands.
type options struct {
	configPath   string
	connectivity string
	verbose      bool
	noSmooth     bool

	cfg *config.Config
}

func (o *options) debugf(format string, args ...any) {
	if o.verbose {
		log.Printf(format, args...)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "ctseg",
		Short:         "Liver segmentation for CT slices",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv(logLevelEnv) == "debug" {
				opts.verbose = true
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.debugf("ctseg v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "JSON parameter file (fields not set keep their defaults)")
	pf.StringVar(&opts.connectivity, "connectivity", "", "pixel connectivity: 4 or 8")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging (also "+logLevelEnv+"=debug)")
	pf.BoolVar(&opts.noSmooth, "no-smooth", false, "skip curvature-flow smoothing")

	root.AddCommand(
		newConnectedCmd(opts),
		newConfidenceCmd(opts),
		newIsolatedCmd(opts),
		newWatershedCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the parameter file, if any, and applies the global flags
// that were set on the command line.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		opts.debugf("Loaded parameters from %s", opts.configPath)
	}

	if opts.connectivity != "" {
		cfg.Connectivity = opts.connectivity
	}
	if opts.noSmooth {
		cfg.Smoothing.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ctseg %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

// parseSeeds converts "x,y" flag values to points.
func parseSeeds(values []string) ([]grid.Point, error) {
	seeds := make([]grid.Point, 0, len(values))
	for _, v := range values {
		xs, ys, ok := strings.Cut(v, ",")
		if !ok {
			return nil, fmt.Errorf("%w: seed %q must be x,y", grid.ErrInvalidParameter, v)
		}
		x, errX := strconv.Atoi(strings.TrimSpace(xs))
		y, errY := strconv.Atoi(strings.TrimSpace(ys))
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: seed %q must be integer x,y", grid.ErrInvalidParameter, v)
		}
		seeds = append(seeds, grid.Point{X: x, Y: y})
	}
	return seeds, nil
}
