package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ctseg/internal/pipeline"
	"github.com/ironsheep/ctseg/internal/server"
)

func newBatchCmd(opts *options) *cobra.Command {
	var (
		seeds        []string
		lower, upper float64
		workers      int
		smoothing    *smoothingFlags
	)

	cmd := &cobra.Command{
		Use:   "batch <output-pattern> <input>...",
		Short: "Run connected-threshold segmentation over many slices",
		Long: `Run connected-threshold segmentation over many slices with the same seeds
and thresholds. The mask of the i-th input (counting from 0) is written to the
output pattern with i inserted before the extension: out/liver.png becomes
out/liver0.png, out/liver1.png, ...

Slices that fail are reported and skipped.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			smoothing.apply(cmd, cfg)
			f := cmd.Flags()
			if f.Changed("lower") {
				cfg.Threshold.Lower = lower
			}
			if f.Changed("upper") {
				cfg.Threshold.Upper = upper
			}
			if f.Changed("workers") {
				cfg.Batch.Workers = workers
			}
			points, err := parseSeeds(seeds)
			if err != nil {
				return err
			}

			report, err := pipeline.Batch(cmd.Context(), cfg, pipeline.BatchJob{
				Inputs: args[1:],
				Output: args[0],
				Seeds:  points,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Segmented %d of %d slices\n", len(report.Written), len(args)-1)
			for _, failure := range report.Failed {
				fmt.Fprintf(out, "  failed: %s: %v\n", failure.Input, failure.Err)
			}
			if len(report.Written) == 0 {
				return fmt.Errorf("no slice could be segmented")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&seeds, "seed", nil, "seed pixel as x,y (repeatable)")
	f.Float64Var(&lower, "lower", 0, "lowest accepted intensity")
	f.Float64Var(&upper, "upper", 0, "highest accepted intensity")
	f.IntVar(&workers, "workers", 0, "slices processed concurrently (0 = GOMAXPROCS)")
	smoothing = addSmoothingFlags(cmd)
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdin/stdout",
		Long: `Run the MCP server over stdin/stdout.

The server exposes slice inspection, region growing, watershed and region
measurement tools. Tool parameters that a call omits come from --config.
Configure it in your MCP client as the command "ctseg serve".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.debugf("Starting MCP server")
			srv := server.NewWithConfig(opts.cfg, Version)
			if err := srv.Run(); err != nil {
				log.Printf("Server error: %v", err)
				return err
			}
			return nil
		},
	}
}
