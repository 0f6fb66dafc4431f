package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/ctseg/internal/config"
	"github.com/ironsheep/ctseg/internal/grid"
	"github.com/ironsheep/ctseg/internal/imaging"
)

// BatchJob describes a connected-threshold run over many slices with the
// same seeds.
type BatchJob struct {
	// Inputs are slice image paths.
	Inputs []string

	// Output is the naming pattern for masks. The mask of Inputs[i] is
	// written to OutputName(Output, i).
	Output string

	Seeds []grid.Point
}

// BatchFailure records a slice that could not be segmented.
type BatchFailure struct {
	Input string
	Err   error
}

// BatchReport lists the results of a batch in input order.
type BatchReport struct {
	// Written holds the mask paths that were saved.
	Written []string

	// Failed holds the slices that were skipped.
	Failed []BatchFailure
}

// OutputName returns the path for the i-th mask of a batch: the pattern's
// extension is kept and i is inserted before it, so "out/liver.png" yields
// "out/liver0.png", "out/liver1.png" and so on. A pattern without an
// extension gets ".png".
func OutputName(pattern string, i int) string {
	ext := filepath.Ext(pattern)
	stem := strings.TrimSuffix(pattern, ext)
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("%s%d%s", stem, i, ext)
}

// Batch segments every input slice with Connected and writes the masks.
//
// A slice that fails to load, segment or save is logged and skipped; the
// other slices are still processed. Batch itself only fails for an invalid
// job or configuration, or when ctx is canceled.
func Batch(ctx context.Context, cfg *config.Config, job BatchJob) (*BatchReport, error) {
	if len(job.Inputs) == 0 {
		return nil, fmt.Errorf("%w: no input slices", grid.ErrInvalidParameter)
	}
	if job.Output == "" {
		return nil, fmt.Errorf("%w: no output pattern", grid.ErrInvalidParameter)
	}
	if len(job.Seeds) == 0 {
		return nil, fmt.Errorf("%w: no seeds", grid.ErrInvalidParameter)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	workers := cfg.Batch.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	cache := imaging.NewImageCache()
	replace := uint8(cfg.Output.ReplaceValue)
	written := make([]string, len(job.Inputs))
	failures := make([]error, len(job.Inputs))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, input := range job.Inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			out := OutputName(job.Output, i)
			if err := segmentSlice(cache, cfg, input, out, job.Seeds, replace); err != nil {
				log.Printf("Skipping slice %s: %v", input, err)
				failures[i] = err
				return nil
			}
			written[i] = out

			n := done.Add(1)
			log.Printf("Segmented %s -> %s (%d/%d)", input, out, n, len(job.Inputs))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch interrupted: %w", err)
	}

	report := &BatchReport{}
	for i, input := range job.Inputs {
		if failures[i] != nil {
			report.Failed = append(report.Failed, BatchFailure{Input: input, Err: failures[i]})
			continue
		}
		report.Written = append(report.Written, written[i])
	}
	return report, nil
}

func segmentSlice(cache *imaging.ImageCache, cfg *config.Config, input, output string, seeds []grid.Point, replace uint8) error {
	defer cache.Evict(input)

	g, err := imaging.LoadGrid(cache, input)
	if err != nil {
		return err
	}
	res, err := Connected(g, cfg, seeds)
	if err != nil {
		return err
	}
	return imaging.Save(imaging.MaskImage(res.Mask, replace), output)
}
