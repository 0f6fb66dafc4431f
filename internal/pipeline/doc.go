// Package pipeline chains the filters and engines into the segmentation
// programs ctseg runs.
//
// Every region pipeline optionally smooths the slice with curvature flow
// before growing the region, so speckle inside the liver does not stop the
// flood. The watershed pipeline computes the gradient magnitude of the
// unsmoothed slice and floods it; the smoothing settings do not affect it.
//
// Parameters come from a *config.Config; pipelines never read files or
// flags themselves. Batch is the exception: it loads slices and writes
// masks, processing slices concurrently and skipping those that fail.
//
// # Concurrency
//
// The single-slice pipelines are synchronous. Batch runs at most
// config.Batch.Workers slices at once (GOMAXPROCS when 0) using
// golang.org/x/sync/errgroup.
package pipeline
