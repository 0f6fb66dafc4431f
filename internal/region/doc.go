// Package region implements seeded region growing over a scalar grid.
//
// All growers share one flood-fill core and differ only in the acceptance
// criterion that decides whether a neighboring sample joins the region:
//
//   - ConnectedThreshold: fixed bounds [lower, upper] for the whole run.
//   - ConfidenceConnected: bounds [mean - f*sigma, mean + f*sigma] derived
//     from the region's own statistics, re-estimated over several floods.
//   - IsolatedConnected: fixed lower bound and the tightest upper bound that
//     keeps a second seed set out of the region, found by binary search.
//
// # Flood Fill
//
// The core keeps a flat visited array sized to the grid and a FIFO queue of
// row-major indices. Seeds are enqueued first, in caller order, and are
// always part of the region regardless of their value. Neighbors are visited
// in the fixed order of grid.Connectivity.Offsets, so the traversal, and
// every mask it produces, is reproducible for a fixed input.
//
// # Concurrency
//
// Growers never modify the source grid and own their visited sets and masks,
// so independent runs over the same grid may execute concurrently.
//
// # Errors
//
// Seeds are validated before any work begins: an empty seed list or a bad
// parameter yields grid.ErrInvalidParameter, a seed outside the grid yields
// grid.ErrInvalidSeed. Non-convergence of the confidence iteration is not an
// error; the last mask is returned.
package region
