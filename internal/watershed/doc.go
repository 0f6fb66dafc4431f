// Package watershed partitions a gradient field into labeled catchment
// basins by immersion.
//
// # Overview
//
// Segment treats the field as a relief and floods it from below. Every
// regional minimum starts a basin; where the water of two basins meets, a
// watershed boundary forms. Two fractions control the result:
//
//   - Threshold clamps samples below Threshold*max to 0 before flooding, so
//     weak gradients do not seed spurious basins.
//   - Level merges adjacent basins whose separating ridge is shallower than
//     Level*(max-min), reducing over-segmentation.
//
// # Algorithm
//
//  1. Clamp, then sort pixel indices by (value, index).
//  2. Flood level by level (Vincent-Soille). Pixels of the current level
//     first grow from already labeled basins in geodesic-distance order; a
//     pixel that sees two different basins becomes a boundary pixel. The
//     pixels left over seed new basins, labeled in flooding order.
//  3. Build the basin adjacency graph. The saddle of two basins is the
//     lowest ridge between them.
//  4. Merge greedily: repeatedly take the adjacent pair with the smallest
//     depth, saddle - max(minA, minB), and merge the shallower basin into
//     the deeper one through a union-find, until the smallest depth reaches
//     Level*(max-min).
//  5. Assign every boundary pixel to the neighboring basin whose value is
//     closest to its own, ties going to the lower label.
//  6. Renumber surviving basins densely from 1 in flooding order.
//
// The merge order does not depend on Level, only the stopping point does,
// so the number of basins never increases as Level grows.
//
// # Determinism
//
// No step iterates an unordered collection in a way that affects the
// output: the sort is total, neighbors follow grid.Connectivity.Offsets, and
// the merge queue breaks ties on saddle and label.
//
// # Errors
//
// Non-finite or negative samples yield grid.ErrInvalidGrid. Threshold or
// Level outside [0, 1] yields grid.ErrInvalidParameter. A flat field is
// valid and produces a single basin.
package watershed
