// Package grid defines the in-memory data model shared by the segmentation
// engines: scalar pixel grids, binary region masks and watershed label grids.
//
// # Coordinate System
//
// All coordinates are 0-based with the origin at the top-left sample:
//   - X: column index, 0 <= X < Width
//   - Y: row index, 0 <= Y < Height
//
// Samples are stored row-major in a single flat slice, so the linear index of
// (x, y) is y*Width + x. Engines work on these indices directly and keep
// their visited sets and frontiers as flat arrays of the same length.
//
// # Value Domain
//
// A Grid carries a Kind. KindInteger grids hold whole numbers (CT
// Hounsfield units, 8/16-bit intensities) and round every stored value to the
// nearest integer; KindFloat grids hold arbitrary finite float64 samples
// (smoothed slices, gradient fields). The kind matters to algorithms that
// reason about "the next representable value", such as the isolated-connected
// threshold search.
//
// # Ownership
//
// Grids, masks and label grids own their buffers exclusively. Constructors
// copy caller-supplied slices and accessors such as Values return copies, so
// a grid handed to an engine can never be mutated behind its back.
//
// # Errors
//
// The error kinds reported by every package of the toolkit are declared here
// as sentinels. Callers test for them with errors.Is; the returned errors
// carry context wrapped around the sentinel.
package grid
