// Package imaging connects segmentation grids to image files and pictures.
//
// It is the boundary between decoded slices and the numeric core: slices come
// in through ImageCache and LoadGrid, results go out as images through
// MaskImage, RescaleImage, ColorizeLabels and OverlayMask, and are written
// with Save or encoded for transport with EncodePNG. MeasureRegion,
// SampleValues and Histogram summarize slices and masks for choosing seeds
// and thresholds.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Value Domain
//
// LoadGrid keeps grayscale samples as stored: 16-bit PNG and TIFF slices give
// values in 0-65535, 8-bit grayscale slices 0-255. Color images are reduced
// to 8-bit luminance. Grids are always integer-valued.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and allocate their outputs.
//
// # Colormap
//
// ColorizeLabels uses the Jet colormap (dark blue, blue, cyan, yellow, red,
// dark red) spread over the label range, with label 0 rendered black.
package imaging
