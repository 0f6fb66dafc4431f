package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/ctseg/internal/grid"
)

// EncodedImage contains an output image encoded as base64 PNG.
type EncodedImage struct {
	// Width of the image in pixels.
	Width int `json:"width"`

	// Height of the image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodePNG encodes an image as a base64 PNG for transport in tool results.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Save writes an image to path. The format follows the file extension
// (.png, .jpg, .gif, .tif, .bmp).
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// MaskImage renders a region mask as an 8-bit image: region pixels take the
// replace value, all others are 0.
func MaskImage(m *grid.Mask, replace uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.At(x, y) {
				img.SetGray(x, y, color.Gray{Y: replace})
			}
		}
	}
	return img
}

// RescaleImage maps a grid linearly onto the full 16-bit range, the lowest
// sample to 0 and the highest to 65535. A constant grid renders black.
//
// Smoothed and gradient grids hold values outside any pixel type; this is
// how they are written out for inspection.
func RescaleImage(g *grid.Grid) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, g.Width(), g.Height()))
	lo, hi := g.Range()
	if hi <= lo {
		return img
	}

	scale := 65535 / (hi - lo)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			v := math.Round((g.At(x, y) - lo) * scale)
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return img
}

// DefaultOverlayTint is the color used by OverlayMask when none is given.
const DefaultOverlayTint = "#ff3030"

// OverlayMask renders the slice in grayscale and blends a tinted copy of the
// mask over it.
//
// Parameters:
//   - g: The slice the mask was grown on. Rescaled to full contrast.
//   - m: Region mask with g's dimensions.
//   - tintHex: Mask color as "#RRGGBB". Empty uses DefaultOverlayTint.
//   - opacity: Blend factor in [0, 1].
func OverlayMask(g *grid.Grid, m *grid.Mask, tintHex string, opacity float64) (*image.NRGBA, error) {
	if g.Width() != m.Width() || g.Height() != m.Height() {
		return nil, fmt.Errorf("%w: mask %dx%d does not match slice %dx%d",
			grid.ErrInvalidGrid, m.Width(), m.Height(), g.Width(), g.Height())
	}
	if opacity < 0 || opacity > 1 {
		return nil, fmt.Errorf("%w: opacity %g outside [0, 1]", grid.ErrInvalidParameter, opacity)
	}
	if tintHex == "" {
		tintHex = DefaultOverlayTint
	}
	tint, err := colorful.Hex(tintHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tint %q", grid.ErrInvalidParameter, tintHex)
	}

	base := imaging.Clone(RescaleImage(g))
	r, gr, b := tint.RGB255()
	layer := imaging.Clone(base)
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.At(x, y) {
				layer.SetNRGBA(x, y, color.NRGBA{R: r, G: gr, B: b, A: 255})
			}
		}
	}
	return imaging.Overlay(base, layer, image.Pt(0, 0), opacity), nil
}
