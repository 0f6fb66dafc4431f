package imaging

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/ctseg/internal/grid"
)

// jetStops are the control points of the Jet colormap: dark blue through
// cyan, yellow and red to dark red.
var jetStops = []struct {
	pos float64
	col colorful.Color
}{
	{0, colorful.Color{R: 0, G: 0, B: 0.5}},
	{0.125, colorful.Color{R: 0, G: 0, B: 1}},
	{0.375, colorful.Color{R: 0, G: 1, B: 1}},
	{0.625, colorful.Color{R: 1, G: 1, B: 0}},
	{0.875, colorful.Color{R: 1, G: 0, B: 0}},
	{1, colorful.Color{R: 0.5, G: 0, B: 0}},
}

// Jet returns the Jet colormap color at t, clamped to [0, 1].
func Jet(t float64) colorful.Color {
	if t <= 0 {
		return jetStops[0].col
	}
	for i := 1; i < len(jetStops); i++ {
		lo, hi := jetStops[i-1], jetStops[i]
		if t <= hi.pos {
			return lo.col.BlendRgb(hi.col, (t-lo.pos)/(hi.pos-lo.pos))
		}
	}
	return jetStops[len(jetStops)-1].col
}

// ColorizeLabels renders a label grid with the Jet colormap.
//
// Label 0 is black. Labels 1..max are spread evenly over the colormap, so
// label 1 is dark blue and the highest label dark red. A grid whose only
// label is 1 renders dark blue.
func ColorizeLabels(l *grid.LabelGrid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, l.Width(), l.Height()))
	top := l.Max()

	palette := make([]color.RGBA, top+1)
	palette[0] = color.RGBA{A: 255}
	for label := uint32(1); label <= top; label++ {
		t := 0.0
		if top > 1 {
			t = float64(label-1) / float64(top-1)
		}
		r, g, b := Jet(t).RGB255()
		palette[label] = color.RGBA{R: r, G: g, B: b, A: 255}
	}

	for y := 0; y < l.Height(); y++ {
		for x := 0; x < l.Width(); x++ {
			img.SetRGBA(x, y, palette[l.At(x, y)])
		}
	}
	return img
}
