package imaging

import (
	"image/color"
	"testing"

	"github.com/ironsheep/ctseg/internal/grid"
)

func TestJet(t *testing.T) {
	// Stops: dark blue at 0, blue at 0.125, red at 0.875, dark red at 1.
	// Values outside [0, 1] clamp.
	tests := []struct {
		t       float64
		r, g, b uint8
	}{
		{-1, 0, 0, 128},
		{0, 0, 0, 128},
		{0.125, 0, 0, 255},
		{0.5, 128, 255, 128},
		{0.875, 255, 0, 0},
		{1, 128, 0, 0},
		{2, 128, 0, 0},
	}

	for _, tt := range tests {
		r, g, b := Jet(tt.t).RGB255()
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("Jet(%g): got (%d,%d,%d), want (%d,%d,%d)", tt.t, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestColorizeLabels(t *testing.T) {
	l := grid.NewLabelGrid(4, 1)
	l.Set(1, 0, 1)
	l.Set(2, 0, 2)
	l.Set(3, 0, 3)

	img := ColorizeLabels(l)
	want := []color.RGBA{
		{0, 0, 0, 255},
		{0, 0, 128, 255},
		{128, 255, 128, 255},
		{128, 0, 0, 255},
	}
	for x, w := range want {
		if got := img.RGBAAt(x, 0); got != w {
			t.Errorf("label %d: got %v, want %v", l.At(x, 0), got, w)
		}
	}
}

func TestColorizeLabels_SingleBasin(t *testing.T) {
	l := grid.NewLabelGrid(2, 2)
	for i := 0; i < 4; i++ {
		l.SetIndex(i, 1)
	}

	img := ColorizeLabels(l)
	if got := img.RGBAAt(1, 1); got != (color.RGBA{0, 0, 128, 255}) {
		t.Errorf("single basin: got %v, want dark blue", got)
	}
}
