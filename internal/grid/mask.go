package grid

import "image"

// Mask is a binary region of the same dimensions as the grid it was grown
// on. It is created fresh per run and owned by the caller afterwards.
type Mask struct {
	width, height int
	bits          []bool
}

// NewMask creates an empty mask.
func NewMask(width, height int) *Mask {
	return &Mask{width: width, height: height, bits: make([]bool, width*height)}
}

// Width returns the number of columns.
func (m *Mask) Width() int { return m.width }

// Height returns the number of rows.
func (m *Mask) Height() int { return m.height }

// At reports whether (x, y) is in the region.
func (m *Mask) At(x, y int) bool { return m.bits[y*m.width+x] }

// AtIndex reports whether the row-major index i is in the region.
func (m *Mask) AtIndex(i int) bool { return m.bits[i] }

// Set adds or removes (x, y).
func (m *Mask) Set(x, y int, v bool) { m.bits[y*m.width+x] = v }

// SetIndex adds or removes the row-major index i.
func (m *Mask) SetIndex(i int, v bool) { m.bits[i] = v }

// Count returns the number of pixels in the region.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Equal reports whether both masks have the same dimensions and pixels.
func (m *Mask) Equal(o *Mask) bool {
	if m.width != o.width || m.height != o.height {
		return false
	}
	for i := range m.bits {
		if m.bits[i] != o.bits[i] {
			return false
		}
	}
	return true
}

// Points returns the region's pixels in row-major order.
func (m *Mask) Points() []Point {
	pts := make([]Point, 0, m.Count())
	for i, b := range m.bits {
		if b {
			pts = append(pts, Point{X: i % m.width, Y: i / m.width})
		}
	}
	return pts
}

// Bounds returns the bounding box of the region with an exclusive maximum,
// or the empty rectangle if the region is empty.
func (m *Mask) Bounds() image.Rectangle {
	minX, minY := m.width, m.height
	maxX, maxY := -1, -1
	for i, b := range m.bits {
		if !b {
			continue
		}
		x, y := i%m.width, i/m.width
		minX = min(minX, x)
		minY = min(minY, y)
		maxX = max(maxX, x)
		maxY = max(maxY, y)
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Bytes returns the region as one byte per pixel (1 = in region), row-major.
func (m *Mask) Bytes() []byte {
	out := make([]byte, len(m.bits))
	for i, b := range m.bits {
		if b {
			out[i] = 1
		}
	}
	return out
}
