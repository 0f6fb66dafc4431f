package grid

// LabelGrid holds one catchment label per pixel. Label 0 means unassigned.
type LabelGrid struct {
	width, height int
	labels        []uint32
}

// NewLabelGrid creates a grid with every pixel unassigned.
func NewLabelGrid(width, height int) *LabelGrid {
	return &LabelGrid{width: width, height: height, labels: make([]uint32, width*height)}
}

// Width returns the number of columns.
func (l *LabelGrid) Width() int { return l.width }

// Height returns the number of rows.
func (l *LabelGrid) Height() int { return l.height }

// At returns the label at (x, y).
func (l *LabelGrid) At(x, y int) uint32 { return l.labels[y*l.width+x] }

// AtIndex returns the label at a row-major index.
func (l *LabelGrid) AtIndex(i int) uint32 { return l.labels[i] }

// Set assigns a label at (x, y).
func (l *LabelGrid) Set(x, y int, label uint32) { l.labels[y*l.width+x] = label }

// SetIndex assigns a label at a row-major index.
func (l *LabelGrid) SetIndex(i int, label uint32) { l.labels[i] = label }

// Labels returns a copy of the row-major labels.
func (l *LabelGrid) Labels() []uint32 {
	out := make([]uint32, len(l.labels))
	copy(out, l.labels)
	return out
}

// Max returns the largest label present.
func (l *LabelGrid) Max() uint32 {
	var m uint32
	for _, v := range l.labels {
		m = max(m, v)
	}
	return m
}

// Counts returns the number of pixels per label, indexed by label.
func (l *LabelGrid) Counts() []int {
	counts := make([]int, l.Max()+1)
	for _, v := range l.labels {
		counts[v]++
	}
	return counts
}

// Mask returns the pixels carrying the given label.
func (l *LabelGrid) Mask(label uint32) *Mask {
	m := NewMask(l.width, l.height)
	for i, v := range l.labels {
		if v == label {
			m.bits[i] = true
		}
	}
	return m
}
