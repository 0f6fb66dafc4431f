package watershed

import (
	"cmp"
	"math"
	"slices"
)

// Pixel states during flooding. Basin labels are positive.
const (
	stateInit     int32 = -1
	stateMask     int32 = -2
	stateBoundary int32 = 0
)

// fictitious separates distance waves in the flooding queue.
const fictitious = -1

// lattice describes the pixel neighborhood of a width x height grid.
type lattice struct {
	width, height int
	offsets       [][2]int
}

// neighbors appends the in-bounds neighbor indices of i to buf.
func (lt lattice) neighbors(i int, buf []int) []int {
	x, y := i%lt.width, i/lt.width
	for _, d := range lt.offsets {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= lt.width || ny < 0 || ny >= lt.height {
			continue
		}
		buf = append(buf, ny*lt.width+nx)
	}
	return buf
}

// immerse floods values in ascending order.
//
// Returns one label per pixel (0 for boundary pixels) and the value at which
// each basin was created, indexed by label. minima[0] is unused.
func (lt lattice) immerse(values []float64) (labels []uint32, minima []float64) {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(values[a], values[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	lab := make([]int32, n)
	for i := range lab {
		lab[i] = stateInit
	}
	dist := make([]int32, n)
	minima = []float64{0}
	queue := make([]int, 0, 64)
	var nb []int

	for start := 0; start < n; {
		h := values[order[start]]
		end := start
		for end < n && values[order[end]] == h {
			end++
		}
		level := order[start:end]
		start = end

		// Pixels of this level next to flooded ground start the first wave.
		queue = queue[:0]
		for _, p := range level {
			lab[p] = stateMask
			nb = lt.neighbors(p, nb[:0])
			for _, q := range nb {
				if lab[q] >= stateBoundary {
					dist[p] = 1
					queue = append(queue, p)
					break
				}
			}
		}

		curDist := int32(1)
		queue = append(queue, fictitious)
		for head := 0; ; {
			p := queue[head]
			head++
			if p == fictitious {
				if head == len(queue) {
					break
				}
				queue = append(queue, fictitious)
				curDist++
				p = queue[head]
				head++
			}

			nb = lt.neighbors(p, nb[:0])
			lab[p] = settle(nb, lab, dist, curDist)
			for _, q := range nb {
				if lab[q] == stateMask && dist[q] == 0 {
					dist[q] = curDist + 1
					queue = append(queue, q)
				}
			}
		}

		// Whatever is still masked is a new regional minimum.
		for _, p := range level {
			dist[p] = 0
			if lab[p] != stateMask {
				continue
			}
			minima = append(minima, h)
			label := int32(len(minima) - 1)
			lab[p] = label
			queue = append(queue[:0], p)
			for k := 0; k < len(queue); k++ {
				nb = lt.neighbors(queue[k], nb[:0])
				for _, q := range nb {
					if lab[q] == stateMask {
						lab[q] = label
						queue = append(queue, q)
					}
				}
			}
		}
	}

	labels = make([]uint32, n)
	for i, l := range lab {
		if l > 0 {
			labels[i] = uint32(l)
		}
	}
	return labels, minima
}

// settle decides the state of a pixel reached in wave curDist from its
// neighbors settled in earlier waves or levels.
func settle(nb []int, lab, dist []int32, curDist int32) int32 {
	label := stateBoundary
	for _, q := range nb {
		if dist[q] >= curDist || lab[q] <= stateBoundary {
			continue
		}
		if label == stateBoundary {
			label = lab[q]
		} else if label != lab[q] {
			return stateBoundary
		}
	}
	return label
}

// resolveBoundaries returns a copy of labels in which every 0 entry takes
// the label of the neighbor whose value is closest to its own, ties going
// to the lower label. Each pass reads the previous pass's labels only, so
// the result does not depend on visiting order.
func (lt lattice) resolveBoundaries(labels []uint32, values []float64) []uint32 {
	out := slices.Clone(labels)
	var pending []int
	for i, l := range out {
		if l == 0 {
			pending = append(pending, i)
		}
	}

	type assignment struct {
		i     int
		label uint32
	}
	var nb []int
	for len(pending) > 0 {
		var assigned []assignment
		var next []int
		for _, p := range pending {
			best, bestDiff := uint32(0), math.Inf(1)
			nb = lt.neighbors(p, nb[:0])
			for _, q := range nb {
				l := out[q]
				if l == 0 {
					continue
				}
				d := math.Abs(values[q] - values[p])
				if d < bestDiff || (d == bestDiff && l < best) {
					best, bestDiff = l, d
				}
			}
			if best == 0 {
				next = append(next, p)
				continue
			}
			assigned = append(assigned, assignment{p, best})
		}
		if len(assigned) == 0 {
			break
		}
		for _, a := range assigned {
			out[a.i] = a.label
		}
		pending = next
	}
	return out
}
