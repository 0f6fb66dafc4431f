package watershed

import (
	"cmp"
	"container/heap"
	"math"
)

// merger joins adjacent basins in order of increasing depth.
//
// Basins are nodes of a union-find keyed by label. Only roots carry
// adjacency; when a basin is absorbed, its edges move to the survivor with
// the lower of the two saddles kept.
type merger struct {
	parent  []uint32
	minimum []float64
	adj     []map[uint32]float64
	pq      pairPQ
}

func newMerger(minima []float64) *merger {
	m := &merger{
		parent:  make([]uint32, len(minima)),
		minimum: minima,
		adj:     make([]map[uint32]float64, len(minima)),
	}
	for l := range m.parent {
		m.parent[l] = uint32(l)
		m.adj[l] = make(map[uint32]float64)
	}
	return m
}

// find returns the root label of l, halving the path on the way.
func (m *merger) find(l uint32) uint32 {
	for m.parent[l] != l {
		m.parent[l] = m.parent[m.parent[l]]
		l = m.parent[l]
	}
	return l
}

// link records a ridge of height saddle between roots a and b, keeping the
// lowest ridge seen.
func (m *merger) link(a, b uint32, saddle float64) {
	if cur, ok := m.adj[a][b]; ok && cur <= saddle {
		return
	}
	m.adj[a][b] = saddle
	m.adj[b][a] = saddle
}

func (m *merger) depth(a, b uint32) float64 {
	return m.adj[a][b] - math.Max(m.minimum[a], m.minimum[b])
}

func (m *merger) push(a, b uint32) {
	if a > b {
		a, b = b, a
	}
	heap.Push(&m.pq, basinPair{a: a, b: b, saddle: m.adj[a][b], depth: m.depth(a, b)})
}

// run merges pairs while the shallowest depth is below limit and returns the
// number of merges.
//
// Stale queue entries are skipped lazily: an entry is current only while
// both basins are roots and its saddle and depth match the adjacency.
func (m *merger) run(limit float64) int {
	for a := range m.adj {
		for b := range m.adj[a] {
			if uint32(a) < b {
				m.pq = append(m.pq, basinPair{a: uint32(a), b: b, saddle: m.adj[a][b], depth: m.depth(uint32(a), b)})
			}
		}
	}
	heap.Init(&m.pq)

	merges := 0
	for m.pq.Len() > 0 {
		top := heap.Pop(&m.pq).(basinPair)
		if !m.current(top) {
			continue
		}
		if top.depth >= limit {
			break
		}
		m.merge(top.a, top.b)
		merges++
	}
	return merges
}

func (m *merger) current(p basinPair) bool {
	if m.parent[p.a] != p.a || m.parent[p.b] != p.b {
		return false
	}
	saddle, ok := m.adj[p.a][p.b]
	return ok && saddle == p.saddle && m.depth(p.a, p.b) == p.depth
}

// merge absorbs the shallower of two adjacent roots into the deeper one.
// The basin with the lower minimum survives, the lower label on a tie.
func (m *merger) merge(a, b uint32) {
	winner, loser := a, b
	if m.minimum[b] < m.minimum[a] || (m.minimum[b] == m.minimum[a] && b < a) {
		winner, loser = b, a
	}
	m.parent[loser] = winner

	for n, s := range m.adj[loser] {
		delete(m.adj[n], loser)
		if n != winner {
			m.link(winner, n, s)
		}
	}
	m.adj[loser] = nil

	for n := range m.adj[winner] {
		m.push(winner, n)
	}
}

// basinPair is a merge candidate. a < b always.
type basinPair struct {
	a, b   uint32
	saddle float64
	depth  float64
}

// pairPQ is a min-heap of basinPair ordered by depth, then saddle, then
// labels, so equal depths pop in a fixed order.
type pairPQ []basinPair

func (pq pairPQ) Len() int { return len(pq) }

func (pq pairPQ) Less(i, j int) bool {
	x, y := pq[i], pq[j]
	if c := cmp.Compare(x.depth, y.depth); c != 0 {
		return c < 0
	}
	if c := cmp.Compare(x.saddle, y.saddle); c != 0 {
		return c < 0
	}
	if x.a != y.a {
		return x.a < y.a
	}
	return x.b < y.b
}

func (pq pairPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *pairPQ) Push(x any) { *pq = append(*pq, x.(basinPair)) }

func (pq *pairPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
