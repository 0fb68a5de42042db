package world

import (
	"github.com/gammazero/deque"

	"voxelterrain/internal/block"
)

// Connections records, for each unordered pair of chunk faces, whether the
// faces are joined by a path of non-opaque blocks through the chunk
// (https://tomcc.github.io/2014/08/31/visibility-1.html). A missing
// connection is authoritative; a present one may be a false positive.
type Connections uint16

// connectionBits maps a face pair to its bit. Entry 15 is the unused self pair.
var connectionBits = [faceCount * faceCount]uint16{
	15, 0, 1, 2, 3, 4,
	0, 15, 5, 6, 7, 8,
	1, 5, 15, 9, 10, 11,
	2, 6, 9, 15, 12, 13,
	3, 7, 10, 12, 15, 14,
	4, 8, 11, 13, 14, 15,
}

// AllConnections has every face pair connected.
const AllConnections Connections = 0x7fff

// Connected reports whether light or sight can cross the chunk from face a to
// face b. The relation is symmetric.
func (c Connections) Connected(a, b Face) bool {
	return c&(1<<connectionBits[int(a)*faceCount+int(b)]) != 0
}

// Count returns the number of connected face pairs.
func (c Connections) Count() int {
	n := 0
	for v := c & AllConnections; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// boundary planes walked to seed the flood fills: origin plus two span axes
var boundaryPlanes = [faceCount]struct {
	start [3]int
	u, v  [3]int
}{
	{start: [3]int{0, 0, 0}, u: [3]int{1, 0, 0}, v: [3]int{0, 1, 0}},
	{start: [3]int{0, 0, 0}, u: [3]int{1, 0, 0}, v: [3]int{0, 0, 1}},
	{start: [3]int{0, 0, 0}, u: [3]int{0, 1, 0}, v: [3]int{0, 0, 1}},
	{start: [3]int{0, 0, chunkMask}, u: [3]int{1, 0, 0}, v: [3]int{0, 1, 0}},
	{start: [3]int{0, chunkMask, 0}, u: [3]int{1, 0, 0}, v: [3]int{0, 0, 1}},
	{start: [3]int{chunkMask, 0, 0}, u: [3]int{0, 1, 0}, v: [3]int{0, 0, 1}},
}

// ComputeConnections flood fills the non-opaque cells reachable from every
// boundary cell and connects each pair of faces a single fill escapes through.
// It costs one pass over the chunk volume and is meant to run once per load.
func ComputeConnections(blocks []block.ID, reg *block.Registry) Connections {
	var result Connections
	explored := make([]bool, ChunkVolume)
	var frontier deque.Deque[LocalPosition]

	for _, plane := range boundaryPlanes {
		for v := 0; v < ChunkSize; v++ {
			for u := 0; u < ChunkSize; u++ {
				start := LocalPosition{
					X: plane.start[0] + plane.u[0]*u + plane.v[0]*v,
					Y: plane.start[1] + plane.u[1]*u + plane.v[1]*v,
					Z: plane.start[2] + plane.u[2]*u + plane.v[2]*v,
				}
				idx := start.Index()
				if explored[idx] || reg.IsOpaque(blocks[idx]) {
					continue
				}

				var escaped [faceCount]bool
				frontier.PushBack(start)
				for frontier.Len() > 0 {
					pos := frontier.PopFront()
					if explored[pos.Index()] {
						continue
					}
					explored[pos.Index()] = true

					for f := Face(0); f < faceCount; f++ {
						next, inside := pos.Neighbor(f)
						if !inside {
							escaped[f] = true
							continue
						}
						ni := next.Index()
						if explored[ni] || reg.IsOpaque(blocks[ni]) {
							continue
						}
						frontier.PushBack(next)
					}
				}

				for a := 0; a < faceCount; a++ {
					if !escaped[a] {
						continue
					}
					for b := a + 1; b < faceCount; b++ {
						if escaped[b] {
							result |= 1 << connectionBits[a*faceCount+b]
						}
					}
				}
			}
		}
	}
	return result
}
