package world

import (
	"github.com/gammazero/deque"

	"voxelterrain/internal/block"
	"voxelterrain/internal/light"
)

// SideLight is the light of the boundary layer of a chunk on one face. Cell
// (u, v) is stored at u + ChunkSize*v, where u and v run along the two axes
// following the face normal axis in x, y, z order. Both chunks sharing a
// boundary therefore agree on the layout.
type SideLight struct {
	Emitted [ChunkArea]light.Emitted
	Sky     [ChunkArea]light.Sky
}

// sidePosition returns the boundary cell (u, v) of face f.
func sidePosition(f Face, u, v int) LocalPosition {
	var c [3]int
	axis := f.Axis()
	if f.Positive() {
		c[axis] = chunkMask
	}
	c[(axis+1)%3] = u
	c[(axis+2)%3] = v
	return LocalPosition{X: c[0], Y: c[1], Z: c[2]}
}

func extractSide(store *LightStore, f Face) *SideLight {
	side := &SideLight{}
	for v := 0; v < ChunkSize; v++ {
		for u := 0; u < ChunkSize; u++ {
			pos := sidePosition(f, u, v)
			side.Emitted[u+ChunkSize*v] = store.Emitted(pos)
			side.Sky[u+ChunkSize*v] = store.Sky(pos)
		}
	}
	return side
}

// seedEmitted queues every emitter plus the light entering from neighbouring
// chunks. sides[f] is the side of the neighbour across face f that touches
// this chunk, or nil when that neighbour is not loaded.
func seedEmitted(queue *deque.Deque[EmittedStep], blocks BlockReader, reg *block.Registry, sides *[faceCount]*SideLight) {
	for i := 0; i < ChunkVolume; i++ {
		pos := LocalFromIndex(i)
		if id := blocks.Block(pos); reg.Emits(id) {
			queue.PushBack(EmittedStep{Position: pos, Light: emissionOf(reg, id)})
		}
	}

	for f := Face(0); f < faceCount; f++ {
		side := sides[f]
		if side == nil {
			continue
		}
		for v := 0; v < ChunkSize; v++ {
			for u := 0; u < ChunkSize; u++ {
				l := side.Emitted[u+ChunkSize*v].Decrement()
				if l == light.NoEmitted {
					continue
				}
				pos := sidePosition(f, u, v)
				if reg.IsTransparentInDirection(blocks.Block(pos), int(f)) {
					queue.PushBack(EmittedStep{Position: pos, Light: l})
				}
			}
		}
	}
}

// seedSky queues skylight entering the chunk. With nothing loaded above, the
// top layer is treated as open sky.
func seedSky(queue *deque.Deque[SkyStep], blocks BlockReader, reg *block.Registry, sides *[faceCount]*SideLight) {
	for f := Face(0); f < faceCount; f++ {
		side := sides[f]
		if side == nil && f != FacePosY {
			continue
		}
		for v := 0; v < ChunkSize; v++ {
			for u := 0; u < ChunkSize; u++ {
				var l light.Sky
				switch {
				case side == nil:
					l = light.FullSky
				case f == FacePosY:
					l = side.Sky[u+ChunkSize*v]
				default:
					l = side.Sky[u+ChunkSize*v].Decrement()
				}
				if l == light.NoSky {
					continue
				}
				pos := sidePosition(f, u, v)
				if reg.IsTransparentInDirection(blocks.Block(pos), int(f)) {
					queue.PushBack(SkyStep{Position: pos, Light: l})
				}
			}
		}
	}
}
