package world

import (
	"fmt"

	"voxelterrain/internal/block"
)

// BlockReader is the read side of chunk block storage used by lighting and
// visibility passes.
type BlockReader interface {
	Block(pos LocalPosition) block.ID
}

// BlockStorage holds the block IDs of one chunk. A chunk made of a single
// block type is kept as one value; anything else is split into ChunkSize
// horizontal layers that are dictionary compressed independently.
type BlockStorage struct {
	uniform block.ID
	layers  []*paletteArray
}

// NewBlockStorage compresses a dense array of ChunkVolume IDs ordered as
// LocalPosition.Index.
func NewBlockStorage(blocks []block.ID) *BlockStorage {
	if len(blocks) != ChunkVolume {
		panic(fmt.Sprintf("block array has %d entries, want %d", len(blocks), ChunkVolume))
	}
	first := blocks[0]
	uniform := true
	for _, id := range blocks {
		if id != first {
			uniform = false
			break
		}
	}
	if uniform {
		return NewUniformBlockStorage(first)
	}

	s := &BlockStorage{layers: make([]*paletteArray, ChunkSize)}
	for y := 0; y < ChunkSize; y++ {
		layer := newPaletteArray(ChunkArea, blocks[LocalPosition{Y: y}.Index()])
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				layer.Set(layerIndex(x, z), blocks[LocalPosition{X: x, Y: y, Z: z}.Index()])
			}
		}
		s.layers[y] = layer
	}
	return s
}

// NewUniformBlockStorage returns storage where every block is id.
func NewUniformBlockStorage(id block.ID) *BlockStorage {
	return &BlockStorage{uniform: id}
}

func layerIndex(x, z int) int {
	return z*ChunkSize + x
}

// Block returns the ID at pos. Positions outside the chunk panic.
func (s *BlockStorage) Block(pos LocalPosition) block.ID {
	if !inChunk(pos.X, pos.Y, pos.Z) {
		panic(fmt.Sprintf("block position %+v outside chunk", pos))
	}
	if s.layers == nil {
		return s.uniform
	}
	return s.layers[pos.Y].Get(layerIndex(pos.X, pos.Z))
}

// SetBlock stores id at pos, growing the layer palette when needed.
func (s *BlockStorage) SetBlock(pos LocalPosition, id block.ID) {
	if !inChunk(pos.X, pos.Y, pos.Z) {
		panic(fmt.Sprintf("block position %+v outside chunk", pos))
	}
	if s.layers == nil {
		if id == s.uniform {
			return
		}
		s.layers = make([]*paletteArray, ChunkSize)
		for y := range s.layers {
			s.layers[y] = newPaletteArray(ChunkArea, s.uniform)
		}
	}
	s.layers[pos.Y].Set(layerIndex(pos.X, pos.Z), id)
}

// Uniform reports whether the whole chunk is still stored as one value.
func (s *BlockStorage) Uniform() (block.ID, bool) {
	if s.layers == nil {
		return s.uniform, true
	}
	return 0, false
}

// BlockArray expands the storage into a dense array ordered as
// LocalPosition.Index, suitable for handing to another goroutine.
func (s *BlockStorage) BlockArray() []block.ID {
	out := make([]block.ID, ChunkVolume)
	if s.layers == nil {
		if s.uniform != 0 {
			for i := range out {
				out[i] = s.uniform
			}
		}
		return out
	}
	for y, layer := range s.layers {
		if id, ok := layer.Uniform(); ok {
			for z := 0; z < ChunkSize; z++ {
				row := LocalPosition{Y: y, Z: z}.Index()
				for x := 0; x < ChunkSize; x++ {
					out[row+x] = id
				}
			}
			continue
		}
		for z := 0; z < ChunkSize; z++ {
			row := LocalPosition{Y: y, Z: z}.Index()
			for x := 0; x < ChunkSize; x++ {
				out[row+x] = layer.Get(layerIndex(x, z))
			}
		}
	}
	return out
}
