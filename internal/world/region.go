package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	ChunkSize     = 32
	ChunkSizeLog2 = 5
	ChunkArea     = ChunkSize * ChunkSize
	ChunkVolume   = ChunkArea * ChunkSize

	chunkMask = ChunkSize - 1
)

// ChunkPosition identifies a chunk in chunk space.
type ChunkPosition struct {
	X int
	Y int
	Z int
}

// LocalPosition is a block position inside one chunk. Every component is in
// [0, ChunkSize).
type LocalPosition struct {
	X int
	Y int
	Z int
}

// GlobalPosition describes a block position in world block space.
type GlobalPosition struct {
	X int
	Y int
	Z int
}

func (c ChunkPosition) Add(o ChunkPosition) ChunkPosition {
	return ChunkPosition{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

func (c ChunkPosition) Sub(o ChunkPosition) ChunkPosition {
	return ChunkPosition{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

// Neighbor returns the adjacent chunk across the given face.
func (c ChunkPosition) Neighbor(f Face) ChunkPosition {
	n := f.Normal()
	return ChunkPosition{X: c.X + n[0], Y: c.Y + n[1], Z: c.Z + n[2]}
}

func (c ChunkPosition) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}
}

// Origin returns the global position of the chunk's lowest corner block.
func (c ChunkPosition) Origin() GlobalPosition {
	return GlobalPosition{X: c.X << ChunkSizeLog2, Y: c.Y << ChunkSizeLog2, Z: c.Z << ChunkSizeLog2}
}

func (c ChunkPosition) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// ChunkContaining returns the chunk that holds the world-space point p.
func ChunkContaining(p mgl32.Vec3) ChunkPosition {
	return ChunkPosition{
		X: floorDiv(floorInt(p[0]), ChunkSize),
		Y: floorDiv(floorInt(p[1]), ChunkSize),
		Z: floorDiv(floorInt(p[2]), ChunkSize),
	}
}

// NewLocalPosition builds a local position and panics when a component lies
// outside the chunk.
func NewLocalPosition(x, y, z int) LocalPosition {
	if !inChunk(x, y, z) {
		panic(fmt.Sprintf("local position (%d,%d,%d) outside chunk", x, y, z))
	}
	return LocalPosition{X: x, Y: y, Z: z}
}

// LocalFromIndex is the inverse of LocalPosition.Index.
func LocalFromIndex(index int) LocalPosition {
	if index < 0 || index >= ChunkVolume {
		panic(fmt.Sprintf("block index %d outside chunk", index))
	}
	return LocalPosition{
		X: index & chunkMask,
		Y: (index >> ChunkSizeLog2) & chunkMask,
		Z: (index >> (2 * ChunkSizeLog2)) & chunkMask,
	}
}

// Index flattens the position into the dense block array ordering: x varies
// fastest, then y, then z.
func (l LocalPosition) Index() int {
	return l.Z*ChunkArea + l.Y*ChunkSize + l.X
}

// Neighbor returns the adjacent position across face f and whether it is
// still inside the chunk.
func (l LocalPosition) Neighbor(f Face) (LocalPosition, bool) {
	n := f.Normal()
	x, y, z := l.X+n[0], l.Y+n[1], l.Z+n[2]
	if !inChunk(x, y, z) {
		return LocalPosition{}, false
	}
	return LocalPosition{X: x, Y: y, Z: z}, true
}

// WrappedNeighbor returns the adjacent position across face f, wrapped into
// the neighbouring chunk when it leaves this one.
func (l LocalPosition) WrappedNeighbor(f Face) LocalPosition {
	n := f.Normal()
	return LocalPosition{
		X: (l.X + n[0]) & chunkMask,
		Y: (l.Y + n[1]) & chunkMask,
		Z: (l.Z + n[2]) & chunkMask,
	}
}

func (l LocalPosition) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(l.X), float32(l.Y), float32(l.Z)}
}

// GlobalFrom combines a chunk and a local position into a world position.
func GlobalFrom(local LocalPosition, chunk ChunkPosition) GlobalPosition {
	o := chunk.Origin()
	return GlobalPosition{X: o.X + local.X, Y: o.Y + local.Y, Z: o.Z + local.Z}
}

// Split returns the position inside its chunk and the chunk holding it.
func (g GlobalPosition) Split() (LocalPosition, ChunkPosition) {
	local := LocalPosition{X: g.X & chunkMask, Y: g.Y & chunkMask, Z: g.Z & chunkMask}
	chunk := ChunkPosition{X: g.X >> ChunkSizeLog2, Y: g.Y >> ChunkSizeLog2, Z: g.Z >> ChunkSizeLog2}
	return local, chunk
}

func (g GlobalPosition) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(g.X), float32(g.Y), float32(g.Z)}
}

func inChunk(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < ChunkSize && y < ChunkSize && z < ChunkSize
}

func floorInt(v float32) int {
	i := int(v)
	if float32(i) > v {
		i--
	}
	return i
}

func floorDiv(value, size int) int {
	if size <= 0 {
		return 0
	}
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}
