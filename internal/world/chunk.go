package world

import (
	"math"

	"github.com/gammazero/deque"
	"github.com/go-gl/mathgl/mgl32"

	"voxelterrain/internal/block"
	"voxelterrain/internal/light"
)

// Chunk is a ChunkSize cube of blocks together with its light field, the
// pending light work and the face connectivity computed at load time.
//
// A chunk is built on a worker goroutine by NewChunk and then handed to the
// terrain, which owns it from that point; its methods are not safe for
// concurrent use.
type Chunk struct {
	position    ChunkPosition
	registry    *block.Registry
	blocks      *BlockStorage
	light       *LightStore
	connections Connections

	emittedQueue deque.Deque[EmittedStep]
	shadowQueue  deque.Deque[ShadowStep]
	skyQueue     deque.Deque[SkyStep]
}

// NewChunk compresses blocks and computes the chunk connections. blocks must
// hold ChunkVolume IDs ordered as LocalPosition.Index. The work is heavy and
// meant to run off the simulation goroutine.
func NewChunk(position ChunkPosition, blocks []block.ID, reg *block.Registry) *Chunk {
	return &Chunk{
		position:    position,
		registry:    reg,
		blocks:      NewBlockStorage(blocks),
		light:       NewLightStore(),
		connections: ComputeConnections(blocks, reg),
	}
}

func (c *Chunk) Position() ChunkPosition {
	return c.position
}

// BlockStore exposes the compressed block storage.
func (c *Chunk) BlockStore() *BlockStorage {
	return c.blocks
}

// LightStore exposes the light field.
func (c *Chunk) LightStore() *LightStore {
	return c.light
}

func (c *Chunk) Connections() Connections {
	return c.connections
}

// Block panics when pos is outside the chunk.
func (c *Chunk) Block(pos LocalPosition) block.ID {
	return c.blocks.Block(pos)
}

// SetBlock replaces the block at pos and schedules a light repair around it.
// Writing the block already present does nothing. Connections are not
// recomputed.
func (c *Chunk) SetBlock(pos LocalPosition, id block.ID) bool {
	if c.blocks.Block(pos) == id {
		return false
	}
	c.blocks.SetBlock(pos, id)
	c.shadowQueue.PushBack(ShadowStep{Position: pos, Depth: light.MaxValue})

	// let skylight flow back into an opened cell
	if !c.registry.IsOpaque(id) {
		for f := Face(0); f < faceCount; f++ {
			n, inside := pos.Neighbor(f)
			if !inside {
				continue
			}
			if sky := c.light.Sky(n); sky != light.NoSky {
				c.skyQueue.PushBack(SkyStep{Position: n, Light: sky, Repair: true})
			}
		}
	}
	return true
}

// RequiresLightUpdates reports whether any light queue holds pending work.
func (c *Chunk) RequiresLightUpdates() bool {
	return c.emittedQueue.Len() > 0 || c.shadowQueue.Len() > 0 || c.skyQueue.Len() > 0
}

// PendingLightSteps returns the combined length of the light queues.
func (c *Chunk) PendingLightSteps() int {
	return c.emittedQueue.Len() + c.shadowQueue.Len() + c.skyQueue.Len()
}

// SideLight returns a copy of the boundary light on face f.
func (c *Chunk) SideLight(f Face) *SideLight {
	return extractSide(c.light, f)
}

// SeedLight replaces the emitted and skylight queues with the initial work
// for a freshly loaded chunk. sides[f] is the SideLight of the neighbour
// across face f facing this chunk, or nil if it is not loaded.
func (c *Chunk) SeedLight(sides [6]*SideLight) {
	c.emittedQueue.Clear()
	c.skyQueue.Clear()
	seedEmitted(&c.emittedQueue, c.blocks, c.registry, &sides)
	seedSky(&c.skyQueue, c.blocks, c.registry, &sides)
}

// InformLightUpdate accepts an update that left the neighbouring chunk
// through its face f. Light is queued only if it would brighten the target
// and can enter the target block; shadow steps are always queued.
func (c *Chunk) InformLightUpdate(f Face, update LightUpdate) {
	entry := int(f.Opposite())
	switch update.Kind {
	case EmittedUpdate:
		step := update.Emitted
		if light.Brighter(c.light.Emitted(step.Position), step.Light) &&
			c.registry.IsTransparentInDirection(c.blocks.Block(step.Position), entry) {
			c.emittedQueue.PushBack(step)
		}
	case EmittedShadowUpdate:
		c.shadowQueue.PushBack(update.Shadow)
	case SkyUpdate:
		step := update.Sky
		if c.light.Sky(step.Position) < step.Light &&
			c.registry.IsTransparentInDirection(c.blocks.Block(step.Position), entry) {
			c.skyQueue.PushBack(step)
		}
	}
}

// UpdateLighting drains the shadow, emitted and skylight queues in that
// order and returns the steps that crossed into neighbouring chunks.
func (c *Chunk) UpdateLighting() []BoundaryUpdate {
	pass := lightPass{store: c.light, blocks: c.blocks, reg: c.registry}
	pass.shadow(&c.shadowQueue, &c.emittedQueue)
	pass.emitted(&c.emittedQueue)
	pass.sky(&c.skyQueue)
	return pass.outside
}

// ChunkHit is the first non-air block found by Chunk.Raymarch. Normal points
// from the hit block to the cell the ray came from and is only set when the
// ray entered from another block or chunk. A ray passing exactly through an
// edge or corner can skip a cell, so Normal is not always a unit axis: it may
// be diagonal, such as {1, 1, 0}.
type ChunkHit struct {
	Position  LocalPosition
	Normal    [3]int
	HasNormal bool
}

const raymarchEpsilon = 1e-3

// Raymarch walks the ray through the chunk block by block (DDA). origin is in
// chunk-local block units. previous is the chunk the ray came from, if any,
// and provides the hit normal when the very first block is solid.
func (c *Chunk) Raymarch(origin, direction mgl32.Vec3, previous *ChunkPosition, maxDistance float32) (ChunkHit, bool) {
	step, recip := ddaSetup(direction)

	var t float32
	var prev LocalPosition
	hasPrev := false
	for t < maxDistance {
		p := origin.Add(direction.Mul(t))
		x, y, z := floorInt(p[0]), floorInt(p[1]), floorInt(p[2])
		if !inChunk(x, y, z) {
			return ChunkHit{}, false
		}
		pos := LocalPosition{X: x, Y: y, Z: z}
		if c.blocks.Block(pos) != block.Air {
			hit := ChunkHit{Position: pos}
			switch {
			case hasPrev:
				hit.Normal = [3]int{prev.X - pos.X, prev.Y - pos.Y, prev.Z - pos.Z}
				hit.HasNormal = true
			case previous != nil:
				d := previous.Sub(c.position)
				hit.Normal = [3]int{d.X, d.Y, d.Z}
				hit.HasNormal = true
			}
			return hit, true
		}

		t += ddaAdvance(p, step, recip, 1)
		prev = pos
		hasPrev = true
	}
	return ChunkHit{}, false
}

// ddaSetup returns, per axis, the cell boundary offset the ray heads for and
// the reciprocal direction. Axes the ray does not move along never cross.
func ddaSetup(direction mgl32.Vec3) (step, recip mgl32.Vec3) {
	for i, d := range direction {
		if d >= 0 {
			step[i] = 1
		}
		if d == 0 {
			recip[i] = float32(math.Inf(1))
		} else {
			recip[i] = 1 / d
		}
	}
	return step, recip
}

// ddaAdvance returns the distance along the ray to the next cell boundary of
// a grid with the given cell size, never less than raymarchEpsilon.
func ddaAdvance(p, step, recip mgl32.Vec3, cell float32) float32 {
	best := float32(math.Inf(1))
	for i := 0; i < 3; i++ {
		scaled := p[i] / cell
		frac := scaled - float32(floorInt(scaled))
		delta := (step[i] - frac) * recip[i] * cell
		if delta < best {
			best = delta
		}
	}
	if best < raymarchEpsilon {
		return raymarchEpsilon
	}
	return best
}
