package world

import (
	"github.com/gammazero/deque"

	"voxelterrain/internal/block"
	"voxelterrain/internal/light"
)

// LightStep asks a propagation pass to bring Position up to Light. Repair
// steps are queued by the shadow pass and are processed even when they do
// not brighten the cell.
type LightStep[T any] struct {
	Position LocalPosition
	Light    T
	Repair   bool
}

type (
	EmittedStep = LightStep[light.Emitted]
	SkyStep     = LightStep[light.Sky]
)

// ShadowStep erases emitted light at Position and spreads Depth-1 further.
type ShadowStep struct {
	Position LocalPosition
	Depth    int
}

// UpdateKind tells which queue a LightUpdate belongs to.
type UpdateKind int

const (
	EmittedUpdate UpdateKind = iota
	EmittedShadowUpdate
	SkyUpdate
)

// LightUpdate is a propagation step that crossed into a neighbouring chunk.
// Positions are already wrapped into the receiving chunk.
type LightUpdate struct {
	Kind    UpdateKind
	Emitted EmittedStep
	Shadow  ShadowStep
	Sky     SkyStep
}

// BoundaryUpdate pairs a LightUpdate with the face of the sending chunk it
// left through.
type BoundaryUpdate struct {
	Face   Face
	Update LightUpdate
}

// lightPass runs the propagation queues of one chunk, collecting updates for
// neighbouring chunks.
type lightPass struct {
	store   *LightStore
	blocks  BlockReader
	reg     *block.Registry
	outside []BoundaryUpdate
}

func emissionOf(reg *block.Registry, id block.ID) light.Emitted {
	r, g, b := reg.Emission(id)
	return light.RGB(r, g, b)
}

// emitted drains a forward emitted-light queue. Light only increases in this
// pass, so every cell settles after a bounded number of visits.
func (p *lightPass) emitted(queue *deque.Deque[EmittedStep]) {
	for queue.Len() > 0 {
		p.emittedStep(queue.PopFront(), queue)
	}
}

func (p *lightPass) emittedStep(step EmittedStep, queue *deque.Deque[EmittedStep]) {
	old := p.store.Emitted(step.Position)
	next := light.Max(old, step.Light)
	if !light.Brighter(old, next) && !step.Repair {
		return
	}
	p.store.SetEmitted(step.Position, next)

	diminished := step.Light.Decrement()
	if diminished == light.NoEmitted {
		return
	}

	for f := Face(0); f < faceCount; f++ {
		neighbor, inside := step.Position.Neighbor(f)
		if !inside {
			p.outside = append(p.outside, BoundaryUpdate{
				Face: f,
				Update: LightUpdate{
					Kind:    EmittedUpdate,
					Emitted: EmittedStep{Position: step.Position.WrappedNeighbor(f), Light: diminished},
				},
			})
			continue
		}
		if !p.reg.IsTransparentInDirection(p.blocks.Block(neighbor), int(f.Opposite())) {
			continue
		}
		if light.Brighter(p.store.Emitted(neighbor), diminished) {
			queue.PushBack(EmittedStep{Position: neighbor, Light: diminished})
		}
	}
}

// shadow erases emitted light around changed blocks. Emitters inside the
// erased region and the surviving light at its edge are queued as repair
// steps for the following forward pass.
func (p *lightPass) shadow(shadows *deque.Deque[ShadowStep], queue *deque.Deque[EmittedStep]) {
	visited := make(map[LocalPosition]struct{})

	for shadows.Len() > 0 {
		step := shadows.PopFront()
		visited[step.Position] = struct{}{}

		if step.Depth <= 0 {
			if existing := p.store.Emitted(step.Position); existing != light.NoEmitted {
				queue.PushBack(EmittedStep{Position: step.Position, Light: existing, Repair: true})
			}
			continue
		}

		p.store.SetEmitted(step.Position, light.NoEmitted)

		if id := p.blocks.Block(step.Position); p.reg.Emits(id) {
			queue.PushBack(EmittedStep{Position: step.Position, Light: emissionOf(p.reg, id), Repair: true})
		}

		for f := Face(0); f < faceCount; f++ {
			neighbor, inside := step.Position.Neighbor(f)
			if !inside {
				p.outside = append(p.outside, BoundaryUpdate{
					Face: f,
					Update: LightUpdate{
						Kind:   EmittedShadowUpdate,
						Shadow: ShadowStep{Position: step.Position.WrappedNeighbor(f), Depth: step.Depth - 1},
					},
				})
				continue
			}
			if _, seen := visited[neighbor]; seen {
				continue
			}
			visited[neighbor] = struct{}{}
			shadows.PushBack(ShadowStep{Position: neighbor, Depth: step.Depth - 1})
		}
	}
}

// sky drains a skylight queue. Skylight keeps full strength travelling down.
func (p *lightPass) sky(queue *deque.Deque[SkyStep]) {
	for queue.Len() > 0 {
		p.skyStep(queue.PopFront(), queue)
	}
}

func (p *lightPass) skyStep(step SkyStep, queue *deque.Deque[SkyStep]) {
	old := p.store.Sky(step.Position)
	if step.Light <= old && !step.Repair {
		return
	}
	p.store.SetSky(step.Position, light.MaxSky(old, step.Light))

	for f := Face(0); f < faceCount; f++ {
		diminished := step.Light.Attenuate(f == FaceNegY)
		if diminished == light.NoSky {
			continue
		}

		neighbor, inside := step.Position.Neighbor(f)
		if !inside {
			p.outside = append(p.outside, BoundaryUpdate{
				Face: f,
				Update: LightUpdate{
					Kind: SkyUpdate,
					Sky:  SkyStep{Position: step.Position.WrappedNeighbor(f), Light: diminished},
				},
			})
			continue
		}
		if !p.reg.IsTransparentInDirection(p.blocks.Block(neighbor), int(f.Opposite())) {
			continue
		}
		if p.store.Sky(neighbor) < diminished {
			queue.PushBack(SkyStep{Position: neighbor, Light: diminished})
		}
	}
}
