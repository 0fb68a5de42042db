package world

import (
	"context"
	"log/slog"

	"github.com/gammazero/deque"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/atomic"

	"voxelterrain/internal/block"
	"voxelterrain/internal/inbox"
	"voxelterrain/internal/tasks"
)

// LevelTrace sits below slog.LevelDebug for per-chunk chatter.
const LevelTrace = slog.Level(-8)

// Generator populates a chunk. It runs on worker goroutines and must be safe
// for concurrent use. The returned slice holds ChunkVolume IDs ordered as
// LocalPosition.Index.
type Generator interface {
	Generate(ctx context.Context, pos ChunkPosition) ([]block.ID, error)
}

// Scheduler runs load jobs in the background, most urgent priority first.
type Scheduler interface {
	Submit(priority tasks.Priority, fn func()) tasks.TaskID
	CancelIfPending(id tasks.TaskID) bool
}

// Options configures a Terrain. Registry, Generator and Scheduler are
// required.
type Options struct {
	Registry  *block.Registry
	Generator Generator
	Scheduler Scheduler
	Logger    *slog.Logger

	// LoadingPriority is the priority class of chunk load jobs.
	LoadingPriority int
	// MaxLightSteps caps the chunk light passes run per Update; 0 drains the
	// worklist completely.
	MaxLightSteps int
}

type loadResult struct {
	position ChunkPosition
	chunk    *Chunk
	err      error
}

// Terrain owns every loaded chunk and keeps the set of loaded chunks in step
// with its load areas. All methods must be called from one goroutine; only
// chunk generation happens elsewhere.
type Terrain struct {
	registry  *block.Registry
	generator Generator
	scheduler Scheduler
	log       *slog.Logger

	loadingPriority int
	maxLightSteps   int

	chunks     Arena[*Chunk]
	areas      Arena[*LoadArea]
	byPosition map[ChunkPosition]Index
	loading    map[ChunkPosition]tasks.TaskID
	delivered  *inbox.Queue[loadResult]

	lightQueue  deque.Deque[Index]
	lightQueued map[Index]struct{}

	events       []Event
	areasRemoved bool

	// read concurrently through Counters
	loadsRequested *atomic.Int64
	loadsCancelled *atomic.Int64
	loadsFailed    *atomic.Int64
	lightPasses    *atomic.Int64
}

func NewTerrain(opts Options) *Terrain {
	if opts.Registry == nil || opts.Generator == nil || opts.Scheduler == nil {
		panic("world: terrain needs a registry, a generator and a scheduler")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Terrain{
		registry:        opts.Registry,
		generator:       opts.Generator,
		scheduler:       opts.Scheduler,
		log:             log,
		loadingPriority: opts.LoadingPriority,
		maxLightSteps:   opts.MaxLightSteps,
		byPosition:      make(map[ChunkPosition]Index),
		loading:         make(map[ChunkPosition]tasks.TaskID),
		delivered:       inbox.NewQueue[loadResult](),
		lightQueued:     make(map[Index]struct{}),
		loadsRequested:  atomic.NewInt64(0),
		loadsCancelled:  atomic.NewInt64(0),
		loadsFailed:     atomic.NewInt64(0),
		lightPasses:     atomic.NewInt64(0),
	}
}

func (t *Terrain) Registry() *block.Registry {
	return t.registry
}

// AddLoadArea registers an area. It is processed on the next Update.
func (t *Terrain) AddLoadArea(area *LoadArea) Index {
	idx := t.areas.Insert(area)
	t.log.Debug("load area added", "area", area.String())
	return idx
}

// RemoveLoadArea forgets an area. Chunks only it kept alive are unloaded on
// the next Update.
func (t *Terrain) RemoveLoadArea(idx Index) {
	area, ok := t.areas.Remove(idx)
	if !ok {
		return
	}
	t.log.Debug("load area removed", "area", area.String())
	t.areasRemoved = true
}

// LoadArea returns the area for idx and panics if there is none.
func (t *Terrain) LoadArea(idx Index) *LoadArea {
	return t.areas.MustGet(idx)
}

// Chunk returns the loaded chunk at pos as seen through the given area.
func (t *Terrain) Chunk(area Index, pos ChunkPosition) (*Chunk, bool) {
	a, ok := t.areas.Get(area)
	if !ok {
		return nil, false
	}
	ci, ok := a.ChunkIndex(pos)
	if !ok {
		return nil, false
	}
	return t.chunks.Get(ci)
}

// Chunks visits every loaded chunk until fn returns false.
func (t *Terrain) Chunks(fn func(Index, *Chunk) bool) {
	t.chunks.Each(fn)
}

// Block returns the block at g if its chunk is loaded in the area.
func (t *Terrain) Block(area Index, g GlobalPosition) (block.ID, bool) {
	local, cp := g.Split()
	c, ok := t.Chunk(area, cp)
	if !ok {
		return block.Air, false
	}
	return c.Block(local), true
}

// SetBlock replaces the block at g, queueing the light repair. It reports
// false when the chunk is not loaded in the area.
func (t *Terrain) SetBlock(area Index, g GlobalPosition, id block.ID) bool {
	local, cp := g.Split()
	a, ok := t.areas.Get(area)
	if !ok {
		return false
	}
	ci, ok := a.ChunkIndex(cp)
	if !ok {
		return false
	}
	c := t.chunks.MustGet(ci)
	if !c.SetBlock(local, id) {
		return true
	}
	t.events = append(t.events, Event{Kind: BlockModified, Chunk: cp, Block: local})
	t.enqueueLight(ci)
	return true
}

// Events returns the events recorded since the last ClearEvents.
func (t *Terrain) Events() []Event {
	return t.events
}

func (t *Terrain) ClearEvents() {
	t.events = t.events[:0]
}

// Stats is a snapshot of terrain bookkeeping.
type Stats struct {
	LoadedChunks   int
	LoadingChunks  int
	LoadAreas      int
	LightQueue     int
	LoadsRequested int64
	LoadsCancelled int64
	LoadsFailed    int64
	LightPasses    int64
}

// Counters returns only the cumulative counters of Stats. Unlike Stats it
// may be called from another goroutine than the one calling Update, such as
// a renderer or a metrics reporter.
func (t *Terrain) Counters() Stats {
	return Stats{
		LoadsRequested: t.loadsRequested.Load(),
		LoadsCancelled: t.loadsCancelled.Load(),
		LoadsFailed:    t.loadsFailed.Load(),
		LightPasses:    t.lightPasses.Load(),
	}
}

// Stats must be called from the goroutine calling Update.
func (t *Terrain) Stats() Stats {
	return Stats{
		LoadedChunks:   t.chunks.Len(),
		LoadingChunks:  len(t.loading),
		LoadAreas:      t.areas.Len(),
		LightQueue:     t.lightQueue.Len(),
		LoadsRequested: t.loadsRequested.Load(),
		LoadsCancelled: t.loadsCancelled.Load(),
		LoadsFailed:    t.loadsFailed.Load(),
		LightPasses:    t.lightPasses.Load(),
	}
}

// Close stops accepting generated chunks. Generation still in flight is
// discarded when it finishes.
func (t *Terrain) Close() {
	t.delivered.Close()
}

// Update advances the terrain by one frame: it takes in finished chunks,
// unloads chunks no area wants, requests newly needed chunks ordered by
// distance to camera (in blocks) and drains the light worklist. Chunks a
// scheduler generates while they are being requested are taken in before
// the light drain of the same frame.
func (t *Terrain) Update(ctx context.Context, camera mgl32.Vec3) {
	t.takeDelivered()

	if t.areasRemoved || t.anyDirty() {
		t.areasRemoved = false
		t.unloadOutOfRange()
		t.cancelAbandonedLoads()
		t.resyncDirtyAreas()
		t.requestLoads(ctx, camera)
		t.areas.Each(func(_ Index, a *LoadArea) bool {
			a.setState(Clean)
			return true
		})
		t.takeDelivered()
	}

	t.drainLight()
}

func (t *Terrain) takeDelivered() {
	for _, res := range t.delivered.Drain(0) {
		t.finishLoading(res)
	}
}

func (t *Terrain) finishLoading(res loadResult) {
	pos := res.position
	delete(t.loading, pos)

	if res.err != nil {
		t.loadsFailed.Inc()
		t.log.Warn("chunk generation failed", "chunk", pos.String(), "err", res.err)
		t.forgetLoading(pos)
		return
	}
	if !t.withinAnyArea(pos) {
		t.log.Log(context.Background(), LevelTrace, "discarding chunk outside load areas", "chunk", pos.String())
		t.forgetLoading(pos)
		return
	}
	if _, dup := t.byPosition[pos]; dup {
		return
	}

	idx := t.chunks.Insert(res.chunk)
	t.byPosition[pos] = idx
	t.areas.Each(func(_ Index, a *LoadArea) bool {
		if a.IsWithinBounds(pos) {
			a.markLoaded(pos, idx)
		}
		return true
	})

	res.chunk.SeedLight(t.surroundingSides(pos))
	t.enqueueLight(idx)
	t.events = append(t.events, Event{Kind: ChunkLoaded, Chunk: pos})
	t.log.Debug("chunk loaded", "chunk", pos.String())
}

func (t *Terrain) forgetLoading(pos ChunkPosition) {
	t.areas.Each(func(_ Index, a *LoadArea) bool {
		if a.IsLoading(pos) {
			a.markUnloaded(pos)
		}
		return true
	})
}

func (t *Terrain) surroundingSides(pos ChunkPosition) [6]*SideLight {
	var sides [6]*SideLight
	for f := Face(0); f < faceCount; f++ {
		idx, ok := t.byPosition[pos.Neighbor(f)]
		if !ok {
			continue
		}
		if n, ok := t.chunks.Get(idx); ok {
			sides[f] = n.SideLight(f.Opposite())
		}
	}
	return sides
}

func (t *Terrain) anyDirty() bool {
	dirty := false
	t.areas.Each(func(_ Index, a *LoadArea) bool {
		dirty = a.State() == Dirty
		return !dirty
	})
	return dirty
}

func (t *Terrain) withinAnyArea(pos ChunkPosition) bool {
	found := false
	t.areas.Each(func(_ Index, a *LoadArea) bool {
		found = a.Contains(pos)
		return !found
	})
	return found
}

func (t *Terrain) unloadOutOfRange() {
	var doomed []Index
	t.chunks.Each(func(idx Index, c *Chunk) bool {
		if !t.withinAnyArea(c.Position()) {
			doomed = append(doomed, idx)
		}
		return true
	})
	for _, idx := range doomed {
		c, _ := t.chunks.Remove(idx)
		pos := c.Position()
		delete(t.byPosition, pos)
		delete(t.lightQueued, idx)
		t.areas.Each(func(_ Index, a *LoadArea) bool {
			if a.IsLoaded(pos) {
				a.markUnloaded(pos)
			}
			return true
		})
		t.events = append(t.events, Event{Kind: ChunkUnloaded, Chunk: pos})
		t.log.Debug("chunk unloaded", "chunk", pos.String())
	}
}

func (t *Terrain) cancelAbandonedLoads() {
	for pos, id := range t.loading {
		if t.withinAnyArea(pos) || !t.scheduler.CancelIfPending(id) {
			continue
		}
		delete(t.loading, pos)
		t.loadsCancelled.Inc()
		t.forgetLoading(pos)
		t.log.Log(context.Background(), LevelTrace, "chunk load cancelled", "chunk", pos.String())
	}
}

// resyncDirtyAreas rebuilds the tables of moved or resized areas from the
// chunks already loaded or loading.
func (t *Terrain) resyncDirtyAreas() {
	t.areas.Each(func(_ Index, a *LoadArea) bool {
		if a.State() != Dirty {
			return true
		}
		a.clearSlots()
		for pos, idx := range t.byPosition {
			if a.IsWithinBounds(pos) {
				a.markLoaded(pos, idx)
			}
		}
		for pos := range t.loading {
			if a.IsWithinBounds(pos) {
				a.markLoading(pos)
			}
		}
		return true
	})
}

func (t *Terrain) requestLoads(ctx context.Context, camera mgl32.Vec3) {
	eye := camera.Mul(1.0 / ChunkSize)
	t.areas.Each(func(_ Index, a *LoadArea) bool {
		if a.State() != Dirty {
			return true
		}
		a.Positions(func(pos ChunkPosition) bool {
			if _, ok := t.byPosition[pos]; ok {
				return true
			}
			if _, ok := t.loading[pos]; ok {
				return true
			}
			d := pos.Vec3().Sub(eye)
			priority := tasks.Priority{Class: t.loadingPriority, Within: int(d.Dot(d))}
			t.loading[pos] = t.scheduler.Submit(priority, t.loadJob(ctx, pos))
			t.loadsRequested.Inc()
			t.areas.Each(func(_ Index, other *LoadArea) bool {
				if other.IsWithinBounds(pos) {
					other.markLoading(pos)
				}
				return true
			})
			return true
		})
		return true
	})
}

// loadJob runs on a worker: it may only touch the generator, the registry and
// the delivery queue.
func (t *Terrain) loadJob(ctx context.Context, pos ChunkPosition) func() {
	return func() {
		res := loadResult{position: pos}
		blocks, err := t.generator.Generate(ctx, pos)
		if err == nil {
			res.chunk = NewChunk(pos, blocks, t.registry)
		}
		res.err = err
		if err := t.delivered.Enqueue(res); err != nil {
			t.log.Log(ctx, LevelTrace, "dropping generated chunk", "chunk", pos.String(), "err", err)
		}
	}
}

func (t *Terrain) enqueueLight(idx Index) {
	if _, ok := t.lightQueued[idx]; ok {
		return
	}
	t.lightQueued[idx] = struct{}{}
	t.lightQueue.PushBack(idx)
}

// findChunk resolves pos through the load areas, the same way area-relative
// lookups do.
func (t *Terrain) findChunk(pos ChunkPosition) (Index, *Chunk, bool) {
	var (
		found Index
		chunk *Chunk
		ok    bool
	)
	t.areas.Each(func(_ Index, a *LoadArea) bool {
		idx, loaded := a.ChunkIndex(pos)
		if !loaded {
			return true
		}
		chunk, ok = t.chunks.Get(idx)
		found = idx
		return !ok
	})
	return found, chunk, ok
}

func (t *Terrain) drainLight() {
	passes := 0
	for t.lightQueue.Len() > 0 {
		if t.maxLightSteps > 0 && passes >= t.maxLightSteps {
			t.log.Log(context.Background(), LevelTrace, "light worklist deferred", "chunks", t.lightQueue.Len())
			return
		}
		idx := t.lightQueue.PopFront()
		delete(t.lightQueued, idx)

		c, ok := t.chunks.Get(idx)
		if !ok || !c.RequiresLightUpdates() {
			continue
		}
		passes++
		t.lightPasses.Inc()

		for _, u := range c.UpdateLighting() {
			nIdx, n, ok := t.findChunk(c.Position().Neighbor(u.Face))
			if !ok {
				continue
			}
			n.InformLightUpdate(u.Face, u.Update)
			if n.RequiresLightUpdates() {
				t.enqueueLight(nIdx)
			}
		}
		t.events = append(t.events, Event{Kind: ChunkLightUpdated, Chunk: c.Position()})
		if c.RequiresLightUpdates() {
			t.enqueueLight(idx)
		}
	}
}

// TerrainHit is the block found by Terrain.Raymarch. Normal has the same
// meaning as in ChunkHit and may be diagonal.
type TerrainHit struct {
	Position  GlobalPosition
	Normal    [3]int
	HasNormal bool
}

// Raymarch walks the ray chunk by chunk through the chunks loaded in area and
// returns the first non-air block within maxDistance blocks. origin is in
// world block units.
func (t *Terrain) Raymarch(area Index, origin, direction mgl32.Vec3, maxDistance float32) (TerrainHit, bool) {
	step, recip := ddaSetup(direction)

	var tt float32
	var previous *ChunkPosition
	for tt < maxDistance {
		p := origin.Add(direction.Mul(tt))
		cp := ChunkContaining(p)
		if c, ok := t.Chunk(area, cp); ok {
			local := p.Sub(cp.Vec3().Mul(ChunkSize))
			if hit, ok := c.Raymarch(local, direction, previous, maxDistance-tt); ok {
				return TerrainHit{
					Position:  GlobalFrom(hit.Position, cp),
					Normal:    hit.Normal,
					HasNormal: hit.HasNormal,
				}, true
			}
		}

		tt += ddaAdvance(p, step, recip, ChunkSize)
		prev := cp
		previous = &prev
	}
	return TerrainHit{}, false
}
