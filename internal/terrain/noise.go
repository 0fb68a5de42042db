package terrain

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"voxelterrain/internal/block"
	"voxelterrain/internal/config"
	"voxelterrain/internal/world"
)

// NoiseGenerator creates repeatable terrain using hashed value noise. Every
// block is a pure function of its global position and the seed, so chunks
// generated independently line up at their borders.
type NoiseGenerator struct {
	cfg   config.TerrainConfig
	seed  int64
	log   *slog.Logger
	ids   palette
	lamps []block.ID
}

// palette holds the catalog IDs the generator places.
type palette struct {
	grass block.ID
	dirt  block.ID
	stone block.ID
	wood  block.ID
	trees bool
}

const dirtDepth = 3

// NewNoiseGenerator resolves the blocks it places from reg. grass, dirt and
// stone are required; wood and lamps are placed only when the catalog has them.
func NewNoiseGenerator(cfg config.TerrainConfig, reg *block.Registry, log *slog.Logger) (*NoiseGenerator, error) {
	if log == nil {
		log = slog.Default()
	}
	g := &NoiseGenerator{cfg: cfg, seed: cfg.Seed, log: log}

	required := map[string]*block.ID{"grass": &g.ids.grass, "dirt": &g.ids.dirt, "stone": &g.ids.stone}
	for name, dst := range required {
		id, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("terrain: block %q missing from catalog", name)
		}
		*dst = id
	}
	g.ids.wood, g.ids.trees = reg.Lookup("wood")
	for _, name := range []string{"lamp_orange", "lamp_blue"} {
		if id, ok := reg.Lookup(name); ok && reg.Emits(id) {
			g.lamps = append(g.lamps, id)
		}
	}
	return g, nil
}

// Generate fills the chunk at pos column by column on a bounded set of
// goroutines. The returned slice is ordered as world.LocalPosition.Index.
func (g *NoiseGenerator) Generate(ctx context.Context, pos world.ChunkPosition) ([]block.ID, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type columnTask struct {
		x, z int
	}

	type columnResult struct {
		x, z   int
		column [world.ChunkSize]block.ID
		err    error
	}

	const totalColumns = world.ChunkArea
	workers := g.workerCount(totalColumns)
	origin := pos.Origin()

	tasks := make(chan columnTask, workers)
	results := make(chan columnResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				if err := ctx.Err(); err != nil {
					select {
					case results <- columnResult{err: err}:
					default:
					}
					return
				}

				res := columnResult{x: task.x, z: task.z}
				g.fillColumn(&res.column, origin.X+task.x, origin.Y, origin.Z+task.z)

				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(tasks)
		for x := 0; x < world.ChunkSize; x++ {
			for z := 0; z < world.ChunkSize; z++ {
				select {
				case <-ctx.Done():
					return
				case tasks <- columnTask{x: x, z: z}:
				}
			}
		}
	}()

	ids := make([]block.ID, world.ChunkVolume)
	generated := 0
	nextLogPercent := 10

	for result := range results {
		if result.err != nil {
			cancel()
			return nil, fmt.Errorf("generate chunk %v: %w", pos, result.err)
		}
		for y, id := range result.column {
			ids[world.LocalPosition{X: result.x, Y: y, Z: result.z}.Index()] = id
		}

		generated++
		progress := generated * 100 / totalColumns
		if progress >= nextLogPercent {
			g.log.Debug("chunk generation progress", "chunk", pos, "percent", progress)
			nextLogPercent = (progress/10 + 1) * 10
		}
	}

	// the feeder stops early on cancellation, so a short result set is an error
	if generated < totalColumns {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate chunk %v: %w", pos, err)
		}
		return nil, fmt.Errorf("generate chunk %v: only %d of %d columns produced", pos, generated, totalColumns)
	}
	return ids, nil
}

// fillColumn writes the ChunkSize blocks of the column at global (x, z)
// starting at global height baseY.
func (g *NoiseGenerator) fillColumn(column *[world.ChunkSize]block.ID, x, baseY, z int) {
	surface := g.surfaceHeight(x, z)
	trunk := g.treeHeight(x, z)
	lamp, hasLamp := g.lampAt(x, z)
	if trunk > 0 {
		hasLamp = false
	}

	for i := range column {
		y := baseY + i
		switch {
		case y > surface+trunk:
			if hasLamp && y == surface+1 {
				column[i] = lamp
			} else {
				column[i] = block.Air
			}
		case y > surface:
			column[i] = g.ids.wood
		case y == surface:
			column[i] = g.ids.grass
		case y > surface-dirtDepth:
			column[i] = g.ids.dirt
		default:
			column[i] = g.ids.stone
		}
	}
}

// surfaceHeight is the global y of the topmost solid block of a column.
func (g *NoiseGenerator) surfaceHeight(x, z int) int {
	noise := g.fractalNoise(float64(x), float64(z))
	return g.cfg.SurfaceLevel + int(math.Floor(noise*g.cfg.Amplitude))
}

// lampAt decides whether a lamp sits on top of the column.
func (g *NoiseGenerator) lampAt(x, z int) (block.ID, bool) {
	if len(g.lamps) == 0 || g.cfg.LampChance <= 0 {
		return 0, false
	}
	h := hash3(x, z, int(g.seed^0x1a3f))
	if unitFloat(h) >= g.cfg.LampChance {
		return 0, false
	}
	return g.lamps[int(h>>20)%len(g.lamps)], true
}

type deterministicRNG struct {
	state uint64
}

func newDeterministicRNG(x, y int, seed int64) *deterministicRNG {
	state := uint64(uint32(x))<<32 ^ uint64(uint32(y))<<1 ^ uint64(seed)
	if state == 0 {
		state = 0x9e3779b97f4a7c15
	}
	return &deterministicRNG{state: state}
}

func (r *deterministicRNG) next() uint64 {
	r.state ^= r.state << 7
	r.state ^= r.state >> 9
	r.state ^= r.state << 8
	return r.state
}

func (r *deterministicRNG) nextInt(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}

func (g *NoiseGenerator) fractalNoise(x, y float64) float64 {
	frequency := g.cfg.Frequency
	amplitude := 1.0
	noiseSum := 0.0
	maxAmplitude := 0.0

	for i := 0; i < g.cfg.Octaves; i++ {
		noise := g.valueNoise(x*frequency, y*frequency)
		noiseSum += noise * amplitude
		maxAmplitude += amplitude
		amplitude *= g.cfg.Persistence
		frequency *= g.cfg.Lacunarity
	}

	if maxAmplitude == 0 {
		return 0
	}
	return noiseSum / maxAmplitude
}

func (g *NoiseGenerator) valueNoise(x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))

	sx := smooth(x - float64(x0))
	sy := smooth(y - float64(y0))

	ix0 := lerp(random2D(x0, y0, g.seed), random2D(x0+1, y0, g.seed), sx)
	ix1 := lerp(random2D(x0, y0+1, g.seed), random2D(x0+1, y0+1, g.seed), sx)
	return lerp(ix0, ix1, sy)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// random2D maps a lattice point to [-1, 1).
func random2D(x, y int, seed int64) float64 {
	return float64(hash3(x, y, int(seed))&0xFFFF)/0x8000 - 1.0
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

// unitFloat maps a hash to [0, 1).
func unitFloat(h uint32) float64 {
	return float64(h&0xFFFF) / 0x10000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (g *NoiseGenerator) workerCount(totalColumns int) int {
	if g.cfg.Workers > 0 {
		if g.cfg.Workers < totalColumns {
			return g.cfg.Workers
		}
		return totalColumns
	}

	workers := runtime.GOMAXPROCS(0) * 2
	if workers <= 0 {
		workers = 1
	}
	if workers > totalColumns {
		workers = totalColumns
	}
	return workers
}
