package terrain

const (
	minTrunk = 3
	maxTrunk = 6
)

// treeHeight returns the trunk length of the wood pillar rooted on the column
// at global (x, z), or 0 when no tree grows there. Trees cluster where the
// forest mask is high and never stand directly next to each other.
func (g *NoiseGenerator) treeHeight(x, z int) int {
	if !g.isTreeCell(x, z) {
		return 0
	}
	// the western and northern neighbours win ties so pillars stay one wide
	if g.isTreeCell(x-1, z) || g.isTreeCell(x, z-1) {
		return 0
	}
	rng := newDeterministicRNG(x, z, g.seed)
	return minTrunk + rng.nextInt(maxTrunk-minTrunk+1)
}

func (g *NoiseGenerator) isTreeCell(x, z int) bool {
	if !g.ids.trees || g.cfg.TreeChance <= 0 {
		return false
	}
	density := g.cfg.TreeChance * (0.5 + forestMask(x, z, g.seed)) * (0.5 + treeProbability(x, z, g.seed))
	return unitFloat(hash3(x, z, int(g.seed^0x7e11))) < density
}

func forestMask(globalX, globalZ int, seed int64) float64 {
	base := random2D(floorDiv(globalX, 8), floorDiv(globalZ, 8), seed)
	detail := random2D(floorDiv(globalX, 3), floorDiv(globalZ, 3), seed^0x5f17)
	return clamp01((base*0.7 + detail*0.3 + 1) * 0.5)
}

func treeProbability(globalX, globalZ int, seed int64) float64 {
	primary := random2D(floorDiv(globalX, 5), floorDiv(globalZ, 5), seed^0x92b7)
	secondary := random2D(floorDiv(globalX, 17), floorDiv(globalZ, 17), seed^0x12d4)
	return clamp01((primary*0.6 + secondary*0.4 + 1) * 0.5)
}

func floorDiv(v, n int) int {
	q := v / n
	if v%n != 0 && v < 0 {
		q--
	}
	return q
}
