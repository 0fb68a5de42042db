package world

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"voxelterrain/internal/block"
)

func TestBlockStorageRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	blocks := make([]block.ID, ChunkVolume)
	for i := range blocks {
		// skew towards a few common ids, like real terrain
		if rng.Intn(4) == 0 {
			blocks[i] = block.ID(rng.Intn(40))
		} else {
			blocks[i] = block.ID(rng.Intn(3))
		}
	}

	store := NewBlockStorage(blocks)
	if _, uniform := store.Uniform(); uniform {
		t.Fatalf("expected mixed storage to be layered")
	}
	for i, want := range blocks {
		if got := store.Block(LocalFromIndex(i)); got != want {
			t.Fatalf("block %v: expected %d, got %d", LocalFromIndex(i), want, got)
		}
	}
	if diff := cmp.Diff(blocks, store.BlockArray()); diff != "" {
		t.Fatalf("block array mismatch (-want +got):\n%s", diff)
	}
}

func TestUniformStorageExpandsOnWrite(t *testing.T) {
	blocks := make([]block.ID, ChunkVolume)
	for i := range blocks {
		blocks[i] = 5
	}
	store := NewBlockStorage(blocks)
	if id, uniform := store.Uniform(); !uniform || id != 5 {
		t.Fatalf("expected uniform stone storage, got %d uniform=%v", id, uniform)
	}

	pos := NewLocalPosition(3, 17, 29)
	store.SetBlock(pos, 5)
	if _, uniform := store.Uniform(); !uniform {
		t.Fatalf("writing the existing block should keep storage uniform")
	}

	store.SetBlock(pos, 1)
	if _, uniform := store.Uniform(); uniform {
		t.Fatalf("expected storage to expand after a differing write")
	}
	if got := store.Block(pos); got != 1 {
		t.Fatalf("expected written block 1, got %d", got)
	}
	if got := store.Block(NewLocalPosition(4, 17, 29)); got != 5 {
		t.Fatalf("expected untouched neighbour to stay stone, got %d", got)
	}
	if got := store.layers[0].BitsPerElement(); got != 0 {
		t.Fatalf("expected untouched layer to stay at zero bits, got %d", got)
	}
}

func TestPaletteArrayGrowsWidth(t *testing.T) {
	arr := newPaletteArray(ChunkArea, 0)
	want := make([]block.ID, ChunkArea)

	steps := []struct {
		distinct int
		bits     int
	}{
		{distinct: 1, bits: 0},
		{distinct: 2, bits: 1},
		{distinct: 3, bits: 2},
		{distinct: 5, bits: 4},
		{distinct: 17, bits: 8},
		{distinct: 257, bits: 16},
	}
	next := 1
	for _, step := range steps {
		for next < step.distinct {
			want[next] = block.ID(next * 3)
			arr.Set(next, block.ID(next*3))
			next++
		}
		if got := arr.BitsPerElement(); got != step.bits {
			t.Fatalf("with %d distinct values expected %d bits, got %d", step.distinct, step.bits, got)
		}
		for i := range want {
			if got := arr.Get(i); got != want[i] {
				t.Fatalf("after growth to %d bits index %d: expected %d, got %d", step.bits, i, want[i], got)
			}
		}
	}
}

func TestBitsForPalette(t *testing.T) {
	cases := map[int]int{0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 5: 4, 16: 4, 17: 8, 256: 8, 257: 16, 1024: 16}
	for n, want := range cases {
		if got := bitsForPalette(n); got != want {
			t.Errorf("bitsForPalette(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestBlockPanicsOutsideChunk(t *testing.T) {
	store := NewUniformBlockStorage(0)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out of range position")
		}
	}()
	store.Block(LocalPosition{X: ChunkSize})
}
