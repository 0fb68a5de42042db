package world

import (
	"fmt"
	"math/bits"

	"voxelterrain/internal/block"
)

// paletteArray is a fixed-length array of block IDs compressed with a
// dictionary. Each element stores an index into the palette using the
// smallest power-of-two bit width able to address every palette entry, so an
// element never straddles two words. A single-entry palette uses zero bits and
// allocates no words at all.
type paletteArray struct {
	palette []block.ID
	lookup  map[block.ID]int
	bits    int
	words   []uint64
	length  int
}

func newPaletteArray(length int, fill block.ID) *paletteArray {
	return &paletteArray{
		palette: []block.ID{fill},
		lookup:  map[block.ID]int{fill: 0},
		length:  length,
	}
}

// bitsForPalette returns ceil(log2(n)) rounded up to a power of two.
func bitsForPalette(n int) int {
	if n <= 1 {
		return 0
	}
	need := bits.Len(uint(n - 1))
	width := 1
	for width < need {
		width <<= 1
	}
	return width
}

func wordsFor(width, length int) int {
	if width == 0 {
		return 0
	}
	perWord := 64 / width
	return (length + perWord - 1) / perWord
}

func (p *paletteArray) Len() int {
	return p.length
}

func (p *paletteArray) Get(i int) block.ID {
	if i < 0 || i >= p.length {
		panic(fmt.Sprintf("palette index %d out of range [0,%d)", i, p.length))
	}
	if p.bits == 0 {
		return p.palette[0]
	}
	return p.palette[p.code(i)]
}

func (p *paletteArray) Set(i int, id block.ID) {
	if i < 0 || i >= p.length {
		panic(fmt.Sprintf("palette index %d out of range [0,%d)", i, p.length))
	}
	code, ok := p.lookup[id]
	if !ok {
		code = len(p.palette)
		p.palette = append(p.palette, id)
		p.lookup[id] = code
		if width := bitsForPalette(len(p.palette)); width != p.bits {
			p.repack(width)
		}
	}
	if p.bits == 0 {
		return
	}
	p.setCode(i, code)
}

// Uniform reports whether the array holds a single distinct value.
func (p *paletteArray) Uniform() (block.ID, bool) {
	if p.bits == 0 {
		return p.palette[0], true
	}
	return 0, false
}

// BitsPerElement exposes the current code width.
func (p *paletteArray) BitsPerElement() int {
	return p.bits
}

func (p *paletteArray) code(i int) int {
	perWord := 64 / p.bits
	word := p.words[i/perWord]
	shift := uint(i%perWord) * uint(p.bits)
	mask := uint64(1)<<uint(p.bits) - 1
	return int(word >> shift & mask)
}

func (p *paletteArray) setCode(i, code int) {
	perWord := 64 / p.bits
	w := i / perWord
	shift := uint(i%perWord) * uint(p.bits)
	mask := uint64(1)<<uint(p.bits) - 1
	if uint64(code) > mask {
		panic(fmt.Sprintf("palette code %d does not fit in %d bits", code, p.bits))
	}
	p.words[w] = p.words[w]&^(mask<<shift) | uint64(code)<<shift
}

// repack re-encodes every element using the new width.
func (p *paletteArray) repack(width int) {
	old := *p
	p.bits = width
	p.words = make([]uint64, wordsFor(width, p.length))
	if old.bits == 0 {
		// every element referenced palette entry 0, which encodes as zero
		return
	}
	for i := 0; i < p.length; i++ {
		p.setCode(i, old.code(i))
	}
}
