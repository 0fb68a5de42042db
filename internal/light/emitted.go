// Package light implements the packed light values stored per block.
//
// Emitted light packs three 4-bit channels into a uint16 and compares,
// combines and decays all channels at once with carry-guarded integer
// arithmetic (see https://0fps.net/2018/02/21/voxel-lighting/).
package light

import "fmt"

// MaxValue is the brightest value a single channel can hold.
const MaxValue = 15

// Emitted is an RGB light value. Bits 0-3 hold red, 4-7 green, 8-11 blue.
type Emitted uint16

const (
	componentMask Emitted = 0x0f0f
	borrowGuard   Emitted = 0x2020
	carryMask     Emitted = 0x1010
)

// NoEmitted is the absence of emitted light.
const NoEmitted Emitted = 0

// RGB packs three channel values. Each channel must be in 0..15.
func RGB(r, g, b uint8) Emitted {
	if r > MaxValue || g > MaxValue || b > MaxValue {
		panic(fmt.Sprintf("light: channel out of range (%d,%d,%d)", r, g, b))
	}
	return Emitted(r) | Emitted(g)<<4 | Emitted(b)<<8
}

// Channels unpacks the red, green and blue values.
func (e Emitted) Channels() (r, g, b uint8) {
	return uint8(e & 15), uint8(e >> 4 & 15), uint8(e >> 8 & 15)
}

// Less returns a mask with all four bits of a channel set wherever that
// channel of a is strictly less than the same channel of b.
func Less(a, b Emitted) uint16 {
	return uint16(halfLess(a, b) | halfLess(a>>4, b>>4)<<4)
}

// Max returns the channel-wise maximum of a and b.
func Max(a, b Emitted) Emitted {
	return a ^ ((a ^ b) & Emitted(Less(a, b)))
}

// Brighter reports whether any channel of b exceeds the same channel of a.
func Brighter(a, b Emitted) bool {
	return Less(a, b) != 0
}

// Decrement subtracts one from every channel, stopping at zero.
func (e Emitted) Decrement() Emitted {
	return decrementHalf(e) | decrementHalf(e>>4)<<4
}

func (e Emitted) String() string {
	r, g, b := e.Channels()
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}

// halfLess compares the channels held in bits 0-3 and 8-11.
func halfLess(a, b Emitted) Emitted {
	d := (((a & componentMask) | borrowGuard) - (b & componentMask)) & carryMask
	return (d >> 1) | (d >> 2) | (d >> 3) | (d >> 4)
}

func decrementHalf(x Emitted) Emitted {
	d := ((x & componentMask) | borrowGuard) - 0x0101
	b := d & carryMask
	return (d + (b >> 4)) & componentMask
}
