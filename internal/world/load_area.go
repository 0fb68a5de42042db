package world

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// AreaShape selects which chunks inside the bounding box of a LoadArea are
// kept loaded.
type AreaShape int

const (
	Cubic AreaShape = iota
	Spherical
	// Cylindrical areas are cylinders around the y axis.
	Cylindrical
)

var areaShapeNames = map[AreaShape]string{
	Cubic:       "cubic",
	Spherical:   "spherical",
	Cylindrical: "cylindrical",
}

func (s AreaShape) String() string {
	if name, ok := areaShapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AreaShape(%d)", int(s))
}

// ParseAreaShape accepts the names printed by AreaShape.String.
func ParseAreaShape(name string) (AreaShape, error) {
	for shape, n := range areaShapeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return shape, nil
		}
	}
	return 0, fmt.Errorf("unknown area shape %q", name)
}

// AreaState tracks whether the terrain has processed the latest move or
// resize of an area.
type AreaState int

const (
	Dirty AreaState = iota
	Clean
)

func (s AreaState) String() string {
	if s == Clean {
		return "clean"
	}
	return "dirty"
}

// AreaSize is the extent of a load area in chunks.
type AreaSize struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (s AreaSize) Volume() int {
	return s.X * s.Y * s.Z
}

func (s AreaSize) vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(s.X), float32(s.Y), float32(s.Z)}
}

type slotState int

const (
	slotUnloaded slotState = iota
	slotLoading
	slotLoaded
)

// chunkSlot remembers the position it was filled for: the table is addressed
// modulo the area size, so a slot may still describe a chunk that has left
// the area.
type chunkSlot struct {
	state    slotState
	position ChunkPosition
	index    Index
}

// LoadArea is a region of chunks the terrain keeps loaded. It doubles as an
// O(1) lookup table from chunk position to arena index for the chunks in its
// bounding box.
type LoadArea struct {
	id        uuid.UUID
	name      string
	slots     []chunkSlot
	position  ChunkPosition
	size      AreaSize
	shape     AreaShape
	state     AreaState
	center    mgl32.Vec3
	sizeRecip mgl32.Vec3
}

// NewLoadArea creates a dirty area whose lower corner is at position. Every
// size component must be positive.
func NewLoadArea(name string, position ChunkPosition, size AreaSize, shape AreaShape) *LoadArea {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		panic(fmt.Sprintf("load area size %+v must be positive", size))
	}
	a := &LoadArea{
		id:       uuid.New(),
		name:     name,
		position: position,
		shape:    shape,
	}
	a.resize(size)
	return a
}

// NewLoadAreaAround creates an area centred on center, given in chunks.
func NewLoadAreaAround(name string, center mgl32.Vec3, size AreaSize, shape AreaShape) *LoadArea {
	return NewLoadArea(name, cornerFor(center, size), size, shape)
}

func cornerFor(center mgl32.Vec3, size AreaSize) ChunkPosition {
	return ChunkPosition{
		X: floorInt(center[0]) - size.X/2,
		Y: floorInt(center[1]) - size.Y/2,
		Z: floorInt(center[2]) - size.Z/2,
	}
}

func (a *LoadArea) resize(size AreaSize) {
	a.size = size
	a.slots = make([]chunkSlot, size.Volume())
	a.sizeRecip = mgl32.Vec3{1 / float32(size.X), 1 / float32(size.Y), 1 / float32(size.Z)}
	a.updateCenter()
	a.state = Dirty
}

func (a *LoadArea) updateCenter() {
	a.center = a.position.Vec3().Add(a.size.vec3().Mul(0.5))
}

func (a *LoadArea) ID() uuid.UUID {
	return a.id
}

func (a *LoadArea) Name() string {
	return a.name
}

func (a *LoadArea) Shape() AreaShape {
	return a.shape
}

func (a *LoadArea) State() AreaState {
	return a.state
}

func (a *LoadArea) Size() AreaSize {
	return a.size
}

func (a *LoadArea) Center() mgl32.Vec3 {
	return a.center
}

func (a *LoadArea) Position() ChunkPosition {
	return a.position
}

func (a *LoadArea) String() string {
	return fmt.Sprintf("%s[%s %s at %v]", a.name, a.shape, a.id.String()[:8], a.position)
}

// SetPosition moves the lower corner, marking the area dirty only when it
// actually moves.
func (a *LoadArea) SetPosition(pos ChunkPosition) {
	if pos == a.position {
		return
	}
	a.position = pos
	a.updateCenter()
	a.state = Dirty
}

// SetCenter moves the area so that center, given in chunks, lies in its
// middle chunk.
func (a *LoadArea) SetCenter(center mgl32.Vec3) {
	a.SetPosition(cornerFor(center, a.size))
}

// SetSize resizes the area. The lookup table is rebuilt empty and the area is
// always marked dirty, so the terrain registers loaded chunks again.
func (a *LoadArea) SetSize(size AreaSize) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		panic(fmt.Sprintf("load area size %+v must be positive", size))
	}
	a.resize(size)
}

func (a *LoadArea) setState(s AreaState) {
	a.state = s
}

// IsWithinBounds reports whether pos lies in the bounding box of the area.
func (a *LoadArea) IsWithinBounds(pos ChunkPosition) bool {
	d := pos.Sub(a.position)
	return d.X >= 0 && d.Y >= 0 && d.Z >= 0 && d.X < a.size.X && d.Y < a.size.Y && d.Z < a.size.Z
}

// Contains reports whether pos belongs to the area shape.
func (a *LoadArea) Contains(pos ChunkPosition) bool {
	if !a.IsWithinBounds(pos) {
		return false
	}
	d := pos.Vec3().Sub(a.center)
	v := mgl32.Vec3{d[0] * a.sizeRecip[0], d[1] * a.sizeRecip[1], d[2] * a.sizeRecip[2]}
	switch a.shape {
	case Spherical:
		return v.Dot(v) <= 0.25
	case Cylindrical:
		xz := v[0]*v[0] + v[2]*v[2]
		return xz <= 0.25 && abs32(v[1]) <= 0.5
	default:
		return abs32(v[0]) <= 0.5 && abs32(v[1]) <= 0.5 && abs32(v[2]) <= 0.5
	}
}

// Positions calls fn for every chunk position in the area shape until fn
// returns false.
func (a *LoadArea) Positions(fn func(ChunkPosition) bool) {
	for x := a.position.X; x < a.position.X+a.size.X; x++ {
		for y := a.position.Y; y < a.position.Y+a.size.Y; y++ {
			for z := a.position.Z; z < a.position.Z+a.size.Z; z++ {
				pos := ChunkPosition{X: x, Y: y, Z: z}
				if a.Contains(pos) && !fn(pos) {
					return
				}
			}
		}
	}
}

// ChunkIndex returns the arena index of pos if the area has it loaded.
func (a *LoadArea) ChunkIndex(pos ChunkPosition) (Index, bool) {
	slot, ok := a.slot(pos)
	if !ok || slot.state != slotLoaded || slot.position != pos {
		return Index{}, false
	}
	return slot.index, true
}

func (a *LoadArea) IsLoaded(pos ChunkPosition) bool {
	_, ok := a.ChunkIndex(pos)
	return ok
}

func (a *LoadArea) IsLoading(pos ChunkPosition) bool {
	slot, ok := a.slot(pos)
	return ok && slot.state == slotLoading && slot.position == pos
}

// IsUnloaded is true when pos is neither loaded nor loading, including when
// it lies outside the bounds.
func (a *LoadArea) IsUnloaded(pos ChunkPosition) bool {
	slot, ok := a.slot(pos)
	return !ok || slot.state == slotUnloaded || slot.position != pos
}

func (a *LoadArea) markLoaded(pos ChunkPosition, idx Index) {
	*a.mustSlot(pos) = chunkSlot{state: slotLoaded, position: pos, index: idx}
}

func (a *LoadArea) markLoading(pos ChunkPosition) {
	*a.mustSlot(pos) = chunkSlot{state: slotLoading, position: pos}
}

func (a *LoadArea) markUnloaded(pos ChunkPosition) {
	*a.mustSlot(pos) = chunkSlot{}
}

func (a *LoadArea) clearSlots() {
	for i := range a.slots {
		a.slots[i] = chunkSlot{}
	}
}

func (a *LoadArea) slotIndex(pos ChunkPosition) (int, bool) {
	if !a.IsWithinBounds(pos) {
		return 0, false
	}
	x := remEuclid(pos.X, a.size.X)
	y := remEuclid(pos.Y, a.size.Y)
	z := remEuclid(pos.Z, a.size.Z)
	return x + a.size.X*(y+a.size.Y*z), true
}

func (a *LoadArea) slot(pos ChunkPosition) (chunkSlot, bool) {
	i, ok := a.slotIndex(pos)
	if !ok {
		return chunkSlot{}, false
	}
	return a.slots[i], true
}

func (a *LoadArea) mustSlot(pos ChunkPosition) *chunkSlot {
	i, ok := a.slotIndex(pos)
	if !ok {
		panic(fmt.Sprintf("chunk %v outside bounds of load area %s", pos, a))
	}
	return &a.slots[i]
}

func remEuclid(v, n int) int {
	r := v % n
	if r < 0 {
		r += n
	}
	return r
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
