package world

import "fmt"

// EventKind tags a terrain Event.
type EventKind int

const (
	ChunkLoaded EventKind = iota
	ChunkUnloaded
	BlockModified
	ChunkLightUpdated
)

var eventKindNames = [...]string{"chunk loaded", "chunk unloaded", "block modified", "chunk light updated"}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// Event records a change of terrain state for consumers such as a mesher.
// Block is only meaningful for BlockModified.
type Event struct {
	Kind  EventKind
	Chunk ChunkPosition
	Block LocalPosition
}

func (e Event) String() string {
	if e.Kind == BlockModified {
		return fmt.Sprintf("%s %v/%v", e.Kind, e.Chunk, e.Block)
	}
	return fmt.Sprintf("%s %v", e.Kind, e.Chunk)
}
