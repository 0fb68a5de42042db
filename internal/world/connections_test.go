package world

import (
	"testing"

	"voxelterrain/internal/block"
)

func filledBlocks(id block.ID) []block.ID {
	blocks := make([]block.ID, ChunkVolume)
	for i := range blocks {
		blocks[i] = id
	}
	return blocks
}

func TestConnectionsOfUniformChunks(t *testing.T) {
	reg := block.MustDefault()
	stone, _ := reg.Lookup("stone")

	if got := ComputeConnections(filledBlocks(block.Air), reg); got != AllConnections || got.Count() != 15 {
		t.Fatalf("expected empty chunk to connect every face pair, got %#x", uint16(got))
	}
	if got := ComputeConnections(filledBlocks(stone), reg); got != 0 {
		t.Fatalf("expected solid chunk to have no connections, got %#x", uint16(got))
	}
}

func TestConnectionsAcrossWall(t *testing.T) {
	reg := block.MustDefault()
	stone, _ := reg.Lookup("stone")

	blocks := filledBlocks(block.Air)
	for z := 0; z < ChunkSize; z++ {
		for y := 0; y < ChunkSize; y++ {
			blocks[LocalPosition{X: 16, Y: y, Z: z}.Index()] = stone
		}
	}
	conn := ComputeConnections(blocks, reg)

	if conn.Connected(FacePosX, FaceNegX) {
		t.Fatalf("wall should separate +x from -x")
	}
	if !conn.Connected(FacePosY, FaceNegY) {
		t.Fatalf("expected +y and -y to stay connected beside the wall")
	}
	if !conn.Connected(FacePosX, FacePosZ) || !conn.Connected(FaceNegX, FaceNegY) {
		t.Fatalf("expected each side of the wall to reach the other faces")
	}
	if conn.Count() != 14 {
		t.Fatalf("expected 14 connected pairs, got %d", conn.Count())
	}
}

func TestConnectionsAreSymmetric(t *testing.T) {
	reg := block.MustDefault()
	stone, _ := reg.Lookup("stone")

	// tunnel from -z to +y
	blocks := filledBlocks(stone)
	for z := 0; z <= 10; z++ {
		blocks[LocalPosition{X: 5, Y: 10, Z: z}.Index()] = block.Air
	}
	for y := 10; y < ChunkSize; y++ {
		blocks[LocalPosition{X: 5, Y: y, Z: 10}.Index()] = block.Air
	}
	conn := ComputeConnections(blocks, reg)

	for a := Face(0); a < faceCount; a++ {
		for b := Face(0); b < faceCount; b++ {
			if a != b && conn.Connected(a, b) != conn.Connected(b, a) {
				t.Fatalf("connection %v-%v is not symmetric", a, b)
			}
		}
	}
	if !conn.Connected(FaceNegZ, FacePosY) {
		t.Fatalf("expected tunnel to connect -z and +y")
	}
	if conn.Count() != 1 {
		t.Fatalf("expected exactly one connection, got %d", conn.Count())
	}
}
