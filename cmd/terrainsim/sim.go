package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"voxelterrain/internal/block"
	"voxelterrain/internal/config"
	"voxelterrain/internal/world"
)

const (
	editInterval  = 20 // frames between lamp placements and removals
	editReach     = 96
	chunkSizeRecp = 1.0 / world.ChunkSize
)

var editDirection = mgl32.Vec3{0.3, -1, 0.2}.Normalize()

type trackedArea struct {
	index  world.Index
	follow bool
}

// simulation drives a Terrain the way a game loop would: move the camera,
// drag the camera-bound areas along, update, consume events.
type simulation struct {
	terrain  *world.Terrain
	log      *slog.Logger
	areas    []trackedArea
	camera   mgl32.Vec3
	velocity mgl32.Vec3

	lamp    block.ID
	hasLamp bool
	placed  *world.GlobalPosition

	events map[world.EventKind]int
	edits  int
}

func newSimulation(cfg *config.Config, t *world.Terrain, log *slog.Logger) (*simulation, error) {
	s := &simulation{
		terrain:  t,
		log:      log,
		camera:   vec3(cfg.Camera.Start),
		velocity: vec3(cfg.Camera.Velocity),
		events:   make(map[world.EventKind]int),
	}
	s.lamp, s.hasLamp = t.Registry().Lookup("lamp_orange")

	for _, ac := range cfg.LoadAreas {
		shape, err := world.ParseAreaShape(ac.Shape)
		if err != nil {
			return nil, fmt.Errorf("load area %q: %w", ac.Name, err)
		}
		center := vec3(ac.Center)
		if ac.FollowCamera {
			center = s.camera.Mul(chunkSizeRecp)
		}
		size := world.AreaSize{X: ac.Size.X, Y: ac.Size.Y, Z: ac.Size.Z}
		area := world.NewLoadAreaAround(ac.Name, center, size, shape)
		idx := t.AddLoadArea(area)
		s.areas = append(s.areas, trackedArea{index: idx, follow: ac.FollowCamera})
		log.Info("load area added", "area", area, "size", size, "follow", ac.FollowCamera)
	}
	return s, nil
}

// frameReport summarises one call to step.
type frameReport struct {
	Frame  int
	Camera mgl32.Vec3
	Events map[world.EventKind]int
	Stats  world.Stats
}

func (s *simulation) step(ctx context.Context, frame int) frameReport {
	s.camera = s.camera.Add(s.velocity)
	for _, a := range s.areas {
		if a.follow {
			s.terrain.LoadArea(a.index).SetCenter(s.camera.Mul(chunkSizeRecp))
		}
	}

	s.terrain.Update(ctx, s.camera)

	counts := make(map[world.EventKind]int)
	for _, ev := range s.terrain.Events() {
		counts[ev.Kind]++
		s.events[ev.Kind]++
		s.log.Log(ctx, world.LevelTrace, "terrain event", "event", ev)
	}
	s.terrain.ClearEvents()

	if frame > 0 && frame%editInterval == 0 {
		s.edit()
	}

	return frameReport{Frame: frame, Camera: s.camera, Events: counts, Stats: s.terrain.Stats()}
}

// edit alternates between placing a lamp on the ground in front of the
// camera and removing it again.
func (s *simulation) edit() {
	if !s.hasLamp || len(s.areas) == 0 {
		return
	}
	area := s.areas[0].index

	if s.placed != nil {
		if s.terrain.SetBlock(area, *s.placed, block.Air) {
			s.edits++
			s.log.Debug("lamp removed", "position", *s.placed)
		}
		s.placed = nil
		return
	}

	hit, ok := s.terrain.Raymarch(area, s.camera, editDirection, editReach)
	if !ok || !hit.HasNormal || !faceNormal(hit.Normal) {
		return
	}
	target := world.GlobalPosition{
		X: hit.Position.X + hit.Normal[0],
		Y: hit.Position.Y + hit.Normal[1],
		Z: hit.Position.Z + hit.Normal[2],
	}
	if id, loaded := s.terrain.Block(area, target); !loaded || id != block.Air {
		return
	}
	if s.terrain.SetBlock(area, target, s.lamp) {
		s.edits++
		s.placed = &target
		s.log.Debug("lamp placed", "position", target, "ground", hit.Position)
	}
}

// savePreviews renders every loaded chunk in the column under the camera.
func (s *simulation) savePreviews(dir string) ([]string, error) {
	column := world.ChunkContaining(s.camera)
	var (
		paths []string
		err   error
	)
	s.terrain.Chunks(func(_ world.Index, c *world.Chunk) bool {
		p := c.Position()
		if p.X != column.X || p.Z != column.Z {
			return true
		}
		var path string
		if path, err = world.SaveChunkPreview(c, dir); err != nil {
			return false
		}
		paths = append(paths, path)
		return true
	})
	return paths, err
}

// faceNormal reports whether n points out of exactly one face.
func faceNormal(n [3]int) bool {
	sum := 0
	for _, v := range n {
		if v < -1 || v > 1 {
			return false
		}
		sum += v * v
	}
	return sum == 1
}

func vec3(v config.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}
