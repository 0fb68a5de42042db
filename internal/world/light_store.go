package world

import "voxelterrain/internal/light"

// LightStore keeps the emitted and sky light of every block in a chunk in two
// dense arrays ordered as LocalPosition.Index.
type LightStore struct {
	emitted []light.Emitted
	sky     []light.Sky
}

func NewLightStore() *LightStore {
	return &LightStore{
		emitted: make([]light.Emitted, ChunkVolume),
		sky:     make([]light.Sky, ChunkVolume),
	}
}

func (s *LightStore) Emitted(pos LocalPosition) light.Emitted {
	return s.emitted[pos.Index()]
}

func (s *LightStore) SetEmitted(pos LocalPosition, v light.Emitted) {
	s.emitted[pos.Index()] = v
}

func (s *LightStore) Sky(pos LocalPosition) light.Sky {
	return s.sky[pos.Index()]
}

func (s *LightStore) SetSky(pos LocalPosition, v light.Sky) {
	s.sky[pos.Index()] = v
}

// EmittedField returns a copy of the emitted light array.
func (s *LightStore) EmittedField() []light.Emitted {
	return append([]light.Emitted(nil), s.emitted...)
}

// SkyField returns a copy of the skylight array.
func (s *LightStore) SkyField() []light.Sky {
	return append([]light.Sky(nil), s.sky...)
}
