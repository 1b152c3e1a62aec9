package main

import "sync"

// SectionPos identifies one section slot in the world: chunk X/Z plus the
// section's Y index in section coordinates (world Y / 16, so -4..19 here).
type SectionPos struct {
	X, Y, Z int32
}

func SectionPosFrom(pos ChunkPos, index int) SectionPos {
	return SectionPos{X: pos[0], Y: int32(index) + MinSectionY, Z: pos[1]}
}

// LightStore is the sparse per-section light lookup the extractor samples.
// A section the lighting engine hasn't reached yet simply has no entry;
// Sample then returns nil for that layer and the chunk-wide buffer keeps its
// zeroed slab, which renders fully dark until a later extraction sees the
// computed layer.
type LightStore struct {
	mu    sync.RWMutex
	sky   map[SectionPos]*NibbleArray
	block map[SectionPos]*NibbleArray
}

func NewLightStore() *LightStore {
	return &LightStore{
		sky:   make(map[SectionPos]*NibbleArray),
		block: make(map[SectionPos]*NibbleArray),
	}
}

func (s *LightStore) SetSky(pos SectionPos, data *NibbleArray) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data == nil {
		delete(s.sky, pos)
		return
	}
	s.sky[pos] = data
}

func (s *LightStore) SetBlock(pos SectionPos, data *NibbleArray) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data == nil {
		delete(s.block, pos)
		return
	}
	s.block[pos] = data
}

// Sample returns the sky and block light layers for a section, either of
// which may be nil if that layer hasn't been materialized.
func (s *LightStore) Sample(pos SectionPos) (sky, block *NibbleArray) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sky[pos], s.block[pos]
}

// LoadChunk pulls whatever light slabs a freshly loaded chunk carries into
// the store, keyed by section position.
func (s *LightStore) LoadChunk(pos ChunkPos, c *Chunk) {
	for i := range c.Sections {
		if i >= SectionsPerChunk {
			break
		}
		sec := &c.Sections[i]
		sp := SectionPosFrom(pos, i)
		if sky := NibbleArrayFromSlice(sec.SkyLight); sky != nil {
			s.SetSky(sp, sky)
		}
		if blk := NibbleArrayFromSlice(sec.BlockLight); blk != nil {
			s.SetBlock(sp, blk)
		}
	}
}

// DropChunk evicts all light entries for a chunk column.
func (s *LightStore) DropChunk(pos ChunkPos) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < SectionsPerChunk; i++ {
		sp := SectionPosFrom(pos, i)
		delete(s.sky, sp)
		delete(s.block, sp)
	}
}
