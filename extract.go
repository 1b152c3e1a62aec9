package main

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ChunkBuffers is one chunk's worth of extraction output. Handles use the
// +1 sentinel encoding: 0 means the slot holds no section, handle h is
// stored as h+1. Light slabs are fixed-size regardless of how many sections
// actually exist.
type ChunkBuffers struct {
	PaletteHandles [SectionsPerChunk]int64
	StorageHandles [SectionsPerChunk]int64
	SkyLight       [SectionsPerChunk * LightBytesPerSection]byte
	BlockLight     [SectionsPerChunk * LightBytesPerSection]byte
	GrassColors    [16 * 16 * 4]byte
}

// Extractor walks loaded chunks and turns them into backend registrations
// plus a ChunkBuffers aggregate ready to submit.
type Extractor struct {
	Palettes *PaletteRegistry
	Backend  *Backend
	Lights   *LightStore
	Grass    *GrassSampler
}

// Extract reads c and produces its buffer set. Sections that are missing,
// or whose storage is not bit-packed, keep sentinel handles and are simply
// absent from the result. A failed registration aborts the whole chunk.
func (e *Extractor) Extract(pos ChunkPos, c *Chunk) (*ChunkBuffers, error) {
	bufs := &ChunkBuffers{}

	baseX := pos[0] * 16
	baseZ := pos[1] * 16
	for x := int32(0); x < 16; x++ {
		for z := int32(0); z < 16; z++ {
			color := e.Grass.GrassColor(baseX+x, baseZ+z)
			binary.LittleEndian.PutUint32(bufs.GrassColors[(x*16+z)*4:], color)
		}
	}

	for i := 0; i < SectionsPerChunk; i++ {
		if i >= len(c.Sections) || c.Sections[i].States == nil {
			continue
		}
		sec := &c.Sections[i]

		sky, block := e.Lights.Sample(SectionPosFrom(pos, i))
		if sky != nil {
			copy(bufs.SkyLight[i*LightBytesPerSection:], sky[:])
		}
		if block != nil {
			copy(bufs.BlockLight[i*LightBytesPerSection:], block[:])
		}

		desc, err := Describe(sec.States.Storage())
		if errors.Is(err, ErrNotPacked) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("describe section %d of chunk %v: %w", i, pos, err)
		}

		ph, err := e.Palettes.Intern(sec.States)
		if err != nil {
			return nil, fmt.Errorf("intern palette for section %d of chunk %v: %w", i, pos, err)
		}
		sh, err := e.Backend.RegisterPackedStorage(desc)
		if err != nil {
			return nil, fmt.Errorf("register storage for section %d of chunk %v: %w", i, pos, err)
		}
		bufs.PaletteHandles[i] = ph + 1
		bufs.StorageHandles[i] = sh + 1
	}

	return bufs, nil
}
