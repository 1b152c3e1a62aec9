package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Registration tables are append-only; a handle is an index into them.
// maxRegistrations is the resource-exhaustion bound: hitting it fails the
// registration, which callers treat as fatal for the chunk being extracted.
const maxRegistrations = 1 << 20

// Backend is the in-process rendering backend: it owns every byte handed
// across the extraction boundary. SubmitChunk copies all GPU-destined data
// into backend-owned storage before it returns, so the producer may release
// or reuse its buffers unconditionally afterwards.
type Backend struct {
	Log Logger

	mu          sync.RWMutex
	initialized bool
	center      ChunkPos
	radius      int32
	palettes    []palette[BlocksState]
	storages    []PackedStorageDesc
	chunks      map[ChunkPos]*chunkState

	chunksSubmitted atomic.Int64
	chunksBaked     atomic.Int64
	chunksDropped   atomic.Int64
}

// chunkState is the backend-side copy of one submitted chunk, plus its baked
// mesh once BakeChunk has run.
type chunkState struct {
	paletteHandles [SectionsPerChunk]int64
	storageHandles [SectionsPerChunk]int64
	skyLight       []byte
	blockLight     []byte
	grassColors    []byte
	mesh           *ChunkMesh
}

func NewBackend(log Logger) *Backend {
	return &Backend{
		Log:    log,
		chunks: make(map[ChunkPos]*chunkState),
	}
}

// Init sets the tracked chunk range. Submissions outside it, or before Init,
// are dropped.
func (b *Backend) Init(center ChunkPos, radius int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = true
	b.center = center
	b.radius = radius
}

func (b *Backend) tracked(pos ChunkPos) bool {
	dx := pos[0] - b.center[0]
	dz := pos[1] - b.center[1]
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	return dx <= b.radius && dz <= b.radius
}

// RegisterPalette ingests a section palette in its wire form and returns a
// handle for it. bits selects the palette kind the bytes were written with.
func (b *Backend) RegisterPalette(bits int, data []byte) (int64, error) {
	pal := statesCfg{}.create(bits)
	if _, err := pal.ReadFrom(bytes.NewReader(data)); err != nil {
		return 0, fmt.Errorf("decode palette (bits=%d): %w", bits, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.palettes) >= maxRegistrations {
		return 0, errors.New("palette registrations exhausted")
	}
	b.palettes = append(b.palettes, pal)
	return int64(len(b.palettes) - 1), nil
}

// RegisterPackedStorage ingests a packed index array. The words are copied;
// the producer's storage stays untouched and unreferenced.
func (b *Backend) RegisterPackedStorage(desc PackedStorageDesc) (int64, error) {
	if desc.BitWidth <= 0 || desc.ElemsPerWord != 64/desc.BitWidth {
		return 0, fmt.Errorf("inconsistent packing: %d bits, %d elements per word", desc.BitWidth, desc.ElemsPerWord)
	}
	if want := calcBitStorageSize(desc.BitWidth, desc.Length); len(desc.Words) != want {
		return 0, fmt.Errorf("storage word count %d does not match length %d at %d bits", len(desc.Words), desc.Length, desc.BitWidth)
	}
	words := make([]uint64, len(desc.Words))
	copy(words, desc.Words)
	desc.Words = words

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.storages) >= maxRegistrations {
		return 0, errors.New("storage registrations exhausted")
	}
	b.storages = append(b.storages, desc)
	return int64(len(b.storages) - 1), nil
}

// SubmitChunk ingests a chunk buffer set. Everything is copied before the
// call returns; the caller owns bufs again afterwards and may poison it
// freely. An untracked coordinate or an uninitialized backend drops the
// chunk: degraded, not fatal.
func (b *Backend) SubmitChunk(pos ChunkPos, bufs *ChunkBuffers) {
	b.mu.Lock()
	if !b.initialized || !b.tracked(pos) {
		b.mu.Unlock()
		b.chunksDropped.Add(1)
		b.Log.Debug("Dropped chunk submission for untracked position", pos)
		return
	}

	st := &chunkState{
		paletteHandles: bufs.PaletteHandles,
		storageHandles: bufs.StorageHandles,
		skyLight:       make([]byte, len(bufs.SkyLight)),
		blockLight:     make([]byte, len(bufs.BlockLight)),
		grassColors:    make([]byte, len(bufs.GrassColors)),
	}
	copy(st.skyLight, bufs.SkyLight[:])
	copy(st.blockLight, bufs.BlockLight[:])
	copy(st.grassColors, bufs.GrassColors[:])
	b.chunks[pos] = st
	b.mu.Unlock()

	b.chunksSubmitted.Add(1)
}

// BakeChunk builds the mesh for a previously submitted chunk. Unknown
// coordinates are a no-op; a chunk evicted mid-bake just has its result
// discarded.
func (b *Backend) BakeChunk(pos ChunkPos) {
	b.mu.RLock()
	st := b.chunks[pos]
	palettes := b.palettes
	storages := b.storages
	b.mu.RUnlock()
	if st == nil {
		b.Log.Debug("Bake requested for unknown chunk", pos)
		return
	}

	mesh := bakeChunk(pos, st, palettes, storages)

	b.mu.Lock()
	if cur, ok := b.chunks[pos]; ok && cur == st {
		st.mesh = mesh
	}
	b.mu.Unlock()
	b.chunksBaked.Add(1)
}

// Mesh returns the baked mesh for a chunk, or nil if it hasn't baked yet.
func (b *Backend) Mesh(pos ChunkPos) *ChunkMesh {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if st, ok := b.chunks[pos]; ok {
		return st.mesh
	}
	return nil
}

// GrassColorAt reads back the ingested grass color for a column, as the
// little-endian packed value submitted for it.
func (b *Backend) GrassColorAt(pos ChunkPos, x, z int) (uint32, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	st, ok := b.chunks[pos]
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(st.grassColors[(x*16+z)*4:]), true
}

// ClearChunks drops all chunk state, e.g. on a world switch. Palette and
// storage registrations survive; the next extraction reuses or replaces
// them naturally.
func (b *Backend) ClearChunks() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = make(map[ChunkPos]*chunkState)
}

type BackendStats struct {
	ChunksSubmitted int64 `json:"chunks_submitted"`
	ChunksBaked     int64 `json:"chunks_baked"`
	ChunksDropped   int64 `json:"chunks_dropped"`
	Palettes        int   `json:"palettes"`
	Storages        int   `json:"storages"`
}

func (b *Backend) Stats() BackendStats {
	b.mu.RLock()
	palettes, storages := len(b.palettes), len(b.storages)
	b.mu.RUnlock()
	return BackendStats{
		ChunksSubmitted: b.chunksSubmitted.Load(),
		ChunksBaked:     b.chunksBaked.Load(),
		ChunksDropped:   b.chunksDropped.Load(),
		Palettes:        palettes,
		Storages:        storages,
	}
}
