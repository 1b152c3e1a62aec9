package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitChunkCopies(t *testing.T) {
	pos := ChunkPos{0, 0}
	e, backend := newTestExtractor(t, pos)
	c := EmptyChunk(SectionsPerChunk)
	c.Sections[4].SetBlock(0, stateOf(t, "minecraft:stone"))

	bufs, err := e.Extract(pos, c)
	require.NoError(t, err)
	wantGrass := bufs.GrassColors

	backend.SubmitChunk(pos, bufs)

	// The producer owns its buffers again once SubmitChunk returns:
	// poisoning every byte must not reach the backend's copy.
	for i := range bufs.SkyLight {
		bufs.SkyLight[i] = 0xFF
	}
	for i := range bufs.GrassColors {
		bufs.GrassColors[i] = 0xFF
	}
	bufs.PaletteHandles = [SectionsPerChunk]int64{}

	for x := 0; x < 16; x++ {
		got, ok := backend.GrassColorAt(pos, x, 0)
		require.True(t, ok)
		var want [4]byte
		copy(want[:], wantGrass[(x*16)*4:])
		assert.Equal(t, want, [4]byte{byte(got), byte(got >> 8), byte(got >> 16), byte(got >> 24)})
	}

	backend.BakeChunk(pos)
	mesh := backend.Mesh(pos)
	require.NotNil(t, mesh)
	assert.NotEmpty(t, mesh.Sections)
}

func TestSubmitChunkUntracked(t *testing.T) {
	backend := NewBackend(Logger{})
	backend.Init(ChunkPos{0, 0}, 2)

	backend.SubmitChunk(ChunkPos{10, 0}, &ChunkBuffers{})
	assert.Nil(t, backend.Mesh(ChunkPos{10, 0}))
	assert.Equal(t, int64(1), backend.Stats().ChunksDropped)
	assert.Equal(t, int64(0), backend.Stats().ChunksSubmitted)
}

func TestSubmitChunkUninitialized(t *testing.T) {
	backend := NewBackend(Logger{})
	backend.SubmitChunk(ChunkPos{0, 0}, &ChunkBuffers{})
	assert.Equal(t, int64(1), backend.Stats().ChunksDropped)
}

func TestBakeUnknownChunkNoop(t *testing.T) {
	backend := NewBackend(Logger{})
	backend.Init(ChunkPos{0, 0}, 2)
	backend.BakeChunk(ChunkPos{1, 1})
	assert.Nil(t, backend.Mesh(ChunkPos{1, 1}))
}

func TestRegisterPackedStorageCopies(t *testing.T) {
	backend := NewBackend(Logger{})
	b := NewBitStorage(4, SectionBlockVolume, nil)
	b.Set(0, 7)
	desc, err := Describe(b)
	require.NoError(t, err)

	h, err := backend.RegisterPackedStorage(desc)
	require.NoError(t, err)

	b.Set(0, 2)
	backend.mu.RLock()
	stored := backend.storages[h]
	backend.mu.RUnlock()
	assert.Equal(t, 7, stored.Get(0))
}

func TestRegisterPackedStorageValidates(t *testing.T) {
	desc := PackedStorageDesc{BitWidth: 4, ElemsPerWord: 3, Length: SectionBlockVolume}
	_, err := NewBackend(Logger{}).RegisterPackedStorage(desc)
	assert.Error(t, err)

	desc = PackedStorageDesc{BitWidth: 4, ElemsPerWord: 16, Length: SectionBlockVolume, Words: make([]uint64, 10)}
	_, err = NewBackend(Logger{}).RegisterPackedStorage(desc)
	assert.Error(t, err)
}

func TestClearChunks(t *testing.T) {
	pos := ChunkPos{0, 0}
	e, backend := newTestExtractor(t, pos)
	bufs, err := e.Extract(pos, EmptyChunk(SectionsPerChunk))
	require.NoError(t, err)
	backend.SubmitChunk(pos, bufs)
	backend.BakeChunk(pos)

	backend.ClearChunks()
	assert.Nil(t, backend.Mesh(pos))
	_, ok := backend.GrassColorAt(pos, 0, 0)
	assert.False(t, ok)
}
