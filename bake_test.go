package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bakeTestChunk(t *testing.T, pos ChunkPos, c *Chunk) *ChunkMesh {
	t.Helper()
	e, backend := newTestExtractor(t, pos)
	bufs, err := e.Extract(pos, c)
	require.NoError(t, err)
	backend.SubmitChunk(pos, bufs)
	backend.BakeChunk(pos)
	mesh := backend.Mesh(pos)
	require.NotNil(t, mesh)
	return mesh
}

func TestBakeLoneVoxel(t *testing.T) {
	c := EmptyChunk(SectionsPerChunk)
	c.Sections[6].SetBlock(5<<8|3<<4|2, stateOf(t, "minecraft:stone"))

	mesh := bakeTestChunk(t, ChunkPos{1, -2}, c)
	require.Len(t, mesh.Sections, 1)

	sm := mesh.Sections[0]
	assert.Equal(t, [3]int32{16, (6 + MinSectionY) * 16, -32}, sm.Origin)
	// An isolated cube shows all six faces.
	assert.Len(t, sm.Vertices, 6*4)
	assert.Len(t, sm.Indices, 6*6)
}

func TestBakeEnclosedVoxelHidden(t *testing.T) {
	stone := stateOf(t, "minecraft:stone")
	c := EmptyChunk(SectionsPerChunk)
	for x := 4; x <= 6; x++ {
		for y := 4; y <= 6; y++ {
			for z := 4; z <= 6; z++ {
				c.Sections[6].SetBlock(y<<8|z<<4|x, stone)
			}
		}
	}

	mesh := bakeTestChunk(t, ChunkPos{0, 0}, c)
	require.Len(t, mesh.Sections, 1)

	// A 3x3x3 cube of stone exposes only its 9-quad outer shell per side;
	// the center voxel and all interior faces are culled.
	assert.Len(t, mesh.Sections[0].Vertices, 6*9*4)
	assert.Len(t, mesh.Sections[0].Indices, 6*9*6)
}

func TestBakeCullsAcrossSectionBoundary(t *testing.T) {
	stone := stateOf(t, "minecraft:stone")
	c := EmptyChunk(SectionsPerChunk)
	// Two voxels stacked across the section 6/7 seam: the touching faces
	// must cull even though they live in different sections.
	c.Sections[6].SetBlock(15<<8|8<<4|8, stone)
	c.Sections[7].SetBlock(0<<8|8<<4|8, stone)

	mesh := bakeTestChunk(t, ChunkPos{0, 0}, c)
	require.Len(t, mesh.Sections, 2)
	for _, sm := range mesh.Sections {
		assert.Len(t, sm.Vertices, 5*4)
	}
}

func TestBakeChunkEdgeFacesVisible(t *testing.T) {
	c := EmptyChunk(SectionsPerChunk)
	c.Sections[6].SetBlock(8<<8|8<<4|0, stateOf(t, "minecraft:stone"))

	mesh := bakeTestChunk(t, ChunkPos{0, 0}, c)
	require.Len(t, mesh.Sections, 1)
	// Neighbor chunks aren't consulted, so the x=0 face stays visible
	// along with the rest.
	assert.Len(t, mesh.Sections[0].Vertices, 6*4)
}

func TestBakeVertexContents(t *testing.T) {
	c := EmptyChunk(SectionsPerChunk)
	c.Sections[6].SetBlock(15<<8|15<<4|15, stateOf(t, "minecraft:stone"))

	mesh := bakeTestChunk(t, ChunkPos{0, 0}, c)
	require.Len(t, mesh.Sections, 1)
	sm := mesh.Sections[0]

	// The voxel sits in the top corner: some corners land on the section
	// edge and must come back as exactly 16.0 via the snap flags.
	sawEdge := false
	for _, rec := range sm.Vertices {
		v := rec.Decode()
		for axis := 0; axis < 3; axis++ {
			require.GreaterOrEqual(t, v.Position[axis], float32(15))
			require.LessOrEqual(t, v.Position[axis], float32(16))
			if v.Position[axis] == 16 {
				sawEdge = true
			}
		}
		require.LessOrEqual(t, v.UV[0], float32(1))
		require.LessOrEqual(t, v.UV[1], float32(1))
	}
	assert.True(t, sawEdge)
}

func TestBakeRegisteredOneBitStorage(t *testing.T) {
	// The narrowest real section: a two-entry palette over 1-bit indices,
	// registered through the wire and descriptor paths rather than built
	// from a loaded chunk, baked all the way to world-space vertices.
	pos := ChunkPos{2, -3}
	backend := NewBackend(Logger{})
	backend.Init(pos, 1)
	stone := stateOf(t, "minecraft:stone")

	var wire bytes.Buffer
	pal := &linearPalette[BlocksState]{values: []BlocksState{0, stone}, bits: 1}
	_, err := pal.WriteTo(&wire)
	require.NoError(t, err)
	ph, err := backend.RegisterPalette(1, wire.Bytes())
	require.NoError(t, err)

	storage := NewBitStorage(1, SectionBlockVolume, nil)
	x, y, z := 3, 5, 7
	storage.Set(y<<8|z<<4|x, 1)
	desc, err := Describe(storage)
	require.NoError(t, err)
	assert.Equal(t, 1, desc.BitWidth)
	assert.Equal(t, 64, desc.ElemsPerWord)
	sh, err := backend.RegisterPackedStorage(desc)
	require.NoError(t, err)

	const si = 6
	bufs := &ChunkBuffers{}
	bufs.PaletteHandles[si] = ph + 1
	bufs.StorageHandles[si] = sh + 1
	backend.SubmitChunk(pos, bufs)
	backend.BakeChunk(pos)

	mesh := backend.Mesh(pos)
	require.NotNil(t, mesh)
	require.Len(t, mesh.Sections, 1)
	sm := mesh.Sections[0]
	origin := [3]int32{pos[0] * 16, (si + MinSectionY) * 16, pos[1] * 16}
	assert.Equal(t, origin, sm.Origin)
	require.Len(t, sm.Vertices, 6*4)

	// Every decoded corner lands inside the section cube at its world
	// origin, hugging the lone stone voxel.
	voxel := [3]int{x, y, z}
	for _, rec := range sm.Vertices {
		v := rec.Decode()
		for axis := 0; axis < 3; axis++ {
			world := float32(origin[axis]) + v.Position[axis]
			require.GreaterOrEqual(t, world, float32(origin[axis]))
			require.LessOrEqual(t, world, float32(origin[axis]+16))
			require.GreaterOrEqual(t, v.Position[axis], float32(voxel[axis]))
			require.LessOrEqual(t, v.Position[axis], float32(voxel[axis]+1))
		}
	}
}

func TestBakeIndicesReferenceQuadCorners(t *testing.T) {
	c := EmptyChunk(SectionsPerChunk)
	c.Sections[6].SetBlock(0, stateOf(t, "minecraft:stone"))

	mesh := bakeTestChunk(t, ChunkPos{0, 0}, c)
	sm := mesh.Sections[0]
	require.Len(t, sm.Indices, len(sm.Vertices)/4*6)
	for q := 0; q < len(sm.Indices)/6; q++ {
		base := uint32(q * 4)
		assert.Equal(t, []uint32{base, base + 1, base + 3, base + 1, base + 2, base + 3},
			sm.Indices[q*6:q*6+6])
	}
}
