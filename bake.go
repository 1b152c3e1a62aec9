package main

import (
	"encoding/binary"

	"github.com/Tnze/go-mc/level/block"
)

// ChunkMesh is the baked geometry for one chunk, one mesh per populated
// section. Section origins are world-space block coordinates.
type ChunkMesh struct {
	Pos      ChunkPos
	Sections []SectionMesh
}

type SectionMesh struct {
	Origin   [3]int32
	Vertices []VertexRecord
	Indices  []uint32
}

// atlasTiles is the number of 16-texel tiles per atlas row. Tiles are
// assigned by state id, wrapping across rows.
const atlasTiles = 128

// quadFaces describes the six cube faces: the neighbor offset deciding
// visibility, the four corner offsets in block units, and whether the face
// points up (and therefore takes the grass tint).
var quadFaces = [6]struct {
	dx, dy, dz int
	corners    [4][3]int
	up         bool
}{
	{-1, 0, 0, [4][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}, false},
	{1, 0, 0, [4][3]int{{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}, false},
	{0, -1, 0, [4][3]int{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}, false},
	{0, 1, 0, [4][3]int{{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}}, true},
	{0, 0, -1, [4][3]int{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}}, false},
	{0, 0, 1, [4][3]int{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}, false},
}

var quadUVs = [4][2]uint16{{0, 16}, {16, 16}, {16, 0}, {0, 0}}

// bakeChunk resolves every voxel through its registered palette and storage
// and emits one quad per face not hidden by an in-chunk neighbor. Neighbor
// chunks are not consulted: faces on the chunk boundary stay visible.
func bakeChunk(pos ChunkPos, st *chunkState, palettes []palette[BlocksState], storages []PackedStorageDesc) *ChunkMesh {
	mesh := &ChunkMesh{Pos: pos}

	// stateAt works in chunk-local coordinates with y counted from the
	// bottom section. ok is false outside the chunk or in an empty slot.
	stateAt := func(x, y, z int) (BlocksState, bool) {
		if x < 0 || x > 15 || z < 0 || z > 15 || y < 0 || y >= SectionsPerChunk*16 {
			return 0, false
		}
		si := y >> 4
		ph, sh := st.paletteHandles[si], st.storageHandles[si]
		if ph == 0 || sh == 0 {
			return 0, false
		}
		if ph > int64(len(palettes)) || sh > int64(len(storages)) {
			return 0, false
		}
		idx := (y&15)<<8 | z<<4 | x
		return palettes[ph-1].value(storages[sh-1].Get(idx)), true
	}

	solid := func(x, y, z int) bool {
		s, ok := stateAt(x, y, z)
		return ok && !block.IsAir(s)
	}

	for si := 0; si < SectionsPerChunk; si++ {
		if st.paletteHandles[si] == 0 || st.storageHandles[si] == 0 {
			continue
		}
		sm := SectionMesh{Origin: [3]int32{
			pos[0] * 16,
			(int32(si) + MinSectionY) * 16,
			pos[1] * 16,
		}}

		for y := si * 16; y < si*16+16; y++ {
			for z := 0; z < 16; z++ {
				for x := 0; x < 16; x++ {
					state, ok := stateAt(x, y, z)
					if !ok || block.IsAir(state) {
						continue
					}
					tu := uint16(int(state) % atlasTiles * 16)
					tv := uint16(int(state) / atlasTiles % atlasTiles * 16)
					sky, blk := st.lightAt(x, y, z)

					for _, face := range quadFaces {
						if solid(x+face.dx, y+face.dy, z+face.dz) {
							continue
						}
						r, g, b := uint8(255), uint8(255), uint8(255)
						if face.up {
							c := binary.LittleEndian.Uint32(st.grassColors[(x*16+z)*4:])
							r, g, b = uint8(c), uint8(c>>8), uint8(c>>16)
						}
						base := uint32(len(sm.Vertices))
						for ci, corner := range face.corners {
							sm.Vertices = append(sm.Vertices, PackVertex(
								(x+corner[0])*16,
								(y&15+corner[1])*16,
								(z+corner[2])*16,
								r, g, b,
								tu+quadUVs[ci][0], tv+quadUVs[ci][1],
								sky, blk,
							))
						}
						sm.Indices = append(sm.Indices,
							base, base+1, base+3,
							base+1, base+2, base+3)
					}
				}
			}
		}
		if len(sm.Vertices) > 0 {
			mesh.Sections = append(mesh.Sections, sm)
		}
	}
	return mesh
}

// lightAt reads the submitted nibble slabs at a chunk-local voxel.
func (st *chunkState) lightAt(x, y, z int) (sky, block uint8) {
	si := y >> 4
	ni := (y&15)<<8 | z<<4 | x
	off := si*LightBytesPerSection + ni>>1
	shift := uint(ni&1) * 4
	return st.skyLight[off] >> shift & 0xF, st.blockLight[off] >> shift & 0xF
}
