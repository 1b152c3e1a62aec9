package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionPosFrom(t *testing.T) {
	pos := ChunkPos{3, -7}
	assert.Equal(t, SectionPos{3, MinSectionY, -7}, SectionPosFrom(pos, 0))
	assert.Equal(t, SectionPos{3, 0, -7}, SectionPosFrom(pos, 4))
	assert.Equal(t, SectionPos{3, 19, -7}, SectionPosFrom(pos, SectionsPerChunk-1))
}

func TestLightStoreSample(t *testing.T) {
	s := NewLightStore()
	sp := SectionPos{0, 0, 0}

	sky, block := s.Sample(sp)
	assert.Nil(t, sky)
	assert.Nil(t, block)

	var slab NibbleArray
	slab.Fill(0xF)
	s.SetSky(sp, &slab)

	sky, block = s.Sample(sp)
	require.NotNil(t, sky)
	assert.Nil(t, block)
	assert.Equal(t, byte(0xF), sky.Get(8, 8, 8))
}

func TestLightStoreLoadAndDropChunk(t *testing.T) {
	s := NewLightStore()
	pos := ChunkPos{1, 2}

	c := EmptyChunk(SectionsPerChunk)
	skyData := make([]byte, LightBytesPerSection)
	skyData[0] = 0x0F
	blockData := make([]byte, LightBytesPerSection)
	blockData[0] = 0x07
	c.Sections[5].SkyLight = skyData
	c.Sections[5].BlockLight = blockData
	c.Sections[6].SkyLight = make([]byte, 17) // wrong size, ignored

	s.LoadChunk(pos, c)

	sky, block := s.Sample(SectionPosFrom(pos, 5))
	require.NotNil(t, sky)
	require.NotNil(t, block)
	assert.Equal(t, byte(0xF), sky.Get(0, 0, 0))
	assert.Equal(t, byte(0x7), block.Get(0, 0, 0))

	sky, _ = s.Sample(SectionPosFrom(pos, 6))
	assert.Nil(t, sky)

	s.DropChunk(pos)
	sky, block = s.Sample(SectionPosFrom(pos, 5))
	assert.Nil(t, sky)
	assert.Nil(t, block)
}
