package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternSameIdentitySameHandle(t *testing.T) {
	backend := NewBackend(Logger{})
	reg := NewPaletteRegistry(backend)

	c := NewStatesPaletteContainer(SectionBlockVolume, 0)
	c.Set(0, stateOf(t, "minecraft:stone"))

	h1, err := reg.Intern(c)
	require.NoError(t, err)
	h2, err := reg.Intern(c)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, reg.Len())
}

func TestInternDistinctIdentitiesDistinctHandles(t *testing.T) {
	backend := NewBackend(Logger{})
	reg := NewPaletteRegistry(backend)
	stone := stateOf(t, "minecraft:stone")

	// Equal contents, separate palette objects: interning is by identity.
	a := NewStatesPaletteContainer(SectionBlockVolume, 0)
	a.Set(0, stone)
	b := NewStatesPaletteContainer(SectionBlockVolume, 0)
	b.Set(0, stone)

	ha, err := reg.Intern(a)
	require.NoError(t, err)
	hb, err := reg.Intern(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
	assert.Equal(t, 2, reg.Len())
}

func TestInternPromotedPaletteIsNewIdentity(t *testing.T) {
	backend := NewBackend(Logger{})
	reg := NewPaletteRegistry(backend)

	c := NewStatesPaletteContainer(SectionBlockVolume, 0)
	c.Set(0, stateOf(t, "minecraft:stone"))
	h1, err := reg.Intern(c)
	require.NoError(t, err)

	// Overflow the linear palette so the container swaps its table out.
	for i, name := range []string{
		"minecraft:dirt", "minecraft:sand", "minecraft:gravel",
		"minecraft:oak_log", "minecraft:oak_planks", "minecraft:cobblestone",
		"minecraft:bedrock", "minecraft:obsidian", "minecraft:glass",
		"minecraft:sandstone", "minecraft:ice", "minecraft:clay",
		"minecraft:pumpkin", "minecraft:netherrack", "minecraft:soul_sand",
		"minecraft:glowstone",
	} {
		c.Set(i+1, stateOf(t, name))
	}

	h2, err := reg.Intern(c)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, reg.Len())
}

func TestRegisterPaletteDecodes(t *testing.T) {
	backend := NewBackend(Logger{})
	reg := NewPaletteRegistry(backend)
	stone := stateOf(t, "minecraft:stone")

	c := NewStatesPaletteContainer(SectionBlockVolume, 0)
	c.Set(0, stone)
	h, err := reg.Intern(c)
	require.NoError(t, err)

	backend.mu.RLock()
	pal := backend.palettes[h]
	backend.mu.RUnlock()

	// The backend-side table resolves the same indices as the producer's.
	for i, want := range c.Palette() {
		assert.Equal(t, want, pal.value(i))
	}
}
