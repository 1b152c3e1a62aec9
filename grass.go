package main

import "github.com/Tnze/go-mc/level/biome"

// BiomeSampler resolves the biome at a world column. The world host backs
// this with loaded chunk data; tests inject synthetic biomes.
type BiomeSampler func(x, z int32) biome.Type

// PackRGBA packs a color so that writing it little-endian produces the byte
// order r, g, b, a the backend expects in the grass grid.
func PackRGBA(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

var defaultGrassColor = PackRGBA(0x91, 0xBD, 0x59, 0xFF)

// defaultGrassBiome is what unloaded or biome-less columns report.
var defaultGrassBiome = func() biome.Type {
	var t biome.Type
	if err := t.UnmarshalText([]byte("minecraft:plains")); err != nil {
		return 0
	}
	return t
}()

// grassColors maps biomes to their grass tint. Populated at init from the
// handful of biomes with distinctive tints; anything unlisted blends with
// the plains default.
var grassColors = make(map[biome.Type]uint32)

func registerGrassColor(name string, r, g, b uint8) {
	var t biome.Type
	if err := t.UnmarshalText([]byte(name)); err != nil {
		return
	}
	grassColors[t] = PackRGBA(r, g, b, 0xFF)
}

func init() {
	registerGrassColor("minecraft:plains", 0x91, 0xBD, 0x59)
	registerGrassColor("minecraft:desert", 0xBF, 0xB7, 0x55)
	registerGrassColor("minecraft:swamp", 0x6A, 0x70, 0x39)
	registerGrassColor("minecraft:jungle", 0x59, 0xC9, 0x3C)
	registerGrassColor("minecraft:badlands", 0x90, 0x81, 0x4D)
	registerGrassColor("minecraft:snowy_plains", 0x80, 0xB4, 0x97)
	registerGrassColor("minecraft:taiga", 0x86, 0xB7, 0x83)
	registerGrassColor("minecraft:savanna", 0xBF, 0xB7, 0x55)
	registerGrassColor("minecraft:dark_forest", 0x50, 0x7A, 0x32)
}

// GrassSampler computes one packed color per horizontal column by blending
// the biome tints of the surrounding columns, the same neighborhood blend
// the game applies to grass.
type GrassSampler struct {
	Biomes BiomeSampler
	Radius int32
}

func NewGrassSampler(biomes BiomeSampler) *GrassSampler {
	return &GrassSampler{Biomes: biomes, Radius: 2}
}

func grassColorOf(t biome.Type) uint32 {
	if c, ok := grassColors[t]; ok {
		return c
	}
	return defaultGrassColor
}

// GrassColor blends the tint over a (2*Radius+1)^2 neighborhood centered on
// the column and returns it packed RGBA8.
func (g *GrassSampler) GrassColor(x, z int32) uint32 {
	var r, gr, b, n uint32
	for dx := -g.Radius; dx <= g.Radius; dx++ {
		for dz := -g.Radius; dz <= g.Radius; dz++ {
			c := grassColorOf(g.Biomes(x+dx, z+dz))
			r += c & 0xFF
			gr += c >> 8 & 0xFF
			b += c >> 16 & 0xFF
			n++
		}
	}
	return PackRGBA(uint8(r/n), uint8(gr/n), uint8(b/n), 0xFF)
}
