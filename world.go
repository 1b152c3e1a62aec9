package main

import (
	"compress/gzip"
	"fmt"
	"os"
	"sync"

	"github.com/Tnze/go-mc/level/biome"
	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save"
	"github.com/Tnze/go-mc/save/region"
)

// World reads a singleplayer or vanilla server world folder and caches the
// chunks it loads. It never writes back: missing regions and chunks are
// simply absent.
type World struct {
	Dir    string
	Log    Logger
	Events *Events
	Lights *LightStore
	Level  save.Level

	mu     sync.RWMutex
	chunks map[ChunkPos]*Chunk
}

func NewWorld(dir string, events *Events, lights *LightStore, log Logger) *World {
	return &World{
		Dir:    dir,
		Log:    log,
		Events: events,
		Lights: lights,
		chunks: make(map[ChunkPos]*Chunk),
	}
}

func (w *World) ParseWorldData() error {
	if _, e := os.Stat(w.Dir); os.IsNotExist(e) {
		return fmt.Errorf("world folder %q does not exist, import one from a singleplayer world or a vanilla server", w.Dir)
	}
	b, err := os.Open(w.Dir + "/level.dat")
	if err != nil {
		return err
	}
	defer b.Close()
	data, err := gzip.NewReader(b)
	if err != nil {
		return err
	}
	decoder := nbt.NewDecoder(data)
	if _, err := decoder.Decode(&w.Level); err != nil {
		return fmt.Errorf("failed to parse world data: %w", err)
	}
	return nil
}

func (w *World) GetChunk(pos ChunkPos) *Chunk {
	rx, rz := region.At(int(pos[0]), int(pos[1]))
	filename := fmt.Sprintf("%s/region/r.%d.%d.mca", w.Dir, rx, rz)
	r, err := region.Open(filename)
	if err != nil {
		return nil
	}
	defer r.Close()
	x, z := region.In(int(pos[0]), int(pos[1]))
	if !r.ExistSector(x, z) {
		return nil
	}
	data, err := r.ReadSector(x, z)
	if err != nil {
		return nil
	}
	var c save.Chunk
	if err := c.Load(data); err != nil {
		w.Log.Error("Failed to load chunk", pos, err.Error())
		return nil
	}
	chunk, err := ChunkFromSave(&c)
	if err != nil {
		w.Log.Error("Failed to convert chunk", pos, err.Error())
		return nil
	}
	return chunk
}

// LoadChunk caches the chunk, pulls its light into the light store and
// emits ChunkReady. Returns false when the chunk does not exist on disk.
func (w *World) LoadChunk(pos ChunkPos) bool {
	w.mu.RLock()
	_, loaded := w.chunks[pos]
	w.mu.RUnlock()
	if loaded {
		return true
	}

	c := w.GetChunk(pos)
	if c == nil {
		return false
	}
	w.mu.Lock()
	w.chunks[pos] = c
	w.mu.Unlock()
	w.Lights.LoadChunk(pos, c)
	w.Events.Emit("ChunkReady", pos, c)
	return true
}

func (w *World) UnloadChunk(pos ChunkPos) {
	w.mu.Lock()
	delete(w.chunks, pos)
	w.mu.Unlock()
	w.Lights.DropChunk(pos)
}

func (w *World) Chunk(pos ChunkPos) *Chunk {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chunks[pos]
}

// LoadAround loads every chunk within radius of center, emitting ChunkReady
// for each one found. Returns how many chunks were loaded.
func (w *World) LoadAround(center ChunkPos, radius int32) int {
	loaded := 0
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if w.LoadChunk(ChunkPos{center[0] + dx, center[1] + dz}) {
				loaded++
			}
		}
	}
	return loaded
}

// BiomeAt samples the biome at sea level for a block column. Columns in
// unloaded chunks fall back to plains, which matches how an unexplored area
// first renders.
func (w *World) BiomeAt(x, z int32) biome.Type {
	c := w.Chunk(ChunkPos{x >> 4, z >> 4})
	if c == nil {
		return defaultGrassBiome
	}
	// Sea level is y=64: section slot (64>>4)-MinSectionY, biomes in 4x4x4 cells.
	slot := 4 - MinSectionY
	if slot >= len(c.Sections) || c.Sections[slot].Biomes == nil {
		return defaultGrassBiome
	}
	bx, bz := int(x&15)>>2, int(z&15)>>2
	return c.Sections[slot].Biomes.Get(bz<<2 | bx)
}
