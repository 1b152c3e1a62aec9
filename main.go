package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"
)

var logger = Logger{}

func main() {
	start := time.Now().Unix()
	logger.Info("Starting wgpu-mc extractor")

	config := LoadConfig()
	if config == nil {
		logger.Error("Failed to parse wgpu-mc.yml")
		os.Exit(1)
	}

	events := NewEvents()
	lights := NewLightStore()
	world := NewWorld(config.WorldDir, events, lights, logger)
	if err := world.ParseWorldData(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	center := ChunkPos{world.Level.Data.SpawnX >> 4, world.Level.Data.SpawnZ >> 4}
	radius := int32(config.Render.ViewRadius)
	logger.Debug("Spawn chunk is", center)

	backend := NewBackend(logger)
	backend.Init(center, radius)
	registry := NewPaletteRegistry(backend)
	extractor := &Extractor{
		Palettes: registry,
		Backend:  backend,
		Lights:   lights,
		Grass:    NewGrassSampler(world.BiomeAt),
	}
	uploader := NewUploader(backend, config.Render.Workers, config.Render.QueueDepth, logger)

	events.AddListener("ChunkReady", func(params ...interface{}) {
		pos := params[0].(ChunkPos)
		chunk := params[1].(*Chunk)
		bufs, err := extractor.Extract(pos, chunk)
		if err != nil {
			logger.Error("Failed to extract chunk", pos, err.Error())
			return
		}
		uploader.Enqueue(pos, bufs)
	})

	if config.Status.Enable {
		status := NewStatusServer(backend, registry, logger)
		go func() {
			addr := config.Status.ServerIP + ":" + fmt.Sprint(config.Status.ServerPort)
			if err := status.Start(addr); err != nil {
				logger.Error("[Status] Failed to listen:", err.Error())
			}
		}()
	}

	loaded := world.LoadAround(center, radius)
	uploader.WaitIdle()
	stats := backend.Stats()
	logger.Info("Baked", stats.ChunksBaked, "of", loaded, "chunks with",
		registry.Len(), "palettes", "("+fmt.Sprint(time.Now().Unix()-start)+"s)")

	if config.GUI || HasArg("-gui") {
		LaunchGUI(backend, registry, world).ShowAndRun()
	} else if config.Status.Enable {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
	}

	uploader.Close()
	backend.ClearChunks()
	logger.Info("Goodbye!")
}
