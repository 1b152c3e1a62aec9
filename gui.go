package main

import (
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var guiStats *widget.TextGrid
var guiChunkCount *widget.RichText

func LaunchGUI(backend *Backend, registry *PaletteRegistry, world *World) fyne.Window {
	app := app.New()
	window := app.NewWindow("wgpu-mc extractor")
	title := widget.NewRichTextFromMarkdown("# wgpu-mc extractor")

	statsTitle := widget.NewRichTextFromMarkdown("## Pipeline")
	guiStats = widget.NewTextGridFromString("")
	stats := container.NewBorder(statsTitle, nil, nil, nil, container.NewScroll(guiStats))

	worldTitle := widget.NewRichTextFromMarkdown("## World")
	guiChunkCount = widget.NewRichTextFromMarkdown("### 0 chunks baked")
	spawn := widget.NewRichTextFromMarkdown(fmt.Sprintf("Spawn: %d, %d",
		world.Level.Data.SpawnX, world.Level.Data.SpawnZ))
	worldPane := container.NewVBox(worldTitle, guiChunkCount, spawn)

	go func() {
		for range time.Tick(time.Second) {
			s := backend.Stats()
			guiStats.SetText(strings.Join([]string{
				fmt.Sprintf("Chunks submitted  %d", s.ChunksSubmitted),
				fmt.Sprintf("Chunks baked      %d", s.ChunksBaked),
				fmt.Sprintf("Chunks dropped    %d", s.ChunksDropped),
				fmt.Sprintf("Palettes interned %d", registry.Len()),
				fmt.Sprintf("Storages          %d", s.Storages),
			}, "\n"))
			guiChunkCount.ParseMarkdown(fmt.Sprintf("### %d chunks baked", s.ChunksBaked))
		}
	}()

	sp := container.NewHSplit(stats, worldPane)
	sp.SetOffset(0.6)
	window.SetContent(container.NewBorder(title, nil, nil, nil, sp))
	window.Resize(fyne.NewSize(700, 300))
	return window
}
