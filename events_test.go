package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventsEmit(t *testing.T) {
	e := NewEvents()

	var got []interface{}
	e.AddListener("ChunkReady", func(params ...interface{}) { got = params })
	e.Emit("ChunkReady", ChunkPos{1, 2}, "payload")

	assert.Equal(t, []interface{}{ChunkPos{1, 2}, "payload"}, got)
}

func TestEventsMultipleListeners(t *testing.T) {
	e := NewEvents()
	count := 0
	e.AddListener("x", func(...interface{}) { count++ })
	e.AddListener("x", func(...interface{}) { count++ })
	e.Emit("x")
	e.Emit("unrelated")
	assert.Equal(t, 2, count)
}
