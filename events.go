package main

import "sync"

// Events routes named notifications from the world host to whoever asked for
// them. The extraction pipeline listens for "ChunkReady".
type Events struct {
	mu        sync.RWMutex
	listeners map[string][]func(...interface{})
}

func NewEvents() *Events {
	return &Events{listeners: make(map[string][]func(...interface{}))}
}

func (e *Events) AddListener(name string, listener func(...interface{})) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[name] = append(e.listeners[name], listener)
}

func (e *Events) Emit(name string, params ...interface{}) {
	e.mu.RLock()
	listeners := e.listeners[name]
	e.mu.RUnlock()
	for _, listener := range listeners {
		listener(params...)
	}
}
