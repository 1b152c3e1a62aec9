package main

import (
	"bytes"
	"fmt"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PaletteRegistry interns section palettes against the render backend.
// Caching is by identity of the backing palette object, not by content:
// re-extracting an unchanged section hits the cache and gets the same
// handle, while two sections that happen to hold equal tables still
// register separately. A palette that gets promoted (the container swaps
// in a new table) is a new identity and registers again.
type PaletteRegistry struct {
	backend *Backend
	mu      sync.Mutex
	handles *orderedmap.OrderedMap[palette[BlocksState], int64]
}

func NewPaletteRegistry(backend *Backend) *PaletteRegistry {
	return &PaletteRegistry{
		backend: backend,
		handles: orderedmap.New[palette[BlocksState], int64](),
	}
}

// Intern returns the backend handle for the section's palette, registering
// it on first sight. Registration hands the palette across the boundary in
// its wire form; the backend decodes it with the matching ReadFrom.
// A registration failure is a boundary failure: the caller abandons the
// whole chunk extraction.
func (r *PaletteRegistry) Intern(states *PaletteContainer[BlocksState]) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handle, ok := r.handles.Get(states.palette); ok {
		return handle, nil
	}

	var buf bytes.Buffer
	if _, err := states.palette.WriteTo(&buf); err != nil {
		return 0, fmt.Errorf("serialize palette: %w", err)
	}
	handle, err := r.backend.RegisterPalette(states.bits, buf.Bytes())
	if err != nil {
		return 0, fmt.Errorf("register palette: %w", err)
	}
	r.handles.Set(states.palette, handle)
	return handle, nil
}

// Len is the number of distinct palette identities registered so far.
func (r *PaletteRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handles.Len()
}
