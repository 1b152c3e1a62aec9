package main

import "github.com/go-gl/mathgl/mgl32"

// VertexRecord is the fixed 128-bit vertex the bake step emits, four words:
//
//	W0: x:8 | y:8 | z:8 | r:8        position in 1/16ths of a block, red tint
//	W1: g:8 | b:8 | u:16             green/blue tint, u texel in 1/2048ths
//	W2: v:16 | snapX:1 | snapY:1 | snapZ:1
//	W3: skyLight:4 | blockLight:4
//
// A quantized coordinate only reaches 255/16; the snap flags force the
// corresponding axis to exactly 16.0 so a quad's far edge lands on the
// section boundary.
type VertexRecord [4]uint32

const (
	snapXBit = 1 << 16
	snapYBit = 1 << 17
	snapZBit = 1 << 18

	texelScale = float32(1) / 2048
	posScale   = float32(1) / 16
)

// PackVertex builds a record from quantized inputs: x16/y16/z16 are local
// coordinates in sixteenths (0..256 inclusive), u/v texel coordinates in
// 1/2048ths, light values raw nibbles.
func PackVertex(x16, y16, z16 int, r, g, b uint8, u, v uint16, sky, block uint8) VertexRecord {
	var rec VertexRecord
	var snaps uint32
	if x16 >= 256 {
		x16, snaps = 0, snaps|snapXBit
	}
	if y16 >= 256 {
		y16, snaps = 0, snaps|snapYBit
	}
	if z16 >= 256 {
		z16, snaps = 0, snaps|snapZBit
	}
	rec[0] = uint32(x16) | uint32(y16)<<8 | uint32(z16)<<16 | uint32(r)<<24
	rec[1] = uint32(g) | uint32(b)<<8 | uint32(u)<<16
	rec[2] = uint32(v) | snaps
	rec[3] = uint32(sky&0xF) | uint32(block&0xF)<<4
	return rec
}

// DecodedVertex is the draw-time view of a record. World position is
// Position plus the section origin supplied as a per-draw constant.
type DecodedVertex struct {
	Position   mgl32.Vec3
	Tint       mgl32.Vec3
	UV         mgl32.Vec2
	SkyLight   float32
	BlockLight float32
}

// Decode unpacks a record. Pure per-vertex function, no state.
func (rec VertexRecord) Decode() DecodedVertex {
	w0, w1, w2, w3 := rec[0], rec[1], rec[2], rec[3]

	pos := mgl32.Vec3{
		float32(w0&0xFF) * posScale,
		float32(w0>>8&0xFF) * posScale,
		float32(w0>>16&0xFF) * posScale,
	}
	if w2&snapXBit != 0 {
		pos[0] = 16
	}
	if w2&snapYBit != 0 {
		pos[1] = 16
	}
	if w2&snapZBit != 0 {
		pos[2] = 16
	}

	return DecodedVertex{
		Position: pos,
		Tint: mgl32.Vec3{
			float32(w0>>24) / 255,
			float32(w1&0xFF) / 255,
			float32(w1>>8&0xFF) / 255,
		},
		UV: mgl32.Vec2{
			float32(w1>>16&0xFFFF) * texelScale,
			float32(w2&0xFFFF) * texelScale,
		},
		SkyLight:   float32(w3&0xF) / 15,
		BlockLight: float32(w3>>4&0xF) / 15,
	}
}

// Shade is the scalar brightness multiplied into the sampled texture color
// and vertex tint: whichever light layer is stronger wins.
func (v DecodedVertex) Shade() float32 {
	if v.SkyLight > v.BlockLight {
		return v.SkyLight
	}
	return v.BlockLight
}
