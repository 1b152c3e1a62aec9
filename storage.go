package main

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

const (
	indexOutOfBounds = "index out of bounds"
	valueOutOfBounds = "value out of bounds"
)

// BitStorage implement the compacted data array used in chunk storage.
// You can think of this as a []intN whose N is indicated by "bits".
// Values never straddle a word: each uint64 holds 64/bits values and the
// remaining high bits stay unused.
type BitStorage struct {
	data []uint64
	mask uint64

	bits, length  int
	valuesPerLong int
}

// NewBitStorage create a new BitStorage.
//
// The "bits" is the number of bits per value, which can be calculated by math/bits.Len()
// The "length" is the number of values.
// The "data" is optional for initializing. It will panic if data != nil && len(data) != calcBitStorageSize(bits, length).
func NewBitStorage(bits, length int, data []uint64) (b *BitStorage) {
	if bits == 0 {
		return &BitStorage{
			data:          nil,
			mask:          0,
			bits:          0,
			length:        length,
			valuesPerLong: 0,
		}
	}

	b = &BitStorage{
		mask: 1<<bits - 1,
		bits: bits, length: length,
		valuesPerLong: 64 / bits,
	}
	dataLen := calcBitStorageSize(bits, length)
	b.data = make([]uint64, dataLen)
	if data != nil {
		if len(data) != dataLen {
			panic(newBitStorageErr{ArrlLen: len(data), WantLen: dataLen})
		}
		copy(b.data, data)
	}
	return
}

// calcBitStorageSize calculate how many uint64 is needed for given bits and length.
func calcBitStorageSize(bits, length int) (size int) {
	if bits == 0 {
		return 0
	}
	valuesPerLong := 64 / bits
	return (length + valuesPerLong - 1) / valuesPerLong
}

// calcBitsPerValue calculate when "longs" number of uint64 stores
// "length" number of value, how many bits are used for each value.
func calcBitsPerValue(length, longs int) (bits int) {
	if longs == 0 || length == 0 {
		return 0
	}
	valuePerLong := (length + longs - 1) / longs
	return 64 / valuePerLong
}

type newBitStorageErr struct {
	ArrlLen int
	WantLen int
}

func (i newBitStorageErr) Error() string {
	return fmt.Sprintf("invalid length given for storage, got: %d but expected: %d", i.ArrlLen, i.WantLen)
}

func (b *BitStorage) calcIndex(n int) (c, o int) {
	c = n / b.valuesPerLong
	o = (n - c*b.valuesPerLong) * b.bits
	return
}

// Swap sets v into [i], and return the previous [i] value.
func (b *BitStorage) Swap(i, v int) (old int) {
	if b.valuesPerLong == 0 {
		return 0
	}
	if v < 0 || uint64(v) > b.mask {
		panic(valueOutOfBounds)
	}
	if i < 0 || i > b.length-1 {
		panic(indexOutOfBounds)
	}
	c, offset := b.calcIndex(i)
	l := b.data[c]
	old = int(l >> offset & b.mask)
	b.data[c] = l&(b.mask<<offset^math.MaxUint64) | (uint64(v)&b.mask)<<offset
	return
}

// Set sets v into [i].
func (b *BitStorage) Set(i, v int) {
	if b.valuesPerLong == 0 {
		return
	}
	if v < 0 || uint64(v) > b.mask {
		panic(valueOutOfBounds)
	}
	if i < 0 || i > b.length-1 {
		panic(indexOutOfBounds)
	}

	c, offset := b.calcIndex(i)
	l := b.data[c]
	b.data[c] = l&(b.mask<<offset^math.MaxUint64) | (uint64(v)&b.mask)<<offset
}

// Get gets [i] value.
func (b *BitStorage) Get(i int) int {
	if b.valuesPerLong == 0 {
		return 0
	}
	if i < 0 || i > b.length-1 {
		panic(indexOutOfBounds)
	}

	c, offset := b.calcIndex(i)
	l := b.data[c]
	return int(l >> offset & b.mask)
}

// Len is the number of stored values.
func (b *BitStorage) Len() int {
	return b.length
}

// Bits is the width of each stored value.
func (b *BitStorage) Bits() int {
	return b.bits
}

// Raw return the underling array of uint64 for encoding/decoding.
func (b *BitStorage) Raw() []uint64 {
	if b == nil {
		return []uint64{}
	}
	return b.data
}

// ErrNotPacked reports a storage with no backing words (a single-value
// section). Such sections carry no per-voxel indices to describe; the
// extractor skips them and leaves their handle slots at 0.
var ErrNotPacked = errors.New("storage is not a packed index array")

// PackedStorageDesc captures everything the render backend needs to replicate
// per-voxel index lookups against the raw words without unpacking them:
// the element width, how many elements share a word, and the multiply-shift
// constants that locate a word without integer division.
type PackedStorageDesc struct {
	Words        []uint64
	BitWidth     int
	ElemsPerWord int
	MaxValue     uint64
	IndexScale   uint32
	IndexOffset  uint32
	IndexShift   int
	Length       int
}

// Describe extracts the packing parameters of a BitStorage in one pass.
// The constants are validated against the storage's own index math for every
// valid index before being handed out; a mismatch would corrupt every voxel
// lookup in the section, so it is an error here rather than a bad render.
func Describe(b *BitStorage) (PackedStorageDesc, error) {
	if b == nil || b.valuesPerLong == 0 {
		return PackedStorageDesc{}, ErrNotPacked
	}
	scale, offset, shift := storageIndexMagic(b.valuesPerLong)
	desc := PackedStorageDesc{
		Words:        b.data,
		BitWidth:     b.bits,
		ElemsPerWord: b.valuesPerLong,
		MaxValue:     b.mask,
		IndexScale:   scale,
		IndexOffset:  offset,
		IndexShift:   shift,
		Length:       b.length,
	}
	for i := 0; i < b.length; i++ {
		want, _ := b.calcIndex(i)
		if got := desc.WordIndex(i); got != want {
			return PackedStorageDesc{}, fmt.Errorf("storage index constants do not round-trip at %d: got word %d, want %d", i, got, want)
		}
	}
	return desc, nil
}

// storageIndexMagic returns (scale, offset, shift) such that
// ((i*scale + offset) >> 32) >> shift == i / valuesPerLong for every index a
// section can hold. Power-of-two divisors reduce to a plain shift; the rest
// use the fixed-point reciprocal floor(2^32/d).
func storageIndexMagic(valuesPerLong int) (scale, offset uint32, shift int) {
	d := uint64(valuesPerLong)
	switch {
	case d == 1:
		return math.MaxUint32, math.MaxUint32, 0
	case d&(d-1) == 0:
		return 1 << 31, 0, bits.TrailingZeros64(d) - 1
	default:
		recip := uint32((uint64(1) << 32) / d)
		return recip, recip, 0
	}
}

// WordIndex replicates the backend-side lookup: which word index i lives in.
func (d PackedStorageDesc) WordIndex(i int) int {
	return int(uint32((uint64(i)*uint64(d.IndexScale)+uint64(d.IndexOffset))>>32) >> uint(d.IndexShift))
}

// Get reads element i through the multiply-shift path. This is the decode the
// render backend runs; BitStorage.Get is the producer-side reference.
func (d PackedStorageDesc) Get(i int) int {
	w := d.WordIndex(i)
	off := (i - w*d.ElemsPerWord) * d.BitWidth
	return int(d.Words[w] >> uint(off) & d.MaxValue)
}
