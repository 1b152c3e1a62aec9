package main

// NibbleArray is one light layer for one section: 4 bits per voxel, two
// voxels per byte, low nibble first. Index order matches vanilla light data:
// y<<8 | z<<4 | x over the 16x16x16 section.
type NibbleArray [LightBytesPerSection]byte

func NibbleArrayFromSlice(data []byte) *NibbleArray {
	if len(data) != LightBytesPerSection {
		return nil
	}
	n := new(NibbleArray)
	copy(n[:], data)
	return n
}

func (n *NibbleArray) Get(x, y, z int) byte {
	i := y<<8 | z<<4 | x
	if i&1 == 1 {
		return n[i>>1] >> 4
	}
	return n[i>>1] & 0xF
}

func (n *NibbleArray) Set(x, y, z int, v byte) {
	if v > 0xF {
		panic(valueOutOfBounds)
	}
	i := y<<8 | z<<4 | x
	if i&1 == 1 {
		n[i>>1] = n[i>>1]&0xF | v<<4
	} else {
		n[i>>1] = n[i>>1]&0xF0 | v
	}
}

// Fill sets every voxel in the layer to v.
func (n *NibbleArray) Fill(v byte) {
	if v > 0xF {
		panic(valueOutOfBounds)
	}
	b := v<<4 | v
	for i := range n {
		n[i] = b
	}
}
