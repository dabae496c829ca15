package mask

import "flood-ca/pkg/ca"

func rangeMask(start, stop int) ca.State {
	w := stop - start
	if w <= 0 {
		return 0
	}
	if w >= 32 {
		return ^ca.State(0)
	}
	return ca.State(1)<<w - 1
}

// ReadBits extracts bits [start, stop) of v, right-aligned.
func ReadBits(v ca.State, start, stop int) ca.State {
	return v >> start & rangeMask(start, stop)
}

// WriteBits stores the low stop-start bits of bits into [start, stop) of v.
// Bits outside the range keep their value.
func WriteBits(bits, v ca.State, start, stop int) ca.State {
	m := rangeMask(start, stop)
	return v&^(m<<start) | (bits&m)<<start
}
