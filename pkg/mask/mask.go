// Package mask encodes per-cell data/no-data status so CA functions can
// avoid working across the edge of the data region.
//
// For a lattice with k neighbours a mask value holds:
//
//	bit 0        the cell has data
//	bits 1..k    neighbour i-1 has data
//	bit k+1      the cell has data but some neighbour lacks it
//	bit k+2      the cell lacks data but some neighbour has it
//
// Cells in the halo never have data.
package mask

import (
	"fmt"

	"flood-ca/pkg/ca"
	"flood-ca/pkg/lattice"
)

// Bits returns the width of a full mask on k neighbours.
func Bits(k int) int { return k + 3 }

// HasData reports bit 0.
func HasData(m ca.State) bool { return m&1 != 0 }

// NeighborHasData reports whether neighbour i has data.
func NeighborHasData(m ca.State, i int) bool { return ReadBits(m, i+1, i+2) != 0 }

// IsInnerBoundary reports a data cell next to a no-data cell.
func IsInnerBoundary(m ca.State, k int) bool { return ReadBits(m, k+1, k+2) != 0 }

// IsOuterBoundary reports a no-data cell next to a data cell.
func IsOuterBoundary(m ca.State, k int) bool { return ReadBits(m, k+2, k+3) != 0 }

// Summarize recomputes the two boundary bits of m from bits 0..k.
func Summarize(m ca.State, k int) ca.State {
	nb := ReadBits(m, 1, k+1)
	all := rangeMask(0, k)
	var inner, outer ca.State
	if HasData(m) && nb != all {
		inner = 1
	}
	if !HasData(m) && nb != 0 {
		outer = 1
	}
	m = WriteBits(inner, m, k+1, k+2)
	return WriteBits(outer, m, k+2, k+3)
}

// Encode builds a full mask value from the cell's own status and one status
// per neighbour.
func Encode(self bool, neighbors []bool) ca.State {
	var m ca.State
	if self {
		m = 1
	}
	for i, nb := range neighbors {
		if nb {
			m = WriteBits(1, m, i+1, i+2)
		}
	}
	return Summarize(m, len(neighbors))
}

const fullKernel = `
	bool own = %[1]s[idx] != maskNoData;
	uint m = own ? 1u : 0u;
	bool some = false;
	bool every = true;
	for (int i = 0; i < CA_NEIGHBORS; i++) {
		ivec2 q = caNeighbor(p, i);
		if (caInDomain(q) && %[1]s[caIndex(q)] != maskNoData) {
			m |= 1u << uint(i + 1);
			some = true;
		} else {
			every = false;
		}
	}
	if (own && !every) {
		m |= 1u << uint(CA_NEIGHBORS + 1);
	}
	if (!own && some) {
		m |= 1u << uint(CA_NEIGHBORS + 2);
	}
	%[2]s[idx] = m;`

const simpleKernel = `
	%[2]s[idx] = (%[1]s[idx] != maskNoData) ? 1u : 0u;`

// Compute writes the full mask of src into out for every cell of bl. A cell
// has data when its src value differs from noData.
func Compute[T ca.Scalar](ctx *ca.Context, bl lattice.BoxList, src *ca.CellBuffer[T], noData T, out *ca.CellBuffer[ca.State]) error {
	fn := &ca.Func{
		Name: "mask",
		Update: func(c ca.Cell) {
			k := c.Neighbors()
			var m ca.State
			own := src.Get(c) != noData
			if own {
				m = 1
			}
			for i := 0; i < k; i++ {
				if c.Neighbor(i).InDomain() && src.Neighbor(c, i) != noData {
					m |= 1 << (i + 1)
				}
			}
			out.Set(c, Summarize(m, k))
		},
		Kernel: fmt.Sprintf(fullKernel, src.Name(), out.Name()),
	}
	return ctx.Dispatch(bl, fn, src, out, ca.Uniform("maskNoData", noData))
}

// ComputeSimple writes only bit 0 of the mask.
func ComputeSimple[T ca.Scalar](ctx *ca.Context, bl lattice.BoxList, src *ca.CellBuffer[T], noData T, out *ca.CellBuffer[ca.State]) error {
	fn := &ca.Func{
		Name: "maskSimple",
		Update: func(c ca.Cell) {
			var m ca.State
			if src.Get(c) != noData {
				m = 1
			}
			out.Set(c, m)
		},
		Kernel: fmt.Sprintf(simpleKernel, src.Name(), out.Name()),
	}
	return ctx.Dispatch(bl, fn, src, out, ca.Uniform("maskNoData", noData))
}
