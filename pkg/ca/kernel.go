package ca

import (
	"fmt"
	"strconv"
	"strings"

	"flood-ca/pkg/lattice"
)

// Kernel bodies run once per cell with these names in scope:
//
//	ivec2 p        lattice index of the cell
//	int   idx      linear index of the cell
//	CA_NEIGHBORS   neighbourhood size
//	caIndex(q)     linear index of q
//	caNeighbor(q, i), caOpposite(i), caInDomain(q)
//
// Cell buffers and tables are arrays indexed by linear index or table
// position, edge buffers by idx*CA_NEIGHBORS+e, alarms by alarm number (set
// with name[n] = 1u). Uniforms are plain variables.
const kernelPrelude = `
const ivec2 caSquare[4] = ivec2[4](ivec2(1, 0), ivec2(0, 1), ivec2(-1, 0), ivec2(0, -1));
const ivec2 caHexOdd[6] = ivec2[6](ivec2(1, 0), ivec2(0, 1), ivec2(-1, 1), ivec2(-1, 0), ivec2(-1, -1), ivec2(0, -1));
const ivec2 caHexEven[6] = ivec2[6](ivec2(1, 0), ivec2(1, 1), ivec2(0, 1), ivec2(-1, 0), ivec2(0, -1), ivec2(1, -1));

int caIndex(ivec2 q) { return q.y * CA_STRIDE + q.x; }

ivec2 caNeighbor(ivec2 q, int i) {
#if CA_HEX
	return q + (((q.y & 1) == 1) ? caHexOdd[i] : caHexEven[i]);
#else
	return q + caSquare[i];
#endif
}

int caOpposite(int i) { return (i + CA_NEIGHBORS / 2) % CA_NEIGHBORS; }

bool caInDomain(ivec2 q) { return q.x >= 1 && q.y >= 1 && q.x <= CA_COLS && q.y <= CA_ROWS; }
`

// slots assigns a storage binding point to every non-uniform binding, in
// order. Uniforms get -1.
func slots(bindings []Binding) []int {
	out := make([]int, len(bindings))
	next := 0
	for i, b := range bindings {
		if b.kind() == kindUniform {
			out[i] = -1
			continue
		}
		out[i] = next
		next++
	}
	return out
}

// kernelSource assembles the compute shader for fn over the given bindings.
func kernelSource(fn *Func, g *lattice.Grid, bindings []Binding, lx, ly int) (string, error) {
	if strings.TrimSpace(fn.Kernel) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoKernel, fn.Name)
	}
	var sb strings.Builder
	sb.WriteString("#version 430 core\n")
	fmt.Fprintf(&sb, "layout(local_size_x = %d, local_size_y = %d, local_size_z = 1) in;\n\n", lx, ly)
	fmt.Fprintf(&sb, "#define CA_NEIGHBORS %d\n", g.Neighbors())
	fmt.Fprintf(&sb, "#define CA_STRIDE %d\n", g.Stride())
	fmt.Fprintf(&sb, "#define CA_COLS %d\n", g.Cols())
	fmt.Fprintf(&sb, "#define CA_ROWS %d\n", g.Rows())
	hex := 0
	if g.Topology() == lattice.Hexagonal {
		hex = 1
	}
	fmt.Fprintf(&sb, "#define CA_HEX %d\n\n", hex)
	sb.WriteString("uniform ivec4 caBox;\n")

	seen := map[string]bool{}
	for i, slot := range slots(bindings) {
		b := bindings[i]
		if seen[b.Name()] {
			return "", fmt.Errorf("%w: %q bound twice", ErrName, b.Name())
		}
		seen[b.Name()] = true
		switch b.kind() {
		case kindUniform:
			fmt.Fprintf(&sb, "uniform %s %s;\n", b.elemType(), b.Name())
		case kindTable:
			fmt.Fprintf(&sb, "layout(std430, binding = %d) readonly buffer caSlot%d { %s %s[]; };\n", slot, slot, b.elemType(), b.Name())
		default:
			fmt.Fprintf(&sb, "layout(std430, binding = %d) buffer caSlot%d { %s %s[]; };\n", slot, slot, b.elemType(), b.Name())
		}
	}
	sb.WriteString(kernelPrelude)
	sb.WriteString("\nvoid main() {\n")
	sb.WriteString("\tivec2 p = caBox.xy + ivec2(gl_GlobalInvocationID.xy);\n")
	sb.WriteString("\tif (p.x > caBox.z || p.y > caBox.w) return;\n")
	sb.WriteString("\tint idx = caIndex(p);\n")
	sb.WriteString("\t{\n")
	sb.WriteString(fn.Kernel)
	sb.WriteString("\n\t}\n}\n")
	return sb.String(), nil
}

// kernelKey identifies a compiled program: the same Func compiled against
// the same binding names and kinds.
func kernelKey(fn *Func, bindings []Binding) string {
	var sb strings.Builder
	sb.WriteString(fn.Name)
	for _, b := range bindings {
		fmt.Fprintf(&sb, "|%d:%s:%s", b.kind(), b.elemType(), b.Name())
	}
	return sb.String()
}

// parseWorkgroup reads "N" or "NxM" local sizes; empty means 8x8.
func parseWorkgroup(s string) (int, int, error) {
	if s == "" {
		return 8, 8, nil
	}
	parts := strings.Split(s, "x")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("%w: %s=%q", ErrOption, OptWorkgroup, s)
	}
	dims := [2]int{1, 1}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 || n > 1024 {
			return 0, 0, fmt.Errorf("%w: %s=%q", ErrOption, OptWorkgroup, s)
		}
		dims[i] = n
	}
	return dims[0], dims[1], nil
}
