package ca

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flood-ca/pkg/lattice"
)

func TestKernelSource(t *testing.T) {
	g := testGrid(t, 7, 5, lattice.Hexagonal)
	ctx, err := NewContext(g, Options{OptBackend: "serial"}, nil)
	require.NoError(t, err)
	defer ctx.Close()

	depth, err := NewCellBuffer[Real](ctx, "depth")
	require.NoError(t, err)
	flux, err := NewEdgeBuffer[Real](ctx, "flux")
	require.NoError(t, err)
	lut, err := NewTable[Real](ctx, "rain", 3)
	require.NoError(t, err)
	al, err := NewAlarms(ctx, "wet", 1)
	require.NoError(t, err)
	bindings := []Binding{depth, Uniform[Real]("dt", 0.5), flux, lut, al}

	assert.Equal(t, []int{0, -1, 1, 2, 3}, slots(bindings))

	src, err := kernelSource(&Func{Name: "step", Kernel: "depth[idx] += dt;"}, g, bindings, 16, 4)
	require.NoError(t, err)
	for _, want := range []string{
		"#version 430 core",
		"local_size_x = 16, local_size_y = 4",
		"#define CA_NEIGHBORS 6",
		"#define CA_STRIDE 9",
		"#define CA_HEX 1",
		"layout(std430, binding = 0) buffer caSlot0 { float depth[]; };",
		"uniform float dt;",
		"layout(std430, binding = 1) buffer caSlot1 { float flux[]; };",
		"layout(std430, binding = 2) readonly buffer caSlot2 { float rain[]; };",
		"layout(std430, binding = 3) buffer caSlot3 { uint wet[]; };",
		"depth[idx] += dt;",
	} {
		assert.Contains(t, src, want)
	}

	_, err = kernelSource(&Func{Name: "empty", Kernel: "  "}, g, bindings, 8, 8)
	assert.ErrorIs(t, err, ErrNoKernel)

	_, err = kernelSource(&Func{Name: "dup", Kernel: "return;"}, g, []Binding{depth, Uniform[State]("depth", 1)}, 8, 8)
	assert.ErrorIs(t, err, ErrName)

	assert.NotEqual(t,
		kernelKey(&Func{Name: "step"}, []Binding{depth}),
		kernelKey(&Func{Name: "step"}, []Binding{flux}))
}

func TestParseWorkgroup(t *testing.T) {
	tests := []struct {
		in     string
		lx, ly int
		ok     bool
	}{
		{"", 8, 8, true},
		{"64", 64, 1, true},
		{"16x16", 16, 16, true},
		{"0", 0, 0, false},
		{"2x2x2", 0, 0, false},
		{"axb", 0, 0, false},
		{"2048", 0, 0, false},
	}
	for _, tc := range tests {
		lx, ly, err := parseWorkgroup(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrOption, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, [2]int{tc.lx, tc.ly}, [2]int{lx, ly}, tc.in)
	}
}
