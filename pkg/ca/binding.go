package ca

import (
	"fmt"
	"regexp"
	"strings"
)

type bindingKind uint8

const (
	kindCell bindingKind = iota
	kindEdge
	kindTable
	kindAlarms
	kindUniform
)

// Binding is an argument made visible to a CA function during a dispatch:
// a CellBuffer, EdgeBuffer, Table, Alarms or a Uniform. Its name is the
// identifier the gl kernel uses to reach it.
type Binding interface {
	Name() string

	kind() bindingKind
	owner() *Context
	ident() uint64
	elemType() string
	// hostData returns the backing slice and its size in bytes.
	hostData() (any, int)
}

var identRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// reservedRE matches the prefixes the kernel prelude and GLSL keep for
// themselves: caName, ca_name, CA_NAME, gl_name and any double underscore.
var reservedRE = regexp.MustCompile(`^(ca[A-Z0-9_]|CA_|gl_)|__`)

// reservedNames are the kernel locals, GLSL keywords and the built-in
// functions kernels commonly call. A binding with one of these names would
// run on the CPU backends and fail to compile on gl.
var reservedNames = func() map[string]bool {
	words := strings.Fields(`
		p idx main
		attribute const uniform varying buffer shared coherent volatile restrict
		readonly writeonly atomic_uint layout centroid flat smooth noperspective
		patch sample break continue do for while switch case default if else
		subroutine in out inout float double int void bool true false invariant
		precise discard return struct uint lowp mediump highp precision
		vec2 vec3 vec4 ivec2 ivec3 ivec4 uvec2 uvec3 uvec4 bvec2 bvec3 bvec4
		dvec2 dvec3 dvec4 mat2 mat3 mat4 dmat2 dmat3 dmat4
		common partition active asm class union enum typedef template this
		resource goto inline noinline public static extern external interface
		long short half fixed unsigned superp input output sizeof cast
		namespace using filter
		abs sign floor ceil fract mod min max clamp mix step smoothstep
		sqrt inversesqrt pow exp exp2 log log2 sin cos tan asin acos atan
		length distance dot cross normalize any all not isnan isinf
		atomicAdd atomicMin atomicMax atomicOr atomicAnd atomicExchange
		barrier memoryBarrier`)
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}()

func checkName(name string) error {
	if !identRE.MatchString(name) {
		return fmt.Errorf("%w: %q is not an identifier", ErrName, name)
	}
	if reservedRE.MatchString(name) {
		return fmt.Errorf("%w: %q uses a reserved prefix", ErrName, name)
	}
	if reservedNames[name] {
		return fmt.Errorf("%w: %q is reserved in kernels", ErrName, name)
	}
	return nil
}

type uniform[T Scalar] struct {
	name string
	v    T
}

// Uniform binds a scalar parameter, such as a time step, by name.
func Uniform[T Scalar](name string, v T) Binding {
	return &uniform[T]{name: name, v: v}
}

func (u *uniform[T]) Name() string         { return u.name }
func (u *uniform[T]) kind() bindingKind    { return kindUniform }
func (u *uniform[T]) owner() *Context      { return nil }
func (u *uniform[T]) ident() uint64        { return 0 }
func (u *uniform[T]) elemType() string     { return glslType[T]() }
func (u *uniform[T]) hostData() (any, int) { return u.v, 4 }
