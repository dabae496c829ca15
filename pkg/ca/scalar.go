package ca

// Real is the element kind for continuous quantities such as depth or
// elevation.
type Real = float32

// State is the element kind for small integer states and packed masks.
type State = uint32

// Scalar is the fixed set of element kinds buffers and tables can hold. Both
// kinds are four bytes wide so every backend can address them the same way.
type Scalar interface {
	Real | State
}

// glslType returns the shader type matching T.
func glslType[T Scalar]() string {
	var zero T
	switch any(zero).(type) {
	case float32:
		return "float"
	default:
		return "uint"
	}
}
