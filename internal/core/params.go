package core

import "strconv"

// ParamType enumerates supported parameter value kinds.
type ParamType string

const (
	// ParamTypeInt denotes integer-valued parameters.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat denotes floating-point parameters.
	ParamTypeFloat ParamType = "float"
	// ParamTypeText denotes read-only values such as a backend name.
	ParamTypeText ParamType = "text"
)

// Parameter is one named value a simulation reports, formatted for display.
type Parameter struct {
	Key   string
	Label string
	Type  ParamType
	Value string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name   string
	Params []Parameter
}

// ParameterSnapshot captures the current set of values exposed by a sim.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// Lookup returns the parameter with the given key.
func (s ParameterSnapshot) Lookup(key string) (Parameter, bool) {
	for _, g := range s.Groups {
		for _, p := range g.Params {
			if p.Key == key {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

// IntParam formats an integer parameter.
func IntParam(key, label string, v int64) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeInt, Value: strconv.FormatInt(v, 10)}
}

// FloatParam formats a floating-point parameter with the shortest
// representation that round-trips at the precision of T.
func FloatParam[T float32 | float64](key, label string, v T) Parameter {
	bits := 64
	if _, ok := any(v).(float32); ok {
		bits = 32
	}
	return Parameter{Key: key, Label: label, Type: ParamTypeFloat, Value: strconv.FormatFloat(float64(v), 'f', -1, bits)}
}

// TextParam formats a read-only text parameter.
func TextParam(key, label, v string) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeText, Value: v}
}

// ParameterControl describes a value that may be changed while the sim
// runs. Step and bounds are interpreted according to Type.
type ParameterControl struct {
	Key   string
	Label string
	Type  ParamType

	Step     float64
	Min, Max float64
}

// Clamp limits v to the control bounds. A control with Max <= Min is
// unbounded.
func (c ParameterControl) Clamp(v float64) float64 {
	if c.Max <= c.Min {
		return v
	}
	return min(max(v, c.Min), c.Max)
}

// ParameterProvider reports the current parameter values.
type ParameterProvider interface {
	Parameters() ParameterSnapshot
}

// ParameterControlsProvider exposes the list of live-adjustable controls.
type ParameterControlsProvider interface {
	ParameterControls() []ParameterControl
}

// IntParameterSetter updates integer parameters. It reports whether key is
// known.
type IntParameterSetter interface {
	SetIntParameter(key string, value int) bool
}

// FloatParameterSetter updates floating-point parameters. It reports whether
// key is known.
type FloatParameterSetter interface {
	SetFloatParameter(key string, value float64) bool
}
