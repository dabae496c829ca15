package lattice

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Coo is a world-space coordinate.
type Coo struct {
	v mgl64.Vec2
}

// NewCoo returns the coordinate (x, y).
func NewCoo(x, y float64) Coo { return Coo{v: mgl64.Vec2{x, y}} }

// EmptyCoo returns the reserved "no coordinate" value.
func EmptyCoo() Coo { return NewCoo(math.Inf(1), math.Inf(1)) }

// X returns the easting.
func (c Coo) X() float64 { return c.v.X() }

// Y returns the northing.
func (c Coo) Y() float64 { return c.v.Y() }

// IsEmpty reports whether c is the reserved empty value.
func (c Coo) IsEmpty() bool { return math.IsInf(c.v.X(), 1) && math.IsInf(c.v.Y(), 1) }

// Distance returns the Euclidean distance between c and o.
func (c Coo) Distance(o Coo) float64 { return c.v.Sub(o.v).Len() }

// Add returns c translated by (dx, dy).
func (c Coo) Add(dx, dy float64) Coo { return Coo{v: c.v.Add(mgl64.Vec2{dx, dy})} }
