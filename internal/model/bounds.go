package model

import "fmt"

// Bounds is an inclusive axis-aligned rectangle on the world plane.
type Bounds struct {
	Lower Coordinate
	Upper Coordinate
}

// NewBounds creates Bounds from its lower and upper corners.
func NewBounds(lower, upper Coordinate) Bounds {
	return Bounds{Lower: lower, Upper: upper}
}

// Contains reports whether c lies inside the rectangle (edges included).
func (b Bounds) Contains(c Coordinate) bool {
	return c.X >= b.Lower.X && c.X <= b.Upper.X &&
		c.Z >= b.Lower.Z && c.Z <= b.Upper.Z
}

// Valid reports whether the lower corner does not exceed the upper one on either axis.
func (b Bounds) Valid() bool {
	return b.Lower.X <= b.Upper.X && b.Lower.Z <= b.Upper.Z
}

// WithLower returns a copy with the lower corner replaced (immutable pattern).
func (b Bounds) WithLower(lower Coordinate) Bounds {
	b.Lower = lower
	return b
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%s..%s]", b.Lower, b.Upper)
}
