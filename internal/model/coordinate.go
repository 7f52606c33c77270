package model

import (
	"fmt"
	"math"
)

// Coordinate is a column position in the world plane (x, z).
// Value type, compared and hashed by value.
type Coordinate struct {
	X int32
	Z int32
}

// NewCoordinate creates a Coordinate.
func NewCoordinate(x, z int32) Coordinate {
	return Coordinate{X: x, Z: z}
}

// DistanceSquared returns the squared euclidean distance to other (no sqrt).
func (c Coordinate) DistanceSquared(other Coordinate) int64 {
	dx := int64(c.X) - int64(other.X)
	dz := int64(c.Z) - int64(other.Z)
	return dx*dx + dz*dz
}

// Distance returns the euclidean distance to other.
func (c Coordinate) Distance(other Coordinate) float64 {
	return math.Sqrt(float64(c.DistanceSquared(other)))
}

// Within reports whether other is strictly closer than radius.
func (c Coordinate) Within(other Coordinate, radius int32) bool {
	r := int64(radius)
	return c.DistanceSquared(other) < r*r
}

// Add returns c shifted by (dx, dz).
func (c Coordinate) Add(dx, dz int32) Coordinate {
	return Coordinate{X: c.X + dx, Z: c.Z + dz}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}
