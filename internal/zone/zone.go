// Package zone implements no-spawn zones: polygons, boxes and circles on the
// world plane that the safety oracle refuses to place players in.
package zone

import (
	"fmt"

	"github.com/udisondev/spreadspawn/internal/model"
)

// Shape names, same spelling as the zone config.
const (
	ShapeNPoly    = "NPoly"
	ShapeCuboid   = "Cuboid"
	ShapeCylinder = "Cylinder"
)

// Zone is a named area in one world.
// Immutable after New.
type Zone struct {
	id     int32
	name   string
	world  string
	shape  string
	nodesX []int32
	nodesZ []int32
	rad    int32

	minX, maxX int32
	minZ, maxZ int32
}

// New validates the geometry and creates a zone.
// Cylinder uses the first node as its center and needs rad > 0,
// Cuboid needs at least two nodes, NPoly at least three.
func New(id int32, name, world, shape string, nodesX, nodesZ []int32, rad int32) (*Zone, error) {
	if len(nodesX) != len(nodesZ) {
		return nil, fmt.Errorf("zone %d: %d x nodes but %d z nodes", id, len(nodesX), len(nodesZ))
	}

	switch shape {
	case ShapeCylinder:
		if len(nodesX) < 1 || rad <= 0 {
			return nil, fmt.Errorf("zone %d: cylinder needs a center node and positive radius", id)
		}
	case ShapeCuboid:
		if len(nodesX) < 2 {
			return nil, fmt.Errorf("zone %d: cuboid needs 2 nodes, got %d", id, len(nodesX))
		}
	case ShapeNPoly:
		if len(nodesX) < 3 {
			return nil, fmt.Errorf("zone %d: polygon needs at least 3 nodes, got %d", id, len(nodesX))
		}
	default:
		return nil, fmt.Errorf("zone %d: unknown shape %q", id, shape)
	}

	z := &Zone{
		id:     id,
		name:   name,
		world:  world,
		shape:  shape,
		nodesX: append([]int32(nil), nodesX...),
		nodesZ: append([]int32(nil), nodesZ...),
		rad:    rad,
	}
	z.computeBox()
	return z, nil
}

// ID returns the zone identifier.
func (z *Zone) ID() int32 { return z.id }

// Name returns the zone name.
func (z *Zone) Name() string { return z.name }

// World returns the world the zone belongs to.
func (z *Zone) World() string { return z.world }

// Shape returns the geometry kind.
func (z *Zone) Shape() string { return z.shape }

func (z *Zone) computeBox() {
	if z.shape == ShapeCylinder {
		cx, cz := z.nodesX[0], z.nodesZ[0]
		z.minX, z.maxX = cx-z.rad, cx+z.rad
		z.minZ, z.maxZ = cz-z.rad, cz+z.rad
		return
	}

	z.minX, z.maxX = z.nodesX[0], z.nodesX[0]
	z.minZ, z.maxZ = z.nodesZ[0], z.nodesZ[0]
	for i := 1; i < len(z.nodesX); i++ {
		z.minX = min(z.minX, z.nodesX[i])
		z.maxX = max(z.maxX, z.nodesX[i])
		z.minZ = min(z.minZ, z.nodesZ[i])
		z.maxZ = max(z.maxZ, z.nodesZ[i])
	}
}

// Contains checks if the column c is inside the zone geometry.
// For "NPoly" shape: ray casting (point-in-polygon), border counts as inside.
// For "Cuboid" shape: axis-aligned bounding box of the nodes.
// For "Cylinder" shape: center + radius circle.
func (z *Zone) Contains(c model.Coordinate) bool {
	if c.X < z.minX || c.X > z.maxX || c.Z < z.minZ || c.Z > z.maxZ {
		return false
	}

	switch z.shape {
	case ShapeCuboid:
		return true
	case ShapeCylinder:
		center := model.NewCoordinate(z.nodesX[0], z.nodesZ[0])
		r := int64(z.rad)
		return c.DistanceSquared(center) <= r*r
	default:
		return z.containsNPoly(c.X, c.Z)
	}
}

// containsNPoly проверяет попадание точки в полигон алгоритмом ray casting.
func (z *Zone) containsNPoly(x, y int32) bool {
	n := len(z.nodesX)
	count := 0
	j := n - 1

	for i := range n {
		if (z.nodesZ[i] > y) != (z.nodesZ[j] > y) {
			slope := int64(x-z.nodesX[i])*int64(z.nodesZ[j]-z.nodesZ[i]) -
				int64(z.nodesX[j]-z.nodesX[i])*int64(y-z.nodesZ[i])

			if slope == 0 {
				// Точка лежит на границе полигона.
				return true
			}

			if (slope < 0) != (int64(z.nodesZ[j]-z.nodesZ[i]) < 0) {
				count++
			}
		}
		j = i
	}

	return count%2 == 1
}
