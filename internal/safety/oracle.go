// Package safety provides the default "can a player stand here" check used when
// confirming spawn points: the candidate must sit inside the world border and at
// least one column of its spawn square must be outside every no-spawn zone.
package safety

import (
	"context"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

// ZoneIndex answers whether a column is inside a no-spawn zone.
type ZoneIndex interface {
	IsRestricted(world string, c model.Coordinate) bool
}

// Oracle is the border + zone safety check.
type Oracle struct {
	zones ZoneIndex
}

// NewOracle creates an oracle. zones may be nil (border check only).
func NewOracle(zones ZoneIndex) *Oracle {
	return &Oracle{zones: zones}
}

// IsSafe reports whether players can be spawned around c.
//
// The spawn square has the world's spawn radius, shrunk to the distance from
// c to the border (at least 1). c is safe when some column of that square is
// inside the border and not in a no-spawn zone.
func (o *Oracle) IsSafe(ctx context.Context, w *world.World, c model.Coordinate) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	border := w.Border()
	inside := border.DistanceInside(c)
	if inside < 1 {
		return false, nil
	}

	radius := int64(w.SpawnRadius())
	if inside < radius {
		radius = inside
	}
	if inside <= 1 {
		radius = 1
	}

	r := int32(radius)
	for dz := -r; dz <= r; dz++ {
		for dx := -r; dx <= r; dx++ {
			candidate := c.Add(dx, dz)
			if border.DistanceInside(candidate) < 0 {
				continue
			}
			if o.zones == nil || !o.zones.IsRestricted(w.Name(), candidate) {
				return true, nil
			}
		}
	}
	return false, nil
}

// Func adapts a plain function to the oracle interface used by spawn.Manager.
type Func func(ctx context.Context, w *world.World, c model.Coordinate) (bool, error)

// IsSafe calls f.
func (f Func) IsSafe(ctx context.Context, w *world.World, c model.Coordinate) (bool, error) {
	return f(ctx, w, c)
}

// Always is an oracle that accepts every coordinate.
var Always = Func(func(context.Context, *world.World, model.Coordinate) (bool, error) {
	return true, nil
})
