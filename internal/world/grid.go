package world

import (
	"fmt"

	"github.com/udisondev/spreadspawn/internal/model"
)

// Border limits, same as the vanilla world border.
const (
	// MaxCoordinate is the farthest column a border edge may reach.
	MaxCoordinate = 29_999_984

	// MaxBorderSize is the widest allowed border (2 × MaxCoordinate).
	MaxBorderSize = 2 * MaxCoordinate

	// DefaultSpawnRadius matches the vanilla spawnRadius gamerule.
	DefaultSpawnRadius = 10
)

// Border is a square world border centered on (CenterX, CenterZ).
type Border struct {
	CenterX int32
	CenterZ int32
	Size    int32
}

// NewBorder creates a border, clamping size to (0, MaxBorderSize].
func NewBorder(centerX, centerZ, size int32) Border {
	if size <= 0 || size > MaxBorderSize {
		size = MaxBorderSize
	}
	return Border{CenterX: centerX, CenterZ: centerZ, Size: size}
}

// DefaultBorder returns the widest border centered on the origin.
func DefaultBorder() Border {
	return NewBorder(0, 0, MaxBorderSize)
}

func clampEdge(v int64) int32 {
	if v < -MaxCoordinate {
		return -MaxCoordinate
	}
	if v > MaxCoordinate {
		return MaxCoordinate
	}
	return int32(v)
}

// West returns the lowest x inside the border.
func (b Border) West() int32 { return clampEdge(int64(b.CenterX) - int64(b.Size)/2) }

// East returns the highest x inside the border.
func (b Border) East() int32 { return clampEdge(int64(b.CenterX) + int64(b.Size)/2) }

// North returns the lowest z inside the border.
func (b Border) North() int32 { return clampEdge(int64(b.CenterZ) - int64(b.Size)/2) }

// South returns the highest z inside the border.
func (b Border) South() int32 { return clampEdge(int64(b.CenterZ) + int64(b.Size)/2) }

// Bounds converts the border to an inclusive rectangle.
func (b Border) Bounds() model.Bounds {
	return model.NewBounds(
		model.NewCoordinate(b.West(), b.North()),
		model.NewCoordinate(b.East(), b.South()),
	)
}

// DistanceInside returns the distance from c to the nearest border edge.
// Negative when c is outside.
func (b Border) DistanceInside(c model.Coordinate) int64 {
	d := int64(c.X) - int64(b.West())
	if v := int64(b.East()) - int64(c.X); v < d {
		d = v
	}
	if v := int64(c.Z) - int64(b.North()); v < d {
		d = v
	}
	if v := int64(b.South()) - int64(c.Z); v < d {
		d = v
	}
	return d
}

func (b Border) String() string {
	return fmt.Sprintf("center=(%d, %d) size=%d", b.CenterX, b.CenterZ, b.Size)
}
