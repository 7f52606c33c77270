package spawn

import (
	"cmp"
	"slices"

	"github.com/udisondev/spreadspawn/internal/model"
)

// SpatialGrid buckets placed points into square cells of CellSize.
// A point closer than CellSize to c always lies in c's cell or one of its 8 neighbours.
type SpatialGrid struct {
	cellSize int32
	cells    map[model.Coordinate]map[model.Coordinate]struct{}
	size     int
}

// NewSpatialGrid creates an empty grid. cellSize must be positive.
func NewSpatialGrid(cellSize int32) *SpatialGrid {
	if cellSize <= 0 {
		panic("spatial grid cell size must be positive")
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cells:    make(map[model.Coordinate]map[model.Coordinate]struct{}),
	}
}

// CellSize returns the side of one cell.
func (g *SpatialGrid) CellSize() int32 { return g.cellSize }

// Cell returns the cell coordinate containing c.
func (g *SpatialGrid) Cell(c model.Coordinate) model.Coordinate {
	return model.NewCoordinate(floorDiv(c.X, g.cellSize), floorDiv(c.Z, g.cellSize))
}

// Insert adds c. Returns false if it was already present.
func (g *SpatialGrid) Insert(c model.Coordinate) bool {
	key := g.Cell(c)
	cell, ok := g.cells[key]
	if !ok {
		cell = make(map[model.Coordinate]struct{})
		g.cells[key] = cell
	}
	if _, exists := cell[c]; exists {
		return false
	}
	cell[c] = struct{}{}
	g.size++
	return true
}

// Remove deletes c. Returns false if it was not present.
func (g *SpatialGrid) Remove(c model.Coordinate) bool {
	key := g.Cell(c)
	cell, ok := g.cells[key]
	if !ok {
		return false
	}
	if _, exists := cell[c]; !exists {
		return false
	}
	delete(cell, c)
	if len(cell) == 0 {
		delete(g.cells, key)
	}
	g.size--
	return true
}

// Contains reports whether c is placed.
func (g *SpatialGrid) Contains(c model.Coordinate) bool {
	_, ok := g.cells[g.Cell(c)][c]
	return ok
}

// ForEachNear calls fn for every point in the 3×3 cell block around c.
// Iteration stops when fn returns false.
func (g *SpatialGrid) ForEachNear(c model.Coordinate, fn func(p model.Coordinate) bool) {
	center := g.Cell(c)
	for dx := int32(-1); dx <= 1; dx++ {
		for dz := int32(-1); dz <= 1; dz++ {
			cell, ok := g.cells[center.Add(dx, dz)]
			if !ok {
				continue
			}
			for p := range cell {
				if !fn(p) {
					return
				}
			}
		}
	}
}

// Points returns all placed points ordered by x, then z.
func (g *SpatialGrid) Points() []model.Coordinate {
	out := make([]model.Coordinate, 0, g.size)
	for _, cell := range g.cells {
		for p := range cell {
			out = append(out, p)
		}
	}
	sortCoordinates(out)
	return out
}

// Len returns the number of placed points.
func (g *SpatialGrid) Len() int { return g.size }

// Rebuild re-buckets every point for a new cell size.
func (g *SpatialGrid) Rebuild(cellSize int32) {
	if cellSize <= 0 {
		panic("spatial grid cell size must be positive")
	}
	if cellSize == g.cellSize {
		return
	}
	points := g.Points()
	g.cellSize = cellSize
	g.Clear()
	for _, p := range points {
		g.Insert(p)
	}
}

// Clear removes every point.
func (g *SpatialGrid) Clear() {
	clear(g.cells)
	g.size = 0
}

func compareCoordinates(a, b model.Coordinate) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Z, b.Z)
}

// floorDiv: целочисленное деление с округлением вниз (корректно для отрицательных).
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func sortCoordinates(points []model.Coordinate) {
	slices.SortFunc(points, compareCoordinates)
}
