package spawn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/spreadspawn/internal/model"
)

func TestSpatialGrid_CellFloorsNegatives(t *testing.T) {
	g := NewSpatialGrid(100)
	assert.Equal(t, model.NewCoordinate(0, 0), g.Cell(model.NewCoordinate(0, 99)))
	assert.Equal(t, model.NewCoordinate(-1, -1), g.Cell(model.NewCoordinate(-1, -100)))
	assert.Equal(t, model.NewCoordinate(-2, 1), g.Cell(model.NewCoordinate(-101, 100)))
}

func TestSpatialGrid_InsertRemove(t *testing.T) {
	g := NewSpatialGrid(10)
	p := model.NewCoordinate(15, -3)

	assert.True(t, g.Insert(p))
	assert.False(t, g.Insert(p))
	assert.True(t, g.Contains(p))
	assert.Equal(t, 1, g.Len())

	assert.True(t, g.Remove(p))
	assert.False(t, g.Remove(p))
	assert.False(t, g.Contains(p))
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.cells, "empty cells are dropped")
}

func TestSpatialGrid_ForEachNear(t *testing.T) {
	g := NewSpatialGrid(10)
	near := []model.Coordinate{{X: 0, Z: 0}, {X: -10, Z: -10}, {X: 19, Z: 19}, {X: 5, Z: -1}}
	far := []model.Coordinate{{X: 20, Z: 0}, {X: -11, Z: 5}, {X: 0, Z: 30}}
	for _, p := range append(near, far...) {
		g.Insert(p)
	}

	var got []model.Coordinate
	g.ForEachNear(model.NewCoordinate(3, 3), func(p model.Coordinate) bool {
		got = append(got, p)
		return true
	})
	assert.ElementsMatch(t, near, got)

	count := 0
	g.ForEachNear(model.NewCoordinate(3, 3), func(model.Coordinate) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestSpatialGrid_Rebuild(t *testing.T) {
	g := NewSpatialGrid(10)
	points := []model.Coordinate{{X: -50, Z: 7}, {X: 0, Z: 0}, {X: 33, Z: -12}}
	for _, p := range points {
		g.Insert(p)
	}

	g.Rebuild(100)
	assert.Equal(t, int32(100), g.CellSize())
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []model.Coordinate{{X: -50, Z: 7}, {X: 0, Z: 0}, {X: 33, Z: -12}}, g.Points())

	hits := 0
	g.ForEachNear(model.NewCoordinate(0, 0), func(model.Coordinate) bool {
		hits++
		return true
	})
	assert.Equal(t, 3, hits)

	g.Clear()
	assert.Equal(t, 0, g.Len())
	assert.Panics(t, func() { g.Rebuild(0) })
}
