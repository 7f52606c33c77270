package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinate_Distance(t *testing.T) {
	tests := []struct {
		name string
		a, b Coordinate
		want float64
	}{
		{"same point", NewCoordinate(5, 5), NewCoordinate(5, 5), 0},
		{"3-4-5 triangle", NewCoordinate(0, 0), NewCoordinate(3, 4), 5},
		{"negative quadrant", NewCoordinate(-3, -4), NewCoordinate(0, 0), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.Distance(tt.b), 1e-9)
			assert.InDelta(t, tt.want, tt.b.Distance(tt.a), 1e-9)
		})
	}
}

func TestCoordinate_WithinIsStrict(t *testing.T) {
	origin := NewCoordinate(0, 0)

	assert.True(t, origin.Within(NewCoordinate(0, 49), 50))
	assert.False(t, origin.Within(NewCoordinate(0, 50), 50), "distance equal to radius is outside")
	assert.False(t, origin.Within(NewCoordinate(40, 40), 50))
}

func TestCoordinate_DistanceSquaredWorldScale(t *testing.T) {
	c := NewCoordinate(30_000_000, 30_000_000)
	d := NewCoordinate(-30_000_000, -30_000_000)
	assert.Equal(t, int64(7_200_000_000_000_000), c.DistanceSquared(d))
}

func TestBounds_Contains(t *testing.T) {
	b := NewBounds(NewCoordinate(-10, -20), NewCoordinate(10, 20))

	assert.True(t, b.Contains(NewCoordinate(0, 0)))
	assert.True(t, b.Contains(NewCoordinate(-10, 20)), "edges are inclusive")
	assert.False(t, b.Contains(NewCoordinate(11, 0)))
	assert.False(t, b.Contains(NewCoordinate(0, -21)))
	assert.True(t, b.Valid())
	assert.False(t, NewBounds(NewCoordinate(1, 0), NewCoordinate(0, 0)).Valid())
}
