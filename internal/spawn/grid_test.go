package spawn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spreadspawn/internal/model"
)

func TestLatticeIndex_Inverse(t *testing.T) {
	for idx := int64(0); idx < 2000; idx++ {
		i, j := latticePosition(idx)
		require.Equal(t, idx, latticeIndex(i, j), "idx %d -> (%d, %d)", idx, i, j)
	}
	assert.Equal(t, int64(9), ringStart(2))
}

func TestLatticePosition_RingOrder(t *testing.T) {
	seen := map[[2]int64]bool{}
	for idx := int64(0); idx < ringStart(4); idx++ {
		i, j := latticePosition(idx)
		seen[[2]int64{i, j}] = true
		r := max(abs64(i), abs64(j))
		assert.Equal(t, r, (isqrt(idx)+1)/2)
	}
	assert.Len(t, seen, 49, "rings 0..3 cover a 7x7 block")
}

func newTestGrid(t *testing.T, spawn model.Coordinate, d Data) *GridGenerator {
	t.Helper()
	gen, err := NewGridGenerator(newTestWorld(spawn))
	require.NoError(t, err)
	g := gen.(*GridGenerator)
	require.NoError(t, g.RestorePartial(d))
	return g
}

func TestGridGenerator_SpreadsOutward(t *testing.T) {
	spawn := model.NewCoordinate(8, -8)
	g := newTestGrid(t, spawn, Data{"spacing": 10})

	first, err := g.Next()
	require.NoError(t, err)
	assert.Equal(t, spawn, first)
	g.Add(first)

	for range 8 {
		c, err := g.Next()
		require.NoError(t, err)
		require.True(t, g.IsValid(c))
		assert.LessOrEqual(t, max(abs64(int64(c.X-spawn.X)), abs64(int64(c.Z-spawn.Z))), int64(10))
		g.Add(c)
	}

	c, err := g.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(20), max(abs64(int64(c.X-spawn.X)), abs64(int64(c.Z-spawn.Z))))
	assert.False(t, g.IsValid(model.NewCoordinate(9, -8)), "off-lattice")
	assert.False(t, g.IsValid(first), "taken")
}

func TestGridGenerator_RejectedCandidateIsSkipped(t *testing.T) {
	g := newTestGrid(t, model.Coordinate{}, Data{"spacing": 16})

	a, err := g.Next()
	require.NoError(t, err)
	b, err := g.Next()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGridGenerator_RemoveRewinds(t *testing.T) {
	g := newTestGrid(t, model.Coordinate{}, Data{"spacing": 16})
	var placed []model.Coordinate
	for range 5 {
		c, err := g.Next()
		require.NoError(t, err)
		g.Add(c)
		placed = append(placed, c)
	}

	g.Remove(placed[1])
	c, err := g.Next()
	require.NoError(t, err)
	assert.Equal(t, placed[1], c)
}

func TestGridGenerator_Exhausted(t *testing.T) {
	g := newTestGrid(t, model.Coordinate{}, Data{
		"spacing": 10,
		"lowerX":  -10,
		"upperX":  10,
		"lowerZ":  -10,
		"upperZ":  10,
	})
	for range 9 {
		c, err := g.Next()
		require.NoError(t, err)
		g.Add(c)
	}

	_, err := g.Next()
	require.ErrorIs(t, err, ErrGenerationExhausted)
	var exhausted *GenerationExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, GridID.String(), exhausted.Generator)
}

func TestGridGenerator_RoundTrip(t *testing.T) {
	w := newTestWorld(model.NewCoordinate(3, 4))
	gen, _ := NewGridGenerator(w)
	g := gen.(*GridGenerator)
	require.NoError(t, g.RestorePartial(Data{"spacing": 32}))
	for range 6 {
		c, _ := g.Next()
		g.Add(c)
	}
	_, _ = g.Next() // rejected by the caller

	b, err := MarshalData(g.Serialize())
	require.NoError(t, err)
	d, err := UnmarshalData(b)
	require.NoError(t, err)

	restoredGen, _ := NewGridGenerator(w)
	restored := restoredGen.(*GridGenerator)
	require.NoError(t, restored.RestoreFull(d))

	for range 10 {
		want, errWant := g.Next()
		got, errGot := restored.Next()
		require.NoError(t, errWant)
		require.NoError(t, errGot)
		assert.Equal(t, want, got)
		g.Add(want)
		restored.Add(got)
	}
}

func TestGridGenerator_InvalidSpacing(t *testing.T) {
	gen, _ := NewGridGenerator(newTestWorld(model.Coordinate{}))
	err := gen.RestorePartial(Data{"spacing": 0})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "spacing", cfgErr.Key)
	assert.Equal(t, DefaultGridSpacing, gen.(*GridGenerator).Spacing())
}
