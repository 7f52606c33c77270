package spawn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

// fixedGenerator always proposes one coordinate.
type fixedGenerator struct {
	VanillaGenerator
	at model.Coordinate
}

func (g *fixedGenerator) Next() (model.Coordinate, error)  { return g.at, nil }
func (g *fixedGenerator) IsValid(c model.Coordinate) bool { return c == g.at }

func TestRegistry_Totality(t *testing.T) {
	r := NewRegistry()
	id := NewIdentifier("test", "fixed")
	w := newTestWorld(model.Coordinate{})

	assert.False(t, r.Exists(id))
	_, err := r.Construct(id, w)
	assert.ErrorIs(t, err, ErrUnregisteredGenerator)
	assert.ErrorIs(t, err, ErrInstantiation)

	require.NoError(t, r.Register(id, func(w *world.World) (Generator, error) {
		return &fixedGenerator{at: w.Spawn()}, nil
	}))
	assert.True(t, r.Exists(id))

	g, err := r.Construct(id, w)
	require.NoError(t, err)
	got, ok := r.IdentifierOf(g)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = r.IdentifierOf(&SpringGenerator{})
	assert.False(t, ok)
	_, ok = r.IdentifierOf(nil)
	assert.False(t, ok)
}

func TestRegistry_RegisterProbesFactory(t *testing.T) {
	r := NewRegistry()

	err := r.Register(NewIdentifier("test", "broken"), func(*world.World) (Generator, error) {
		return nil, errors.New("needs a nether portal")
	})
	assert.ErrorIs(t, err, ErrInstantiation)

	err = r.Register(NewIdentifier("test", "panics"), func(*world.World) (Generator, error) {
		panic("boom")
	})
	assert.ErrorIs(t, err, ErrInstantiation)

	err = r.Register(NewIdentifier("test", "nil"), func(*world.World) (Generator, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrInstantiation)

	assert.ErrorIs(t, r.Register(NewIdentifier("test", "none"), nil), ErrInstantiation)
	assert.Error(t, r.Register(Identifier{}, NewVanillaGenerator))
	assert.Empty(t, r.IDs())
}

func TestRegistry_ConstructRecoversPanics(t *testing.T) {
	r := NewRegistry()
	id := NewIdentifier("test", "picky")
	require.NoError(t, r.Register(id, func(w *world.World) (Generator, error) {
		if w.Name() == "the_end" {
			panic("no spawn in the end")
		}
		return NewVanillaGenerator(w)
	}))

	end := world.New("the_end", 1, model.Coordinate{}, world.DefaultBorder(), world.DefaultSpawnRadius)
	_, err := r.Construct(id, end)
	assert.ErrorIs(t, err, ErrInstantiation)
	assert.NotErrorIs(t, err, ErrUnregisteredGenerator)
}

func TestRegistry_Rebinding(t *testing.T) {
	r := NewRegistry()
	first := NewIdentifier("test", "first")
	second := NewIdentifier("test", "second")

	require.NoError(t, r.Register(first, NewVanillaGenerator))
	assert.Error(t, r.Register(second, NewVanillaGenerator), "one type, one identifier")

	require.NoError(t, r.Register(first, NewRandomGenerator))
	g, err := r.Construct(first, newTestWorld(model.Coordinate{}))
	require.NoError(t, err)
	assert.IsType(t, &RandomGenerator{}, g)

	require.NoError(t, r.Register(second, NewVanillaGenerator), "vanilla type was released")
	id, ok := r.IdentifierOf(&VanillaGenerator{})
	require.True(t, ok)
	assert.Equal(t, second, id)
}

func TestDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, []Identifier{GridID, RandomID, SpringID, VanillaID}, r.IDs())

	w := newTestWorld(model.NewCoordinate(10, 10))
	for _, id := range r.IDs() {
		g, err := r.Construct(id, w)
		require.NoError(t, err, id.String())
		got, ok := r.IdentifierOf(g)
		require.True(t, ok)
		assert.Equal(t, id, got)
	}
}
