package spawn

import (
	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

// RandomGenerator draws uniformly from its bounds and keeps no placement memory.
type RandomGenerator struct {
	baseline model.Bounds
	baseSeed int64

	bounds model.Bounds
	random *randomSource
}

// NewRandomGenerator is the Factory for RandomID. Bounds default to the world border.
func NewRandomGenerator(w *world.World) (Generator, error) {
	b := w.Border().Bounds()
	return &RandomGenerator{
		baseline: b,
		baseSeed: w.Seed(),
		bounds:   b,
		random:   newRandomSource(w.Seed()),
	}, nil
}

// Bounds returns the sampling rectangle.
func (g *RandomGenerator) Bounds() model.Bounds { return g.bounds }

func (g *RandomGenerator) Next() (model.Coordinate, error) {
	return model.NewCoordinate(
		g.random.Between(g.bounds.Lower.X, g.bounds.Upper.X),
		g.random.Between(g.bounds.Lower.Z, g.bounds.Upper.Z),
	), nil
}

func (g *RandomGenerator) IsValid(c model.Coordinate) bool {
	return g.bounds.Contains(c)
}

func (g *RandomGenerator) Add(model.Coordinate) {}

func (g *RandomGenerator) Remove(model.Coordinate) {}

func (g *RandomGenerator) Serialize() Data {
	d := Data{}
	putBounds(d, g.bounds)
	putRandom(d, g.random)
	return d
}

func (g *RandomGenerator) RestoreFull(d Data) error {
	bounds, rnd, err := g.parse(d, g.baseline)
	if err != nil {
		return err
	}
	if !rnd.hasSeed {
		rnd.seed, rnd.hasSeed = g.baseSeed, true
	}

	g.bounds = bounds
	rnd.apply(g.random)
	return nil
}

func (g *RandomGenerator) RestorePartial(d Data) error {
	bounds, rnd, err := g.parse(d, g.bounds)
	if err != nil {
		return err
	}

	g.bounds = bounds
	rnd.apply(g.random)
	return nil
}

func (g *RandomGenerator) parse(d Data, base model.Bounds) (model.Bounds, randomUpdate, error) {
	bounds, err := readBounds(d, base)
	if err != nil {
		return model.Bounds{}, randomUpdate{}, err
	}
	rnd, err := readRandom(d)
	if err != nil {
		return model.Bounds{}, randomUpdate{}, err
	}
	return bounds, rnd, nil
}
