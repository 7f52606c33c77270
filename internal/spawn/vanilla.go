package spawn

import (
	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

// VanillaGenerator always proposes the world's built-in spawn point.
type VanillaGenerator struct {
	world *world.World
}

// NewVanillaGenerator is the Factory for VanillaID.
func NewVanillaGenerator(w *world.World) (Generator, error) {
	return &VanillaGenerator{world: w}, nil
}

func (g *VanillaGenerator) Next() (model.Coordinate, error) {
	return g.world.Spawn(), nil
}

func (g *VanillaGenerator) IsValid(c model.Coordinate) bool {
	return c == g.world.Spawn()
}

func (g *VanillaGenerator) Add(model.Coordinate) {}

func (g *VanillaGenerator) Remove(model.Coordinate) {}

func (g *VanillaGenerator) Serialize() Data { return Data{} }

func (g *VanillaGenerator) RestoreFull(Data) error { return nil }

func (g *VanillaGenerator) RestorePartial(Data) error { return nil }
