package spawn

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

func newTestWorld(spawn model.Coordinate) *world.World {
	return world.New("overworld", 42, spawn, world.DefaultBorder(), world.DefaultSpawnRadius)
}

// stubOracle accepts everything except listed coordinates and counts calls.
type stubOracle struct {
	mu     sync.Mutex
	unsafe map[model.Coordinate]bool
	calls  int
	err    error
}

func newStubOracle(unsafe ...model.Coordinate) *stubOracle {
	o := &stubOracle{unsafe: make(map[model.Coordinate]bool)}
	for _, c := range unsafe {
		o.unsafe[c] = true
	}
	return o
}

func (o *stubOracle) IsSafe(ctx context.Context, w *world.World, c model.Coordinate) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.err != nil {
		return false, o.err
	}
	return !o.unsafe[c], nil
}

func (o *stubOracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

// oracleFunc adapts a function to SafetyOracle.
type oracleFunc func(c model.Coordinate) bool

func (f oracleFunc) IsSafe(_ context.Context, _ *world.World, c model.Coordinate) (bool, error) {
	return f(c), nil
}

func newTestSpring(t *testing.T, cfg SpringConfig) *SpringGenerator {
	t.Helper()
	g, err := NewSpringGeneratorWithConfig(cfg)
	require.NoError(t, err)
	return g
}

func smallSpringConfig() SpringConfig {
	return SpringConfig{
		Bounds:                  model.NewBounds(model.NewCoordinate(-2000, -2000), model.NewCoordinate(2000, 2000)),
		Seed:                    7,
		ReserveRadius:           50,
		OverlapRadius:           120,
		WorldspawnReserveRadius: 60,
		WorldspawnOverlapRadius: 150,
	}
}
