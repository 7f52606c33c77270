package spawn

import (
	"log/slog"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

// Spring defaults.
const (
	DefaultReserveRadius           int32 = 128
	DefaultOverlapRadius           int32 = 256
	DefaultWorldspawnReserveRadius int32 = 256
	DefaultWorldspawnOverlapRadius int32 = 256 + 128

	// SpringMaxAttempts is the number of candidates Next draws before giving up.
	SpringMaxAttempts = 100

	keyReserveRadius           = "reserveRadius"
	keyOverlapRadius           = "overlapRadius"
	keyWorldspawnReserveRadius = "worldspawnReserveRadius"
	keyWorldspawnOverlapRadius = "worldspawnOverlapRadius"
	keyGreatestDistance        = "greatestDistance"
)

// SpringConfig holds the tunables of SpringGenerator.
type SpringConfig struct {
	Bounds     model.Bounds
	WorldSpawn model.Coordinate
	Seed       int64

	// ReserveRadius is the minimum distance between two points.
	ReserveRadius int32
	// OverlapRadius links a new point to an existing one; also the SpatialGrid cell size.
	OverlapRadius int32

	WorldspawnReserveRadius int32
	WorldspawnOverlapRadius int32
}

// DefaultSpringConfig returns the config for a fresh generator in w.
func DefaultSpringConfig(w *world.World) SpringConfig {
	return SpringConfig{
		Bounds:                  w.Border().Bounds(),
		WorldSpawn:              w.Spawn(),
		Seed:                    w.Seed(),
		ReserveRadius:           DefaultReserveRadius,
		OverlapRadius:           DefaultOverlapRadius,
		WorldspawnReserveRadius: DefaultWorldspawnReserveRadius,
		WorldspawnOverlapRadius: DefaultWorldspawnOverlapRadius,
	}
}

// Validate checks the radius ordering the spreading search depends on.
func (c SpringConfig) Validate() error {
	radii := []struct {
		key string
		v   int32
	}{
		{keyReserveRadius, c.ReserveRadius},
		{keyOverlapRadius, c.OverlapRadius},
		{keyWorldspawnReserveRadius, c.WorldspawnReserveRadius},
		{keyWorldspawnOverlapRadius, c.WorldspawnOverlapRadius},
	}
	for _, r := range radii {
		if r.v <= 0 {
			return &ConfigError{Key: r.key, Value: r.v, Reason: "must be positive"}
		}
	}
	if c.OverlapRadius <= c.ReserveRadius {
		return &ConfigError{Key: keyOverlapRadius, Value: c.OverlapRadius, Reason: "must exceed reserveRadius"}
	}
	if c.WorldspawnOverlapRadius <= c.WorldspawnReserveRadius {
		return &ConfigError{Key: keyWorldspawnOverlapRadius, Value: c.WorldspawnOverlapRadius, Reason: "must exceed worldspawnReserveRadius"}
	}
	if !c.Bounds.Valid() {
		return &ConfigError{Key: "bounds", Value: c.Bounds, Reason: "lower corner exceeds upper corner"}
	}
	return nil
}

// SpringGenerator grows a point cloud outward from the world spawn.
// Every accepted point keeps ReserveRadius from all others and lies within
// OverlapRadius of at least one placed point or WorldspawnOverlapRadius of the spawn.
type SpringGenerator struct {
	baseline SpringConfig
	cfg      SpringConfig

	random *randomSource
	grid   *SpatialGrid

	// greatestDistance is the frontier radius; it only grows.
	greatestDistance int64
}

// NewSpringGenerator is the Factory for SpringID.
func NewSpringGenerator(w *world.World) (Generator, error) {
	return NewSpringGeneratorWithConfig(DefaultSpringConfig(w))
}

// NewSpringGeneratorWithConfig creates a generator; cfg is also the RestoreFull baseline.
func NewSpringGeneratorWithConfig(cfg SpringConfig) (*SpringGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SpringGenerator{
		baseline: cfg,
		cfg:      cfg,
		random:   newRandomSource(cfg.Seed),
		grid:     NewSpatialGrid(cfg.OverlapRadius),
	}, nil
}

// Config returns the active configuration.
func (g *SpringGenerator) Config() SpringConfig { return g.cfg }

// GreatestDistance returns the current frontier radius.
func (g *SpringGenerator) GreatestDistance() int64 { return g.greatestDistance }

// Points returns every placed point.
func (g *SpringGenerator) Points() []model.Coordinate { return g.grid.Points() }

// SearchArea returns the rectangle Next samples from. ok is false when
// the frontier rectangle does not intersect the bounds.
func (g *SpringGenerator) SearchArea() (model.Bounds, bool) {
	c := g.cfg
	reach := g.greatestDistance + int64(c.OverlapRadius)
	ws := int64(c.WorldspawnOverlapRadius)
	sx, sz := int64(c.WorldSpawn.X), int64(c.WorldSpawn.Z)

	lowerX := max(clamp(sx-reach, int64(c.Bounds.Lower.X), sx-ws), int64(c.Bounds.Lower.X))
	lowerZ := max(clamp(sz-reach, int64(c.Bounds.Lower.Z), sz-ws), int64(c.Bounds.Lower.Z))
	upperX := min(clamp(sx+reach, sx+ws, int64(c.Bounds.Upper.X)), int64(c.Bounds.Upper.X))
	upperZ := min(clamp(sz+reach, sz+ws, int64(c.Bounds.Upper.Z)), int64(c.Bounds.Upper.Z))

	area := model.NewBounds(
		model.NewCoordinate(int32(lowerX), int32(lowerZ)),
		model.NewCoordinate(int32(upperX), int32(upperZ)),
	)
	return area, area.Valid()
}

// clamp returns lo when v < lo, otherwise min(v, hi).
func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	return min(v, hi)
}

// Next samples the search area up to SpringMaxAttempts times.
func (g *SpringGenerator) Next() (model.Coordinate, error) {
	area, ok := g.SearchArea()
	if !ok {
		return model.Coordinate{}, &GenerationExhaustedError{Generator: SpringID.String()}
	}

	for attempt := 1; attempt <= SpringMaxAttempts; attempt++ {
		candidate := model.NewCoordinate(
			g.random.Between(area.Lower.X, area.Upper.X),
			g.random.Between(area.Lower.Z, area.Upper.Z),
		)
		if g.IsValid(candidate) {
			slog.Debug("spring generator found candidate",
				"attempts", attempt,
				"candidate", candidate)
			return candidate, nil
		}
	}

	return model.Coordinate{}, &GenerationExhaustedError{Generator: SpringID.String(), Attempts: SpringMaxAttempts}
}

func (g *SpringGenerator) IsValid(c model.Coordinate) bool {
	cfg := g.cfg
	if !cfg.Bounds.Contains(c) {
		return false
	}

	if c.Within(cfg.WorldSpawn, cfg.WorldspawnReserveRadius) {
		return false
	}
	overlaps := 0
	if c.Within(cfg.WorldSpawn, cfg.WorldspawnOverlapRadius) {
		overlaps++
	}

	conflict := false
	g.grid.ForEachNear(c, func(p model.Coordinate) bool {
		if c.Within(p, cfg.ReserveRadius) {
			conflict = true
			return false
		}
		if c.Within(p, cfg.OverlapRadius) {
			overlaps++
		}
		return true
	})

	return !conflict && overlaps > 0
}

func (g *SpringGenerator) Add(c model.Coordinate) {
	d := int64(c.Distance(g.cfg.WorldSpawn))
	g.greatestDistance = max(g.greatestDistance, d)
	g.grid.Insert(c)
}

// Remove drops c from the index. The frontier radius is kept.
func (g *SpringGenerator) Remove(c model.Coordinate) {
	g.grid.Remove(c)
}

// Clear drops every placed point and shrinks the frontier back to the spawn.
// With no points left nothing outside a smaller rectangle can conflict.
func (g *SpringGenerator) Clear() {
	g.grid.Clear()
	g.greatestDistance = 0
}

// frontierFrom returns the distance of the farthest placed point from spawn.
func (g *SpringGenerator) frontierFrom(spawn model.Coordinate) int64 {
	var d int64
	for _, p := range g.grid.Points() {
		d = max(d, int64(p.Distance(spawn)))
	}
	return d
}

func (g *SpringGenerator) Serialize() Data {
	c := g.cfg
	d := Data{
		keyReserveRadius:           c.ReserveRadius,
		keyOverlapRadius:           c.OverlapRadius,
		keyWorldspawnReserveRadius: c.WorldspawnReserveRadius,
		keyWorldspawnOverlapRadius: c.WorldspawnOverlapRadius,
		keyGreatestDistance:        g.greatestDistance,
		keyPoints:                  encodePoints(g.grid.Points()),
	}
	putBounds(d, c.Bounds)
	putWorldspawn(d, c.WorldSpawn)
	putRandom(d, g.random)
	return d
}

// parseSpringConfig applies the configuration keys of d on top of base.
func parseSpringConfig(d Data, base SpringConfig) (SpringConfig, randomUpdate, error) {
	cfg := base
	var err error

	if cfg.Bounds, err = readBounds(d, base.Bounds); err != nil {
		return SpringConfig{}, randomUpdate{}, err
	}
	if cfg.WorldSpawn, err = readWorldspawn(d, base.WorldSpawn); err != nil {
		return SpringConfig{}, randomUpdate{}, err
	}

	radii := []struct {
		key string
		dst *int32
	}{
		{keyReserveRadius, &cfg.ReserveRadius},
		{keyOverlapRadius, &cfg.OverlapRadius},
		{keyWorldspawnReserveRadius, &cfg.WorldspawnReserveRadius},
		{keyWorldspawnOverlapRadius, &cfg.WorldspawnOverlapRadius},
	}
	for _, r := range radii {
		v, ok, err := int32Field(d, r.key)
		if err != nil {
			return SpringConfig{}, randomUpdate{}, err
		}
		if ok {
			*r.dst = v
		}
	}

	rnd, err := readRandom(d)
	if err != nil {
		return SpringConfig{}, randomUpdate{}, err
	}
	if rnd.hasSeed {
		cfg.Seed = rnd.seed
	}

	if err := cfg.Validate(); err != nil {
		return SpringConfig{}, randomUpdate{}, err
	}
	return cfg, rnd, nil
}

// RestoreFull resets to the construction-time config, then applies d
// including placed points and the frontier radius.
func (g *SpringGenerator) RestoreFull(d Data) error {
	cfg, rnd, err := parseSpringConfig(d, g.baseline)
	if err != nil {
		return err
	}
	points, _, err := pointsField(d, keyPoints)
	if err != nil {
		return err
	}
	greatest, _, err := int64Field(d, keyGreatestDistance)
	if err != nil {
		return err
	}
	if greatest < 0 {
		return &ConfigError{Key: keyGreatestDistance, Value: greatest, Reason: "must not be negative"}
	}

	g.cfg = cfg
	g.random.Reseed(cfg.Seed)
	rnd.apply(g.random)

	g.grid = NewSpatialGrid(cfg.OverlapRadius)
	g.greatestDistance = greatest
	for _, p := range points {
		g.Add(p)
	}
	return nil
}

// RestorePartial merges configuration keys. Placed points are kept; the
// frontier radius is re-measured only when the world spawn moves.
func (g *SpringGenerator) RestorePartial(d Data) error {
	cfg, rnd, err := parseSpringConfig(d, g.cfg)
	if err != nil {
		return err
	}

	moved := cfg.WorldSpawn != g.cfg.WorldSpawn
	g.cfg = cfg
	g.grid.Rebuild(cfg.OverlapRadius)
	if moved {
		g.greatestDistance = g.frontierFrom(cfg.WorldSpawn)
	}
	rnd.apply(g.random)
	return nil
}
