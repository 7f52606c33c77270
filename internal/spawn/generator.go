package spawn

import (
	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

// Generator produces candidate spawn points and tracks placed ones.
// Implementations are not safe for concurrent use; Manager serializes access.
type Generator interface {
	// Next returns a new candidate. It never mutates placement state.
	Next() (model.Coordinate, error)

	// IsValid checks c against this generator's own geometric rules only.
	IsValid(c model.Coordinate) bool

	// Add records c as placed.
	Add(c model.Coordinate)

	// Remove undoes Add. No-op for unknown points.
	Remove(c model.Coordinate)

	// Serialize returns the generator configuration and state.
	Serialize() Data

	// RestoreFull replaces all configuration and state with d.
	// Keys absent from d take their construction-time values.
	RestoreFull(d Data) error

	// RestorePartial merges recognized keys of d.
	// Either every key is applied or none is.
	RestorePartial(d Data) error
}

// Clearer is implemented by generators that can drop every placed point at
// once, resetting state that Remove keeps (frontier, cursor).
type Clearer interface {
	Clear()
}

// Factory builds a generator for a world.
type Factory func(w *world.World) (Generator, error)

// Data keys shared by several generators.
const (
	keyLowerX      = "lowerX"
	keyUpperX      = "upperX"
	keyLowerZ      = "lowerZ"
	keyUpperZ      = "upperZ"
	keySeed        = "seed"
	keyRandomState = "rngState"
	keyWorldspawnX = "worldspawnX"
	keyWorldspawnZ = "worldspawnZ"
	keyPoints      = "points"
)

func putBounds(d Data, b model.Bounds) {
	d[keyLowerX] = b.Lower.X
	d[keyUpperX] = b.Upper.X
	d[keyLowerZ] = b.Lower.Z
	d[keyUpperZ] = b.Upper.Z
}

// readBounds applies the bounds keys present in d on top of b.
func readBounds(d Data, b model.Bounds) (model.Bounds, error) {
	lower, upper := b.Lower, b.Upper

	fields := []struct {
		key string
		dst *int32
	}{
		{keyLowerX, &lower.X},
		{keyUpperX, &upper.X},
		{keyLowerZ, &lower.Z},
		{keyUpperZ, &upper.Z},
	}
	for _, f := range fields {
		v, ok, err := int32Field(d, f.key)
		if err != nil {
			return model.Bounds{}, err
		}
		if ok {
			*f.dst = v
		}
	}

	out := model.NewBounds(lower, upper)
	if !out.Valid() {
		return model.Bounds{}, &ConfigError{Key: "bounds", Value: out, Reason: "lower corner exceeds upper corner"}
	}
	return out, nil
}

func putWorldspawn(d Data, c model.Coordinate) {
	d[keyWorldspawnX] = c.X
	d[keyWorldspawnZ] = c.Z
}

func readWorldspawn(d Data, c model.Coordinate) (model.Coordinate, error) {
	x, okX, err := int32Field(d, keyWorldspawnX)
	if err != nil {
		return model.Coordinate{}, err
	}
	z, okZ, err := int32Field(d, keyWorldspawnZ)
	if err != nil {
		return model.Coordinate{}, err
	}
	if okX {
		c = model.NewCoordinate(x, c.Z)
	}
	if okZ {
		c = model.NewCoordinate(c.X, z)
	}
	return c, nil
}

// randomUpdate is a parsed seed/rngState pair, applied after validation.
type randomUpdate struct {
	seed     int64
	hasSeed  bool
	state    string
	hasState bool
}

func readRandom(d Data) (randomUpdate, error) {
	var u randomUpdate
	var err error

	u.seed, u.hasSeed, err = int64Field(d, keySeed)
	if err != nil {
		return randomUpdate{}, err
	}
	u.state, u.hasState, err = stringField(d, keyRandomState)
	if err != nil {
		return randomUpdate{}, err
	}
	if u.hasState {
		if _, err := decodeRandomState(u.state); err != nil {
			return randomUpdate{}, &ConfigError{Key: keyRandomState, Value: u.state, Reason: err.Error()}
		}
	}
	return u, nil
}

// apply reseeds first so that an explicit stream position wins.
func (u randomUpdate) apply(r *randomSource) {
	if u.hasSeed {
		r.Reseed(u.seed)
	}
	if u.hasState {
		// validated by readRandom
		pcg, _ := decodeRandomState(u.state)
		r.setState(pcg)
	}
}

func putRandom(d Data, r *randomSource) {
	d[keySeed] = r.Seed()
	d[keyRandomState] = r.State()
}
