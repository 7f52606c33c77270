package spawn

import (
	"math"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

const (
	// DefaultGridSpacing is the lattice step of GridGenerator.
	DefaultGridSpacing int32 = 256

	keySpacing = "spacing"
	keyCursor  = "cursor"
)

// GridGenerator places points on a square lattice around the world spawn.
// Lattice nodes are enumerated ring by ring (ring r holds 8r nodes) and
// Next walks that sequence from a cursor, skipping placed or out-of-bounds nodes.
type GridGenerator struct {
	baseBounds model.Bounds
	baseSpawn  model.Coordinate

	bounds  model.Bounds
	spawn   model.Coordinate
	spacing int32

	placed map[model.Coordinate]struct{}
	cursor int64
}

// NewGridGenerator is the Factory for GridID.
func NewGridGenerator(w *world.World) (Generator, error) {
	b := w.Border().Bounds()
	return &GridGenerator{
		baseBounds: b,
		baseSpawn:  w.Spawn(),
		bounds:     b,
		spawn:      w.Spawn(),
		spacing:    DefaultGridSpacing,
		placed:     make(map[model.Coordinate]struct{}),
	}, nil
}

// Spacing returns the lattice step.
func (g *GridGenerator) Spacing() int32 { return g.spacing }

// Next returns the first free lattice node at or after the cursor and moves
// the cursor past it, so a candidate rejected by the caller is not offered again
// until the sequence wraps.
func (g *GridGenerator) Next() (model.Coordinate, error) {
	limit := g.ringLimit()
	end := ringStart(limit)

	scan := func(from, to int64) (int64, bool) {
		for idx := from; idx < to; idx++ {
			if g.IsValid(g.latticeAt(idx)) {
				return idx, true
			}
		}
		return 0, false
	}

	idx, ok := scan(g.cursor, end)
	if !ok {
		idx, ok = scan(0, min(g.cursor, end))
	}
	if !ok {
		return model.Coordinate{}, &GenerationExhaustedError{Generator: GridID.String(), Attempts: int(min(end, math.MaxInt))}
	}

	g.cursor = idx + 1
	return g.latticeAt(idx), nil
}

// IsValid accepts free lattice nodes inside the bounds.
func (g *GridGenerator) IsValid(c model.Coordinate) bool {
	if !g.bounds.Contains(c) || !g.onLattice(c) {
		return false
	}
	_, taken := g.placed[c]
	return !taken
}

func (g *GridGenerator) Add(c model.Coordinate) {
	g.placed[c] = struct{}{}
}

// Remove frees c and rewinds the cursor so the node is offered again.
func (g *GridGenerator) Remove(c model.Coordinate) {
	if _, ok := g.placed[c]; !ok {
		return
	}
	delete(g.placed, c)
	if g.onLattice(c) {
		i, j := g.latticeOffset(c)
		g.cursor = min(g.cursor, latticeIndex(i, j))
	}
}

// Clear frees every node and restarts the walk from the center.
func (g *GridGenerator) Clear() {
	clear(g.placed)
	g.cursor = 0
}

func (g *GridGenerator) Serialize() Data {
	points := make([]model.Coordinate, 0, len(g.placed))
	for p := range g.placed {
		points = append(points, p)
	}
	sortCoordinates(points)

	d := Data{
		keySpacing: g.spacing,
		keyCursor:  g.cursor,
		keyPoints:  encodePoints(points),
	}
	putBounds(d, g.bounds)
	putWorldspawn(d, g.spawn)
	return d
}

type gridUpdate struct {
	bounds    model.Bounds
	spawn     model.Coordinate
	spacing   int32
	cursor    int64
	hasCursor bool
	points    []model.Coordinate
	hasPoints bool
}

func (g *GridGenerator) parse(d Data, bounds model.Bounds, spawn model.Coordinate, spacing int32) (gridUpdate, error) {
	u := gridUpdate{spacing: spacing}
	var err error

	if u.bounds, err = readBounds(d, bounds); err != nil {
		return gridUpdate{}, err
	}
	if u.spawn, err = readWorldspawn(d, spawn); err != nil {
		return gridUpdate{}, err
	}

	v, ok, err := int32Field(d, keySpacing)
	if err != nil {
		return gridUpdate{}, err
	}
	if ok {
		if v <= 0 {
			return gridUpdate{}, &ConfigError{Key: keySpacing, Value: v, Reason: "must be positive"}
		}
		u.spacing = v
	}

	if u.cursor, u.hasCursor, err = int64Field(d, keyCursor); err != nil {
		return gridUpdate{}, err
	}
	if u.hasCursor && u.cursor < 0 {
		return gridUpdate{}, &ConfigError{Key: keyCursor, Value: u.cursor, Reason: "must not be negative"}
	}
	if u.points, u.hasPoints, err = pointsField(d, keyPoints); err != nil {
		return gridUpdate{}, err
	}
	return u, nil
}

func (g *GridGenerator) RestoreFull(d Data) error {
	u, err := g.parse(d, g.baseBounds, g.baseSpawn, DefaultGridSpacing)
	if err != nil {
		return err
	}

	g.bounds, g.spawn, g.spacing = u.bounds, u.spawn, u.spacing
	g.cursor = u.cursor
	g.placed = make(map[model.Coordinate]struct{}, len(u.points))
	for _, p := range u.points {
		g.placed[p] = struct{}{}
	}
	return nil
}

// RestorePartial merges lattice settings. Placed points are only replaced by RestoreFull.
// Moving the lattice restarts the cursor.
func (g *GridGenerator) RestorePartial(d Data) error {
	u, err := g.parse(d, g.bounds, g.spawn, g.spacing)
	if err != nil {
		return err
	}

	moved := u.spawn != g.spawn || u.spacing != g.spacing
	g.bounds, g.spawn, g.spacing = u.bounds, u.spawn, u.spacing
	switch {
	case u.hasCursor:
		g.cursor = u.cursor
	case moved:
		g.cursor = 0
	}
	return nil
}

func (g *GridGenerator) onLattice(c model.Coordinate) bool {
	dx := int64(c.X) - int64(g.spawn.X)
	dz := int64(c.Z) - int64(g.spawn.Z)
	s := int64(g.spacing)
	return dx%s == 0 && dz%s == 0
}

func (g *GridGenerator) latticeOffset(c model.Coordinate) (int64, int64) {
	s := int64(g.spacing)
	return (int64(c.X) - int64(g.spawn.X)) / s, (int64(c.Z) - int64(g.spawn.Z)) / s
}

// latticeAt converts a sequence index to a world coordinate, saturating at the int32 range.
func (g *GridGenerator) latticeAt(idx int64) model.Coordinate {
	i, j := latticePosition(idx)
	s := int64(g.spacing)
	return model.NewCoordinate(
		saturate(int64(g.spawn.X)+i*s),
		saturate(int64(g.spawn.Z)+j*s),
	)
}

// ringLimit is the first ring lying entirely outside the bounds.
func (g *GridGenerator) ringLimit() int64 {
	reach := max(
		int64(g.spawn.X)-int64(g.bounds.Lower.X),
		int64(g.bounds.Upper.X)-int64(g.spawn.X),
		int64(g.spawn.Z)-int64(g.bounds.Lower.Z),
		int64(g.bounds.Upper.Z)-int64(g.spawn.Z),
		0,
	)
	return reach/int64(g.spacing) + 1
}

// ringStart is the sequence index of the first node of ring r: (2r-1)².
func ringStart(r int64) int64 {
	if r == 0 {
		return 0
	}
	return (2*r - 1) * (2*r - 1)
}

// latticePosition maps a sequence index to lattice offsets (i, j).
// Ring r is walked along the bottom edge, up the right edge, back along
// the top edge and down the left edge.
func latticePosition(idx int64) (int64, int64) {
	if idx == 0 {
		return 0, 0
	}
	r := (isqrt(idx) + 1) / 2
	pos := idx - ringStart(r)
	switch {
	case pos < 2*r+1:
		return -r + pos, -r
	case pos < 4*r+1:
		return r, -r + 1 + (pos - (2*r + 1))
	case pos < 6*r+1:
		return r - 1 - (pos - (4*r + 1)), r
	default:
		return -r, r - 1 - (pos - (6*r + 1))
	}
}

// latticeIndex is the inverse of latticePosition.
func latticeIndex(i, j int64) int64 {
	r := max(abs64(i), abs64(j))
	if r == 0 {
		return 0
	}
	base := ringStart(r)
	switch {
	case j == -r:
		return base + i + r
	case i == r:
		return base + 3*r + j
	case j == r:
		return base + 5*r - i
	default:
		return base + 7*r - j
	}
}

func isqrt(n int64) int64 {
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func saturate(v int64) int32 {
	return int32(max(min(v, math.MaxInt32), math.MinInt32))
}
