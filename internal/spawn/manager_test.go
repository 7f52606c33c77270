package spawn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

func newTestManager(t *testing.T, oracle SafetyOracle, id Identifier) *Manager {
	t.Helper()
	m, err := NewManager(newTestWorld(model.Coordinate{}), NewDefaultRegistry(), oracle, id)
	require.NoError(t, err)
	return m
}

func TestManager_CacheCorrectness(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newStubOracle(), SpringID)
	player := uuid.New()

	first, err := m.SpawnPointFor(ctx, player)
	require.NoError(t, err)
	second, err := m.SpawnPointFor(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cached, ok := m.SpawnPoint(player)
	assert.True(t, ok)
	assert.Equal(t, first, cached)

	assert.Equal(t, 1, m.ResetPlayers([]uuid.UUID{player}))
	_, ok = m.SpawnPoint(player)
	assert.False(t, ok)

	_, err = m.SpawnPointFor(ctx, player)
	require.NoError(t, err)

	assert.Equal(t, 0, m.ResetPlayers([]uuid.UUID{uuid.New()}))
	assert.False(t, m.ResetPlayer(uuid.New()))
	assert.Equal(t, uint64(2), m.Stats().Generated)
}

func TestManager_OracleRejectionsAreRetried(t *testing.T) {
	ctx := context.Background()
	rejected := 0
	oracle := oracleFunc(func(model.Coordinate) bool {
		rejected++
		return rejected > 5
	})

	m := newTestManager(t, oracle, RandomID)
	_, err := m.SpawnPointFor(ctx, uuid.New())
	require.NoError(t, err)

	stats := m.Stats()
	assert.Equal(t, uint64(5), stats.OracleRejected)
	assert.Equal(t, uint64(0), stats.GeneratorRejected)
	assert.Equal(t, uint64(1), stats.Generated)
}

// lyingGenerator proposes candidates it then rejects.
type lyingGenerator struct {
	VanillaGenerator
	calls int
}

func (g *lyingGenerator) Next() (model.Coordinate, error) {
	g.calls++
	return model.NewCoordinate(int32(g.calls), 0), nil
}

func (g *lyingGenerator) IsValid(c model.Coordinate) bool { return c.X%3 == 0 }

func TestManager_GeneratorRejectionsSkipOracle(t *testing.T) {
	r := NewRegistry()
	id := NewIdentifier("test", "lying")
	require.NoError(t, r.Register(id, func(*world.World) (Generator, error) { return &lyingGenerator{}, nil }))

	oracle := newStubOracle()
	m, err := NewManager(newTestWorld(model.Coordinate{}), r, oracle, id)
	require.NoError(t, err)

	c, err := m.SpawnPointFor(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.NewCoordinate(3, 0), c)
	assert.Equal(t, 1, oracle.Calls(), "oracle only sees generator-valid candidates")
	assert.Equal(t, uint64(2), m.Stats().GeneratorRejected)
}

func TestManager_OracleNotCalledForCachedPoints(t *testing.T) {
	oracle := newStubOracle()
	m := newTestManager(t, oracle, VanillaID)
	player := uuid.New()

	_, err := m.SpawnPointFor(context.Background(), player)
	require.NoError(t, err)
	_, err = m.SpawnPointFor(context.Background(), player)
	require.NoError(t, err)
	assert.Equal(t, 1, oracle.Calls())
}

func TestManager_ErrorsPropagate(t *testing.T) {
	oracleErr := errors.New("chunk not loaded")
	oracle := newStubOracle()
	oracle.err = oracleErr

	m := newTestManager(t, oracle, VanillaID)
	_, err := m.SpawnPointFor(context.Background(), uuid.New())
	assert.ErrorIs(t, err, oracleErr)
	assert.Empty(t, m.Assignments())

	m = newTestManager(t, newStubOracle(), SpringID)
	require.NoError(t, m.MergeGeneratorConfig(Data{
		"lowerX": 5000, "upperX": 6000,
		"lowerZ": 5000, "upperZ": 6000,
	}))
	_, err = m.SpawnPointFor(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrGenerationExhausted)
}

func TestManager_UnsafeVanillaSpawnHonorsContext(t *testing.T) {
	m := newTestManager(t, oracleFunc(func(model.Coordinate) bool { return false }), VanillaID)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.SpawnPointFor(ctx, uuid.New())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, m.Stats().OracleRejected)
}

func TestManager_ResetAllFreesGeneratorIndex(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newStubOracle(), GridID)

	a, err := m.SpawnPointFor(ctx, uuid.New())
	require.NoError(t, err)
	_, err = m.SpawnPointFor(ctx, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 2, m.ResetAll())
	assert.Empty(t, m.Assignments())

	again, err := m.SpawnPointFor(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, a, again, "freed lattice node is handed out again")
	assert.Equal(t, 0, newTestManager(t, newStubOracle(), GridID).ResetAll())
}

func TestManager_ResetAllRestartsSpringFrontier(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newStubOracle(), SpringID)

	for range 400 {
		_, err := m.SpawnPointFor(ctx, uuid.New())
		require.NoError(t, err)
	}
	spring := m.generator.(*SpringGenerator)
	require.Positive(t, spring.GreatestDistance())

	assert.Equal(t, 400, m.ResetAll())
	assert.Zero(t, spring.GreatestDistance())
	assert.Empty(t, spring.Points())

	for range 50 {
		_, err := m.SpawnPointFor(ctx, uuid.New())
		require.NoError(t, err)
	}
	assert.Len(t, spring.Points(), 50)
}

func TestManager_ResetPlayerKeepsSpringFrontier(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newStubOracle(), SpringID)

	players := make([]uuid.UUID, 20)
	for i := range players {
		players[i] = uuid.New()
		_, err := m.SpawnPointFor(ctx, players[i])
		require.NoError(t, err)
	}
	spring := m.generator.(*SpringGenerator)
	frontier := spring.GreatestDistance()

	assert.Equal(t, 20, m.ResetPlayers(players))
	assert.Empty(t, spring.Points())
	assert.Equal(t, frontier, spring.GreatestDistance())
}

func TestManager_ResetPlayerKeepsSharedPoint(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newStubOracle(), SpringID)
	a, b := uuid.New(), uuid.New()

	pa, err := m.SpawnPointFor(ctx, a)
	require.NoError(t, err)
	_, err = m.SpawnPointFor(ctx, b)
	require.NoError(t, err)

	require.True(t, m.ResetPlayer(a))
	spring := m.generator.(*SpringGenerator)
	assert.NotContains(t, spring.Points(), pa)
	assert.Len(t, spring.Points(), 1)
}

func TestManager_SetActiveGenerator(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, newStubOracle(), VanillaID)
	player := uuid.New()
	_, err := m.SpawnPointFor(ctx, player)
	require.NoError(t, err)

	err = m.SetActiveGenerator(NewIdentifier("test", "missing"), true)
	assert.ErrorIs(t, err, ErrUnregisteredGenerator)
	assert.Equal(t, VanillaID, m.ActiveGenerator())
	assert.Len(t, m.Assignments(), 1)

	require.NoError(t, m.SetActiveGenerator(SpringID, false))
	assert.Equal(t, SpringID, m.ActiveGenerator())
	assert.Len(t, m.Assignments(), 1)
	assert.Len(t, m.generator.(*SpringGenerator).Points(), 1, "kept assignments constrain the new generator")

	require.NoError(t, m.SetActiveGenerator(GridID, true))
	assert.Empty(t, m.Assignments())
	assert.NotContains(t, m.GeneratorConfig(), "reserveRadius")
}

func TestManager_GeneratorConfig(t *testing.T) {
	m := newTestManager(t, newStubOracle(), SpringID)

	require.NoError(t, m.MergeGeneratorConfig(Data{"reserveRadius": 64}))
	assert.EqualValues(t, 64, m.GeneratorConfig()["reserveRadius"])

	err := m.MergeGeneratorConfig(Data{"reserveRadius": 1000})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.EqualValues(t, 64, m.GeneratorConfig()["reserveRadius"])

	player := uuid.New()
	p, err := m.SpawnPointFor(context.Background(), player)
	require.NoError(t, err)

	require.NoError(t, m.ReplaceGeneratorConfig(Data{}))
	assert.EqualValues(t, DefaultReserveRadius, m.GeneratorConfig()["reserveRadius"])
	assert.Contains(t, m.generator.(*SpringGenerator).Points(), p, "assignments re-registered after replace")
}

func TestManager_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	w := newTestWorld(model.Coordinate{})
	registry := NewDefaultRegistry()
	oracle := newStubOracle()

	m, err := NewManager(w, registry, oracle, SpringID)
	require.NoError(t, err)
	for range 20 {
		_, err := m.SpawnPointFor(ctx, uuid.New())
		require.NoError(t, err)
	}

	snap := m.Snapshot()
	b, err := MarshalData(snap.GeneratorData)
	require.NoError(t, err)
	data, err := UnmarshalData(b)
	require.NoError(t, err)

	restored, err := RestoreManager(w, registry, oracle, &Snapshot{
		World:         snap.World,
		Generator:     snap.Generator,
		GeneratorData: data,
		Assignments:   snap.Assignments,
	})
	require.NoError(t, err)

	assert.Equal(t, m.ActiveGenerator(), restored.ActiveGenerator())
	assert.Equal(t, m.Assignments(), restored.Assignments())

	for range 10 {
		p := uuid.New()
		want, err := m.SpawnPointFor(ctx, p)
		require.NoError(t, err)
		got, err := restored.SpawnPointFor(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestRestoreManager_UnknownGenerator(t *testing.T) {
	_, err := RestoreManager(newTestWorld(model.Coordinate{}), NewDefaultRegistry(), newStubOracle(), &Snapshot{
		World:     "overworld",
		Generator: NewIdentifier("othermod", "ring"),
	})
	assert.ErrorIs(t, err, ErrUnregisteredGenerator)
}

func TestManager_DirtyTracking(t *testing.T) {
	m := newTestManager(t, newStubOracle(), VanillaID)
	assert.False(t, m.Dirty())

	_, err := m.SpawnPointFor(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, m.Dirty())

	snap := m.Snapshot()
	_, err = m.SpawnPointFor(context.Background(), uuid.New())
	require.NoError(t, err)

	m.MarkSaved(snap)
	assert.True(t, m.Dirty(), "change after the snapshot is still pending")

	m.MarkSaved(m.Snapshot())
	assert.False(t, m.Dirty())
}
