package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spreadspawn/internal/db"
	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/spawn"
)

func openTestSQLite(t *testing.T) *db.SQLiteStateRepository {
	t.Helper()
	repo, err := db.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "spawn.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteStateRepository_LoadMissing(t *testing.T) {
	repo := openTestSQLite(t)

	snap, err := repo.LoadState(context.Background(), "overworld")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSQLiteStateRepository_SaveLoad(t *testing.T) {
	testStateRepositorySaveLoad(t, openTestSQLite(t))
}

func TestSQLiteStateRepository_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "spawn.db")

	repo, err := db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	snap := testSnapshot()
	require.NoError(t, repo.SaveState(ctx, snap))
	require.NoError(t, repo.Close())

	reopened, err := db.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.LoadState(ctx, snap.World)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.Assignments, got.Assignments)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := db.OpenSQLite(context.Background(), "  ")
	assert.Error(t, err)
}

func testSnapshot() *spawn.Snapshot {
	return &spawn.Snapshot{
		World:     "overworld",
		Generator: spawn.SpringID,
		GeneratorData: spawn.Data{
			"seed":          int64(-4_611_686_018_427_387_904),
			"reserveRadius": int32(64),
			"points":        [][]int32{{100, 0}, {-300, 250}},
		},
		Assignments: map[uuid.UUID]model.Coordinate{
			uuid.New(): model.NewCoordinate(100, 0),
			uuid.New(): model.NewCoordinate(-300, 250),
		},
	}
}

// testStateRepositorySaveLoad is shared by the SQLite and PostgreSQL tests.
func testStateRepositorySaveLoad(t *testing.T, repo spawn.StateRepository) {
	t.Helper()
	ctx := context.Background()
	snap := testSnapshot()

	require.NoError(t, repo.SaveState(ctx, snap))

	got, err := repo.LoadState(ctx, snap.World)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.World, got.World)
	assert.Equal(t, spawn.SpringID, got.Generator)
	assert.Equal(t, snap.Assignments, got.Assignments)

	// the generator data survives as a blob the generator can read back
	g := newRestoredSpring(t, got.GeneratorData)
	assert.Equal(t, int32(64), g.Config().ReserveRadius)
	assert.Equal(t, int64(-4_611_686_018_427_387_904), g.Config().Seed)
	assert.Len(t, g.Points(), 2)

	// full replace: removed players disappear, generator switch is persisted
	snap.Generator = spawn.GridID
	snap.GeneratorData = spawn.Data{"spacing": 64}
	for player := range snap.Assignments {
		delete(snap.Assignments, player)
		break
	}
	require.NoError(t, repo.SaveState(ctx, snap))

	got, err = repo.LoadState(ctx, snap.World)
	require.NoError(t, err)
	assert.Equal(t, spawn.GridID, got.Generator)
	assert.Len(t, got.Assignments, 1)
	assert.Equal(t, snap.Assignments, got.Assignments)

	// empty table
	snap.Assignments = nil
	require.NoError(t, repo.SaveState(ctx, snap))
	got, err = repo.LoadState(ctx, snap.World)
	require.NoError(t, err)
	assert.Empty(t, got.Assignments)

	other, err := repo.LoadState(ctx, "nether")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func newRestoredSpring(t *testing.T, d spawn.Data) *spawn.SpringGenerator {
	t.Helper()
	cfg := spawn.SpringConfig{
		Bounds:                  model.NewBounds(model.NewCoordinate(-1000, -1000), model.NewCoordinate(1000, 1000)),
		ReserveRadius:           spawn.DefaultReserveRadius,
		OverlapRadius:           spawn.DefaultOverlapRadius,
		WorldspawnReserveRadius: spawn.DefaultWorldspawnReserveRadius,
		WorldspawnOverlapRadius: spawn.DefaultWorldspawnOverlapRadius,
	}
	g, err := spawn.NewSpringGeneratorWithConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, g.RestoreFull(d))
	return g
}
