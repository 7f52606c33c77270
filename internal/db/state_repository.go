package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/spawn"
)

// PostgresStateRepository stores spawn manager snapshots in PostgreSQL.
type PostgresStateRepository struct {
	db *pgxpool.Pool
}

// NewPostgresStateRepository creates a new PostgresStateRepository.
func NewPostgresStateRepository(db *pgxpool.Pool) *PostgresStateRepository {
	return &PostgresStateRepository{db: db}
}

// LoadState loads the snapshot of a world.
// Returns nil, nil if the world was never saved.
func (r *PostgresStateRepository) LoadState(ctx context.Context, world string) (*spawn.Snapshot, error) {
	var generator string
	var data []byte
	err := r.db.QueryRow(ctx,
		`SELECT generator, generator_data FROM spawn_worlds WHERE world = $1`, world,
	).Scan(&generator, &data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying spawn state of %s: %w", world, err)
	}

	snap, err := newSnapshot(world, generator, data)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT player_id, x, z FROM spawn_assignments WHERE world = $1`, world)
	if err != nil {
		return nil, fmt.Errorf("querying spawn assignments of %s: %w", world, err)
	}
	defer rows.Close()

	for rows.Next() {
		var player uuid.UUID
		var x, z int32
		if err := rows.Scan(&player, &x, &z); err != nil {
			return nil, fmt.Errorf("scanning spawn assignment: %w", err)
		}
		snap.Assignments[player] = model.NewCoordinate(x, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn assignments: %w", err)
	}

	return snap, nil
}

// SaveState replaces the stored state of snap.World in a single transaction.
func (r *PostgresStateRepository) SaveState(ctx context.Context, snap *spawn.Snapshot) error {
	data, err := spawn.MarshalData(snap.GeneratorData)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for world %s: %w", snap.World, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "world", snap.World, "error", err)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO spawn_worlds (world, generator, generator_data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (world) DO UPDATE
		SET generator = EXCLUDED.generator,
		    generator_data = EXCLUDED.generator_data,
		    updated_at = EXCLUDED.updated_at`,
		snap.World, snap.Generator.String(), data,
	)
	if err != nil {
		return fmt.Errorf("upserting spawn world %s: %w", snap.World, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM spawn_assignments WHERE world = $1`, snap.World); err != nil {
		return fmt.Errorf("deleting old spawn assignments of %s: %w", snap.World, err)
	}

	if len(snap.Assignments) > 0 {
		rows := make([][]any, 0, len(snap.Assignments))
		for player, c := range snap.Assignments {
			rows = append(rows, []any{snap.World, player, c.X, c.Z})
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"spawn_assignments"},
			[]string{"world", "player_id", "x", "z"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copying spawn assignments of %s: %w", snap.World, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit spawn state of %s: %w", snap.World, err)
	}
	return nil
}

// newSnapshot decodes a spawn_worlds row.
func newSnapshot(world, generator string, data []byte) (*spawn.Snapshot, error) {
	id, err := spawn.ParseIdentifier(generator)
	if err != nil {
		return nil, fmt.Errorf("spawn state of %s: %w", world, err)
	}
	d, err := spawn.UnmarshalData(data)
	if err != nil {
		return nil, fmt.Errorf("spawn state of %s: %w", world, err)
	}
	return &spawn.Snapshot{
		World:         world,
		Generator:     id,
		GeneratorData: d,
		Assignments:   make(map[uuid.UUID]model.Coordinate),
	}, nil
}
