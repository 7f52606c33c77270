package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/spawn"
)

// SQLiteStateRepository stores spawn manager snapshots in a SQLite file.
type SQLiteStateRepository struct {
	sqlDB *sql.DB
}

// OpenSQLite opens a SQLite database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStateRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := RunSQLiteMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &SQLiteStateRepository{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (r *SQLiteStateRepository) Close() error {
	if r == nil || r.sqlDB == nil {
		return nil
	}
	return r.sqlDB.Close()
}

// LoadState loads the snapshot of a world.
// Returns nil, nil if the world was never saved.
func (r *SQLiteStateRepository) LoadState(ctx context.Context, world string) (*spawn.Snapshot, error) {
	var generator, data string
	err := r.sqlDB.QueryRowContext(ctx,
		`SELECT generator, generator_data FROM spawn_worlds WHERE world = ?`, world,
	).Scan(&generator, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying spawn state of %s: %w", world, err)
	}

	snap, err := newSnapshot(world, generator, []byte(data))
	if err != nil {
		return nil, err
	}

	rows, err := r.sqlDB.QueryContext(ctx,
		`SELECT player_id, x, z FROM spawn_assignments WHERE world = ?`, world)
	if err != nil {
		return nil, fmt.Errorf("querying spawn assignments of %s: %w", world, err)
	}
	defer rows.Close()

	for rows.Next() {
		var playerID string
		var x, z int32
		if err := rows.Scan(&playerID, &x, &z); err != nil {
			return nil, fmt.Errorf("scanning spawn assignment: %w", err)
		}
		player, err := uuid.Parse(playerID)
		if err != nil {
			return nil, fmt.Errorf("spawn assignment of %s: player id %q: %w", world, playerID, err)
		}
		snap.Assignments[player] = model.NewCoordinate(x, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn assignments: %w", err)
	}

	return snap, nil
}

// SaveState replaces the stored state of snap.World in a single transaction.
func (r *SQLiteStateRepository) SaveState(ctx context.Context, snap *spawn.Snapshot) error {
	data, err := spawn.MarshalData(snap.GeneratorData)
	if err != nil {
		return err
	}

	tx, err := r.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for world %s: %w", snap.World, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("rollback failed", "world", snap.World, "error", err)
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO spawn_worlds (world, generator, generator_data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (world) DO UPDATE
		SET generator = excluded.generator,
		    generator_data = excluded.generator_data,
		    updated_at = excluded.updated_at`,
		snap.World, snap.Generator.String(), string(data), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upserting spawn world %s: %w", snap.World, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM spawn_assignments WHERE world = ?`, snap.World); err != nil {
		return fmt.Errorf("deleting old spawn assignments of %s: %w", snap.World, err)
	}

	if len(snap.Assignments) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO spawn_assignments (world, player_id, x, z) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing spawn assignment insert: %w", err)
		}
		defer stmt.Close()

		for player, c := range snap.Assignments {
			if _, err := stmt.ExecContext(ctx, snap.World, player.String(), c.X, c.Z); err != nil {
				return fmt.Errorf("inserting spawn assignment of %s: %w", player, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit spawn state of %s: %w", snap.World, err)
	}
	return nil
}
