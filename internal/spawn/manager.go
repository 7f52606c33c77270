package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

// warnEvery: каждые N неудачных попыток пишем warning.
const warnEvery = 100

// SafetyOracle decides whether a player can stand at c.
// It must not call back into the Manager.
type SafetyOracle interface {
	IsSafe(ctx context.Context, w *world.World, c model.Coordinate) (bool, error)
}

// Stats are diagnostic counters of a Manager.
type Stats struct {
	Generated         uint64
	GeneratorRejected uint64
	OracleRejected    uint64
}

// Manager owns the active generator and the player → spawn point table of one world.
// All state is guarded by a single mutex.
type Manager struct {
	world    *world.World
	registry *Registry
	oracle   SafetyOracle

	mu          sync.Mutex
	generatorID Identifier
	generator   Generator
	assignments map[uuid.UUID]model.Coordinate

	version      uint64
	savedVersion uint64

	generated         atomic.Uint64
	generatorRejected atomic.Uint64
	oracleRejected    atomic.Uint64
}

// NewManager creates a manager for w with a fresh generator of type generatorID.
func NewManager(w *world.World, registry *Registry, oracle SafetyOracle, generatorID Identifier) (*Manager, error) {
	g, err := registry.Construct(generatorID, w)
	if err != nil {
		return nil, err
	}

	return &Manager{
		world:       w,
		registry:    registry,
		oracle:      oracle,
		generatorID: generatorID,
		generator:   g,
		assignments: make(map[uuid.UUID]model.Coordinate),
	}, nil
}

// RestoreManager rebuilds a manager from a snapshot. An unregistered generator
// identifier is an error; no default is substituted.
func RestoreManager(w *world.World, registry *Registry, oracle SafetyOracle, snap *Snapshot) (*Manager, error) {
	m, err := NewManager(w, registry, oracle, snap.Generator)
	if err != nil {
		return nil, fmt.Errorf("restoring spawn points of %s: %w", w.Name(), err)
	}

	if err := m.generator.RestoreFull(snap.GeneratorData.Clone()); err != nil {
		return nil, fmt.Errorf("restoring %s generator data of %s: %w", snap.Generator, w.Name(), err)
	}
	for player, c := range snap.Assignments {
		m.assignments[player] = c
		m.generator.Add(c)
	}

	slog.Info("spawn points restored",
		"world", w.Name(),
		"generator", snap.Generator,
		"assignments", len(m.assignments))

	return m, nil
}

// World returns the world this manager serves.
func (m *Manager) World() *world.World { return m.world }

// SpawnPointFor returns the cached spawn point of player or generates one.
// Candidates are retried until the generator and the oracle both accept one;
// there is no attempt ceiling here, cancel ctx to give up.
func (m *Manager) SpawnPointFor(ctx context.Context, player uuid.UUID) (model.Coordinate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.assignments[player]; ok {
		return c, nil
	}

	c, err := m.nextSafe(ctx)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("generating spawn point for %s in %s: %w", player, m.world.Name(), err)
	}

	m.generator.Add(c)
	m.assignments[player] = c
	m.version++
	m.generated.Add(1)

	slog.Debug("spawn point assigned",
		"world", m.world.Name(),
		"player", player,
		"point", c)

	return c, nil
}

func (m *Manager) nextSafe(ctx context.Context) (model.Coordinate, error) {
	var generatorInvalid, oracleInvalid int

	for {
		if err := ctx.Err(); err != nil {
			return model.Coordinate{}, err
		}

		failed := generatorInvalid + oracleInvalid
		if failed > 0 && failed%warnEvery == 0 {
			slog.Warn("spawn point search is taking long",
				"world", m.world.Name(),
				"generator", m.generatorID,
				"attempts", failed)
		}

		c, err := m.generator.Next()
		if err != nil {
			return model.Coordinate{}, err
		}

		if !m.generator.IsValid(c) {
			generatorInvalid++
			m.generatorRejected.Add(1)
			continue
		}

		safe, err := m.oracle.IsSafe(ctx, m.world, c)
		if err != nil {
			return model.Coordinate{}, fmt.Errorf("checking spawn point %s: %w", c, err)
		}
		if !safe {
			oracleInvalid++
			m.oracleRejected.Add(1)
			continue
		}

		if failed > 0 {
			slog.Info("spawn point found",
				"world", m.world.Name(),
				"attempts", failed+1,
				"oracleRejected", oracleInvalid,
				"generatorRejected", generatorInvalid)
		}
		return c, nil
	}
}

// SpawnPoint returns the cached spawn point of player without generating one.
func (m *Manager) SpawnPoint(player uuid.UUID) (model.Coordinate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.assignments[player]
	return c, ok
}

// ResetAll forgets every assignment and frees the points in the generator.
// Returns the number of assignments removed.
func (m *Manager) ResetAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.assignments)
	if c, ok := m.generator.(Clearer); ok {
		c.Clear()
	} else {
		for _, c := range m.assignments {
			m.generator.Remove(c)
		}
	}
	clear(m.assignments)
	if n > 0 {
		m.version++
	}

	slog.Info("spawn points reset", "world", m.world.Name(), "count", n)
	return n
}

// ResetPlayer forgets the assignment of player. Returns false if there was none.
func (m *Manager) ResetPlayer(player uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetPlayerLocked(player)
}

// ResetPlayers resets each player and returns how many had an assignment.
func (m *Manager) ResetPlayers(players []uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, p := range players {
		if m.resetPlayerLocked(p) {
			n++
		}
	}
	return n
}

func (m *Manager) resetPlayerLocked(player uuid.UUID) bool {
	c, ok := m.assignments[player]
	if !ok {
		return false
	}
	delete(m.assignments, player)
	m.version++

	// точка может быть общей (vanilla), освобождаем только последнюю
	if !m.isAssignedLocked(c) {
		m.generator.Remove(c)
	}
	return true
}

func (m *Manager) isAssignedLocked(c model.Coordinate) bool {
	for _, other := range m.assignments {
		if other == c {
			return true
		}
	}
	return false
}

// ActiveGenerator returns the identifier of the active generator.
func (m *Manager) ActiveGenerator() Identifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generatorID
}

// SetActiveGenerator replaces the generator with a fresh instance of id.
// With reset the assignment table is cleared, otherwise the assigned points
// are registered with the new generator. On error nothing changes.
func (m *Manager) SetActiveGenerator(id Identifier, reset bool) error {
	g, err := m.registry.Construct(id, m.world)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.generatorID
	m.generatorID = id
	m.generator = g
	if reset {
		clear(m.assignments)
	} else {
		m.addAssignedLocked()
	}
	m.version++

	slog.Info("spawn point generator changed",
		"world", m.world.Name(),
		"from", previous,
		"to", id,
		"reset", reset)

	return nil
}

// MergeGeneratorConfig applies d on top of the generator's current configuration.
func (m *Manager) MergeGeneratorConfig(d Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.generator.RestorePartial(d.Clone()); err != nil {
		return fmt.Errorf("merging %s generator config: %w", m.generatorID, err)
	}
	m.version++
	return nil
}

// ReplaceGeneratorConfig replaces the generator's configuration and state with d.
// Assigned points stay registered with the generator.
func (m *Manager) ReplaceGeneratorConfig(d Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.generator.RestoreFull(d.Clone()); err != nil {
		return fmt.Errorf("replacing %s generator config: %w", m.generatorID, err)
	}
	m.addAssignedLocked()
	m.version++
	return nil
}

func (m *Manager) addAssignedLocked() {
	for _, c := range m.assignments {
		m.generator.Add(c)
	}
}

// GeneratorConfig returns the serialized generator configuration and state.
func (m *Manager) GeneratorConfig() Data {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generator.Serialize()
}

// Assignments returns a copy of the player → spawn point table.
func (m *Manager) Assignments() map[uuid.UUID]model.Coordinate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.assignments)
}

// Stats returns the diagnostic counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Generated:         m.generated.Load(),
		GeneratorRejected: m.generatorRejected.Load(),
		OracleRejected:    m.oracleRejected.Load(),
	}
}

// Snapshot captures the state for persistence.
func (m *Manager) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &Snapshot{
		World:         m.world.Name(),
		Generator:     m.generatorID,
		GeneratorData: m.generator.Serialize(),
		Assignments:   maps.Clone(m.assignments),
		version:       m.version,
	}
}

// Dirty reports whether the manager changed since the last MarkSaved.
func (m *Manager) Dirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version != m.savedVersion
}

// MarkSaved records that the state up to snap was persisted.
func (m *Manager) MarkSaved(snap *Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savedVersion = max(m.savedVersion, snap.version)
}
