package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/spreadspawn/internal/world"
)

// StateRepository persists manager snapshots per world.
type StateRepository interface {
	// LoadState returns nil, nil when the world has no saved state.
	LoadState(ctx context.Context, world string) (*Snapshot, error)
	SaveState(ctx context.Context, snap *Snapshot) error
}

// Service owns one Manager per configured world, loading them on first use.
type Service struct {
	worlds           *world.Set
	registry         *Registry
	oracle           SafetyOracle
	repo             StateRepository
	defaultGenerator Identifier

	mu       sync.Mutex
	managers map[string]*Manager
}

// NewService creates a service. defaultGenerator is used for worlds without saved state.
func NewService(worlds *world.Set, registry *Registry, oracle SafetyOracle, repo StateRepository, defaultGenerator Identifier) *Service {
	return &Service{
		worlds:           worlds,
		registry:         registry,
		oracle:           oracle,
		repo:             repo,
		defaultGenerator: defaultGenerator,
		managers:         make(map[string]*Manager),
	}
}

// Registry returns the generator registry.
func (s *Service) Registry() *Registry { return s.registry }

// Worlds returns the configured worlds.
func (s *Service) Worlds() *world.Set { return s.worlds }

// Manager returns the manager of the named world, restoring it from the repository on first access.
func (s *Service) Manager(ctx context.Context, name string) (*Manager, error) {
	s.mu.Lock()
	m, ok := s.managers[name]
	s.mu.Unlock()
	if ok {
		return m, nil
	}

	w, ok := s.worlds.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorld, name)
	}

	// загрузка без блокировки, чтобы медленный мир не держал остальные
	snap, err := s.repo.LoadState(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loading spawn state of %s: %w", name, err)
	}

	if snap != nil {
		m, err = RestoreManager(w, s.registry, s.oracle, snap)
	} else {
		m, err = NewManager(w, s.registry, s.oracle, s.defaultGenerator)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// concurrent load of the same world: first one wins
	if existing, ok := s.managers[name]; ok {
		return existing, nil
	}
	s.managers[name] = m
	if snap == nil {
		slog.Info("spawn points initialized", "world", name, "generator", s.defaultGenerator)
	}
	return m, nil
}

// Save persists the named world if it is loaded and changed.
func (s *Service) Save(ctx context.Context, name string) error {
	s.mu.Lock()
	m, ok := s.managers[name]
	s.mu.Unlock()

	if !ok || !m.Dirty() {
		return nil
	}
	return s.save(ctx, m)
}

func (s *Service) save(ctx context.Context, m *Manager) error {
	snap := m.Snapshot()
	if err := s.repo.SaveState(ctx, snap); err != nil {
		return fmt.Errorf("saving spawn state of %s: %w", snap.World, err)
	}
	m.MarkSaved(snap)

	slog.Debug("spawn state saved",
		"world", snap.World,
		"generator", snap.Generator,
		"assignments", len(snap.Assignments))
	return nil
}

// SaveAll persists every loaded world that changed. Failures do not stop other worlds.
func (s *Service) SaveAll(ctx context.Context) error {
	var errs []error
	for _, name := range s.LoadedWorlds() {
		if err := s.Save(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadedWorlds returns the names of worlds with a live manager, sorted.
func (s *Service) LoadedWorlds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.managers))
	for name := range s.managers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
