package world

import (
	"fmt"
	"slices"
	"sync"

	"github.com/udisondev/spreadspawn/internal/model"
)

// World is the context a spawn point generator and the safety oracle run against.
// Value semantics: the built-in spawn and border never change after construction,
// use With* helpers to derive a modified copy.
type World struct {
	name        string
	seed        int64
	spawn       model.Coordinate
	border      Border
	spawnRadius int32
}

// New creates a world context.
func New(name string, seed int64, spawn model.Coordinate, border Border, spawnRadius int32) *World {
	if spawnRadius < 0 {
		spawnRadius = 0
	}
	return &World{
		name:        name,
		seed:        seed,
		spawn:       spawn,
		border:      border,
		spawnRadius: spawnRadius,
	}
}

// Name returns the world key ("overworld", "nether", ...).
func (w *World) Name() string { return w.name }

// Seed returns the world seed. Generators derive their random streams from it.
func (w *World) Seed() int64 { return w.seed }

// Spawn returns the world's built-in spawn column.
func (w *World) Spawn() model.Coordinate { return w.spawn }

// Border returns the world border.
func (w *World) Border() Border { return w.border }

// SpawnRadius returns the radius around a spawn point that players may be scattered in.
func (w *World) SpawnRadius() int32 { return w.spawnRadius }

// WithSpawn returns a copy of the world with a different built-in spawn.
func (w *World) WithSpawn(spawn model.Coordinate) *World {
	cp := *w
	cp.spawn = spawn
	return &cp
}

func (w *World) String() string {
	return fmt.Sprintf("world %q (spawn %s, border %s)", w.name, w.spawn, w.border.Bounds())
}

// Set holds the configured worlds by name.
// Thread-safe: populated at startup, read by every command afterwards.
type Set struct {
	mu     sync.RWMutex
	worlds map[string]*World
}

// NewSet creates a set from the given worlds. Later duplicates replace earlier ones.
func NewSet(worlds ...*World) *Set {
	s := &Set{worlds: make(map[string]*World, len(worlds))}
	for _, w := range worlds {
		s.worlds[w.Name()] = w
	}
	return s
}

// Add registers or replaces a world.
func (s *Set) Add(w *World) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.worlds[w.Name()] = w
}

// Get returns the world by name.
func (s *Set) Get(name string) (*World, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.worlds[name]
	return w, ok
}

// Names returns all world names, sorted.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.worlds))
	for name := range s.worlds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of worlds.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.worlds)
}
