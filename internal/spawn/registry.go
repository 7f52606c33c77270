package spawn

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/world"
)

// Registry maps generator identifiers to factories and generator types back to identifiers.
// Registration happens at startup; lookups are safe from any goroutine.
type Registry struct {
	mu        sync.RWMutex
	probe     *world.World
	factories map[Identifier]Factory
	types     map[reflect.Type]Identifier
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		probe:     world.New("registry-probe", 0, model.Coordinate{}, world.DefaultBorder(), world.DefaultSpawnRadius),
		factories: make(map[Identifier]Factory),
		types:     make(map[reflect.Type]Identifier),
	}
}

// NewDefaultRegistry creates a registry holding the built-in generators.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		// built-in factories never fail on the probe world
		panic(err)
	}
	return r
}

// RegisterBuiltins registers vanilla, random, grid and spring.
func RegisterBuiltins(r *Registry) error {
	builtins := []struct {
		id      Identifier
		factory Factory
	}{
		{VanillaID, NewVanillaGenerator},
		{RandomID, NewRandomGenerator},
		{GridID, NewGridGenerator},
		{SpringID, NewSpringGenerator},
	}
	for _, b := range builtins {
		if err := r.Register(b.id, b.factory); err != nil {
			return err
		}
	}
	return nil
}

// Register binds id to factory. The factory is probed with a default world
// first; a factory that errors, panics or returns nil is rejected with ErrInstantiation.
// Re-registering id replaces the previous binding.
func (r *Registry) Register(id Identifier, factory Factory) error {
	if id.IsZero() {
		return fmt.Errorf("registering generator: empty identifier")
	}
	if factory == nil {
		return fmt.Errorf("registering generator %s: %w: nil factory", id, ErrInstantiation)
	}

	g, err := construct(factory, r.probe)
	if err != nil {
		return fmt.Errorf("registering generator %s: %w", id, err)
	}
	typ := reflect.TypeOf(g)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.types[typ]; ok && owner != id {
		return fmt.Errorf("registering generator %s: type %s already registered as %s", id, typ, owner)
	}
	for t, owner := range r.types {
		if owner == id {
			delete(r.types, t)
		}
	}

	r.factories[id] = factory
	r.types[typ] = id
	return nil
}

// Exists reports whether id is registered.
func (r *Registry) Exists(id Identifier) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[id]
	return ok
}

// IdentifierOf returns the identifier g's type was registered under.
func (r *Registry) IdentifierOf(g Generator) (Identifier, bool) {
	if g == nil {
		return Identifier{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.types[reflect.TypeOf(g)]
	return id, ok
}

// Construct builds a generator of type id for w.
func (r *Registry) Construct(id Identifier, w *world.World) (Generator, error) {
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("constructing generator: %w: %w: %s", ErrInstantiation, ErrUnregisteredGenerator, id)
	}

	g, err := construct(factory, w)
	if err != nil {
		return nil, fmt.Errorf("constructing generator %s for world %s: %w", id, w.Name(), err)
	}
	return g, nil
}

// IDs returns all registered identifiers in lexical order.
func (r *Registry) IDs() []Identifier {
	r.mu.RLock()
	ids := make([]Identifier, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.SortFunc(ids, func(a, b Identifier) int {
		return cmp.Compare(a.String(), b.String())
	})
	return ids
}

func construct(factory Factory, w *world.World) (g Generator, err error) {
	defer func() {
		if p := recover(); p != nil {
			g, err = nil, fmt.Errorf("%w: factory panicked: %v", ErrInstantiation, p)
		}
	}()

	g, err = factory(w)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstantiation, err)
	}
	if g == nil {
		return nil, fmt.Errorf("%w: factory returned nil", ErrInstantiation)
	}
	return g, nil
}
