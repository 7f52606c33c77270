package commands

import (
	"context"

	"github.com/udisondev/spreadspawn/internal/spawn"
)

// SpawnService provides per-world spawn point managers for commands.
// Interface to keep commands testable without storage.
type SpawnService interface {
	// Manager returns the manager of the named world.
	Manager(ctx context.Context, world string) (*spawn.Manager, error)
	// Registry returns the generator registry.
	Registry() *spawn.Registry
}
