package commands

import "github.com/udisondev/spreadspawn/internal/admin"

// RegisterAll registers all spawn point commands into the handler.
func RegisterAll(h *admin.Handler, svc SpawnService) {
	// Operator commands (// prefix)
	h.RegisterAdmin(NewSpawnpoints(svc))

	// User commands (/ prefix)
	h.RegisterUser(NewSpawnpoint(svc))
}
