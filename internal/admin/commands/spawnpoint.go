package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/udisondev/spreadspawn/internal/admin"
)

// Spawnpoint handles /spawnpoint [players...]: looks up (or generates) the
// spawn point of each target. Moving the player there is up to the caller.
type Spawnpoint struct {
	svc SpawnService
}

// NewSpawnpoint creates the spawnpoint command handler.
func NewSpawnpoint(svc SpawnService) *Spawnpoint {
	return &Spawnpoint{svc: svc}
}

func (c *Spawnpoint) Names() []string { return []string{"spawnpoint", "respawn"} }

func (c *Spawnpoint) Handle(ctx context.Context, sender *admin.Sender, params string) error {
	args := strings.Fields(params)
	if len(args) == 0 {
		if sender.IsConsole() {
			return errors.New("usage: /spawnpoint <player...>")
		}
		args = []string{"@s"}
	}

	targets, err := resolveTargets(sender, args)
	if err != nil {
		return err
	}

	al := admin.GetAccessLevel(sender.AccessLevel())
	for _, t := range targets {
		if t.id != sender.ID() && (al == nil || !al.CanTargetOthers) {
			return errors.New("you do not have permission to look up other players' spawn points")
		}
	}

	m, err := c.svc.Manager(ctx, sender.World())
	if err != nil {
		return fmt.Errorf("loading spawn points of %s: %w", sender.World(), err)
	}

	for _, t := range targets {
		pos, err := m.SpawnPointFor(ctx, t.id)
		if err != nil {
			return fmt.Errorf("spawn point of %s: %w", t.label, err)
		}
		sender.Replyf("Spawn point of %s is (%d, %d)", t.label, pos.X, pos.Z)
	}
	return nil
}
