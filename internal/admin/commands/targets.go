package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/udisondev/spreadspawn/internal/admin"
)

// PlayerNamespace is the namespace of name-based player UUIDs.
var PlayerNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("spreadspawnpoints.player"))

var errConsoleSelf = errors.New("the console has no spawn point, specify a player")

// PlayerID returns the stable UUID of a player name. Names are case-insensitive.
func PlayerID(name string) uuid.UUID {
	return uuid.NewSHA1(PlayerNamespace, []byte(strings.ToLower(name)))
}

// target is a resolved command target.
type target struct {
	id    uuid.UUID
	label string
}

// resolveTarget accepts "@s", a UUID or a player name.
func resolveTarget(sender *admin.Sender, arg string) (target, error) {
	if arg == "@s" {
		if sender.IsConsole() {
			return target{}, errConsoleSelf
		}
		return target{id: sender.ID(), label: sender.Name()}, nil
	}

	if id, err := uuid.Parse(arg); err == nil {
		return target{id: id, label: id.String()}, nil
	}

	if !validPlayerName(arg) {
		return target{}, fmt.Errorf("invalid player %q", arg)
	}
	return target{id: PlayerID(arg), label: arg}, nil
}

func resolveTargets(sender *admin.Sender, args []string) ([]target, error) {
	targets := make([]target, 0, len(args))
	seen := make(map[uuid.UUID]struct{}, len(args))
	for _, arg := range args {
		t, err := resolveTarget(sender, arg)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t.id]; dup {
			continue
		}
		seen[t.id] = struct{}{}
		targets = append(targets, t)
	}
	return targets, nil
}

// validPlayerName: 1-16 символов, латиница, цифры и '_'.
func validPlayerName(name string) bool {
	if len(name) == 0 || len(name) > 16 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
