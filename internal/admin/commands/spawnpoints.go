package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/spreadspawn/internal/admin"
	"github.com/udisondev/spreadspawn/internal/spawn"
)

// pointsKey is left out of //spawnpoints generator data output.
const pointsKey = "points"

const spawnpointsUsage = "usage: //spawnpoints generator <query|list|set|data> ... | //spawnpoints reset [players...]"

// errNothingReset is returned when none of the given players had a spawn point.
var errNothingReset = errors.New("no specified player already has a spawn point, nothing was affected")

// Spawnpoints handles //spawnpoints generator ... and //spawnpoints reset ...
type Spawnpoints struct {
	svc SpawnService
}

// NewSpawnpoints creates the spawnpoints command handler.
func NewSpawnpoints(svc SpawnService) *Spawnpoints {
	return &Spawnpoints{svc: svc}
}

func (c *Spawnpoints) Names() []string { return []string{"spawnpoints"} }

func (c *Spawnpoints) RequiredAccessLevel() int32 { return admin.LevelOperator }

func (c *Spawnpoints) Handle(ctx context.Context, sender *admin.Sender, args []string) error {
	if len(args) < 2 {
		return errors.New(spawnpointsUsage)
	}

	m, err := c.svc.Manager(ctx, sender.World())
	if err != nil {
		return fmt.Errorf("loading spawn points of %s: %w", sender.World(), err)
	}

	switch strings.ToLower(args[1]) {
	case "generator":
		return c.handleGenerator(sender, m, args[2:])
	case "reset":
		return c.handleReset(sender, m, args[2:])
	default:
		return errors.New(spawnpointsUsage)
	}
}

func (c *Spawnpoints) handleGenerator(sender *admin.Sender, m *spawn.Manager, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: //spawnpoints generator <query|list|set <id> [reset]|data [payload]>")
	}

	switch strings.ToLower(args[0]) {
	case "query":
		sender.Replyf("The spawn point generator is %s", m.ActiveGenerator())
		st := m.Stats()
		sender.Replyf("Spawn points generated: %d, rejected by generator: %d, rejected as unsafe: %d",
			st.Generated, st.GeneratorRejected, st.OracleRejected)
		return nil
	case "list":
		ids := c.svc.Registry().IDs()
		names := make([]string, 0, len(ids))
		for _, id := range ids {
			names = append(names, id.String())
		}
		sender.Replyf("Registered generators: %s", strings.Join(names, ", "))
		return nil
	case "set":
		return c.handleSet(sender, m, args[1:])
	case "data":
		return c.handleData(sender, m, args[1:])
	default:
		return fmt.Errorf("unknown generator subcommand: %s", args[0])
	}
}

func (c *Spawnpoints) handleSet(sender *admin.Sender, m *spawn.Manager, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: //spawnpoints generator set <id> [true|false]")
	}

	id, err := spawn.ParseIdentifier(args[0])
	if err != nil {
		return fmt.Errorf("invalid generator id %q: %w", args[0], err)
	}
	if !c.svc.Registry().Exists(id) {
		return fmt.Errorf("generator %s does not exist or has not been registered", id)
	}

	reset := true
	if len(args) == 2 {
		reset, err = strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid reset flag %q: %w", args[1], err)
		}
	}

	if err := m.SetActiveGenerator(id, reset); err != nil {
		return err
	}

	sender.Replyf("Spawn point generator set to %s", id)
	if reset {
		sender.Reply("Reset all spawn points.")
	}
	return nil
}

// handleData without payload prints the current configuration.
func (c *Spawnpoints) handleData(sender *admin.Sender, m *spawn.Manager, args []string) error {
	if len(args) == 0 {
		cfg := m.GeneratorConfig()
		points, hasPoints := cfg[pointsKey]
		delete(cfg, pointsKey)

		b, err := spawn.MarshalData(cfg)
		if err != nil {
			return err
		}
		sender.Replyf("%s data: %s", m.ActiveGenerator(), b)
		if hasPoints {
			if list, ok := points.([][]int32); ok {
				sender.Replyf("%d points placed", len(list))
			}
		}
		return nil
	}

	d, err := parseDataPayload(strings.Join(args, " "))
	if err != nil {
		return err
	}

	if err := m.MergeGeneratorConfig(d); err != nil {
		if errors.Is(err, spawn.ErrInvalidConfiguration) {
			return fmt.Errorf("illegal data passed to generator: %w", err)
		}
		return err
	}

	sender.Replyf("Data modified. (%d keys updated)", len(d))
	return nil
}

func (c *Spawnpoints) handleReset(sender *admin.Sender, m *spawn.Manager, args []string) error {
	if len(args) == 0 {
		n := m.ResetAll()
		sender.Replyf("Reset all spawn points. (%d cleared)", n)
		return nil
	}

	targets, err := resolveTargets(sender, args)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.id)
	}

	affected := m.ResetPlayers(ids)
	if affected == 0 {
		return errNothingReset
	}
	sender.Replyf("Reset %d spawn points.", affected)
	return nil
}

// parseDataPayload decodes a YAML (or JSON) mapping.
func parseDataPayload(payload string) (spawn.Data, error) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("invalid data payload: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("data payload must be a non-empty mapping")
	}
	return spawn.Data(raw), nil
}
