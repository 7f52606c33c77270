// Package admin provides command handling for the spawn point service.
package admin

// Access levels used by the spawn point commands.
const (
	LevelUser     int32 = 0
	LevelOperator int32 = 2
	LevelConsole  int32 = 100
)

// AccessLevel defines an access level with associated permissions.
// Level 0 = regular player, 2 = operator, 100+ = server console.
type AccessLevel struct {
	Level int32
	Name  string
	// CanUseCommands допускает команды с RequiredAccessLevel > 0.
	CanUseCommands bool
	// CanTargetOthers allows acting on other players' spawn points.
	CanTargetOthers bool
}

var defaultAccessLevels = map[int32]*AccessLevel{
	LevelUser: {
		Level:           LevelUser,
		Name:            "User",
		CanUseCommands:  false,
		CanTargetOthers: false,
	},
	LevelOperator: {
		Level:           LevelOperator,
		Name:            "Operator",
		CanUseCommands:  true,
		CanTargetOthers: true,
	},
	LevelConsole: {
		Level:           LevelConsole,
		Name:            "Console",
		CanUseCommands:  true,
		CanTargetOthers: true,
	},
}

// GetAccessLevel returns AccessLevel for the given level value.
// Unknown levels inherit from the highest matching known level below them.
// Negative levels (banned) return nil.
func GetAccessLevel(level int32) *AccessLevel {
	if level < 0 {
		return nil
	}

	if al, ok := defaultAccessLevels[level]; ok {
		return al
	}

	var best *AccessLevel
	for _, al := range defaultAccessLevels {
		if al.Level <= level && (best == nil || al.Level > best.Level) {
			best = al
		}
	}
	return best
}
