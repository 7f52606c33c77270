package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Command is the interface for operator commands (//command or a bare console line).
// Each command registers one or more names and a required access level.
type Command interface {
	// Handle executes the command. args includes command name at [0].
	Handle(ctx context.Context, sender *Sender, args []string) error
	// Names returns all registered command names (without prefix).
	Names() []string
	// RequiredAccessLevel returns the minimum access level to use this command.
	RequiredAccessLevel() int32
}

// UserCommand is the interface for user commands (/command).
// Available to everyone; commands check finer permissions themselves.
type UserCommand interface {
	// Handle executes the user command. params is the rest of the line after command name.
	Handle(ctx context.Context, sender *Sender, params string) error
	// Names returns all registered command names (without / prefix).
	Names() []string
}

// Handler dispatches operator (//) and user (/) commands.
// Commands are registered once at startup, then read-only.
type Handler struct {
	mu        sync.RWMutex
	adminCmds map[string]Command     // name → Command (lowercase)
	userCmds  map[string]UserCommand // name → UserCommand (lowercase)
}

// NewHandler creates a new command handler.
func NewHandler() *Handler {
	return &Handler{
		adminCmds: make(map[string]Command, 4),
		userCmds:  make(map[string]UserCommand, 4),
	}
}

// RegisterAdmin registers an operator command.
// All command names are lowercased for case-insensitive lookup.
func (h *Handler) RegisterAdmin(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range cmd.Names() {
		h.adminCmds[strings.ToLower(name)] = cmd
	}
}

// RegisterUser registers a user command.
func (h *Handler) RegisterUser(cmd UserCommand) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range cmd.Names() {
		h.userCmds[strings.ToLower(name)] = cmd
	}
}

// Dispatch routes a raw input line.
// "//" selects operator commands, "/" user commands; a bare line tries
// operator commands first, then user commands.
func (h *Handler) Dispatch(ctx context.Context, sender *Sender, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "//"):
		return h.HandleAdminCommand(ctx, sender, line[2:])
	case strings.HasPrefix(line, "/"):
		return h.HandleUserCommand(ctx, sender, line[1:])
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	name := strings.ToLower(parts[0])

	h.mu.RLock()
	_, isAdmin := h.adminCmds[name]
	_, isUser := h.userCmds[name]
	h.mu.RUnlock()

	switch {
	case isAdmin:
		return h.HandleAdminCommand(ctx, sender, line)
	case isUser:
		return h.HandleUserCommand(ctx, sender, line)
	}

	sender.Reply("Unknown command: " + name)
	return false
}

// HandleAdminCommand processes an operator command line.
// Returns true if a command was found and executed.
// text is the full message WITHOUT the // prefix.
func (h *Handler) HandleAdminCommand(ctx context.Context, sender *Sender, text string) bool {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return false
	}
	cmdName := strings.ToLower(parts[0])

	h.mu.RLock()
	cmd, ok := h.adminCmds[cmdName]
	h.mu.RUnlock()

	if !ok {
		sender.Reply("Unknown command: //" + cmdName)
		return false
	}

	accessLevel := sender.AccessLevel()
	al := GetAccessLevel(accessLevel)
	if al == nil || !al.CanUseCommands {
		sender.Reply("You do not have permission to use //" + cmdName)
		slog.Warn("unauthorized admin command attempt",
			"sender", sender.Name(),
			"command", cmdName,
			"accessLevel", accessLevel)
		return false
	}

	if accessLevel < cmd.RequiredAccessLevel() {
		sender.Reply(fmt.Sprintf("Insufficient access level for //%s (need %d, have %d)",
			cmdName, cmd.RequiredAccessLevel(), accessLevel))
		slog.Warn("admin command access denied",
			"sender", sender.Name(),
			"command", cmdName,
			"required", cmd.RequiredAccessLevel(),
			"actual", accessLevel)
		return false
	}

	slog.Info("admin command",
		"sender", sender.Name(),
		"world", sender.World(),
		"command", text)

	if err := cmd.Handle(ctx, sender, parts); err != nil {
		sender.Reply(fmt.Sprintf("Command error: %s", err))
		slog.Error("admin command failed",
			"sender", sender.Name(),
			"command", text,
			"error", err)
	}

	return true
}

// HandleUserCommand processes a user command line.
// Returns true if a command was found and executed.
// text is the full message WITHOUT the / prefix.
func (h *Handler) HandleUserCommand(ctx context.Context, sender *Sender, text string) bool {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return false
	}
	cmdName := strings.ToLower(parts[0])

	h.mu.RLock()
	cmd, ok := h.userCmds[cmdName]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	if GetAccessLevel(sender.AccessLevel()) == nil {
		slog.Warn("banned sender used command",
			"sender", sender.Name(),
			"command", cmdName)
		return false
	}

	// Extract params (everything after command name)
	text = strings.TrimSpace(text)
	params := strings.TrimSpace(text[len(parts[0]):])

	if err := cmd.Handle(ctx, sender, params); err != nil {
		sender.Reply(fmt.Sprintf("Command error: %s", err))
		slog.Error("user command failed",
			"sender", sender.Name(),
			"command", text,
			"error", err)
	}

	return true
}

// AdminCommandCount returns number of registered operator command names.
func (h *Handler) AdminCommandCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.adminCmds)
}

// UserCommandCount returns number of registered user command names.
func (h *Handler) UserCommandCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userCmds)
}
