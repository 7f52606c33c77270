package admin

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Sender is whoever issued a command: a connected player or the server console.
// Replies are kept on the sender; the console also echoes them to its writer.
type Sender struct {
	name        string
	id          uuid.UUID
	world       string
	accessLevel int32
	out         io.Writer

	mu       sync.Mutex
	messages []string
}

// NewPlayerSender creates a sender for player id standing in world.
func NewPlayerSender(name string, id uuid.UUID, world string, accessLevel int32) *Sender {
	return &Sender{
		name:        name,
		id:          id,
		world:       world,
		accessLevel: accessLevel,
	}
}

// NewConsole creates the console sender. Replies are written to out (may be nil).
func NewConsole(world string, out io.Writer) *Sender {
	return &Sender{
		name:        "console",
		world:       world,
		accessLevel: LevelConsole,
		out:         out,
	}
}

// Name returns sender display name.
func (s *Sender) Name() string { return s.name }

// ID returns the player UUID, uuid.Nil for the console.
func (s *Sender) ID() uuid.UUID { return s.id }

// IsConsole reports whether the sender is not a player.
func (s *Sender) IsConsole() bool { return s.id == uuid.Nil }

// AccessLevel returns sender access level.
func (s *Sender) AccessLevel() int32 { return s.accessLevel }

// World returns the world commands act on.
func (s *Sender) World() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world
}

// SetWorld switches the world commands act on.
func (s *Sender) SetWorld(world string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world = world
}

// Reply sends a message back to the sender.
func (s *Sender) Reply(msg string) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	out := s.out
	s.mu.Unlock()

	if out != nil {
		fmt.Fprintln(out, msg)
	}
}

// Replyf formats and sends a message back to the sender.
func (s *Sender) Replyf(format string, args ...any) {
	s.Reply(fmt.Sprintf(format, args...))
}

// LastMessage returns the latest reply or "".
func (s *Sender) LastMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

// Messages returns a copy of all replies.
func (s *Sender) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}
