package spawn

import (
	"maps"

	"github.com/google/uuid"

	"github.com/udisondev/spreadspawn/internal/model"
)

// Snapshot is the persisted state of one world's Manager.
type Snapshot struct {
	World         string
	Generator     Identifier
	GeneratorData Data
	Assignments   map[uuid.UUID]model.Coordinate

	// version of the manager when the snapshot was taken; zero for loaded snapshots
	version uint64
}

// Version returns the manager version captured by the snapshot.
func (s *Snapshot) Version() uint64 { return s.version }

// Clone returns a deep copy of the assignment table and a shallow copy of the data.
func (s *Snapshot) Clone() *Snapshot {
	return &Snapshot{
		World:         s.World,
		Generator:     s.Generator,
		GeneratorData: s.GeneratorData.Clone(),
		Assignments:   maps.Clone(s.Assignments),
		version:       s.version,
	}
}
