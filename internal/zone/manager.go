package zone

import (
	"log/slog"
	"sync"

	"github.com/udisondev/spreadspawn/internal/model"
)

const gridSize int32 = 4096 // мировые единицы на ячейку сетки

type gridKey struct {
	world  string
	gx, gz int32
}

// Manager indexes no-spawn zones per world with a coarse cell grid.
// Thread-safe: zones are added at startup, lookups run from any goroutine.
type Manager struct {
	mu    sync.RWMutex
	zones []*Zone
	byID  map[int32]*Zone
	grid  map[gridKey][]*Zone
}

// NewManager creates a new empty zone manager.
func NewManager() *Manager {
	return &Manager{
		byID: make(map[int32]*Zone),
		grid: make(map[gridKey][]*Zone),
	}
}

// Add registers a zone in every grid cell its bounding box touches.
// A zone with an already known ID replaces the old one.
func (m *Manager) Add(z *Zone) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.byID[z.id]; ok {
		m.removeLocked(old)
		slog.Warn("zone replaced", "id", z.id, "old", old.name, "new", z.name)
	}

	m.zones = append(m.zones, z)
	m.byID[z.id] = z

	for gx := floorDiv(z.minX, gridSize); gx <= floorDiv(z.maxX, gridSize); gx++ {
		for gz := floorDiv(z.minZ, gridSize); gz <= floorDiv(z.maxZ, gridSize); gz++ {
			key := gridKey{world: z.world, gx: gx, gz: gz}
			m.grid[key] = append(m.grid[key], z)
		}
	}
}

func (m *Manager) removeLocked(z *Zone) {
	delete(m.byID, z.id)
	m.zones = deleteZone(m.zones, z)
	for key, cell := range m.grid {
		if key.world != z.world {
			continue
		}
		cell = deleteZone(cell, z)
		if len(cell) == 0 {
			delete(m.grid, key)
		} else {
			m.grid[key] = cell
		}
	}
}

func deleteZone(zones []*Zone, z *Zone) []*Zone {
	out := zones[:0]
	for _, candidate := range zones {
		if candidate != z {
			out = append(out, candidate)
		}
	}
	return out
}

// ZonesAt returns all zones of the world containing c.
func (m *Manager) ZonesAt(world string, c model.Coordinate) []*Zone {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := gridKey{world: world, gx: floorDiv(c.X, gridSize), gz: floorDiv(c.Z, gridSize)}

	var result []*Zone
	for _, z := range m.grid[key] {
		if z.Contains(c) {
			result = append(result, z)
		}
	}
	return result
}

// IsRestricted reports whether c lies in any no-spawn zone of the world.
func (m *Manager) IsRestricted(world string, c model.Coordinate) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := gridKey{world: world, gx: floorDiv(c.X, gridSize), gz: floorDiv(c.Z, gridSize)}
	for _, z := range m.grid[key] {
		if z.Contains(c) {
			return true
		}
	}
	return false
}

// ZoneByID returns a zone by its identifier, or nil if not found.
func (m *Manager) ZoneByID(id int32) *Zone {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[id]
}

// Len returns the number of registered zones.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.zones)
}

// floorDiv выполняет целочисленное деление с округлением к -inf,
// корректно обрабатывая отрицательные координаты.
func floorDiv(a, b int32) int32 {
	d := a / b
	if (a^b) < 0 && d*b != a {
		d--
	}

	return d
}
