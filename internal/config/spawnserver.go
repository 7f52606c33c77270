package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// SpawnServer holds all configuration for the spawn point server.
type SpawnServer struct {
	LogLevel string `yaml:"log_level" env:"SPAWN_LOG_LEVEL"`

	// Storage
	StorageDriver string         `yaml:"storage_driver" env:"SPAWN_STORAGE_DRIVER"`
	SQLitePath    string         `yaml:"sqlite_path" env:"SPAWN_SQLITE_PATH"`
	Database      DatabaseConfig `yaml:"database" envPrefix:"SPAWN_DB_"`

	AutosaveInterval time.Duration `yaml:"autosave_interval" env:"SPAWN_AUTOSAVE_INTERVAL"`

	// DefaultGenerator is used for worlds without saved state ("spring" or "namespace:path").
	DefaultGenerator string `yaml:"default_generator" env:"SPAWN_DEFAULT_GENERATOR"`

	Worlds []WorldConfig `yaml:"worlds"`
	Zones  []ZoneConfig  `yaml:"zones"`
}

// WorldConfig describes one world.
type WorldConfig struct {
	Name        string `yaml:"name"`
	Seed        int64  `yaml:"seed"`
	SpawnX      int32  `yaml:"spawn_x"`
	SpawnZ      int32  `yaml:"spawn_z"`
	BorderX     int32  `yaml:"border_center_x"`
	BorderZ     int32  `yaml:"border_center_z"`
	BorderSize  int32  `yaml:"border_size"` // 0 = max
	SpawnRadius int32  `yaml:"spawn_radius"`
}

// ZoneConfig describes a no-spawn zone.
type ZoneConfig struct {
	ID     int32   `yaml:"id"`
	Name   string  `yaml:"name"`
	World  string  `yaml:"world"`
	Shape  string  `yaml:"shape"` // NPoly, Cuboid, Cylinder
	NodesX []int32 `yaml:"nodes_x"`
	NodesZ []int32 `yaml:"nodes_z"`
	Radius int32   `yaml:"radius"`
}

// DefaultSpawnServer returns SpawnServer config with sensible defaults.
func DefaultSpawnServer() SpawnServer {
	return SpawnServer{
		LogLevel:         "info",
		StorageDriver:    StorageSQLite,
		SQLitePath:       "data/spawnpoints.db",
		Database:         DefaultDatabase(),
		AutosaveInterval: time.Minute,
		DefaultGenerator: "spreadspawnpoints:vanilla",
		Worlds: []WorldConfig{
			{
				Name:        "overworld",
				SpawnRadius: 10,
			},
		},
	}
}

// LoadSpawnServer loads config from a YAML file and applies SPAWN_* environment overrides.
// If the file doesn't exist, defaults are used.
func LoadSpawnServer(path string) (SpawnServer, error) {
	cfg := DefaultSpawnServer()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the server cannot start without.
func (c SpawnServer) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for sqlite storage")
		}
	default:
		return fmt.Errorf("unknown storage_driver %q", c.StorageDriver)
	}

	if len(c.Worlds) == 0 {
		return fmt.Errorf("at least one world is required")
	}
	seen := make(map[string]bool, len(c.Worlds))
	for _, w := range c.Worlds {
		if w.Name == "" {
			return fmt.Errorf("world name is required")
		}
		if seen[w.Name] {
			return fmt.Errorf("duplicate world %q", w.Name)
		}
		seen[w.Name] = true
	}
	for _, z := range c.Zones {
		if !seen[z.World] {
			return fmt.Errorf("zone %d references unknown world %q", z.ID, z.World)
		}
	}
	return nil
}
