package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/spreadspawn/internal/admin"
	"github.com/udisondev/spreadspawn/internal/admin/commands"
	"github.com/udisondev/spreadspawn/internal/config"
	"github.com/udisondev/spreadspawn/internal/db"
	"github.com/udisondev/spreadspawn/internal/model"
	"github.com/udisondev/spreadspawn/internal/safety"
	"github.com/udisondev/spreadspawn/internal/spawn"
	"github.com/udisondev/spreadspawn/internal/world"
	"github.com/udisondev/spreadspawn/internal/zone"
)

const SpawnConfigPath = "config/spawnserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cancel); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc) error {
	cfgPath := SpawnConfigPath
	if p := os.Getenv("SPAWN_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSpawnServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("spawn server starting",
		"log_level", cfg.LogLevel,
		"storage", cfg.StorageDriver,
		"worlds", len(cfg.Worlds))

	repo, closeRepo, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	worlds := buildWorlds(cfg.Worlds)

	zones, err := loadZones(cfg.Zones)
	if err != nil {
		return err
	}
	slog.Info("no-spawn zones loaded", "count", zones.Len())

	defaultGenerator, err := spawn.ParseIdentifier(cfg.DefaultGenerator)
	if err != nil {
		return fmt.Errorf("parsing default generator: %w", err)
	}

	registry := spawn.NewDefaultRegistry()
	if !registry.Exists(defaultGenerator) {
		return fmt.Errorf("default generator %s: %w", defaultGenerator, spawn.ErrUnregisteredGenerator)
	}

	service := spawn.NewService(worlds, registry, safety.NewOracle(zones), repo, defaultGenerator)

	// Load every world up front so broken saved state fails startup.
	for _, name := range worlds.Names() {
		m, err := service.Manager(ctx, name)
		if err != nil {
			return fmt.Errorf("loading world %s: %w", name, err)
		}
		slog.Info("world loaded",
			"world", name,
			"generator", m.ActiveGenerator(),
			"assignments", len(m.Assignments()))
	}

	handler := admin.NewHandler()
	commands.RegisterAll(handler, service)
	slog.Info("commands registered",
		"admin", handler.AdminCommandCount(),
		"user", handler.UserCommandCount())

	autosaver := spawn.NewAutosaver(service, cfg.AutosaveInterval)
	console := admin.NewConsole(cfg.Worlds[0].Name, os.Stdout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting autosave loop", "interval", cfg.AutosaveInterval)
		if err := autosaver.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("autosave loop: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		runConsole(gctx, os.Stdin, handler, console, service, cancel)
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	if err := service.SaveAll(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	slog.Info("spawn server stopped")
	return nil
}

// openStorage returns the configured state repository and its close func.
func openStorage(ctx context.Context, cfg config.SpawnServer) (spawn.StateRepository, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
		return db.NewPostgresStateRepository(database.Pool()), database.Close, nil

	case config.StorageSQLite:
		repo, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite: %w", err)
		}
		slog.Info("sqlite opened", "path", cfg.SQLitePath)
		return repo, func() {
			if err := repo.Close(); err != nil {
				slog.Error("closing sqlite", "error", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func buildWorlds(cfgs []config.WorldConfig) *world.Set {
	set := world.NewSet()
	for _, wc := range cfgs {
		radius := wc.SpawnRadius
		if radius <= 0 {
			radius = world.DefaultSpawnRadius
		}
		set.Add(world.New(
			wc.Name,
			wc.Seed,
			model.NewCoordinate(wc.SpawnX, wc.SpawnZ),
			world.NewBorder(wc.BorderX, wc.BorderZ, wc.BorderSize),
			radius,
		))
	}
	return set
}

func loadZones(cfgs []config.ZoneConfig) (*zone.Manager, error) {
	zones := zone.NewManager()
	for _, zc := range cfgs {
		z, err := zone.New(zc.ID, zc.Name, zc.World, zc.Shape, zc.NodesX, zc.NodesZ, zc.Radius)
		if err != nil {
			return nil, fmt.Errorf("loading zone %d (%s): %w", zc.ID, zc.Name, err)
		}
		zones.Add(z)
	}
	return zones, nil
}

// runConsole feeds stdin lines to the command handler until ctx is done.
// Built-ins: "world <name>" switches the console world, "save" flushes, "stop" shuts down.
func runConsole(ctx context.Context, in io.Reader, h *admin.Handler, console *admin.Sender, service *spawn.Service, stop context.CancelFunc) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				// stdin закрыт (daemon), ждём сигнала
				lines = nil
				continue
			}

			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch strings.ToLower(fields[0]) {
			case "stop":
				stop()
				return
			case "save":
				if err := service.SaveAll(ctx); err != nil {
					console.Reply(fmt.Sprintf("Save failed: %s", err))
				} else {
					console.Reply("Saved.")
				}
			case "world":
				if len(fields) != 2 {
					console.Reply("Current world: " + console.World())
					continue
				}
				if _, ok := service.Worlds().Get(fields[1]); !ok {
					console.Reply("Unknown world: " + fields[1])
					continue
				}
				console.SetWorld(fields[1])
				console.Reply("Console world set to " + fields[1])
			default:
				h.Dispatch(ctx, console, line)
			}
		}
	}
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
