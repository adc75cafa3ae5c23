package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/openmire/mobai/internal/ai"
	"github.com/openmire/mobai/internal/bestiary"
	"github.com/openmire/mobai/internal/config"
	"github.com/openmire/mobai/internal/db"
	"github.com/openmire/mobai/internal/game/reward"
	"github.com/openmire/mobai/internal/model"
	"github.com/openmire/mobai/internal/world"
)

const ConfigPath = "config/world.yaml"

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

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("MOBAI_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadWorld(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = config.DefaultWorld()
		slog.Warn("config file not found, using defaults", "path", cfgPath)
	}

	// Configure slog based on config.LogLevel
	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	// Enable AI debug logging if log level is debug
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("mobai simulation starting",
		"log_level", cfg.LogLevel,
		"tick_interval", cfg.TickInterval)

	profiles, err := bestiary.LoadDir(cfg.Bestiary)
	if err != nil {
		return fmt.Errorf("loading bestiary: %w", err)
	}

	// Offline reward persistence is optional: without a database the
	// simulation runs, but rewards for offline players are dropped.
	var store reward.Store
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, offline rewards disabled", "err", err)
	} else {
		defer database.Close()
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		store = db.NewRewardRepository(database.Pool())
		slog.Info("database connected, migrations applied")
	}

	registry := world.NewRegistry()
	grid := world.NewGrid(registry)
	scheduler := ai.NewScheduler(cfg.TickInterval)

	tracker := reward.NewTracker()
	rewards := reward.NewManager(cfg.Rewards, tracker, registry.PlayerByID, store)

	engine := world.NewEngine(cfg, registry, grid, scheduler, profiles, tracker, rewards)

	// Demo area: one floor, every loaded profile spawned leashed on it.
	grid.AddFloor(0, 0, 127, 127, 7)
	x, y := int32(8), int32(8)
	for name := range profiles {
		if _, err := engine.SpawnMonster(name, model.Position{X: x, Y: y, Z: 7}, true); err != nil {
			return fmt.Errorf("spawning %s: %w", name, err)
		}
		x += 16
		if x > 120 {
			x = 8
			y += 16
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(ctx)
	})

	slog.Info("simulation running", "agents", scheduler.Count())
	return g.Wait()
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
