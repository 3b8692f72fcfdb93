package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/goodnight/internal/combatsim"
	"github.com/cory-johannsen/goodnight/internal/config"
	"github.com/cory-johannsen/goodnight/internal/frontend/console"
	"github.com/cory-johannsen/goodnight/internal/game/ai"
	"github.com/cory-johannsen/goodnight/internal/game/combat"
	"github.com/cory-johannsen/goodnight/internal/game/dice"
	"github.com/cory-johannsen/goodnight/internal/game/menu"
	"github.com/cory-johannsen/goodnight/internal/game/ruleset"
	"github.com/cory-johannsen/goodnight/internal/game/session"
	"github.com/cory-johannsen/goodnight/internal/observability"
	"github.com/cory-johannsen/goodnight/internal/scripting"
	"github.com/cory-johannsen/goodnight/internal/server"
	"github.com/cory-johannsen/goodnight/internal/storage/postgres"
)

// cliOptions are the command-line switches.
type cliOptions struct {
	ConfigPath string
	Encounter  string
	Autopilot  bool
	Watch      bool
	Load       bool
	Slot       string
	Massive    bool // debug builds only
	Color      bool
}

// keyStream is the stdin key feed; nil under autopilot.
type keyStream <-chan menu.Key

type app struct {
	logger    *zap.Logger
	lifecycle *server.Lifecycle
}

func provideConfig(opts cliOptions) (config.Config, error) {
	return config.Load(opts.ConfigPath)
}

func provideLogger(cfg config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideRoller(cfg config.Config, logger *zap.Logger) *dice.Roller {
	src := dice.NewCryptoSource()
	if cfg.Game.Seed != 0 {
		src = dice.NewSeededSource(cfg.Game.Seed)
	}
	return dice.NewLoggedRoller(src, logger)
}

func provideTables(cfg config.Config, logger *zap.Logger) (*ruleset.Tables, error) {
	start := time.Now()
	tables, err := ruleset.Load(cfg.Content.TablesDir)
	if err != nil {
		return nil, err
	}
	logger.Info("content tables loaded",
		zap.String("dir", cfg.Content.TablesDir),
		zap.Int("encounters", len(tables.EncounterIDs())),
		zap.Duration("elapsed", time.Since(start)),
	)
	return tables, nil
}

func provideScripts(cfg config.Config, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, func(), error) {
	if cfg.Content.ScriptsDir == "" {
		return nil, func() {}, nil
	}
	mgr := scripting.NewManager(roller, logger)
	if err := mgr.Load(cfg.Content.ScriptsDir, cfg.Content.InstructionLimit); err != nil {
		mgr.Close()
		return nil, nil, err
	}
	return mgr, mgr.Close, nil
}

func providePool(cfg config.Config, logger *zap.Logger) (*postgres.Pool, func(), error) {
	if !cfg.Database.Enabled {
		return nil, func() {}, nil
	}
	start := time.Now()
	pool, err := postgres.NewPool(context.Background(), cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pool, pool.Close, nil
}

func provideSaves(pool *postgres.Pool) combatsim.Saves {
	if pool == nil {
		return nil
	}
	return pool.Saves()
}

func provideSession(opts cliOptions, cfg config.Config, tables *ruleset.Tables, roller *dice.Roller, saves combatsim.Saves, logger *zap.Logger) (*session.GameSession, error) {
	if opts.Load && saves != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		save, err := saves.Latest(ctx, opts.Slot)
		switch {
		case err == nil:
			logger.Info("resuming save", zap.String("slot", save.Slot), zap.Stringer("id", save.ID))
			return session.Restore(save.Snapshot, tables)
		case errors.Is(err, postgres.ErrSaveNotFound):
			logger.Info("no save found; starting a new game", zap.String("slot", opts.Slot))
		default:
			return nil, fmt.Errorf("loading save: %w", err)
		}
	}
	return session.NewGame(tables, roller, cfg.Game)
}

func provideDecider(roller *dice.Roller, logger *zap.Logger) combat.Decider {
	return ai.NewDecisionMaker(roller, logger)
}

func provideWatcher(opts cliOptions, cfg config.Config) (*ruleset.Watcher, func(), error) {
	if !opts.Watch && !cfg.Content.Watch {
		return nil, func() {}, nil
	}
	dirs := []string{cfg.Content.TablesDir}
	if cfg.Content.ScriptsDir != "" {
		dirs = append(dirs, cfg.Content.ScriptsDir)
	}
	w, err := ruleset.NewWatcher(dirs...)
	if err != nil {
		return nil, nil, fmt.Errorf("watching content: %w", err)
	}
	return w, func() { _ = w.Close() }, nil
}

func provideKeys(opts cliOptions, logger *zap.Logger) (keyStream, func()) {
	if opts.Autopilot {
		return nil, func() {}
	}
	ctx, cancel := context.WithCancel(context.Background())
	keys := make(chan menu.Key)
	go func() {
		if err := console.ReadKeys(ctx, os.Stdin, keys, logger); err != nil {
			logger.Warn("reading keys", zap.Error(err))
		}
	}()
	return keys, cancel
}

func provideDriver(
	opts cliOptions,
	cfg config.Config,
	logger *zap.Logger,
	tables *ruleset.Tables,
	scripts *scripting.Manager,
	s *session.GameSession,
	roller *dice.Roller,
	decider combat.Decider,
	saves combatsim.Saves,
	watcher *ruleset.Watcher,
	keys keyStream,
) *combatsim.Driver {
	var palette console.Palette
	if opts.Color {
		palette = console.ANSI
	}
	return combatsim.NewDriver(combatsim.Options{
		Config:        cfg,
		Logger:        logger,
		Tables:        tables,
		Scripts:       scripts,
		Session:       s,
		Roller:        roller,
		Decider:       decider,
		Saves:         saves,
		Watcher:       watcher,
		Keys:          keys,
		Out:           os.Stdout,
		Encounter:     opts.Encounter,
		Autopilot:     opts.Autopilot,
		MassiveDamage: opts.Massive,
		Palette:       palette,
		Slot:          opts.Slot,
	})
}

func provideApp(logger *zap.Logger, driver *combatsim.Driver, pool *postgres.Pool, watcher *ruleset.Watcher) *app {
	lifecycle := server.NewLifecycle(logger)
	if pool != nil {
		ctx, cancel := context.WithCancel(context.Background())
		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func() error {
				pool.Monitor(ctx, 30*time.Second, logger)
				return nil
			},
			StopFn: cancel,
		})
	}
	if watcher != nil {
		stop := make(chan struct{})
		lifecycle.Add("watch", &server.FuncService{
			StartFn: func() error {
				for {
					select {
					case <-stop:
						return nil
					case err, ok := <-watcher.Errors:
						if !ok {
							<-stop
							return nil
						}
						logger.Warn("content watcher error", zap.Error(err))
					}
				}
			},
			StopFn: func() { close(stop) },
		})
	}
	lifecycle.Add("combat", driver)
	return &app{logger: logger, lifecycle: lifecycle}
}
