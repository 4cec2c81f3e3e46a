package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wikigraph/pkg/config"
	"github.com/matzehuels/wikigraph/pkg/explore"
)

// session is a running exploration: engine, loop and the source they own.
type session struct {
	engine *explore.Engine
	loop   *explore.Loop
	src    *linkSource
}

// newSession resolves arg to a seed and builds the engine and loop for it.
// onEvent may be nil.
func (c *CLI) newSession(ctx context.Context, arg string, flags sourceFlags, logger *log.Logger, onEvent func(explore.Event)) (*session, config.Config, error) {
	cfg, err := c.loadConfig(flags.lang)
	if err != nil {
		return nil, config.Config{}, err
	}
	seed, err := resolveSeed(arg, &cfg)
	if err != nil {
		return nil, config.Config{}, err
	}

	src, err := c.newLinkSource(ctx, cfg, flags, logger)
	if err != nil {
		return nil, config.Config{}, err
	}

	ecfg := cfg.EngineConfig()
	ecfg.Logger = logger
	ecfg.OnEvent = onEvent
	engine, err := explore.New(ctx, seed, src, ecfg)
	if err != nil {
		src.Close()
		return nil, config.Config{}, err
	}

	logger.Debug("session ready", "seed", seed, "lang", cfg.Language, "cache", cfg.Cache.Backend)
	return &session{
		engine: engine,
		loop:   explore.NewLoop(engine, cfg.Engine.TickInterval.Std(), logger),
		src:    src,
	}, cfg, nil
}

// Close stops outstanding fetches and releases the cache.
func (s *session) Close() error {
	s.engine.Close()
	return s.src.Close()
}

// watchLayout reloads [layout] into the loop whenever the config file
// changes. It returns immediately when the config directory does not exist.
func (c *CLI) watchLayout(ctx context.Context, loop *explore.Loop, logger *log.Logger) error {
	path := c.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		logger.Debug("not watching config", "path", path, "error", err)
		return nil
	}
	return config.Watch(ctx, path, logger, func(cfg config.Config) {
		loop.SetLayoutParams(cfg.Layout)
	})
}

// ignoreCanceled maps a cancelled run to a clean exit.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
