// Package cli implements the wikigraph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/wikigraph/internal/metrics"
	"github.com/matzehuels/wikigraph/pkg/buildinfo"
	"github.com/matzehuels/wikigraph/pkg/cache"
	"github.com/matzehuels/wikigraph/pkg/config"
	"github.com/matzehuels/wikigraph/pkg/wiki"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "wikigraph"

	// logLevelEnv overrides the log level ("debug", "info", "warn", "error").
	logLevelEnv = "WIKIGRAPH_LOG_LEVEL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string

	registry *prometheus.Registry
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Explore Wikipedia as a live, force-directed link graph",
		Long: `wikigraph grows a graph of Wikipedia articles from a seed. Expanding a node
fetches the articles it links to; collapsing it removes everything that was only
reachable through it. A force simulation keeps the picture laid out while it grows.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// levelFromEnv returns the level named by WIKIGRAPH_LOG_LEVEL, or fallback.
func levelFromEnv(fallback log.Level) log.Level {
	v := strings.TrimSpace(os.Getenv(logLevelEnv))
	if v == "" {
		return fallback
	}
	level, err := log.ParseLevel(v)
	if err != nil {
		return fallback
	}
	return level
}

// ResolveLevel picks the log level for a run: -v wins, then the
// environment, then info.
func ResolveLevel(verbose bool) log.Level {
	if verbose {
		return LogDebug
	}
	return levelFromEnv(LogInfo)
}

// =============================================================================
// Wiring
// =============================================================================

// loadConfig reads the configuration file and applies a --lang override.
func (c *CLI) loadConfig(lang string) (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if lang != "" {
		cfg.Language = lang
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// metricsRegistry returns the registry the hooks report to, creating and
// installing it on first use.
func (c *CLI) metricsRegistry() *prometheus.Registry {
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
		metrics.Register(c.registry)
	}
	return c.registry
}

// linkSource bundles a Wikipedia source with the cache it owns.
type linkSource struct {
	*wiki.Source
	cache cache.Cache
}

func (s *linkSource) Close() error { return s.cache.Close() }

// sourceFlags are shared by every command that fetches links.
type sourceFlags struct {
	lang    string
	noCache bool
	refresh bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.lang, "lang", "", "Wikipedia language edition (default from config, else en)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the link cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "refetch links even when cached")
}

// newLinkSource opens the configured cache and builds a link source on it.
func (c *CLI) newLinkSource(ctx context.Context, cfg config.Config, f sourceFlags, logger *log.Logger) (*linkSource, error) {
	backend, err := c.openCache(ctx, cfg, f.noCache, logger)
	if err != nil {
		return nil, err
	}
	opts := cfg.WikiOptions()
	opts.Refresh = f.refresh
	opts.Logger = logger
	return &linkSource{
		Source: wiki.NewSource(cache.Instrument(backend, "links"), cfg.Keyer(), opts),
		cache:  backend,
	}, nil
}

func (c *CLI) openCache(ctx context.Context, cfg config.Config, noCache bool, logger *log.Logger) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == cache.BackendNone {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil && cfg.Cache.Dir == "" && cfg.Cache.Backend == cache.BackendFile {
		logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	backend, err := cache.Open(ctx, cfg.CacheOptions(dir))
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	logger.Debug("cache opened", "backend", cfg.Cache.Backend)
	return backend, nil
}

// resolveSeed accepts a title or a Wikipedia article URL. A URL's language
// edition overrides the configured one.
func resolveSeed(arg string, cfg *config.Config) (string, error) {
	lang, title, err := wiki.ResolveSeed(arg, cfg.Language)
	if err != nil {
		return "", err
	}
	cfg.Language = lang
	return title, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/wikigraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
