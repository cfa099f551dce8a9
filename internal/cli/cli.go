package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sbhasm/pkg/buildinfo"
	"github.com/matzehuels/sbhasm/pkg/cache"
	"github.com/matzehuels/sbhasm/pkg/config"
	"github.com/matzehuels/sbhasm/pkg/observability"
	"github.com/matzehuels/sbhasm/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sbhasm"

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
	Logger *log.Logger

	configPath string
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
		Short: "sbhasm reconstructs sequences from overlapping fragments",
		Long: `sbhasm reconstructs a sequence from equal-length overlapping fragments
under a maximum length, maximizing how many fragments occur in the result.

A greedy overlap path seeds a simulated annealing search over fragment orders.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/sbhasm/config.toml)")

	root.AddCommand(c.assembleCommand())
	root.AddCommand(c.overlapCommand())
	root.AddCommand(c.diagramCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config if given, else the default config file.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	return config.LoadDefault()
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheOpts selects the cache backend for a runner.
type cacheOpts struct {
	noCache  bool
	redisURL string
	dir      string
	ttl      time.Duration
}

// fromConfig fills unset fields from cfg.
func (o *cacheOpts) fromConfig(cfg *config.Config, changed func(string) bool) {
	if !changed("redis-url") && cfg.Cache.RedisURL != "" {
		o.redisURL = cfg.Cache.RedisURL
	}
	if o.dir == "" {
		o.dir = cfg.Cache.Dir
	}
	if o.ttl == 0 {
		o.ttl = time.Duration(cfg.Cache.TTL)
	}
}

// newRunner creates a pipeline runner for CLI use.
// With debug logging enabled, pipeline and cache events are logged too.
func (c *CLI) newRunner(ctx context.Context, opts cacheOpts) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, opts)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, nil, c.Logger)
	runner.TTL = opts.ttl

	if c.Logger.GetLevel() <= LogDebug {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
	return runner, nil
}

// newCache picks the cache backend. An unreachable Redis falls back to no
// caching with a warning.
func (c *CLI) newCache(ctx context.Context, opts cacheOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, opts.redisURL)
		if err != nil {
			c.Logger.Warn("redis cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}

	dir := opts.dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sbhasm/).
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
