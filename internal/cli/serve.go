package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sbhasm/pkg/api"
	"github.com/matzehuels/sbhasm/pkg/cache"
	"github.com/matzehuels/sbhasm/pkg/config"
	"github.com/matzehuels/sbhasm/pkg/observability"
)

const defaultAddr = ":8080"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string
	maxIterations int
	maxFragments  int
	timeout       time.Duration
	cache         cacheOpts
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: defaultAddr}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assembly pipeline over HTTP",
		Long: `Serve the assembly pipeline over HTTP.

Endpoints:
  POST /v1/assemble   {"fragments": [...], "max_len": N, "iterations": N, "seed": N}
  GET  /healthz
  GET  /version

Cache keys are scoped with "api:" so a Redis instance can be shared with CLI users.`,
		Example: `  sbhasm serve --addr :8080 --max-iterations 200000
  sbhasm serve --redis-url redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.mergeConfig(cfg, cmd.Flags().Changed)
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().IntVar(&opts.maxIterations, "max-iterations", api.DefaultMaxIterations, "cap on iterations per request")
	cmd.Flags().IntVar(&opts.maxFragments, "max-fragments", api.DefaultMaxFragments, "cap on fragments per request")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", api.DefaultTimeout, "per-request deadline")
	cmd.Flags().BoolVar(&opts.cache.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&opts.cache.redisURL, "redis-url", "", "use Redis as the cache backend")

	return cmd
}

// mergeConfig copies [server] and [cache] values for flags not given explicitly.
func (o *serveOpts) mergeConfig(cfg *config.Config, changed func(string) bool) {
	if v := cfg.Server.Addr; v != "" && !changed("addr") {
		o.addr = v
	}
	if v := cfg.Server.MaxIterations; v != 0 && !changed("max-iterations") {
		o.maxIterations = v
	}
	if v := cfg.Server.MaxFragments; v != 0 && !changed("max-fragments") {
		o.maxFragments = v
	}
	o.cache.fromConfig(cfg, changed)
}

// runServe starts the API server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	runner.Keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:")

	observability.SetHTTPHooks(observability.NewLogHooks(c.Logger))
	defer observability.Reset()

	srv := api.New(runner, api.Options{
		MaxIterations: opts.maxIterations,
		MaxFragments:  opts.maxFragments,
		Timeout:       opts.timeout,
		Logger:        c.Logger,
	})
	printInfo("Serving on %s", opts.addr)
	if err := srv.ListenAndServe(ctx, opts.addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	printSuccess("Server stopped")
	return nil
}
