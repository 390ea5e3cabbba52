package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lineage/internal/server"
	"github.com/matzehuels/lineage/pkg/buildinfo"
	"github.com/matzehuels/lineage/pkg/cache"
	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var cfg ServerConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Routes:
  POST /v1/layout   layout request → geometry
  POST /v1/check    people → consistency report
  POST /v1/render   layout request → image (?format=svg|png|pdf|dot|json)
  GET  /healthz

Layouts are cached in memory, or in Redis when --redis is given so that
several instances share one cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), c.serverConfig(cmd, cfg))
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&cfg.Redis, "redis", "", "Redis URL (redis://host:6379/0) or host:port for a shared cache")
	cmd.Flags().Float64Var(&cfg.Rate, "rate", server.DefaultRate, "requests per second for /v1 routes (negative disables)")
	cmd.Flags().IntVar(&cfg.Burst, "burst", server.DefaultBurst, "rate limiter burst size")

	return cmd
}

// serverConfig overlays explicitly set flags on the config file values.
func (c *CLI) serverConfig(cmd *cobra.Command, flags ServerConfig) ServerConfig {
	cfg := c.config.Server
	changed := cmd.Flags().Changed
	if changed("addr") || cfg.Addr == "" {
		cfg.Addr = flags.Addr
	}
	if changed("redis") {
		cfg.Redis = flags.Redis
	}
	if changed("rate") || cfg.Rate == 0 {
		cfg.Rate = flags.Rate
	}
	if changed("burst") || cfg.Burst == 0 {
		cfg.Burst = flags.Burst
	}
	return cfg
}

func (c *CLI) runServe(ctx context.Context, cfg ServerConfig) error {
	store, err := c.serverCache(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	// Scope keys by release so instances sharing Redis never serve geometry
	// computed by a different engine version.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	srv := server.New(runner, server.Config{
		Addr:  cfg.Addr,
		Rate:  cfg.Rate,
		Burst: cfg.Burst,
	}, c.Logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	printSuccess("Serving on %s", StyleLink.Render("http://"+cfg.Addr))

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// serverCache connects to Redis when addr is set and falls back to an
// in-memory cache otherwise.
func (c *CLI) serverCache(ctx context.Context, addr string) (cache.Cache, error) {
	if addr == "" {
		c.Logger.Info("using in-memory layout cache")
		return cache.NewMemoryCache(0), nil
	}

	rc := cache.RedisConfig{Addr: addr, Prefix: appName + ":"}
	if strings.Contains(addr, "://") {
		if err := errors.ValidateRedisURL(addr); err != nil {
			return nil, err
		}
		rc = cache.RedisConfig{URL: addr, Prefix: appName + ":"}
	}
	store, err := cache.NewRedisCache(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Logger.Info("using redis layout cache", "addr", addr)
	return store, nil
}
