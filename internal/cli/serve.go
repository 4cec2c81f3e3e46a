package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wikigraph/pkg/server"
)

type serveOptions struct {
	source sourceFlags
	addr   string
	expand bool
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve <title|url>",
		Short: "Serve a live exploration session over HTTP",
		Long: `Run an exploration session and expose it over HTTP.

GET /api/snapshot returns the current frame, /api/ws streams frames and
accepts expand, collapse and drag commands, and /metrics exposes Prometheus
metrics.`,
		Example: `  wikigraph serve "Graph theory"
  wikigraph serve Physics --addr :9090 --expand`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], opts)
		},
	}

	opts.source.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&opts.expand, "expand", false, "expand the seed on startup")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, arg string, opts serveOptions) error {
	logger := c.Logger
	registry := c.metricsRegistry()

	sess, cfg, err := c.newSession(ctx, arg, opts.source, logger, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	addr := cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}
	srv := server.New(sess.loop, server.Options{
		PushInterval: cfg.Server.PushInterval.Std(),
		Gatherer:     registry,
		Logger:       logger,
	})
	if opts.expand {
		sess.loop.OnExpandRequested(sess.engine.Store().Seed())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(sess.loop.Run(gctx)) })
	g.Go(func() error { return c.watchLayout(gctx, sess.loop, logger) })
	g.Go(func() error { return srv.ListenAndServe(gctx, addr) })
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
