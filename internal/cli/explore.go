package cli

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wikigraph/pkg/explore"
)

// eventBuffer is how many engine events may wait for the UI.
const eventBuffer = 64

type exploreOptions struct {
	source  sourceFlags
	logFile string
}

func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOptions

	cmd := &cobra.Command{
		Use:   "explore <title|url>",
		Short: "Explore the link graph of an article interactively",
		Long: `Open a terminal view of the link graph grown from an article.

The seed is an article title or a Wikipedia URL; a URL selects its language
edition. Logs go to --log-file because the view owns the terminal.`,
		Example: `  wikigraph explore "Graph theory"
  wikigraph explore https://de.wikipedia.org/wiki/Graphentheorie
  wikigraph explore Physics --log-file /tmp/wikigraph.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], opts)
		},
	}

	opts.source.register(cmd)
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, arg string, opts exploreOptions) error {
	logger, closeLog, err := fileLogger(opts.logFile, c.Logger.GetLevel())
	if err != nil {
		return err
	}
	defer closeLog()

	events := make(chan explore.Event, eventBuffer)
	onEvent := func(ev explore.Event) {
		select {
		case events <- ev:
		default:
		}
	}

	sess, _, err := c.newSession(ctx, arg, opts.source, logger, onEvent)
	if err != nil {
		return err
	}
	defer sess.Close()

	frames, unsubscribe := sess.loop.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(sess.loop.Run(gctx)) })
	g.Go(func() error { return c.watchLayout(gctx, sess.loop, logger) })
	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(newExploreModel(sess.loop, frames, events), tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}
