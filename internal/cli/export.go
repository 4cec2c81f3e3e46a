package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wikigraph/pkg/explore"
	"github.com/matzehuels/wikigraph/pkg/store"
)

// Export defaults.
const (
	defaultExportDepth    = 1
	defaultExportMaxNodes = 500
	defaultExportTicks    = 300
)

type exportOpts struct {
	source   sourceFlags
	out      outputOpts
	depth    int // expansion rounds from the seed
	maxNodes int // stop dispatching once the graph holds this many articles
	ticks    int // layout steps after the last expansion
}

func (c *CLI) exportCommand() *cobra.Command {
	var formatsStr string
	opts := exportOpts{
		depth:    defaultExportDepth,
		maxNodes: defaultExportMaxNodes,
		ticks:    defaultExportTicks,
	}

	cmd := &cobra.Command{
		Use:   "export <title|url>",
		Short: "Expand an article non-interactively and write the laid-out graph",
		Long: `Grow the link graph breadth-first from an article, settle the layout and
write the result.

Each round expands every unexpanded article found in the previous round.
Failed fetches are kept in the output with their error.`,
		Example: `  wikigraph export "Graph theory" --depth 2 -f json,svg
  wikigraph export https://fr.wikipedia.org/wiki/Paris -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			if opts.depth < 0 || opts.maxNodes < 1 || opts.ticks < 0 {
				return fmt.Errorf("--depth and --ticks must be >= 0, --max-nodes >= 1")
			}
			opts.out.formats = formats
			return c.runExport(cmd.Context(), args[0], opts)
		},
	}

	opts.source.register(cmd)
	opts.out.register(cmd, &formatsStr, formatJSON)
	cmd.Flags().IntVar(&opts.depth, "depth", opts.depth, "expansion rounds from the seed")
	cmd.Flags().IntVar(&opts.maxNodes, "max-nodes", opts.maxNodes, "stop expanding once the graph holds this many articles")
	cmd.Flags().IntVar(&opts.ticks, "ticks", opts.ticks, "layout steps after expansion")
	return cmd
}

func (c *CLI) runExport(ctx context.Context, arg string, opts exportOpts) error {
	logger := c.Logger
	ctx = withLogger(ctx, logger)

	sess, _, err := c.newSession(ctx, arg, opts.source, logger, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, os.Stderr, "Expanding "+sess.engine.Store().Seed())
	spinner.Start()
	if err := expandBreadthFirst(ctx, sess.engine, opts.depth, opts.maxNodes, func(round int) {
		s := sess.engine.Store()
		spinner.SetMessage("Round %d: %d articles, %d fetching", round, s.NodeCount(), sess.engine.InFlight())
	}); err != nil {
		spinner.StopWithError("Expansion interrupted")
		return err
	}

	spinner.SetMessage("Settling layout")
	if err := settle(ctx, sess.engine, opts.ticks); err != nil {
		spinner.StopWithError("Layout interrupted")
		return err
	}
	spinner.Stop()

	g := sess.engine.Snapshot()
	failed := 0
	for _, n := range g.Nodes {
		if store.ParseState(n.State) == store.StateFetchFailed {
			failed++
		}
	}
	prog.done(fmt.Sprintf("expanded %d articles", len(g.Nodes)))

	paths, err := writeOutputs(ctx, g, basePath(opts.out.output, slug(g.Seed)), opts.out)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}
	printSuccess("Exported %s", g.Seed)
	printStats(len(g.Nodes), len(g.Edges), failed)
	for _, p := range paths {
		printFile(p)
	}
	for _, p := range paths {
		if strings.HasSuffix(p, "."+formatJSON) {
			printNextStep("Render it", fmt.Sprintf("%s render %s -f svg", appName, p))
			break
		}
	}
	return nil
}

// expandBreadthFirst expands the seed and then, for depth-1 more rounds,
// every unexpanded article discovered in the previous round. It stops
// dispatching once the store holds maxNodes articles. onRound is called
// whenever results were applied.
func expandBreadthFirst(ctx context.Context, e *explore.Engine, depth, maxNodes int, onRound func(round int)) error {
	s := e.Store()
	frontier := []string{s.Seed()}
	seen := map[string]bool{s.Seed(): true}
	logger := loggerFromContext(ctx)

	for round := 1; round <= depth && len(frontier) > 0; round++ {
		for _, id := range frontier {
			if s.NodeCount() >= maxNodes {
				logger.Debug("node limit reached", "limit", maxNodes)
				break
			}
			e.Expand(id)
		}
		for e.InFlight() > 0 {
			if err := e.Await(ctx); err != nil {
				return err
			}
			onRound(round)
		}

		var next []string
		for _, id := range frontier {
			for _, nb := range s.Neighbors(id) {
				if seen[nb] {
					continue
				}
				seen[nb] = true
				if n, ok := s.Node(nb); ok && n.State == store.StateUnexpanded {
					next = append(next, nb)
				}
			}
		}
		logger.Debug("round done", "round", round, "articles", s.NodeCount(), "next", len(next))
		frontier = next
	}
	return nil
}

// settle advances the layout by ticks steps.
func settle(ctx context.Context, e *explore.Engine, ticks int) error {
	for i := range ticks {
		if i%50 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		e.Tick()
	}
	return nil
}

// slug turns a title into a file name, e.g. "Graph theory" -> "graph_theory".
func slug(title string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case r == '-':
			return r
		}
		return '_'
	}, title)
	s = strings.Trim(s, "_")
	if s == "" {
		return "graph"
	}
	return s
}
