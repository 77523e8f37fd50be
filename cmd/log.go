package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/logfollow-go/internal/burst"
	"github.com/masmgr/logfollow-go/internal/follow"
	"github.com/masmgr/logfollow-go/internal/output"
)

// logFlags are the flags of the log command, also accepted at the top level.
func logFlags() []cli.Flag {
	return append(commonFlags(),
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Revision to start from (default: HEAD)",
		},
		&cli.StringFlag{
			Name:  "match",
			Usage: "How diff paths are compared to the tracked path (exact, contains)",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "Seconds allowed for each rename search, 0 for no limit",
		},
		&cli.IntFlag{
			Name:  "max-rounds",
			Usage: "Stop after this many renames, 0 for no limit",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Only follow renames from paths matching these globs (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Do not follow renames from paths matching these globs (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "bug-patterns",
			Usage: "Regex patterns marking bugfix commits (can be specified multiple times)",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of commits to show, 0 for all",
		},
	)
}

// LogCmd returns the log command.
func LogCmd() *cli.Command {
	return &cli.Command{
		Name:      "log",
		Aliases:   []string{"l"},
		Usage:     "List the commits of a file, following renames and copies",
		ArgsUsage: "<path>",
		Flags:     logFlags(),
		Action:    logAction,
	}
}

func logAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one path argument, got %d", c.NArg())
	}

	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	walker, err := newWalker(c, ctx)
	if err != nil {
		return err
	}

	res, err := walker.Collect(c.Context, c.Args().First())
	switch {
	case errors.Is(err, follow.ErrTooManyRounds):
		color.New(color.FgYellow).Fprintf(c.App.ErrWriter,
			"Warning: stopped after %d rounds, history may be incomplete\n", res.Rounds)
	case err != nil:
		return fmt.Errorf("failed to follow %s: %w", c.Args().First(), err)
	}

	bugfixes, err := detectBugfixes(res, resolveBugPatterns(c, ctx.Config))
	if err != nil {
		return err
	}

	report := output.NewFollowReport(ctx.RepoPath, ctx.Branch, res, bugfixes)
	burst.NewCalculator(ctx.Config.Burst.WindowDays).Compute(report.Lineage.Segments)
	return writeFollowReport(c, ctx, report)
}

func newWalker(c *cli.Context, ctx *CommandContext) (*follow.Walker, error) {
	cfg := ctx.Config
	match, err := follow.ParseMatchMode(cfg.Follow.Match)
	if err != nil {
		return nil, err
	}

	return follow.NewWalker(ctx.Reader, follow.Options{
		Match:          match,
		Include:        cfg.Filters.Include,
		Exclude:        cfg.Filters.Exclude,
		MaxRounds:      cfg.Follow.MaxRounds,
		ResolveTimeout: cfg.Follow.ResolveTimeout(),
		OnRound: func(round int, path string, added int) {
			verbosef(c, "round %d: %s (+%d commits)", round, path, added)
		},
		OnRename: func(ev follow.RenameEvent) {
			verbosef(c, "Found: %s %s -> %s (%d%%) at %s", ev.Kind, ev.OldPath, ev.NewPath, ev.Score, shortSHA(ev.CandidateSHA))
		},
	})
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
