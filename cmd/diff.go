package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/logfollow-go/internal/output"
)

// DiffCmd returns the diff command.
func DiffCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.BoolFlag{
			Name:  "renames-only",
			Usage: "Only list renames and copies",
		},
	)

	return &cli.Command{
		Name:      "diff",
		Aliases:   []string{"d"},
		Usage:     "Show renames and copies between two revisions (base..head or base...head)",
		ArgsUsage: "<base..head>",
		Flags:     flags,
		Action:    diffAction,
	}
}

func diffAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a revision range like main..HEAD")
	}

	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	diff, err := ctx.Reader.DiffRevisions(c.Context, c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to diff %s: %w", c.Args().First(), err)
	}
	verbosef(c, "compared %s..%s: %d entries", shortSHA(diff.BaseSHA), shortSHA(diff.HeadSHA), len(diff.Entries))

	report := &output.DiffReport{
		RepoPath:    ctx.RepoPath,
		GeneratedAt: time.Now(),
		Diff:        diff,
		RenamesOnly: c.Bool("renames-only"),
	}
	return writeDiffReport(c, ctx, report)
}
