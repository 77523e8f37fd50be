package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/logfollow-go/internal/output"
)

func writeFollowReport(c *cli.Context, ctx *CommandContext, report *output.FollowReport) error {
	opts := ctx.OutputOptions(c)
	writer := output.NewFollowReportWriter(opts.Format)
	return writer.Write(report, opts)
}

func writeDiffReport(c *cli.Context, ctx *CommandContext, report *output.DiffReport) error {
	opts := ctx.OutputOptions(c)
	writer := output.NewDiffReportWriter(opts.Format)
	return writer.Write(report, opts)
}
