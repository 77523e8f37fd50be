package output

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// ConsoleFollowWriter writes followed histories to the console.
type ConsoleFollowWriter struct{}

// Write outputs the followed history as a table, followed by the renames
// and per-path segments.
func (w *ConsoleFollowWriter) Write(report *FollowReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	res := report.Result
	header := color.New(color.FgGreen)
	header.Fprintf(out, "History of %s\n", res.StartPath)
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	if report.Branch != "" {
		fmt.Fprintf(out, "Branch: %s\n", report.Branch)
	}
	fmt.Fprintf(out, "Commits: %d, Renames: %d, Bugfixes: %d, Rounds: %d\n\n",
		res.Len(), len(res.Renames), totalBugfixes(report), res.Rounds)

	if res.Len() == 0 {
		fmt.Fprintln(out, "No commits found for this path.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSHA\tDate\tAge\tAuthor\tPath\tMessage")
	for i, row := range followRows(report, options.Top) {
		msg := truncateMessage(row.Commit.Message, 50)
		if row.Bugfix {
			msg = color.RedString(msg)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			row.Commit.ShortSHA(),
			row.Commit.When.Format(reportDateLayout),
			humanize.Time(row.Commit.When),
			row.Commit.Author.Name,
			row.Path,
			msg,
		)
	}
	tw.Flush()

	if len(res.Renames) > 0 {
		fmt.Fprintln(out)
		header.Fprintln(out, "Renames")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Kind\tFrom\tTo\tScore\tCommit")
		for _, ev := range res.Renames {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%s\n",
				ev.Kind, ev.OldPath, ev.NewPath, ev.Score, shortSHA(ev.CandidateSHA))
		}
		tw.Flush()
	}

	if report.Lineage != nil && len(report.Lineage.Segments) > 1 {
		fmt.Fprintln(out)
		header.Fprintln(out, "Paths")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Path\tCommits\tBugfixes\tContributors\tBurst\tFirst\tLast")
		for _, s := range report.Lineage.Segments {
			if s.CommitCount == 0 {
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%s\t%s\n",
				s.Path, s.CommitCount, s.BugfixCount, s.ContributorCount(), s.BurstScore,
				s.FirstSeenAt.Format(reportDateLayout), s.LastSeenAt.Format(reportDateLayout))
		}
		tw.Flush()
	}

	return nil
}

// ConsoleDiffWriter writes revision diffs to the console.
type ConsoleDiffWriter struct{}

// Write outputs the diff entries with their change kind and similarity.
func (w *ConsoleDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	d := report.Diff
	color.New(color.FgGreen).Fprintf(out, "Diff %s..%s\n", d.Base, d.Head)
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Comparing %s..%s\n\n", shortSHA(d.BaseSHA), shortSHA(d.HeadSHA))

	entries := diffEntries(report)
	if len(entries) == 0 {
		fmt.Fprintln(out, "No changes found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Kind\tPath\tScore")
	for _, e := range entries {
		score := ""
		if e.IsRenameOrCopy() {
			score = fmt.Sprintf("%d%%", e.Score)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", kindColor(e.Kind.String())(e.Kind.String()), entryPaths(e), score)
	}
	tw.Flush()

	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func kindColor(kind string) func(string, ...interface{}) string {
	switch kind {
	case "deleted":
		return color.RedString
	case "renamed", "copied":
		return color.YellowString
	default:
		return color.GreenString
	}
}
