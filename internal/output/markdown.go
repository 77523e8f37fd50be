package output

import (
	"fmt"
)

// MarkdownFollowWriter writes followed histories as Markdown.
type MarkdownFollowWriter struct{}

// Write outputs the followed history as Markdown.
func (w *MarkdownFollowWriter) Write(report *FollowReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	res := report.Result

	// Header
	fmt.Fprintf(out, "# History of `%s`\n\n", res.StartPath)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	if report.Branch != "" {
		fmt.Fprintf(out, "**Branch:** %s\n\n", report.Branch)
	}
	fmt.Fprintf(out, "**Commits:** %d | **Renames:** %d | **Bugfixes:** %d\n\n",
		res.Len(), len(res.Renames), totalBugfixes(report))

	if len(res.Renames) > 0 {
		fmt.Fprintln(out, "## Renames")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "| Kind | From | To | Score | Commit |")
		fmt.Fprintln(out, "|------|------|----|-------|--------|")
		for _, ev := range res.Renames {
			fmt.Fprintf(out, "| %s | `%s` | `%s` | %d%% | %s |\n",
				ev.Kind, ev.OldPath, ev.NewPath, ev.Score, shortSHA(ev.CandidateSHA))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "## Commits")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| # | SHA | Date | Author | Path | Bugfix | Message |")
	fmt.Fprintln(out, "|---|-----|------|--------|------|--------|---------|")
	for i, row := range followRows(report, options.Top) {
		fmt.Fprintf(out, "| %d | `%s` | %s | %s | `%s` | %s | %s |\n",
			i+1,
			row.Commit.ShortSHA(),
			row.Commit.When.Format(reportDateLayout),
			escapeMarkdown(row.Commit.Author.Name),
			row.Path,
			yesNo(row.Bugfix),
			escapeMarkdown(truncateMessage(row.Commit.Message, 72)),
		)
	}

	return nil
}

// MarkdownDiffWriter writes revision diffs as Markdown.
type MarkdownDiffWriter struct{}

// Write outputs the revision diff as Markdown.
func (w *MarkdownDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	d := report.Diff
	entries := diffEntries(report)

	fmt.Fprintf(out, "# Diff `%s..%s`\n\n", d.Base, d.Head)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Compared:** `%s..%s`\n\n", shortSHA(d.BaseSHA), shortSHA(d.HeadSHA))
	fmt.Fprintf(out, "**Changed Files:** %d\n\n", len(entries))

	if len(entries) == 0 {
		return nil
	}

	fmt.Fprintln(out, "| Kind | Path | Score |")
	fmt.Fprintln(out, "|------|------|-------|")
	for _, e := range entries {
		score := ""
		if e.IsRenameOrCopy() {
			score = fmt.Sprintf("%d%%", e.Score)
		}
		fmt.Fprintf(out, "| %s | `%s` | %s |\n", e.Kind, entryPaths(e), score)
	}

	return nil
}
