package output

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/masmgr/logfollow-go/internal/follow"
	"github.com/masmgr/logfollow-go/internal/git"
)

const (
	reportDateLayout     = "2006-01-02"
	reportDateTimeLayout = "2006-01-02T15:04:05"
)

func limitTop[T any](items []T, top int) []T {
	if top <= 0 || top >= len(items) {
		return items
	}
	return items[:top]
}

func openOutputWriter(outputPath string) (io.Writer, *os.File, error) {
	if outputPath == "" {
		return os.Stdout, nil, nil
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return file, file, nil
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	out, file, err := openOutputWriter(outputPath)
	if err != nil {
		return nil, nil, err
	}
	return csv.NewWriter(out), file, nil
}

// commitRow is one rendered line of a followed history.
type commitRow struct {
	follow.FollowedCommit
	Bugfix bool
}

func followRows(report *FollowReport, top int) []commitRow {
	commits := limitTop(report.Result.Commits, top)
	rows := make([]commitRow, len(commits))
	for i, fc := range commits {
		rows[i] = commitRow{FollowedCommit: fc, Bugfix: report.Bugfixes.IsBugfixCommit(fc.Commit.SHA)}
	}
	return rows
}

func totalBugfixes(report *FollowReport) int {
	if report.Lineage == nil {
		return 0
	}
	return report.Lineage.TotalBugfix
}

func diffEntries(report *DiffReport) []git.DiffEntry {
	if report.Diff == nil {
		return nil
	}
	if report.RenamesOnly {
		return report.Diff.RenamesAndCopies()
	}
	return report.Diff.Entries
}

func truncateMessage(msg string, maxLen int) string {
	if len(msg) <= maxLen {
		return msg
	}
	return msg[:maxLen-3] + "..."
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// entryPaths renders "old -> new" for renames and copies, else the single path.
func entryPaths(e git.DiffEntry) string {
	if e.IsRenameOrCopy() {
		return e.OldPath + " -> " + e.NewPath
	}
	return e.Path()
}
