package output

import (
	"time"

	"github.com/masmgr/logfollow-go/internal/aggregation"
	"github.com/masmgr/logfollow-go/internal/bugfix"
	"github.com/masmgr/logfollow-go/internal/follow"
	"github.com/masmgr/logfollow-go/internal/git"
)

// Compile-time interface conformance checks.
var (
	_ FollowReportWriter = (*ConsoleFollowWriter)(nil)
	_ FollowReportWriter = (*JSONFollowWriter)(nil)
	_ FollowReportWriter = (*CSVFollowWriter)(nil)
	_ FollowReportWriter = (*MarkdownFollowWriter)(nil)
	_ FollowReportWriter = (*CIFollowWriter)(nil)

	_ DiffReportWriter = (*ConsoleDiffWriter)(nil)
	_ DiffReportWriter = (*JSONDiffWriter)(nil)
	_ DiffReportWriter = (*CSVDiffWriter)(nil)
	_ DiffReportWriter = (*MarkdownDiffWriter)(nil)
	_ DiffReportWriter = (*CIDiffWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int // limits commit rows, 0 for all
	OutputPath string
}

// FollowReport holds a followed file history ready for rendering.
type FollowReport struct {
	RepoPath    string
	Branch      string
	GeneratedAt time.Time
	Result      *follow.Result
	Bugfixes    *bugfix.BugfixResult
	Lineage     *aggregation.Lineage
}

// NewFollowReport assembles a report and aggregates its lineage.
func NewFollowReport(repoPath, branch string, res *follow.Result, bugfixes *bugfix.BugfixResult) *FollowReport {
	if res == nil {
		res = &follow.Result{}
	}
	return &FollowReport{
		RepoPath:    repoPath,
		Branch:      branch,
		GeneratedAt: time.Now(),
		Result:      res,
		Bugfixes:    bugfixes,
		Lineage:     aggregation.NewLineageAggregator(bugfixes.IsBugfixCommit).Process(res),
	}
}

// DiffReport holds the tree comparison of two revisions.
type DiffReport struct {
	RepoPath    string
	GeneratedAt time.Time
	Diff        *git.DiffResult
	// RenamesOnly drops additions, deletions and modifications.
	RenamesOnly bool
}

// FollowReportWriter writes followed history reports.
type FollowReportWriter interface {
	Write(report *FollowReport, options OutputOptions) error
}

// DiffReportWriter writes revision diff reports.
type DiffReportWriter interface {
	Write(report *DiffReport, options OutputOptions) error
}

// NewFollowReportWriter creates a report writer for the specified format.
func NewFollowReportWriter(format OutputFormat) FollowReportWriter {
	switch format {
	case FormatJSON:
		return &JSONFollowWriter{}
	case FormatCSV:
		return &CSVFollowWriter{}
	case FormatMarkdown:
		return &MarkdownFollowWriter{}
	case FormatCI:
		return &CIFollowWriter{}
	default:
		return &ConsoleFollowWriter{}
	}
}

// NewDiffReportWriter creates a diff report writer for the specified format.
func NewDiffReportWriter(format OutputFormat) DiffReportWriter {
	switch format {
	case FormatJSON:
		return &JSONDiffWriter{}
	case FormatCSV:
		return &CSVDiffWriter{}
	case FormatMarkdown:
		return &MarkdownDiffWriter{}
	case FormatCI:
		return &CIDiffWriter{}
	default:
		return &ConsoleDiffWriter{}
	}
}
