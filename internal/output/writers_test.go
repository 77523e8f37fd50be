package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTo(t *testing.T, name string, write func(OutputOptions) error) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := write(OutputOptions{OutputPath: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return string(data)
}

func TestJSONFollowWriter_Write(t *testing.T) {
	report := sampleFollowReport(t)
	data := writeTo(t, "follow.json", func(o OutputOptions) error { return (&JSONFollowWriter{}).Write(report, o) })

	var got JSONFollowReport
	if err := json.Unmarshal([]byte(data), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Path != "pkg/new.go" || got.Branch != "main" {
		t.Errorf("path/branch = %q/%q", got.Path, got.Branch)
	}
	if got.TotalCommits != 3 || len(got.Commits) != 3 {
		t.Errorf("commits = %d/%d, expected 3", got.TotalCommits, len(got.Commits))
	}
	if got.TotalBugfixes != 1 || !got.Commits[0].Bugfix {
		t.Errorf("bugfixes = %d, first commit bugfix = %v", got.TotalBugfixes, got.Commits[0].Bugfix)
	}
	if got.Commits[2].Path != "old.go" || len(got.Commits[2].Parents) != 0 {
		t.Errorf("root commit = %+v", got.Commits[2])
	}
	if len(got.Renames) != 1 || got.Renames[0].Kind != "renamed" || got.Renames[0].Score != 92 {
		t.Errorf("renames = %+v", got.Renames)
	}
	if len(got.Segments) != 2 || got.Segments[1].RenamedTo != "pkg/new.go" {
		t.Errorf("segments = %+v", got.Segments)
	}
}

func TestJSONFollowWriter_Top(t *testing.T) {
	report := sampleFollowReport(t)
	path := filepath.Join(t.TempDir(), "top.json")
	if err := (&JSONFollowWriter{}).Write(report, OutputOptions{OutputPath: path, Top: 1}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, _ := os.ReadFile(path)

	var got JSONFollowReport
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Commits) != 1 || got.TotalCommits != 3 {
		t.Errorf("Top=1: %d rows of %d total", len(got.Commits), got.TotalCommits)
	}
}

func TestJSONDiffWriter_Write(t *testing.T) {
	report := sampleDiffReport()
	data := writeTo(t, "diff.json", func(o OutputOptions) error { return (&JSONDiffWriter{}).Write(report, o) })

	var got JSONDiffReport
	if err := json.Unmarshal([]byte(data), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.TotalEntries != 3 || got.Entries[1].Kind != "renamed" || got.Entries[1].NewPath != "cmd/main.go" {
		t.Errorf("entries = %+v", got.Entries)
	}
	if got.BaseSHA != "aaaaaaaaaa" || got.HeadSHA != "bbbbbbbbbb" {
		t.Errorf("shas = %s..%s", got.BaseSHA, got.HeadSHA)
	}
}

func TestCSVFollowWriter_Write(t *testing.T) {
	report := sampleFollowReport(t)
	data := writeTo(t, "follow.csv", func(o OutputOptions) error { return (&CSVFollowWriter{}).Write(report, o) })

	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records = %d, expected header + 3", len(records))
	}
	if records[0][0] != "SHA" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][5] != "true" || records[2][5] != "false" {
		t.Errorf("bugfix column = %q, %q", records[1][5], records[2][5])
	}
	if records[3][6] != "initial | import" {
		t.Errorf("message = %q", records[3][6])
	}
}

func TestCSVDiffWriter_Write(t *testing.T) {
	report := sampleDiffReport()
	report.RenamesOnly = true
	data := writeTo(t, "diff.csv", func(o OutputOptions) error { return (&CSVDiffWriter{}).Write(report, o) })

	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, expected header + 2", len(records))
	}
	if records[2][0] != "copied" || records[2][3] != "75" {
		t.Errorf("copy row = %v", records[2])
	}
}

func TestMarkdownFollowWriter_Write(t *testing.T) {
	report := sampleFollowReport(t)
	data := writeTo(t, "follow.md", func(o OutputOptions) error { return (&MarkdownFollowWriter{}).Write(report, o) })

	for _, want := range []string{
		"# History of `pkg/new.go`",
		"## Renames",
		"| renamed | `old.go` | `pkg/new.go` | 92% | c1c1c1c |",
		"initial \\| import",
	} {
		if !strings.Contains(data, want) {
			t.Errorf("markdown output missing %q:\n%s", want, data)
		}
	}
}

func TestMarkdownDiffWriter_Write(t *testing.T) {
	data := writeTo(t, "diff.md", func(o OutputOptions) error { return (&MarkdownDiffWriter{}).Write(sampleDiffReport(), o) })

	if !strings.Contains(data, "| renamed | `main.go -> cmd/main.go` | 100% |") {
		t.Errorf("markdown output missing rename row:\n%s", data)
	}
	if !strings.Contains(data, "**Changed Files:** 3") {
		t.Errorf("markdown output missing count:\n%s", data)
	}
}

func TestConsoleFollowWriter_Write(t *testing.T) {
	report := sampleFollowReport(t)
	data := writeTo(t, "follow.txt", func(o OutputOptions) error { return (&ConsoleFollowWriter{}).Write(report, o) })

	for _, want := range []string{"History of pkg/new.go", "Commits: 3, Renames: 1, Bugfixes: 1", "old.go", "92%"} {
		if !strings.Contains(data, want) {
			t.Errorf("console output missing %q:\n%s", want, data)
		}
	}
}

func TestConsoleFollowWriter_Empty(t *testing.T) {
	report := NewFollowReport("/repo", "", nil, nil)
	data := writeTo(t, "empty.txt", func(o OutputOptions) error { return (&ConsoleFollowWriter{}).Write(report, o) })

	if !strings.Contains(data, "No commits found") {
		t.Errorf("console output = %q", data)
	}
}

func TestConsoleDiffWriter_Write(t *testing.T) {
	data := writeTo(t, "diff.txt", func(o OutputOptions) error { return (&ConsoleDiffWriter{}).Write(sampleDiffReport(), o) })

	if !strings.Contains(data, "main.go -> cmd/main.go") || !strings.Contains(data, "aaaaaaa..bbbbbbb") {
		t.Errorf("console output = %q", data)
	}
}

func TestCIFollowWriter_Write(t *testing.T) {
	report := sampleFollowReport(t)
	data := writeTo(t, "follow.ndjson", func(o OutputOptions) error { return (&CIFollowWriter{}).Write(report, o) })

	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 5 { // 1 summary + 1 rename + 3 commits
		t.Fatalf("expected 5 lines, got %d: %s", len(lines), data)
	}

	var summary CIFollowSummary
	if err := json.Unmarshal([]byte(lines[0]), &summary); err != nil {
		t.Fatalf("Failed to parse summary: %v", err)
	}
	if summary.Type != "summary" || summary.OldestPath != "old.go" || summary.TotalBugfixes != 1 {
		t.Errorf("summary = %+v", summary)
	}

	var rename CIRenameEntry
	if err := json.Unmarshal([]byte(lines[1]), &rename); err != nil {
		t.Fatalf("Failed to parse rename: %v", err)
	}
	if rename.Type != "rename" || rename.OldPath != "old.go" {
		t.Errorf("rename = %+v", rename)
	}

	var commit CICommitEntry
	if err := json.Unmarshal([]byte(lines[4]), &commit); err != nil {
		t.Fatalf("Failed to parse commit: %v", err)
	}
	if commit.Type != "commit" || commit.Path != "old.go" {
		t.Errorf("commit = %+v", commit)
	}
}

func TestCIDiffWriter_Write(t *testing.T) {
	data := writeTo(t, "diff.ndjson", func(o OutputOptions) error { return (&CIDiffWriter{}).Write(sampleDiffReport(), o) })

	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %s", len(lines), data)
	}

	var summary CIDiffSummary
	if err := json.Unmarshal([]byte(lines[0]), &summary); err != nil {
		t.Fatalf("Failed to parse summary: %v", err)
	}
	if summary.TotalEntries != 3 || summary.RenameCount != 2 {
		t.Errorf("summary = %+v", summary)
	}

	var first CIRenameEntry
	if err := json.Unmarshal([]byte(lines[1]), &first); err != nil {
		t.Fatalf("Failed to parse entry: %v", err)
	}
	if first.Type != "change" || first.Kind != "modified" {
		t.Errorf("first entry = %+v", first)
	}
}

func TestWriter_BadOutputPath(t *testing.T) {
	opts := OutputOptions{OutputPath: filepath.Join(t.TempDir(), "missing", "out.txt")}
	report := sampleFollowReport(t)
	for _, format := range []OutputFormat{FormatConsole, FormatJSON, FormatCSV, FormatMarkdown, FormatCI} {
		if err := NewFollowReportWriter(format).Write(report, opts); err == nil {
			t.Errorf("%s: expected error for unwritable path", format)
		}
	}
}
