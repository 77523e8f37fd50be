package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// CIFollowWriter writes followed histories as NDJSON (one JSON object per line) for CI pipelines.
type CIFollowWriter struct{}

// CIFollowSummary is the first line of CI output, containing aggregate statistics.
type CIFollowSummary struct {
	Type          string `json:"type"`
	Path          string `json:"path"`
	TotalCommits  int    `json:"totalCommits"`
	TotalRenames  int    `json:"totalRenames"`
	TotalBugfixes int    `json:"totalBugfixes"`
	OldestPath    string `json:"oldestPath"`
}

// CIRenameEntry represents a rename or copy link in CI output.
type CIRenameEntry struct {
	Type    string `json:"type"`
	Kind    string `json:"kind"`
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
	Score   int    `json:"score"`
	SHA     string `json:"sha,omitempty"`
}

// CICommitEntry represents a single commit in CI output.
type CICommitEntry struct {
	Type   string `json:"type"`
	SHA    string `json:"sha"`
	Date   string `json:"date"`
	Path   string `json:"path"`
	Bugfix bool   `json:"bugfix"`
}

// Write outputs the followed history as NDJSON: summary, renames, then commits.
func (w *CIFollowWriter) Write(report *FollowReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	res := report.Result
	paths := res.Paths()
	summary := CIFollowSummary{
		Type:          "summary",
		Path:          res.StartPath,
		TotalCommits:  res.Len(),
		TotalRenames:  len(res.Renames),
		TotalBugfixes: totalBugfixes(report),
		OldestPath:    paths[len(paths)-1],
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, ev := range res.Renames {
		entry := CIRenameEntry{
			Type:    "rename",
			Kind:    ev.Kind.String(),
			OldPath: ev.OldPath,
			NewPath: ev.NewPath,
			Score:   ev.Score,
			SHA:     ev.CandidateSHA,
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}

	for _, row := range followRows(report, options.Top) {
		entry := CICommitEntry{
			Type:   "commit",
			SHA:    row.Commit.SHA,
			Date:   row.Commit.When.Format(time.RFC3339),
			Path:   row.Path,
			Bugfix: row.Bugfix,
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}

	return nil
}

// CIDiffWriter writes revision diffs as NDJSON.
type CIDiffWriter struct{}

// CIDiffSummary is the first line of diff CI output.
type CIDiffSummary struct {
	Type         string `json:"type"`
	BaseSHA      string `json:"baseSha"`
	HeadSHA      string `json:"headSha"`
	TotalEntries int    `json:"totalEntries"`
	RenameCount  int    `json:"renameCount"`
}

// Write outputs the summary line followed by one rename line per rename or
// copy, and one change line per other entry.
func (w *CIDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	entries := diffEntries(report)
	renames := 0
	for _, e := range entries {
		if e.IsRenameOrCopy() {
			renames++
		}
	}

	summary := CIDiffSummary{
		Type:         "summary",
		BaseSHA:      report.Diff.BaseSHA,
		HeadSHA:      report.Diff.HeadSHA,
		TotalEntries: len(entries),
		RenameCount:  renames,
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	for _, e := range entries {
		typ := "change"
		if e.IsRenameOrCopy() {
			typ = "rename"
		}
		entry := CIRenameEntry{
			Type:    typ,
			Kind:    e.Kind.String(),
			OldPath: e.OldPath,
			NewPath: e.NewPath,
			Score:   e.Score,
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}

	return nil
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
