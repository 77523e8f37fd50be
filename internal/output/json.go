package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// JSONFollowWriter writes followed histories as JSON.
type JSONFollowWriter struct{}

// JSONFollowReport is the JSON output structure for a followed history.
type JSONFollowReport struct {
	RepoPath      string              `json:"repo"`
	Branch        string              `json:"branch,omitempty"`
	Path          string              `json:"path"`
	GeneratedAt   string              `json:"generatedAt"`
	TotalCommits  int                 `json:"totalCommits"`
	TotalRenames  int                 `json:"totalRenames"`
	TotalBugfixes int                 `json:"totalBugfixes"`
	Rounds        int                 `json:"rounds"`
	Commits       []JSONFollowCommit  `json:"commits"`
	Renames       []JSONRenameEvent   `json:"renames"`
	Segments      []JSONSegmentMetric `json:"segments"`
}

// JSONFollowCommit is one commit of the followed history.
type JSONFollowCommit struct {
	SHA     string   `json:"sha"`
	Parents []string `json:"parents"`
	Date    string   `json:"date"`
	Author  string   `json:"author"`
	Email   string   `json:"email"`
	Message string   `json:"message"`
	Path    string   `json:"path"`
	Bugfix  bool     `json:"bugfix"`
}

// JSONRenameEvent is one predecessor link.
type JSONRenameEvent struct {
	Kind         string `json:"kind"`
	OldPath      string `json:"oldPath"`
	NewPath      string `json:"newPath"`
	Score        int    `json:"score"`
	AnchorSHA    string `json:"anchorSha"`
	CandidateSHA string `json:"candidateSha"`
}

// JSONSegmentMetric holds the metrics of one path in JSON format.
type JSONSegmentMetric struct {
	Path           string  `json:"path"`
	CommitCount    int     `json:"commitCount"`
	BugfixCount    int     `json:"bugfixCount"`
	Contributors   int     `json:"contributors"`
	OwnershipRatio float64 `json:"ownershipRatio"`
	Entropy        float64 `json:"ownershipEntropy"`
	BurstScore     float64 `json:"burstScore"`
	FirstSeen      string  `json:"firstSeen,omitempty"`
	LastSeen       string  `json:"lastSeen,omitempty"`
	RenamedTo      string  `json:"renamedTo,omitempty"`
}

// Write outputs the followed history as JSON.
func (w *JSONFollowWriter) Write(report *FollowReport, options OutputOptions) error {
	res := report.Result

	rows := followRows(report, options.Top)
	commits := make([]JSONFollowCommit, len(rows))
	for i, row := range rows {
		parents := row.Commit.Parents
		if parents == nil {
			parents = []string{}
		}
		commits[i] = JSONFollowCommit{
			SHA:     row.Commit.SHA,
			Parents: parents,
			Date:    row.Commit.When.Format(time.RFC3339),
			Author:  row.Commit.Author.Name,
			Email:   row.Commit.Author.Email,
			Message: row.Commit.Message,
			Path:    row.Path,
			Bugfix:  row.Bugfix,
		}
	}

	renames := make([]JSONRenameEvent, len(res.Renames))
	for i, ev := range res.Renames {
		renames[i] = JSONRenameEvent{
			Kind:         ev.Kind.String(),
			OldPath:      ev.OldPath,
			NewPath:      ev.NewPath,
			Score:        ev.Score,
			AnchorSHA:    ev.AnchorSHA,
			CandidateSHA: ev.CandidateSHA,
		}
	}

	segments := []JSONSegmentMetric{}
	if report.Lineage != nil {
		for _, s := range report.Lineage.Segments {
			seg := JSONSegmentMetric{
				Path:           s.Path,
				CommitCount:    s.CommitCount,
				BugfixCount:    s.BugfixCount,
				Contributors:   s.ContributorCount(),
				OwnershipRatio: s.OwnershipRatio(),
				Entropy:        s.OwnershipEntropy(),
				BurstScore:     s.BurstScore,
				RenamedTo:      s.RenamedTo,
			}
			if s.CommitCount > 0 {
				seg.FirstSeen = s.FirstSeenAt.Format(time.RFC3339)
				seg.LastSeen = s.LastSeenAt.Format(time.RFC3339)
			}
			segments = append(segments, seg)
		}
	}

	jsonReport := JSONFollowReport{
		RepoPath:      report.RepoPath,
		Branch:        report.Branch,
		Path:          res.StartPath,
		GeneratedAt:   report.GeneratedAt.Format(time.RFC3339),
		TotalCommits:  res.Len(),
		TotalRenames:  len(res.Renames),
		TotalBugfixes: totalBugfixes(report),
		Rounds:        res.Rounds,
		Commits:       commits,
		Renames:       renames,
		Segments:      segments,
	}

	return writeJSON(jsonReport, options.OutputPath)
}

// JSONDiffWriter writes revision diffs as JSON.
type JSONDiffWriter struct{}

// JSONDiffReport is the JSON output structure for a revision diff.
type JSONDiffReport struct {
	RepoPath     string          `json:"repo"`
	Base         string          `json:"base"`
	Head         string          `json:"head"`
	BaseSHA      string          `json:"baseSha"`
	HeadSHA      string          `json:"headSha"`
	GeneratedAt  string          `json:"generatedAt"`
	TotalEntries int             `json:"totalEntries"`
	Entries      []JSONDiffEntry `json:"entries"`
}

// JSONDiffEntry is one changed file.
type JSONDiffEntry struct {
	Kind    string `json:"kind"`
	OldPath string `json:"oldPath,omitempty"`
	NewPath string `json:"newPath,omitempty"`
	Score   int    `json:"score,omitempty"`
}

// Write outputs the revision diff as JSON.
func (w *JSONDiffWriter) Write(report *DiffReport, options OutputOptions) error {
	entries := diffEntries(report)
	items := make([]JSONDiffEntry, len(entries))
	for i, e := range entries {
		items[i] = JSONDiffEntry{
			Kind:    e.Kind.String(),
			OldPath: e.OldPath,
			NewPath: e.NewPath,
			Score:   e.Score,
		}
	}

	d := report.Diff
	jsonReport := JSONDiffReport{
		RepoPath:     report.RepoPath,
		Base:         d.Base,
		Head:         d.Head,
		BaseSHA:      d.BaseSHA,
		HeadSHA:      d.HeadSHA,
		GeneratedAt:  report.GeneratedAt.Format(time.RFC3339),
		TotalEntries: len(items),
		Entries:      items,
	}

	return writeJSON(jsonReport, options.OutputPath)
}

func writeJSON(data interface{}, outputPath string) error {
	encoder := json.NewEncoder(os.Stdout)
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		encoder = json.NewEncoder(file)
	}

	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
