package aggregation

import (
	"time"

	"github.com/masmgr/logfollow-go/internal/entropy"
	"github.com/masmgr/logfollow-go/internal/follow"
	"github.com/masmgr/logfollow-go/internal/git"
)

// SegmentMetrics holds aggregated metrics for one path of a followed history.
// A segment covers the commits that were collected under that path.
type SegmentMetrics struct {
	Path                    string
	CommitCount             int
	BugfixCount             int
	FirstSeenAt             time.Time
	LastSeenAt              time.Time
	Contributors            map[string]struct{}
	ContributorCommitCounts map[string]int
	CommitTimes             []time.Time
	BurstScore              float64

	// RenamedTo is the newer path this segment was renamed or copied into.
	// Empty for the starting path.
	RenamedTo  string
	RenameKind git.ChangeKind
}

// NewSegmentMetrics creates a new SegmentMetrics instance.
func NewSegmentMetrics(path string) *SegmentMetrics {
	return &SegmentMetrics{
		Path:                    path,
		Contributors:            make(map[string]struct{}),
		ContributorCommitCounts: make(map[string]int),
		CommitTimes:             make([]time.Time, 0),
	}
}

// ContributorCount returns number of unique contributors.
func (s *SegmentMetrics) ContributorCount() int {
	return len(s.Contributors)
}

// OwnershipRatio returns proportion of commits by top contributor.
// A high ratio means concentrated ownership (one person owns the file).
// A low ratio means dispersed ownership (many people contribute).
func (s *SegmentMetrics) OwnershipRatio() float64 {
	if s.CommitCount == 0 || len(s.ContributorCommitCounts) == 0 {
		return 1.0
	}

	maxCommits := 0
	for _, count := range s.ContributorCommitCounts {
		if count > maxCommits {
			maxCommits = count
		}
	}

	return float64(maxCommits) / float64(s.CommitCount)
}

// Span returns the time between the first and last commit of the segment.
func (s *SegmentMetrics) Span() time.Duration {
	if s.CommitCount == 0 {
		return 0
	}
	return s.LastSeenAt.Sub(s.FirstSeenAt)
}

// AddCommit adds a commit's contribution to this segment's metrics.
func (s *SegmentMetrics) AddCommit(commit git.CommitInfo, bugfix bool) {
	s.CommitCount++
	if bugfix {
		s.BugfixCount++
	}

	if s.LastSeenAt.IsZero() || commit.When.After(s.LastSeenAt) {
		s.LastSeenAt = commit.When
	}
	if s.FirstSeenAt.IsZero() || commit.When.Before(s.FirstSeenAt) {
		s.FirstSeenAt = commit.When
	}

	key := commit.Author.ContributorKey()
	s.Contributors[key] = struct{}{}
	s.ContributorCommitCounts[key]++

	s.CommitTimes = append(s.CommitTimes, commit.When)
}

// OwnershipEntropy returns how evenly commits are spread over contributors,
// from 0 (one owner) to 1 (perfectly even).
func (s *SegmentMetrics) OwnershipEntropy() float64 {
	return entropy.NewCalculator().CalculateDistributionEntropy(s.ContributorCommitCounts)
}

// Lineage is the aggregated view of a whole followed history.
type Lineage struct {
	// Segments are ordered from the starting path back to the oldest
	// predecessor.
	Segments     []*SegmentMetrics
	Contributors map[string]struct{}
	TotalCommits int
	TotalBugfix  int
}

// ContributorCount returns the number of distinct contributors across all
// segments.
func (l *Lineage) ContributorCount() int {
	return len(l.Contributors)
}

// Segment returns the metrics for path, or nil.
func (l *Lineage) Segment(path string) *SegmentMetrics {
	for _, s := range l.Segments {
		if s.Path == path {
			return s
		}
	}
	return nil
}

// LineageAggregator folds a follow.Result into per-path segments.
type LineageAggregator struct {
	isBugfix func(sha string) bool
}

// NewLineageAggregator creates a new aggregator. isBugfix may be nil.
func NewLineageAggregator(isBugfix func(sha string) bool) *LineageAggregator {
	if isBugfix == nil {
		isBugfix = func(string) bool { return false }
	}
	return &LineageAggregator{isBugfix: isBugfix}
}

// Process aggregates res. A path that was reached by more than one rename
// keeps a single segment.
func (a *LineageAggregator) Process(res *follow.Result) *Lineage {
	lineage := &Lineage{Contributors: make(map[string]struct{})}
	if res == nil {
		return lineage
	}

	byPath := make(map[string]*SegmentMetrics)
	segment := func(path string) *SegmentMetrics {
		if s, ok := byPath[path]; ok {
			return s
		}
		s := NewSegmentMetrics(path)
		byPath[path] = s
		lineage.Segments = append(lineage.Segments, s)
		return s
	}

	segment(res.StartPath)
	for _, ev := range res.Renames {
		s := segment(ev.OldPath)
		if s.RenamedTo == "" {
			s.RenamedTo = ev.NewPath
			s.RenameKind = ev.Kind
		}
	}

	for _, fc := range res.Commits {
		bugfix := a.isBugfix(fc.Commit.SHA)
		segment(fc.Path).AddCommit(fc.Commit, bugfix)

		lineage.TotalCommits++
		if bugfix {
			lineage.TotalBugfix++
		}
		lineage.Contributors[fc.Commit.Author.ContributorKey()] = struct{}{}
	}

	return lineage
}
