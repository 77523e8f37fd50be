package burst

import (
	"fmt"
	"math"
	"slices"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/masmgr/logfollow-go/internal/aggregation"
	"github.com/masmgr/logfollow-go/internal/git"
)

var rapidBase = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func genCommits(maxCommits int) *rapid.Generator[[]git.CommitInfo] {
	return rapid.Custom(func(t *rapid.T) []git.CommitInfo {
		n := rapid.IntRange(0, maxCommits).Draw(t, "n")
		commits := make([]git.CommitInfo, n)
		for i := range commits {
			hours := rapid.IntRange(0, 90*24).Draw(t, fmt.Sprintf("hours%d", i))
			author := rapid.SampledFrom([]string{"ann", "bob", "cy"}).Draw(t, fmt.Sprintf("author%d", i))
			commits[i] = git.CommitInfo{
				SHA:    fmt.Sprintf("c%03d", i),
				When:   rapidBase.Add(time.Duration(hours) * time.Hour),
				Author: git.AuthorInfo{Name: author, Email: author + "@example.com"},
			}
		}
		return commits
	})
}

func segmentOf(path string, commits []git.CommitInfo) *aggregation.SegmentMetrics {
	s := aggregation.NewSegmentMetrics(path)
	for _, c := range commits {
		s.AddCommit(c, false)
	}
	return s
}

// genLineage draws the segments of a followed file, newest path first.
func genLineage() *rapid.Generator[[]*aggregation.SegmentMetrics] {
	return rapid.Custom(func(t *rapid.T) []*aggregation.SegmentMetrics {
		n := rapid.IntRange(1, 4).Draw(t, "segments")
		segments := make([]*aggregation.SegmentMetrics, n)
		for i := range segments {
			segments[i] = segmentOf(fmt.Sprintf("path%d.go", i), genCommits(30).Draw(t, fmt.Sprintf("commits%d", i)))
		}
		return segments
	})
}

func TestRapidCompute_ScoreIsDensestShare(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		calc := NewCalculator(rapid.IntRange(1, 30).Draw(t, "windowDays"))
		segments := genLineage().Draw(t, "lineage")

		calc.Compute(segments)

		for _, s := range segments {
			if s.CommitCount == 0 {
				if s.BurstScore != 0 {
					t.Fatalf("%s: empty segment scored %f", s.Path, s.BurstScore)
				}
				continue
			}
			// The densest window holds between 1 and CommitCount commits.
			inWindow := s.BurstScore * float64(s.CommitCount)
			k := math.Round(inWindow)
			if math.Abs(inWindow-k) > 1e-9 || k < 1 || k > float64(s.CommitCount) {
				t.Fatalf("%s: score %f is not k/%d for 1 <= k <= %d", s.Path, s.BurstScore, s.CommitCount, s.CommitCount)
			}
		}
	})
}

func TestRapidCompute_SegmentsAreIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		calc := NewCalculator(rapid.IntRange(1, 30).Draw(t, "windowDays"))
		segments := genLineage().Draw(t, "lineage")

		calc.Compute(segments)

		for _, s := range segments {
			alone := segmentOf(s.Path, nil)
			alone.CommitTimes = slices.Clone(s.CommitTimes)
			alone.CommitCount = s.CommitCount
			calc.Compute([]*aggregation.SegmentMetrics{alone})
			if alone.BurstScore != s.BurstScore {
				t.Fatalf("%s: %f within lineage, %f alone", s.Path, s.BurstScore, alone.BurstScore)
			}
		}
	})
}

func TestRapidCompute_OnlySetsBurstScore(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		calc := NewCalculator(rapid.IntRange(1, 30).Draw(t, "windowDays"))
		segments := genLineage().Draw(t, "lineage")

		type snapshot struct {
			path    string
			commits int
			times   []time.Time
			first   time.Time
			last    time.Time
		}
		before := make([]snapshot, len(segments))
		for i, s := range segments {
			before[i] = snapshot{s.Path, s.CommitCount, slices.Clone(s.CommitTimes), s.FirstSeenAt, s.LastSeenAt}
		}

		calc.Compute(segments)

		for i, s := range segments {
			b := before[i]
			if s.Path != b.path || s.CommitCount != b.commits || !s.FirstSeenAt.Equal(b.first) || !s.LastSeenAt.Equal(b.last) {
				t.Fatalf("segment %d changed: %+v", i, s)
			}
			if !slices.EqualFunc(s.CommitTimes, b.times, time.Time.Equal) {
				t.Fatalf("%s: commit times reordered or modified", s.Path)
			}
		}
	})
}

func TestRapidCompute_CommitOrderIrrelevant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		calc := NewCalculator(rapid.IntRange(1, 30).Draw(t, "windowDays"))
		commits := genCommits(40).Draw(t, "commits")
		shuffled := rapid.Permutation(commits).Draw(t, "shuffled")

		a, b := segmentOf("a.go", commits), segmentOf("a.go", shuffled)
		calc.Compute([]*aggregation.SegmentMetrics{a, b})

		if a.BurstScore != b.BurstScore {
			t.Fatalf("collection order changed the score: %f vs %f", a.BurstScore, b.BurstScore)
		}
	})
}

func TestRapidCompute_WindowCoveringSpanIsFullBurst(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		commits := genCommits(40).Draw(t, "commits")
		s := segmentOf("a.go", commits)
		if s.CommitCount == 0 {
			return
		}

		days := int(s.Span()/(24*time.Hour)) + 1
		NewCalculator(days).Compute([]*aggregation.SegmentMetrics{s})

		if s.BurstScore != 1.0 {
			t.Fatalf("window of %d days covers a %v span but scored %f", days, s.Span(), s.BurstScore)
		}
	})
}

func TestRapidCompute_WiderWindowNeverLower(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		narrow := rapid.IntRange(1, 30).Draw(t, "narrow")
		wide := narrow + rapid.IntRange(0, 30).Draw(t, "extra")
		commits := genCommits(40).Draw(t, "commits")

		n, w := segmentOf("a.go", commits), segmentOf("a.go", commits)
		NewCalculator(narrow).Compute([]*aggregation.SegmentMetrics{n})
		NewCalculator(wide).Compute([]*aggregation.SegmentMetrics{w})

		if w.BurstScore < n.BurstScore {
			t.Fatalf("window %d scored %f, below window %d at %f", wide, w.BurstScore, narrow, n.BurstScore)
		}
	})
}
