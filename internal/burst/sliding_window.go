package burst

import (
	"slices"
	"time"

	"github.com/masmgr/logfollow-go/internal/aggregation"
)

// DefaultWindowDays is used when the configured window is not positive.
const DefaultWindowDays = 7

// Calculator scores how concentrated in time the commits of a path were.
// Burst score = (max commits in any window) / (total commits)
type Calculator struct {
	window time.Duration
}

// NewCalculator creates a new burst score calculator.
func NewCalculator(windowDays int) *Calculator {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Calculator{window: time.Duration(windowDays) * 24 * time.Hour}
}

// Compute sets BurstScore on every segment of a lineage.
func (c *Calculator) Compute(segments []*aggregation.SegmentMetrics) {
	for _, s := range segments {
		s.BurstScore = c.CalculateBurstScore(s.CommitTimes)
	}
}

// CalculateBurstScore returns the share of commitTimes that fall into the
// densest window. The input is not modified.
func (c *Calculator) CalculateBurstScore(commitTimes []time.Time) float64 {
	switch len(commitTimes) {
	case 0:
		return 0.0
	case 1:
		return 1.0
	}

	times := slices.Clone(commitTimes)
	slices.SortFunc(times, func(a, b time.Time) int { return a.Compare(b) })

	// Two-pointer sliding window
	maxInWindow := 1
	left := 0
	for right := range times {
		for times[right].Sub(times[left]) > c.window {
			left++
		}
		maxInWindow = max(maxInWindow, right-left+1)
	}

	return float64(maxInWindow) / float64(len(times))
}
