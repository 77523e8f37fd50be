package bugfix

import (
	"regexp"
	"strings"

	"github.com/masmgr/logfollow-go/internal/follow"
)

// DefaultPatterns seed the bugfix section of the default configuration.
var DefaultPatterns = []string{`\bfix(e[sd])?\b`, `\bbug\b`, `\bhotfix\b`, `\bpatch\b`}

// BugfixResult holds the result of bugfix detection over a followed history.
type BugfixResult struct {
	// BugfixCommits is the set of commit SHAs identified as bugfix commits.
	BugfixCommits map[string]struct{}
	// PathBugfixCounts maps each tracked path to the number of bugfix
	// commits found under it.
	PathBugfixCounts map[string]int
	// TotalBugfixes is the total number of bugfix commits detected.
	TotalBugfixes int
}

// IsBugfixCommit reports whether sha was classified as a bugfix.
func (r *BugfixResult) IsBugfixCommit(sha string) bool {
	if r == nil {
		return false
	}
	_, ok := r.BugfixCommits[sha]
	return ok
}

// Detector detects bugfix commits by matching commit messages against regex patterns.
type Detector struct {
	patterns []*regexp.Regexp
}

// NewDetector creates a new Detector from a list of regex pattern strings.
// Patterns are compiled as case-insensitive. Returns an error if any pattern fails to compile.
func NewDetector(patterns []string) (*Detector, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// Add case-insensitive flag if not already present
		if !strings.HasPrefix(p, "(?i)") {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &Detector{patterns: compiled}, nil
}

// IsBugfix returns true if the given commit message matches any of the detector's patterns.
func (d *Detector) IsBugfix(message string) bool {
	for _, re := range d.patterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// Detect classifies the commits of a followed history. Each bugfix commit
// is counted once, under the path it was collected for.
func (d *Detector) Detect(commits []follow.FollowedCommit) *BugfixResult {
	result := &BugfixResult{
		BugfixCommits:    make(map[string]struct{}),
		PathBugfixCounts: make(map[string]int),
	}

	if len(d.patterns) == 0 {
		return result
	}

	for _, fc := range commits {
		if !d.IsBugfix(fc.Commit.Message) {
			continue
		}
		if _, seen := result.BugfixCommits[fc.Commit.SHA]; seen {
			continue
		}

		result.BugfixCommits[fc.Commit.SHA] = struct{}{}
		result.TotalBugfixes++
		result.PathBugfixCounts[fc.Path]++
	}

	return result
}
