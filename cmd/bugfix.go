package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/logfollow-go/config"
	"github.com/masmgr/logfollow-go/internal/bugfix"
	"github.com/masmgr/logfollow-go/internal/follow"
)

func resolveBugPatterns(c *cli.Context, cfg *config.Config) []string {
	patterns := c.StringSlice("bug-patterns")
	if len(patterns) > 0 {
		return patterns
	}
	return cfg.Bugfix.Patterns
}

func detectBugfixes(res *follow.Result, patterns []string) (*bugfix.BugfixResult, error) {
	detector, err := bugfix.NewDetector(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid bug pattern: %w", err)
	}
	return detector.Detect(res.Commits), nil
}
