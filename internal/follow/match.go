package follow

import (
	"fmt"
	"strings"
)

// MatchMode controls how a rename destination is compared with the tracked path.
type MatchMode int

const (
	// MatchExact requires the destination to equal the tracked path.
	MatchExact MatchMode = iota
	// MatchContains accepts any destination containing the tracked path.
	// It can follow the wrong file when one path is a substring of another.
	MatchContains
)

// String returns the flag value for the mode.
func (m MatchMode) String() string {
	switch m {
	case MatchContains:
		return "contains"
	default:
		return "exact"
	}
}

// ParseMatchMode converts a flag or config value into a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return MatchExact, nil
	case "contains", "substring":
		return MatchContains, nil
	default:
		return MatchExact, fmt.Errorf("unknown match mode %q (expected exact or contains)", s)
	}
}

func (m MatchMode) matches(candidate, tracked string) bool {
	if m == MatchContains {
		return strings.Contains(candidate, tracked)
	}
	return candidate == tracked
}
