package git

import (
	"fmt"
	"strings"
	"time"
)

// CommitInfo represents minimal information about a Git commit.
// Two CommitInfo values describe the same commit iff their SHAs are equal.
type CommitInfo struct {
	SHA     string
	Parents []string
	When    time.Time
	Author  AuthorInfo
	Message string
}

// ShortSHA returns the first seven characters of the commit hash.
func (c CommitInfo) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// IsRoot reports whether the commit has no parents.
func (c CommitInfo) IsRoot() bool {
	return len(c.Parents) == 0
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// ContributorKey returns a normalized identifier for grouping contributors.
func (a AuthorInfo) ContributorKey() string {
	return strings.ToLower(a.Email)
}

// ChangeKind represents the type of change.
type ChangeKind int

const (
	ChangeKindAdded ChangeKind = iota
	ChangeKindModified
	ChangeKindDeleted
	ChangeKindRenamed
	ChangeKindCopied
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindAdded:
		return "added"
	case ChangeKindModified:
		return "modified"
	case ChangeKindDeleted:
		return "deleted"
	case ChangeKindRenamed:
		return "renamed"
	case ChangeKindCopied:
		return "copied"
	default:
		return "unknown"
	}
}

// DiffEntry describes one file in a tree-to-tree comparison.
type DiffEntry struct {
	Kind    ChangeKind
	OldPath string // empty for additions
	NewPath string // empty for deletions
	Score   int    // similarity percentage for renames and copies
}

// IsRenameOrCopy reports whether the entry links two different paths.
func (e DiffEntry) IsRenameOrCopy() bool {
	return e.Kind == ChangeKindRenamed || e.Kind == ChangeKindCopied
}

// Path returns the path the entry is best known by.
func (e DiffEntry) Path() string {
	if e.NewPath != "" {
		return e.NewPath
	}
	return e.OldPath
}

// Backend selects the implementation behind HistoryReader.
type Backend int

const (
	BackendGoGit Backend = iota
	BackendGitCLI
)

// String returns the backend name used in flags and config.
func (b Backend) String() string {
	switch b {
	case BackendGitCLI:
		return "git"
	default:
		return "go-git"
	}
}

// ParseBackend converts a flag or config value into a Backend.
// An empty value selects go-git.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "go-git", "gogit":
		return BackendGoGit, nil
	case "git", "cli", "gitcli":
		return BackendGitCLI, nil
	default:
		return BackendGoGit, fmt.Errorf("unknown backend %q (expected go-git or git)", s)
	}
}

// DefaultRenameScore matches go-git's and git's default -M threshold.
const DefaultRenameScore = 60

// DefaultMaxBlobSize bounds the blobs read for copy similarity.
const DefaultMaxBlobSize = 1 << 20

// ReadOptions configures the history reader.
type ReadOptions struct {
	RepoPath string
	Branch   string // start revision for path logs, default HEAD
	Backend  Backend

	// RenameScore is the minimum similarity (0-100) for a delete+add pair to
	// be reported as a rename or copy. Zero means DefaultRenameScore.
	RenameScore  int
	// DetectCopies reports added files as copies of files deleted or
	// modified in the same diff, like `git diff -C`.
	DetectCopies bool
	// FindCopiesHarder also accepts unmodified files of the old tree as
	// exact copy sources, like `git diff --find-copies-harder`.
	FindCopiesHarder bool
	// MaxBlobSize skips similarity scoring for larger blobs. Zero means
	// DefaultMaxBlobSize.
	MaxBlobSize int64
}

func (o ReadOptions) renameScore() int {
	if o.RenameScore <= 0 || o.RenameScore > 100 {
		return DefaultRenameScore
	}
	return o.RenameScore
}

func (o ReadOptions) maxBlobSize() int64 {
	if o.MaxBlobSize <= 0 {
		return DefaultMaxBlobSize
	}
	return o.MaxBlobSize
}
