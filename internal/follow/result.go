package follow

import "github.com/masmgr/logfollow-go/internal/git"

// RenameEvent records one predecessor found by ResolveRename.
type RenameEvent struct {
	AnchorSHA    string // earliest known commit of NewPath
	CandidateSHA string // ancestor whose tree holds OldPath
	Kind         git.ChangeKind
	OldPath      string
	NewPath      string
	Score        int
}

// FollowedCommit is a commit in the followed history together with the path
// it was found under.
type FollowedCommit struct {
	Commit git.CommitInfo
	Path   string
}

// Result is the outcome of Collect.
type Result struct {
	StartPath string
	Commits   []FollowedCommit
	Renames   []RenameEvent
	Rounds    int
}

// Len returns the number of collected commits.
func (r *Result) Len() int {
	return len(r.Commits)
}

// CommitInfos returns the collected commits in order.
func (r *Result) CommitInfos() []git.CommitInfo {
	out := make([]git.CommitInfo, len(r.Commits))
	for i, fc := range r.Commits {
		out[i] = fc.Commit
	}
	return out
}

// Paths returns every tracked path, starting with StartPath.
func (r *Result) Paths() []string {
	paths := []string{r.StartPath}
	for _, ev := range r.Renames {
		paths = append(paths, ev.OldPath)
	}
	return paths
}

// commitSet is an insertion-only set of commit hashes.
type commitSet struct {
	shas map[string]struct{}
}

func newCommitSet() *commitSet {
	return &commitSet{shas: make(map[string]struct{})}
}

// add reports whether sha was not yet present.
func (s *commitSet) add(sha string) bool {
	if _, ok := s.shas[sha]; ok {
		return false
	}
	s.shas[sha] = struct{}{}
	return true
}
