package git

import "context"

// MockHistorySource is a test double for HistoryReader.
// It allows tests to provide predefined commit data without needing a real Git repository.
type MockHistorySource struct {
	// Commits lists every commit of the graph, newest first.
	Commits []CommitInfo
	// PathCommits maps a path to the SHAs of the commits touching it, newest first.
	PathCommits map[string][]string
	// Diffs maps DiffKey(from, to) to the refined entries of that comparison.
	Diffs map[string][]DiffEntry

	LogError  error
	DiffError error

	DiffCalls int
}

// NewMockHistorySource creates a new MockHistorySource with the given data.
func NewMockHistorySource(commits []CommitInfo, pathCommits map[string][]string) *MockHistorySource {
	return &MockHistorySource{
		Commits:     commits,
		PathCommits: pathCommits,
		Diffs:       make(map[string][]DiffEntry),
	}
}

// DiffKey builds the Diffs map key for a comparison.
func DiffKey(fromSHA, toSHA string) string {
	return fromSHA + ".." + toSHA
}

// SetDiff registers the entries returned for DiffCommits(fromSHA, toSHA).
func (m *MockHistorySource) SetDiff(fromSHA, toSHA string, entries ...DiffEntry) {
	m.Diffs[DiffKey(fromSHA, toSHA)] = entries
}

func (m *MockHistorySource) commit(sha string) (CommitInfo, bool) {
	for _, c := range m.Commits {
		if c.SHA == sha {
			return c, true
		}
	}
	return CommitInfo{}, false
}

// ForEachPathCommit yields the predefined commits for path.
func (m *MockHistorySource) ForEachPathCommit(ctx context.Context, path string, fn func(CommitInfo) error) error {
	if m.LogError != nil {
		return m.LogError
	}
	for _, sha := range m.PathCommits[path] {
		c, ok := m.commit(sha)
		if !ok {
			continue
		}
		if err := emit(ctx, c, fn); err != nil {
			return stopIsNil(err)
		}
	}
	return nil
}

// ForEachAncestor yields sha and every commit reachable through Parents,
// in the order of Commits.
func (m *MockHistorySource) ForEachAncestor(ctx context.Context, sha string, fn func(CommitInfo) error) error {
	if m.LogError != nil {
		return m.LogError
	}

	reachable := map[string]struct{}{}
	queue := []string{sha}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := reachable[cur]; seen {
			continue
		}
		c, ok := m.commit(cur)
		if !ok {
			continue
		}
		reachable[cur] = struct{}{}
		queue = append(queue, c.Parents...)
	}

	for _, c := range m.Commits {
		if _, ok := reachable[c.SHA]; !ok {
			continue
		}
		if err := emit(ctx, c, fn); err != nil {
			return stopIsNil(err)
		}
	}
	return nil
}

// DiffCommits returns the predefined entries or error.
func (m *MockHistorySource) DiffCommits(_ context.Context, fromSHA, toSHA string) ([]DiffEntry, error) {
	m.DiffCalls++
	if m.DiffError != nil {
		return nil, m.DiffError
	}
	return m.Diffs[DiffKey(fromSHA, toSHA)], nil
}

func emit(ctx context.Context, c CommitInfo, fn func(CommitInfo) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(c)
}

func stopIsNil(err error) error {
	if err == ErrStop {
		return nil
	}
	return err
}

// Compile-time interface conformance check.
var _ HistorySource = (*MockHistorySource)(nil)
