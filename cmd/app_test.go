package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/masmgr/logfollow-go/internal/output"
)

type fixtureRepo struct {
	t    *testing.T
	dir  string
	wt   *gogit.Worktree
	when time.Time
}

func newFixtureRepo(t *testing.T) *fixtureRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("Failed to initialize git repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	return &fixtureRepo{t: t, dir: dir, wt: wt, when: time.Now().Add(-24 * time.Hour)}
}

func (r *fixtureRepo) write(name, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := r.wt.Add(name); err != nil {
		r.t.Fatalf("Failed to add file: %v", err)
	}
}

func (r *fixtureRepo) move(from, to string) {
	r.t.Helper()
	if _, err := r.wt.Move(from, to); err != nil {
		r.t.Fatalf("Move: %v", err)
	}
}

func (r *fixtureRepo) commit(msg string) string {
	r.t.Helper()
	r.when = r.when.Add(time.Minute)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: r.when}
	h, err := r.wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		r.t.Fatalf("Failed to commit: %v", err)
	}
	return h.String()
}

// renamedRepo creates old.txt, renames it to new.txt and fixes a bug in it.
func renamedRepo(t *testing.T) (*fixtureRepo, []string) {
	r := newFixtureRepo(t)
	body := strings.Repeat("some stable line of text\n", 20)
	r.write("old.txt", body)
	r.write("other.txt", "unrelated\n")
	c1 := r.commit("add old.txt")
	r.move("old.txt", "new.txt")
	c2 := r.commit("rename old.txt")
	r.write("new.txt", body+"one more line\n")
	c3 := r.commit("fix off-by-one in new.txt")
	return r, []string{c3, c2, c1}
}

func runApp(t *testing.T, args ...string) error {
	t.Helper()
	// A missing config file keeps the tests independent of the environment.
	missing := filepath.Join(t.TempDir(), "none.json")
	return App().Run(append([]string{"logfollow", "--config", missing}, args...))
}

func readFollowJSON(t *testing.T, path string) output.JSONFollowReport {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	var report output.JSONFollowReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	return report
}

func TestApp_LogFollowsRename(t *testing.T) {
	r, shas := renamedRepo(t)
	out := filepath.Join(t.TempDir(), "log.json")

	if err := runApp(t, "log", "--repo", r.dir, "--format", "json", "--output", out, "new.txt"); err != nil {
		t.Fatalf("log: %v", err)
	}

	report := readFollowJSON(t, out)
	if report.TotalCommits != 3 {
		t.Fatalf("TotalCommits = %d, expected 3", report.TotalCommits)
	}
	for i, c := range report.Commits {
		if c.SHA != shas[i] {
			t.Errorf("commit %d = %s, expected %s", i, c.SHA, shas[i])
		}
	}
	if len(report.Renames) != 1 || report.Renames[0].OldPath != "old.txt" {
		t.Errorf("renames = %+v", report.Renames)
	}
	if report.TotalBugfixes != 1 || !report.Commits[0].Bugfix {
		t.Errorf("bugfixes = %d", report.TotalBugfixes)
	}
}

func TestApp_BarePathRunsLog(t *testing.T) {
	r, _ := renamedRepo(t)
	out := filepath.Join(t.TempDir(), "log.json")

	if err := runApp(t, "--repo", r.dir, "--format", "json", "--output", out, "new.txt"); err != nil {
		t.Fatalf("bare path: %v", err)
	}
	if report := readFollowJSON(t, out); report.TotalCommits != 3 {
		t.Errorf("TotalCommits = %d, expected 3", report.TotalCommits)
	}
}

func TestApp_LogMaxRoundsKeepsPartialResult(t *testing.T) {
	r, _ := renamedRepo(t)
	out := filepath.Join(t.TempDir(), "log.json")

	if err := runApp(t, "log", "--repo", r.dir, "--max-rounds", "1", "--format", "json", "--output", out, "new.txt"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if report := readFollowJSON(t, out); report.TotalCommits != 2 || len(report.Renames) != 1 {
		t.Errorf("partial result = %d commits, %d renames; expected 2 and 1", report.TotalCommits, len(report.Renames))
	}
}

func TestApp_LogExcludeStopsAtRename(t *testing.T) {
	r, _ := renamedRepo(t)
	out := filepath.Join(t.TempDir(), "log.json")

	if err := runApp(t, "log", "--repo", r.dir, "--exclude", "old*", "--format", "json", "--output", out, "new.txt"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if report := readFollowJSON(t, out); report.TotalCommits != 2 || len(report.Renames) != 0 {
		t.Errorf("got %d commits, %d renames; expected 2 and 0", report.TotalCommits, len(report.Renames))
	}
}

func TestApp_LogUnknownPath(t *testing.T) {
	r, _ := renamedRepo(t)
	out := filepath.Join(t.TempDir(), "log.json")

	if err := runApp(t, "log", "--repo", r.dir, "--format", "json", "--output", out, "missing.txt"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if report := readFollowJSON(t, out); report.TotalCommits != 0 {
		t.Errorf("TotalCommits = %d, expected 0", report.TotalCommits)
	}
}

func TestApp_LogErrors(t *testing.T) {
	r, _ := renamedRepo(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "No path", args: []string{"log", "--repo", r.dir}},
		{name: "Two paths", args: []string{"log", "--repo", r.dir, "a", "b"}},
		{name: "Bad match mode", args: []string{"log", "--repo", r.dir, "--match", "fuzzy", "new.txt"}},
		{name: "Bad glob", args: []string{"log", "--repo", r.dir, "--exclude", "[", "new.txt"}},
		{name: "Bad rename score", args: []string{"log", "--repo", r.dir, "--rename-score", "120", "new.txt"}},
		{name: "Zero rename score", args: []string{"log", "--repo", r.dir, "--rename-score", "0", "new.txt"}},
		{name: "Unknown backend", args: []string{"log", "--repo", r.dir, "--backend", "gti", "new.txt"}},
		{name: "Bad bug pattern", args: []string{"log", "--repo", r.dir, "--bug-patterns", "(", "new.txt"}},
		{name: "Not a repository", args: []string{"log", "--repo", t.TempDir(), "new.txt"}},
		{name: "Unknown branch", args: []string{"log", "--repo", r.dir, "--branch", "nope", "new.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := runApp(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestApp_Diff(t *testing.T) {
	r, shas := renamedRepo(t)
	out := filepath.Join(t.TempDir(), "diff.json")

	if err := runApp(t, "diff", "--repo", r.dir, "--format", "json", "--output", out, shas[2]+".."+shas[1]); err != nil {
		t.Fatalf("diff: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	var report output.JSONDiffReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if report.TotalEntries != 1 || report.Entries[0].Kind != "renamed" || report.Entries[0].NewPath != "new.txt" {
		t.Errorf("entries = %+v", report.Entries)
	}
}

func TestApp_DiffInvalidSpec(t *testing.T) {
	r, _ := renamedRepo(t)
	if err := runApp(t, "diff", "--repo", r.dir, "HEAD"); err == nil {
		t.Error("expected error for a spec without ..")
	}
}
