package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// Each commit header is prefixed by 0x1e (record separator) followed by NUL
// separated fields, so subjects containing newlines cannot break parsing.
const gitLogFormat = "%x1e%H%x00%P%x00%cI%x00%an%x00%ae%x00%s"

type gitRawEntry struct {
	srcMode filemode.FileMode
	dstMode filemode.FileMode
	status  string // e.g. "M", "A", "D", "R100", "C075"
	path    string // destination path (or path for non-renames)
	oldPath string // source path for renames and copies
}

func (r *HistoryReader) runGit(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", r.opts.RepoPath}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func (r *HistoryReader) forEachCommitGitCLI(ctx context.Context, fn func(CommitInfo) error, revArgs ...string) error {
	args := append([]string{
		"log",
		"--no-color",
		"--date-order",
		"--pretty=format:" + gitLogFormat,
	}, revArgs...)

	out, err := r.runGit(ctx, args...)
	if err != nil {
		return err
	}

	commits, err := parseGitLog(out)
	if err != nil {
		return err
	}

	for _, c := range commits {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
	return nil
}

func parseGitLog(out []byte) ([]CommitInfo, error) {
	records := bytes.Split(out, []byte{0x1e})
	commits := make([]CommitInfo, 0, len(records))

	for _, rec := range records {
		rec = bytes.TrimRight(rec, "\r\n")
		if len(rec) == 0 {
			continue
		}

		fields := bytes.SplitN(rec, []byte{0x00}, 6)
		if len(fields) < 6 {
			return nil, fmt.Errorf("unexpected git log header format")
		}

		when, err := time.Parse(time.RFC3339, string(fields[2]))
		if err != nil {
			return nil, fmt.Errorf("parse committer date: %w", err)
		}

		commits = append(commits, CommitInfo{
			SHA:     string(fields[0]),
			Parents: strings.Fields(string(fields[1])),
			When:    when,
			Author:  AuthorInfo{Name: string(fields[3]), Email: string(fields[4])},
			Message: string(fields[5]),
		})
	}

	return commits, nil
}

func (r *HistoryReader) diffCommitsGitCLI(ctx context.Context, fromSHA, toSHA string) ([]DiffEntry, error) {
	out, err := r.runGit(ctx, r.opts.diffTreeArgs(fromSHA, toSHA)...)
	if err != nil {
		return nil, err
	}

	raw, _, err := parseGitRawEntries(out)
	if err != nil {
		return nil, err
	}

	entries := make([]DiffEntry, 0, len(raw))
	for _, e := range raw {
		if !e.srcMode.IsFile() && !e.dstMode.IsFile() {
			continue
		}
		entries = append(entries, entryFromRaw(e))
	}
	return entries, nil
}

// diffTreeArgs builds a `git diff-tree` call with the same rename and copy
// rules as the go-git backend.
func (o ReadOptions) diffTreeArgs(fromSHA, toSHA string) []string {
	score := o.renameScore()
	args := []string{
		"diff-tree",
		"-r",
		"-z",
		"--raw",
		"--no-commit-id",
		"--no-rename-empty",
		fmt.Sprintf("-M%d%%", score),
	}
	if o.DetectCopies {
		args = append(args, fmt.Sprintf("-C%d%%", score))
		if o.FindCopiesHarder {
			args = append(args, "--find-copies-harder")
		}
	}
	return append(args, fromSHA, toSHA)
}

func parseGitRawEntries(body []byte) ([]gitRawEntry, int, error) {
	i := 0
	for i < len(body) && (body[i] == '\n' || body[i] == '\r') {
		i++
	}

	entries := make([]gitRawEntry, 0, 128)

	for i < len(body) && body[i] == ':' {
		meta, ok := readUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing NUL)")
		}

		fields := strings.Fields(string(meta))
		if len(fields) < 5 {
			return nil, 0, fmt.Errorf("unexpected git --raw meta: %q", string(meta))
		}

		srcMode, err := parseGitFileMode(strings.TrimPrefix(fields[0], ":"))
		if err != nil {
			return nil, 0, err
		}
		dstMode, err := parseGitFileMode(fields[1])
		if err != nil {
			return nil, 0, err
		}

		status := fields[len(fields)-1]

		path1, ok := readStringUntilNUL(body, &i)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected git --raw format (missing path)")
		}

		path := path1
		oldPath := ""
		if len(status) > 0 && (status[0] == 'R' || status[0] == 'C') {
			path2, ok := readStringUntilNUL(body, &i)
			if !ok {
				return nil, 0, fmt.Errorf("unexpected git --raw format (missing rename path)")
			}
			oldPath = path1
			path = path2
		}

		entries = append(entries, gitRawEntry{
			srcMode: srcMode,
			dstMode: dstMode,
			status:  status,
			path:    path,
			oldPath: oldPath,
		})
	}

	return entries, i, nil
}

func parseGitFileMode(s string) (filemode.FileMode, error) {
	if s == "" {
		return filemode.Empty, nil
	}
	// Modes are printed as octal (e.g. 100644, 120000, 160000, 000000).
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return filemode.Empty, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	return filemode.FileMode(v), nil
}

func entryFromRaw(e gitRawEntry) DiffEntry {
	if e.status == "" {
		return DiffEntry{Kind: ChangeKindModified, OldPath: e.path, NewPath: e.path}
	}
	switch e.status[0] {
	case 'A':
		return DiffEntry{Kind: ChangeKindAdded, NewPath: e.path}
	case 'D':
		return DiffEntry{Kind: ChangeKindDeleted, OldPath: e.path}
	case 'R':
		return DiffEntry{Kind: ChangeKindRenamed, OldPath: e.oldPath, NewPath: e.path, Score: statusScore(e.status)}
	case 'C':
		return DiffEntry{Kind: ChangeKindCopied, OldPath: e.oldPath, NewPath: e.path, Score: statusScore(e.status)}
	default:
		return DiffEntry{Kind: ChangeKindModified, OldPath: e.path, NewPath: e.path}
	}
}

// statusScore extracts the similarity from statuses like "R087".
func statusScore(status string) int {
	n, err := strconv.Atoi(status[1:])
	if err != nil {
		return 0
	}
	return n
}

func readUntilNUL(b []byte, i *int) ([]byte, bool) {
	if *i >= len(b) {
		return nil, false
	}
	j := bytes.IndexByte(b[*i:], 0)
	if j == -1 {
		return nil, false
	}
	start := *i
	end := *i + j
	*i = end + 1
	return b[start:end], true
}

func readStringUntilNUL(b []byte, i *int) (string, bool) {
	raw, ok := readUntilNUL(b, i)
	if !ok {
		return "", false
	}
	return string(raw), true
}
