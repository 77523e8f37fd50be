// Package follow reconstructs the history of a single file across renames
// and copies, like `git log --follow`.
//
// A Walker alternates two steps. Collect walks the path-restricted log of the
// currently tracked path and accumulates unseen commits. When a batch adds
// nothing new the walk ends; otherwise ResolveRename diffs the oldest new
// commit against each of its ancestors, looking for a rename or copy whose
// destination is the tracked path. Its source path becomes the next path to
// track.
package follow

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/masmgr/logfollow-go/internal/git"
)

var (
	// ErrEmptyPath is returned when Collect is called without a path.
	ErrEmptyPath = errors.New("follow: empty path")
	// ErrTooManyRounds is returned with a partial result when MaxRounds is hit.
	ErrTooManyRounds = errors.New("follow: round limit reached")
)

// Options configures a Walker.
type Options struct {
	Match MatchMode

	// Include and Exclude are doublestar globs applied to predecessor paths.
	// A rename whose source is excluded is not followed.
	Include []string
	Exclude []string

	// MaxRounds bounds the number of collect rounds. Zero means unlimited.
	MaxRounds int
	// ResolveTimeout bounds each ResolveRename call. Zero means no timeout.
	ResolveTimeout time.Duration

	OnRound  func(round int, path string, added int)
	OnRename func(RenameEvent)
}

// Walker follows one path through history. It holds no per-walk state and
// can be reused; concurrent use is safe if the HistorySource allows it.
type Walker struct {
	src  git.HistorySource
	opts Options
}

// NewWalker creates a Walker reading from src.
func NewWalker(src git.HistorySource, opts Options) (*Walker, error) {
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return &Walker{src: src, opts: opts}, nil
}

// Collect returns every commit that touched startPath or one of its
// predecessors, newest first within each round. A path that never appears in
// history yields an empty result and no error.
//
// On failure the commits gathered so far are returned together with the error.
func (w *Walker) Collect(ctx context.Context, startPath string) (*Result, error) {
	current := cleanPath(startPath)
	if current == "" {
		return nil, ErrEmptyPath
	}

	res := &Result{StartPath: current}
	seen := newCommitSet()

	for {
		res.Rounds++
		lastNew, added, err := w.collectBatch(ctx, current, seen, res)
		if err != nil {
			return res, err
		}
		if w.opts.OnRound != nil {
			w.opts.OnRound(res.Rounds, current, added)
		}
		if added == 0 {
			return res, nil
		}

		ev, found, err := w.resolveWithTimeout(ctx, lastNew, current)
		if err != nil {
			return res, err
		}
		if !found {
			return res, nil
		}

		res.Renames = append(res.Renames, ev)
		if w.opts.OnRename != nil {
			w.opts.OnRename(ev)
		}
		if w.opts.MaxRounds > 0 && res.Rounds >= w.opts.MaxRounds {
			return res, ErrTooManyRounds
		}
		current = ev.OldPath
	}
}

// collectBatch appends the unseen commits of one path log. Commits already
// collected are skipped: the commit that renamed a file also shows up in the
// log of its old path.
func (w *Walker) collectBatch(ctx context.Context, p string, seen *commitSet, res *Result) (git.CommitInfo, int, error) {
	var lastNew git.CommitInfo
	added := 0

	err := w.src.ForEachPathCommit(ctx, p, func(c git.CommitInfo) error {
		if !seen.add(c.SHA) {
			return nil
		}
		res.Commits = append(res.Commits, FollowedCommit{Commit: c, Path: p})
		lastNew = c
		added++
		return nil
	})
	if err != nil {
		return git.CommitInfo{}, 0, fmt.Errorf("log %s: %w", p, err)
	}

	return lastNew, added, nil
}

func (w *Walker) resolveWithTimeout(ctx context.Context, anchor git.CommitInfo, p string) (RenameEvent, bool, error) {
	if w.opts.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.ResolveTimeout)
		defer cancel()
	}
	return w.ResolveRename(ctx, anchor, p)
}

// ResolveRename looks for the path p was renamed or copied from. It diffs
// every ancestor of anchor against anchor, newest first, and returns the
// first rename or copy ending at p. found is false when there is none.
//
// This rereads full trees for each candidate and can take seconds on large
// histories; ctx is checked once per candidate.
func (w *Walker) ResolveRename(ctx context.Context, anchor git.CommitInfo, p string) (ev RenameEvent, found bool, err error) {
	tracked := cleanPath(p)

	err = w.src.ForEachAncestor(ctx, anchor.SHA, func(c git.CommitInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.SHA == anchor.SHA {
			return nil
		}

		entries, err := w.src.DiffCommits(ctx, c.SHA, anchor.SHA)
		if err != nil {
			return err
		}

		for _, e := range entries {
			if !e.IsRenameOrCopy() || !w.opts.Match.matches(cleanPath(e.NewPath), tracked) {
				continue
			}
			old := cleanPath(e.OldPath)
			if old == "" || old == tracked || !w.allowed(old) {
				continue
			}

			ev = RenameEvent{
				AnchorSHA:    anchor.SHA,
				CandidateSHA: c.SHA,
				Kind:         e.Kind,
				OldPath:      old,
				NewPath:      cleanPath(e.NewPath),
				Score:        e.Score,
			}
			found = true
			return git.ErrStop
		}
		return nil
	})
	if err != nil {
		return RenameEvent{}, false, fmt.Errorf("resolve rename of %s at %s: %w", tracked, anchor.ShortSHA(), err)
	}

	return ev, found, nil
}

// allowed applies the include and exclude globs to a predecessor path.
// Patterns were validated in NewWalker.
func (w *Walker) allowed(p string) bool {
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return false
		}
	}

	if len(w.opts.Include) == 0 {
		return true
	}
	for _, pattern := range w.opts.Include {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// cleanPath normalizes a path to the slash separated, root relative form Git uses.
func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = path.Clean(filepath.ToSlash(p))
	p = strings.TrimLeft(p, "/")
	if p == "." {
		return ""
	}
	return p
}
