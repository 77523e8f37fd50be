package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// HistoryReader reads commit history from a Git repository.
// It never writes to the repository.
type HistoryReader struct {
	repo  *git.Repository
	opts  ReadOptions
	start plumbing.Hash // zero for a repository without commits
}

// NewHistoryReader opens the repository and resolves the start revision.
func NewHistoryReader(opts ReadOptions) (*HistoryReader, error) {
	repo, err := git.PlainOpenWithOptions(opts.RepoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}

	start, err := resolveStart(repo, opts.Branch)
	if err != nil {
		return nil, err
	}

	return &HistoryReader{repo: repo, opts: opts, start: start}, nil
}

func resolveStart(repo *git.Repository, branch string) (plumbing.Hash, error) {
	rev := strings.TrimSpace(branch)
	if rev == "" || strings.EqualFold(rev, "HEAD") {
		ref, err := repo.Head()
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Unborn branch: nothing to walk.
			return plumbing.ZeroHash, nil
		}
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return ref.Hash(), nil
	}

	h, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve revision %q: %w", rev, err)
	}
	return *h, nil
}

// Options returns the options the reader was created with.
func (r *HistoryReader) Options() ReadOptions {
	return r.opts
}

// StartSHA returns the resolved start revision, or "" for an empty repository.
func (r *HistoryReader) StartSHA() string {
	if r.start.IsZero() {
		return ""
	}
	return r.start.String()
}

// ForEachPathCommit calls fn for each commit touching path, newest first.
func (r *HistoryReader) ForEachPathCommit(ctx context.Context, path string, fn func(CommitInfo) error) error {
	if r.start.IsZero() {
		return nil
	}
	if r.opts.Backend == BackendGitCLI {
		return r.forEachCommitGitCLI(ctx, fn, r.start.String(), "--", path)
	}

	iter, err := r.repo.Log(&git.LogOptions{
		From:     r.start,
		Order:    git.LogOrderCommitterTime,
		FileName: &path,
	})
	if err != nil {
		return fmt.Errorf("log %s: %w", path, err)
	}
	defer iter.Close()

	return forEachCommit(ctx, iter, fn)
}

// ForEachAncestor calls fn for sha and every commit reachable from it, newest first.
func (r *HistoryReader) ForEachAncestor(ctx context.Context, sha string, fn func(CommitInfo) error) error {
	if r.opts.Backend == BackendGitCLI {
		return r.forEachCommitGitCLI(ctx, fn, sha)
	}

	iter, err := r.repo.Log(&git.LogOptions{
		From:  plumbing.NewHash(sha),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return fmt.Errorf("log %s: %w", sha, err)
	}
	defer iter.Close()

	return forEachCommit(ctx, iter, fn)
}

func forEachCommit(ctx context.Context, iter object.CommitIter, fn func(CommitInfo) error) error {
	err := iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(toCommitInfo(c)); err != nil {
			if errors.Is(err, ErrStop) {
				return storer.ErrStop
			}
			return err
		}
		return nil
	})
	if errors.Is(err, storer.ErrStop) {
		return nil
	}
	return err
}

func toCommitInfo(c *object.Commit) CommitInfo {
	// Extract first line of commit message
	message := c.Message
	if idx := strings.IndexByte(message, '\n'); idx != -1 {
		message = message[:idx]
	}

	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return CommitInfo{
		SHA:     c.Hash.String(),
		Parents: parents,
		When:    c.Committer.When,
		Author:  AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
		Message: message,
	}
}

// DiffCommits compares the tree of fromSHA against the tree of toSHA with
// rename and, if enabled, copy detection.
func (r *HistoryReader) DiffCommits(ctx context.Context, fromSHA, toSHA string) ([]DiffEntry, error) {
	if r.opts.Backend == BackendGitCLI {
		return r.diffCommitsGitCLI(ctx, fromSHA, toSHA)
	}

	from, err := r.commitTree(fromSHA)
	if err != nil {
		return nil, err
	}
	to, err := r.commitTree(toSHA)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, &object.DiffTreeOptions{
		DetectRenames: true,
		RenameScore:   uint(r.opts.renameScore()),
	})
	if err != nil {
		return nil, fmt.Errorf("diff %s..%s: %w", short(fromSHA), short(toSHA), err)
	}

	entries := make([]DiffEntry, 0, len(changes))
	var added []pendingAdd
	var sources []copySource

	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return nil, err
		}

		switch action {
		case merkletrie.Insert:
			added = append(added, pendingAdd{idx: len(entries), hash: ch.To.TreeEntry.Hash})
			entries = append(entries, DiffEntry{Kind: ChangeKindAdded, NewPath: ch.To.Name})
		case merkletrie.Delete:
			sources = append(sources, copySource{name: ch.From.Name, hash: ch.From.TreeEntry.Hash})
			entries = append(entries, DiffEntry{Kind: ChangeKindDeleted, OldPath: ch.From.Name})
		default:
			if ch.From.Name != ch.To.Name {
				// go-git pairs empty blobs by hash; git never treats them as renames.
				if ch.From.TreeEntry.Hash == emptyBlobHash {
					sources = append(sources, copySource{name: ch.From.Name, hash: ch.From.TreeEntry.Hash})
					entries = append(entries, DiffEntry{Kind: ChangeKindDeleted, OldPath: ch.From.Name})
					added = append(added, pendingAdd{idx: len(entries), hash: ch.To.TreeEntry.Hash})
					entries = append(entries, DiffEntry{Kind: ChangeKindAdded, NewPath: ch.To.Name})
					continue
				}
				score, err := r.renameScore(ch.From.TreeEntry.Hash, ch.To.TreeEntry.Hash)
				if err != nil {
					return nil, err
				}
				entries = append(entries, DiffEntry{
					Kind:    ChangeKindRenamed,
					OldPath: ch.From.Name,
					NewPath: ch.To.Name,
					Score:   score,
				})
				continue
			}
			sources = append(sources, copySource{name: ch.From.Name, hash: ch.From.TreeEntry.Hash})
			entries = append(entries, DiffEntry{Kind: ChangeKindModified, OldPath: ch.From.Name, NewPath: ch.To.Name})
		}
	}

	if r.opts.DetectCopies && len(added) > 0 {
		if err := r.detectCopies(ctx, from, entries, added, sources); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (r *HistoryReader) commitTree(sha string) (*object.Tree, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", short(sha), err)
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree of %s: %w", short(sha), err)
	}
	return tree, nil
}

// renameScore reports the similarity of a rename pair go-git already accepted.
func (r *HistoryReader) renameScore(from, to plumbing.Hash) (int, error) {
	if from == to {
		return 100, nil
	}
	a, okA, err := r.readBlob(from)
	if err != nil {
		return 0, err
	}
	b, okB, err := r.readBlob(to)
	if err != nil {
		return 0, err
	}
	if !okA || !okB {
		return r.opts.renameScore(), nil
	}
	return similarityScore(a, b), nil
}

func short(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
