package git

import (
	"context"
	"errors"
)

// ErrStop can be returned by an iteration callback to end the walk early.
// It is never returned to the caller.
var ErrStop = errors.New("stop iteration")

// HistorySource defines the read-only repository operations the rename
// follower needs. All iterations yield commits newest first.
type HistorySource interface {
	// ForEachPathCommit calls fn for every commit reachable from the start
	// revision that touched path.
	ForEachPathCommit(ctx context.Context, path string, fn func(CommitInfo) error) error
	// ForEachAncestor calls fn for sha itself and every commit reachable from it.
	ForEachAncestor(ctx context.Context, sha string, fn func(CommitInfo) error) error
	// DiffCommits compares the tree of fromSHA with the tree of toSHA and
	// reports renames and copies.
	DiffCommits(ctx context.Context, fromSHA, toSHA string) ([]DiffEntry, error)
}

// Compile-time interface conformance check.
var _ HistorySource = (*HistoryReader)(nil)
