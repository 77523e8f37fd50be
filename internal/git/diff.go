package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// DiffResult holds the result of a diff between two revisions.
type DiffResult struct {
	Base    string
	Head    string
	BaseSHA string
	HeadSHA string
	Entries []DiffEntry
}

// RenamesAndCopies returns only the entries linking two paths.
func (d *DiffResult) RenamesAndCopies() []DiffEntry {
	var out []DiffEntry
	for _, e := range d.Entries {
		if e.IsRenameOrCopy() {
			out = append(out, e)
		}
	}
	return out
}

// ParseDiffSpec splits a diff spec into base and head refs.
// Supports both "..." (three-dot) and ".." (two-dot) syntax.
func ParseDiffSpec(spec string) (base, head string, mergeBase bool, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", "", false, fmt.Errorf("empty diff spec")
	}

	// Try three-dot first (merge-base comparison)
	if idx := strings.Index(spec, "..."); idx != -1 {
		base = spec[:idx]
		head = spec[idx+3:]
		mergeBase = true
	} else if idx := strings.Index(spec, ".."); idx != -1 {
		base = spec[:idx]
		head = spec[idx+2:]
	} else {
		return "", "", false, fmt.Errorf("invalid diff spec %q: expected 'base..head' or 'base...head'", spec)
	}

	if base == "" {
		return "", "", false, fmt.Errorf("invalid diff spec %q: missing base ref", spec)
	}
	if head == "" {
		head = "HEAD"
	}

	return base, head, mergeBase, nil
}

// DiffRevisions runs the rename and copy detector between two revisions
// given as "base..head" or "base...head".
func (r *HistoryReader) DiffRevisions(ctx context.Context, spec string) (*DiffResult, error) {
	base, head, mergeBase, err := ParseDiffSpec(spec)
	if err != nil {
		return nil, err
	}

	baseHash, err := r.repo.ResolveRevision(plumbing.Revision(base))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", base, err)
	}
	headHash, err := r.repo.ResolveRevision(plumbing.Revision(head))
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", head, err)
	}

	from := *baseHash
	if mergeBase {
		from, err = r.mergeBase(*baseHash, *headHash)
		if err != nil {
			return nil, err
		}
	}

	entries, err := r.DiffCommits(ctx, from.String(), headHash.String())
	if err != nil {
		return nil, err
	}

	return &DiffResult{
		Base:    base,
		Head:    head,
		BaseSHA: from.String(),
		HeadSHA: headHash.String(),
		Entries: entries,
	}, nil
}

func (r *HistoryReader) mergeBase(a, b plumbing.Hash) (plumbing.Hash, error) {
	ca, err := r.repo.CommitObject(a)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	cb, err := r.repo.CommitObject(b)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	bases, err := ca.MergeBase(cb)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("merge base: %w", err)
	}
	if len(bases) == 0 {
		return plumbing.ZeroHash, fmt.Errorf("no merge base between %s and %s", short(a.String()), short(b.String()))
	}
	return bases[0].Hash, nil
}
