package git

import (
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type pendingAdd struct {
	idx  int // position in the entry slice
	hash plumbing.Hash
}

type copySource struct {
	name string
	hash plumbing.Hash
}

// emptyBlobHash identifies zero-length files, which are never paired.
var emptyBlobHash = plumbing.ComputeHash(plumbing.BlobObject, []byte{})

// detectCopies reclassifies added files as copies, the way `git diff -C` does:
// only files deleted or modified in the same diff are copy sources. With
// FindCopiesHarder every file of the old tree is a source for an exact copy.
func (r *HistoryReader) detectCopies(ctx context.Context, from *object.Tree, entries []DiffEntry, added []pendingAdd, sources []copySource) error {
	exact := make(map[plumbing.Hash]string, len(sources))
	if r.opts.FindCopiesHarder {
		index, err := blobIndex(from)
		if err != nil {
			return err
		}
		exact = index
	}
	// Sources from the diff itself win over unrelated files of the tree.
	for i := len(sources) - 1; i >= 0; i-- {
		exact[sources[i].hash] = sources[i].name
	}

	threshold := r.opts.renameScore()
	for _, add := range added {
		if err := ctx.Err(); err != nil {
			return err
		}
		if add.hash == emptyBlobHash {
			continue
		}

		if name, ok := exact[add.hash]; ok {
			entries[add.idx].Kind = ChangeKindCopied
			entries[add.idx].OldPath = name
			entries[add.idx].Score = 100
			continue
		}

		if len(sources) == 0 {
			continue
		}
		content, ok, err := r.readBlob(add.hash)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		best, bestScore := "", -1
		for _, src := range sources {
			if src.hash == emptyBlobHash {
				continue
			}
			srcContent, ok, err := r.readBlob(src.hash)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if score := similarityScore(srcContent, content); score > bestScore {
				best, bestScore = src.name, score
			}
		}

		if best != "" && bestScore >= threshold {
			entries[add.idx].Kind = ChangeKindCopied
			entries[add.idx].OldPath = best
			entries[add.idx].Score = bestScore
		}
	}

	return nil
}

// blobIndex maps every non-empty blob hash of the tree to the first path
// holding it.
func blobIndex(tree *object.Tree) (map[plumbing.Hash]string, error) {
	index := make(map[plumbing.Hash]string)
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	for {
		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walk tree %s: %w", tree.Hash, err)
		}
		if !entry.Mode.IsFile() || entry.Hash == emptyBlobHash {
			continue
		}
		if _, ok := index[entry.Hash]; !ok {
			index[entry.Hash] = name
		}
	}

	return index, nil
}

// readBlob returns the blob content, or ok=false when it exceeds MaxBlobSize.
func (r *HistoryReader) readBlob(h plumbing.Hash) (string, bool, error) {
	blob, err := r.repo.BlobObject(h)
	if err != nil {
		return "", false, fmt.Errorf("read blob %s: %w", h, err)
	}
	if blob.Size > r.opts.maxBlobSize() {
		return "", false, nil
	}

	rd, err := blob.Reader()
	if err != nil {
		return "", false, fmt.Errorf("read blob %s: %w", h, err)
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		return "", false, fmt.Errorf("read blob %s: %w", h, err)
	}
	return string(data), true, nil
}
