package git

import "github.com/sergi/go-diff/diffmatchpatch"

// similarityScore returns how much of the larger text survives in the other,
// on a 0-100 scale, using a line-level diff.
func similarityScore(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	dmp := diffmatchpatch.New()
	runesA, runesB, lines := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(runesA, runesB, false), lines)

	common := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			common += len(d.Text)
		}
	}

	return common * 100 / max(len(a), len(b))
}
