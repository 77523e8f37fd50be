package entropy

import (
	"math"
)

// Calculator calculates normalized Shannon entropy over a set of counts.
// A followed file uses it for the spread of commits across contributors.
type Calculator struct{}

// NewCalculator creates a new entropy calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// CalculateDistributionEntropy returns the normalized Shannon entropy of
// counts. Returns a value between 0 and 1:
//   - 0 = concentrated (a single key, or all weight on one key)
//   - 1 = evenly distributed
//
// Keys with a zero or negative count are ignored.
func (c *Calculator) CalculateDistributionEntropy(counts map[string]int) float64 {
	total := 0
	n := 0
	for _, v := range counts {
		if v > 0 {
			total += v
			n++
		}
	}
	if n <= 1 {
		return 0.0
	}

	// Shannon entropy: -Σ(p_i × log2(p_i))
	entropy := 0.0
	for _, v := range counts {
		if v > 0 {
			p := float64(v) / float64(total)
			entropy -= p * math.Log2(p)
		}
	}

	// Normalize by log2(n), the entropy of an even split
	normalized := entropy / math.Log2(float64(n))

	if normalized < 0 {
		return 0.0
	}
	if normalized > 1 {
		return 1.0
	}
	return normalized
}
