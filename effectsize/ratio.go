package effectsize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultPseudocount is the pseudo-mass shared between the two group means
// when either mean is exactly zero.
const DefaultPseudocount = 0.5

// RatioProportion returns mean(abd1)/mean(abd2), the ratio-of-proportions
// effect size.
//
// Zero-mean policy: if either group mean is exactly 0, the shared pseudocount
// is rescaled by 1/(mean1+mean2) and added to both means before dividing.
// This prevents division by zero while keeping the total pseudo-mass constant
// regardless of the magnitude of the non-zero mean. When both groups are
// entirely zero the rescaling itself is undefined (0/0) and the final NaN is
// coerced to 0 — "no ratio to report", never a missing value.
//
// Symmetry: RatioProportion(a, b) == 1/RatioProportion(b, a) whenever neither
// mean is zero.
func RatioProportion(abd1, abd2 []float64, pseudocount float64) float64 {
	mean1 := stat.Mean(abd1, nil)
	mean2 := stat.Mean(abd2, nil)

	if mean1 == 0 || mean2 == 0 {
		shared := pseudocount / (mean1 + mean2)
		mean1 += shared
		mean2 += shared
	}

	ratio := mean1 / mean2
	if math.IsNaN(ratio) {
		return 0
	}

	return ratio
}

// RatioProportions vectorises RatioProportion over feature-major groups
// (one []float64 per feature, as produced by abundance.GroupColumns).
//
// Errors:
//   - ErrFeatureMismatch when the groups carry different feature counts.
func RatioProportions(g1, g2 [][]float64, pseudocount float64) ([]float64, error) {
	if len(g1) != len(g2) {
		return nil, fmt.Errorf("RatioProportions: %d vs %d features: %w", len(g1), len(g2), ErrFeatureMismatch)
	}

	out := make([]float64, len(g1))
	for f := range g1 {
		out[f] = RatioProportion(g1[f], g2[f], pseudocount)
	}

	return out, nil
}
