package fisher

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SparseFeatures returns the indices of features whose total raw count is
// below the group's sample size in both groups — i.e. a mean count per
// sample under 1 on both sides. The permutation test has no power there and
// callers substitute ExactTest on pooled counts instead.
//
// raw1 and raw2 are feature-major raw counts (one []float64 per feature, see
// abundance.GroupColumns over the count matrix). The index set is computed
// once per run and is read-only afterward.
//
// Errors:
//   - ErrFeatureMismatch when the groups carry different feature counts.
func SparseFeatures(raw1, raw2 [][]float64) ([]int, error) {
	if len(raw1) != len(raw2) {
		return nil, fmt.Errorf("SparseFeatures: %d vs %d features: %w", len(raw1), len(raw2), ErrFeatureMismatch)
	}

	var sparse []int
	for f := range raw1 {
		n1 := float64(len(raw1[f]))
		n2 := float64(len(raw2[f]))
		if floats.Sum(raw1[f]) < n1 && floats.Sum(raw2[f]) < n2 {
			sparse = append(sparse, f)
		}
	}

	return sparse, nil
}

// GroupTotals sums each feature's raw counts within one group, the shape the
// permutation engine's high-frequency classification consumes.
func GroupTotals(raw [][]float64) []float64 {
	totals := make([]float64, len(raw))
	for f := range raw {
		totals[f] = floats.Sum(raw[f])
	}

	return totals
}
