package abundance

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by the abundance transforms.
var (
	// ErrNilMatrix indicates a nil count matrix was passed in.
	ErrNilMatrix = errors.New("abundance: matrix is nil")

	// ErrInvalidValue indicates a negative, NaN or ±Inf count entry.
	ErrInvalidValue = errors.New("abundance: negative or non-finite value")

	// ErrEmptyLabels indicates an empty grouping label vector.
	ErrEmptyLabels = errors.New("abundance: empty label vector")

	// ErrGroupCardinality indicates the label vector does not contain exactly
	// two distinct values, which two-group tests require.
	ErrGroupCardinality = errors.New("abundance: label vector must have exactly two distinct values")

	// ErrLabelLength indicates len(labels) != number of sample rows.
	ErrLabelLength = errors.New("abundance: label vector length mismatch")
)

// Proportions converts a samples×features count matrix into relative
// proportions by dividing each row by its row sum.
//
// Degenerate-row policy: a row whose sum is 0 is returned as all zeros rather
// than NaN. Division by zero never happens and NaN never propagates into the
// statistical engines.
//
// Returns a new matrix; the input is not mutated.
//
// Errors:
//   - ErrNilMatrix for nil input.
//   - ErrInvalidValue for negative, NaN or ±Inf entries.
//
// Complexity: O(samples·features) time, O(samples·features) space.
func Proportions(counts *mat.Dense) (*mat.Dense, error) {
	if counts == nil {
		return nil, ErrNilMatrix
	}
	r, c := counts.Dims()
	out := mat.NewDense(r, c, nil)

	for i := 0; i < r; i++ {
		row := counts.RawRowView(i)
		for j, v := range row {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("Proportions: row %d col %d value %g: %w", i, j, v, ErrInvalidValue)
			}
		}
		sum := floats.Sum(row)
		if sum == 0 {
			continue // all-zero row stays all-zero
		}
		inv := 1.0 / sum
		for j, v := range row {
			out.Set(i, j, v*inv)
		}
	}

	return out, nil
}

// GroupSplit is a partition of matrix rows into exactly two named groups.
// Group order follows the first appearance of each label in the input
// vector; names are preserved end-to-end into output column labels.
type GroupSplit struct {
	names [2]string
	rows  [2][]int
}

// SplitTwoGroups partitions row indices 0..len(labels)-1 by label value.
//
// Every row belongs to exactly one group. The vector must contain exactly
// two distinct values; any other cardinality is a configuration error.
//
// Errors:
//   - ErrEmptyLabels when labels is empty.
//   - ErrGroupCardinality when the number of distinct labels is not 2.
func SplitTwoGroups(labels []string) (GroupSplit, error) {
	var gs GroupSplit
	if len(labels) == 0 {
		return gs, ErrEmptyLabels
	}

	distinct := 0
	for i, lab := range labels {
		g := -1
		for k := 0; k < distinct; k++ {
			if gs.names[k] == lab {
				g = k
				break
			}
		}
		if g < 0 {
			if distinct == 2 {
				return GroupSplit{}, fmt.Errorf("SplitTwoGroups: label %q is a third value: %w", lab, ErrGroupCardinality)
			}
			gs.names[distinct] = lab
			g = distinct
			distinct++
		}
		gs.rows[g] = append(gs.rows[g], i)
	}
	if distinct != 2 {
		return GroupSplit{}, fmt.Errorf("SplitTwoGroups: %d distinct value(s): %w", distinct, ErrGroupCardinality)
	}

	return gs, nil
}

// Name returns the label of group i (0 or 1).
func (gs GroupSplit) Name(i int) string { return gs.names[i] }

// Rows returns the matrix row indices of group i, in input order.
// The returned slice is a copy.
func (gs GroupSplit) Rows(i int) []int { return append([]int(nil), gs.rows[i]...) }

// Size returns the number of samples in group i.
func (gs GroupSplit) Size(i int) int { return len(gs.rows[i]) }

// GroupColumns extracts one group's values feature-major: the result has one
// []float64 per feature column, holding that feature's values over the given
// rows. This is the input shape shared by all statistical engines.
//
// Errors:
//   - ErrNilMatrix for nil input.
//   - ErrLabelLength when a row index is out of range.
//
// Complexity: O(len(rows)·features) time and space.
func GroupColumns(m *mat.Dense, rows []int) ([][]float64, error) {
	if m == nil {
		return nil, ErrNilMatrix
	}
	r, c := m.Dims()
	cols := make([][]float64, c)
	for j := range cols {
		cols[j] = make([]float64, len(rows))
	}
	for k, i := range rows {
		if i < 0 || i >= r {
			return nil, fmt.Errorf("GroupColumns: row index %d outside 0..%d: %w", i, r-1, ErrLabelLength)
		}
		row := m.RawRowView(i)
		for j := 0; j < c; j++ {
			cols[j][k] = row[j]
		}
	}

	return cols, nil
}
