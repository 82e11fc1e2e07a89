package dataset

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors returned by dataset construction and lookups.
var (
	// ErrNilCounts indicates that a nil count matrix was passed to New.
	ErrNilCounts = errors.New("dataset: count matrix is nil")

	// ErrDimensionMismatch indicates that sample/feature name slices do not
	// align with the count matrix shape, or a registered variable/rank slice
	// has the wrong length.
	ErrDimensionMismatch = errors.New("dataset: dimension mismatch")

	// ErrInvalidCount indicates a negative, NaN or ±Inf entry in the count
	// matrix. Counts must be finite and non-negative.
	ErrInvalidCount = errors.New("dataset: negative or non-finite count")

	// ErrUnknownVariable indicates a lookup of a metadata field that was
	// never registered via WithVariable.
	ErrUnknownVariable = errors.New("dataset: unknown sample variable")

	// ErrUnknownRank indicates a lookup of a taxonomic rank that was never
	// registered via WithRank.
	ErrUnknownRank = errors.New("dataset: unknown taxonomic rank")

	// ErrDuplicateVariable indicates WithVariable registered the same field twice.
	ErrDuplicateVariable = errors.New("dataset: duplicate sample variable")

	// ErrDuplicateRank indicates WithRank registered the same rank twice.
	ErrDuplicateRank = errors.New("dataset: duplicate taxonomic rank")
)

// Dataset is an immutable, aligned view of one abundance study.
// All accessors are read-only; Counts returns a defensive copy so callers
// cannot mutate the shared matrix.
type Dataset struct {
	counts   *mat.Dense
	samples  []string
	features []string

	variables map[string][]string // field name -> per-sample values
	taxonomy  map[string][]string // rank name  -> per-feature labels
	ranks     []string            // registration order of ranks
}

// Option mutates the dataset under construction. Options are applied by New
// in order; each may fail, and the first failure aborts construction.
type Option func(*Dataset) error

// WithVariable registers a per-sample metadata variable (e.g. the grouping
// field). values must align 1:1 with the sample rows of the count matrix.
func WithVariable(field string, values []string) Option {
	return func(d *Dataset) error {
		if _, ok := d.variables[field]; ok {
			return fmt.Errorf("WithVariable(%q): %w", field, ErrDuplicateVariable)
		}
		if len(values) != len(d.samples) {
			return fmt.Errorf("WithVariable(%q): %d values for %d samples: %w",
				field, len(values), len(d.samples), ErrDimensionMismatch)
		}
		d.variables[field] = append([]string(nil), values...)

		return nil
	}
}

// WithRank registers per-feature taxonomy labels at the given rank.
// labels must align 1:1 with the feature columns of the count matrix.
func WithRank(rank string, labels []string) Option {
	return func(d *Dataset) error {
		if _, ok := d.taxonomy[rank]; ok {
			return fmt.Errorf("WithRank(%q): %w", rank, ErrDuplicateRank)
		}
		if len(labels) != len(d.features) {
			return fmt.Errorf("WithRank(%q): %d labels for %d features: %w",
				rank, len(labels), len(d.features), ErrDimensionMismatch)
		}
		d.taxonomy[rank] = append([]string(nil), labels...)
		d.ranks = append(d.ranks, rank)

		return nil
	}
}

// New validates and assembles a Dataset from a samples×features count matrix
// plus aligned sample and feature identifiers.
//
// Validation (fail fast, before any statistics run):
//   - counts non-nil, rows == len(samples), cols == len(features);
//   - every entry finite and >= 0 (ErrInvalidCount otherwise).
//
// Complexity: O(samples·features) for the validation scan.
func New(counts *mat.Dense, samples, features []string, opts ...Option) (*Dataset, error) {
	if counts == nil {
		return nil, ErrNilCounts
	}
	r, c := counts.Dims()
	if r != len(samples) || c != len(features) {
		return nil, fmt.Errorf("New: %dx%d matrix, %d samples, %d features: %w",
			r, c, len(samples), len(features), ErrDimensionMismatch)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := counts.At(i, j)
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("New: counts[%d,%d]=%g: %w", i, j, v, ErrInvalidCount)
			}
		}
	}

	d := &Dataset{
		counts:    mat.DenseCopyOf(counts),
		samples:   append([]string(nil), samples...),
		features:  append([]string(nil), features...),
		variables: make(map[string][]string),
		taxonomy:  make(map[string][]string),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Counts returns a copy of the samples×features count matrix.
func (d *Dataset) Counts() *mat.Dense { return mat.DenseCopyOf(d.counts) }

// Variable returns the per-sample values of a registered metadata field.
// The returned slice is a copy; mutating it does not affect the dataset.
func (d *Dataset) Variable(field string) ([]string, error) {
	values, ok := d.variables[field]
	if !ok {
		return nil, fmt.Errorf("Variable(%q): %w", field, ErrUnknownVariable)
	}

	return append([]string(nil), values...), nil
}

// Taxa returns the per-feature taxonomy labels at the given rank.
// The returned slice is a copy.
func (d *Dataset) Taxa(rank string) ([]string, error) {
	labels, ok := d.taxonomy[rank]
	if !ok {
		return nil, fmt.Errorf("Taxa(%q): %w", rank, ErrUnknownRank)
	}

	return append([]string(nil), labels...), nil
}

// Ranks lists registered taxonomic ranks in registration order.
func (d *Dataset) Ranks() []string { return append([]string(nil), d.ranks...) }

// Samples lists sample identifiers in matrix row order.
func (d *Dataset) Samples() []string { return append([]string(nil), d.samples...) }

// Features lists feature identifiers in matrix column order.
func (d *Dataset) Features() []string { return append([]string(nil), d.features...) }

// NumSamples reports the number of sample rows.
func (d *Dataset) NumSamples() int { return len(d.samples) }

// NumFeatures reports the number of feature columns.
func (d *Dataset) NumFeatures() int { return len(d.features) }
