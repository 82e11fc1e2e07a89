package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Sentinel errors returned by the bootstrap engine.
var (
	// ErrReplicates indicates a negative replicate count.
	ErrReplicates = errors.New("bootstrap: replicate count must be positive")

	// ErrConfLevel indicates a confidence level outside (0, 1).
	ErrConfLevel = errors.New("bootstrap: confidence level must be in (0, 1)")

	// ErrEmptyGroup indicates a group with no samples to resample.
	ErrEmptyGroup = errors.New("bootstrap: empty group")

	// ErrFeatureMismatch indicates misaligned feature counts between groups.
	ErrFeatureMismatch = errors.New("bootstrap: feature count mismatch")
)

// DefaultReplicates is the replicate count used when Options.Replicates is 0.
const DefaultReplicates = 1000

// DefaultConfLevel is the confidence level used when Options.ConfLevel is 0.
const DefaultConfLevel = 0.95

// defaultRNGSeed keeps bare runs reproducible, matching the permutation
// engine's seed policy.
const defaultRNGSeed int64 = 1

// Options configures the bootstrap.
//   - Replicates: resampling draws per feature (0 ⇒ DefaultReplicates).
//   - ConfLevel: confidence level in (0,1) (0 ⇒ DefaultConfLevel).
//   - Rand: explicit RNG; nil ⇒ fixed-seed stream.
type Options struct {
	Replicates int
	ConfLevel  float64
	Rand       *rand.Rand
}

// Interval is one feature's percentile bootstrap interval, in percentage
// units.
type Interval struct {
	Lower, Upper float64
}

// CIs computes the bootstrap interval of the mean-proportion difference for
// every feature. g1 and g2 are feature-major (see abundance.GroupColumns).
// The loop checks ctx once per feature and returns the wrapped context error
// on cancellation.
//
// Errors:
//   - ErrReplicates, ErrConfLevel for invalid configuration.
//   - ErrFeatureMismatch, ErrEmptyGroup for malformed input.
//   - ctx.Err() wrapped, on cancellation.
//
// Complexity: O(features · replicates · (n1+n2)) time.
func CIs(ctx context.Context, g1, g2 [][]float64, opts *Options) ([]Interval, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	resolved := Options{}
	if opts != nil {
		resolved = *opts
	}
	if resolved.Replicates == 0 {
		resolved.Replicates = DefaultReplicates
	}
	if resolved.Replicates < 0 {
		return nil, fmt.Errorf("CIs: %d replicates: %w", resolved.Replicates, ErrReplicates)
	}
	if resolved.ConfLevel == 0 {
		resolved.ConfLevel = DefaultConfLevel
	}
	if resolved.ConfLevel <= 0 || resolved.ConfLevel >= 1 {
		return nil, fmt.Errorf("CIs: confidence level %g: %w", resolved.ConfLevel, ErrConfLevel)
	}
	if len(g1) != len(g2) {
		return nil, fmt.Errorf("CIs: %d vs %d features: %w", len(g1), len(g2), ErrFeatureMismatch)
	}
	rng := resolved.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(defaultRNGSeed))
	}

	out := make([]Interval, len(g1))
	diffs := make([]float64, resolved.Replicates)
	for f := range g1 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("CIs: feature %d: %w", f, err)
		}
		if len(g1[f]) == 0 || len(g2[f]) == 0 {
			return nil, fmt.Errorf("CIs: feature %d: %w", f, ErrEmptyGroup)
		}
		out[f] = diffMeanCI(g1[f], g2[f], diffs, resolved.ConfLevel, rng)
	}

	return out, nil
}

// DiffMeanCI computes one feature's interval. Exposed for callers that need
// a single feature outside the batch path; rng may be nil.
func DiffMeanCI(vals1, vals2 []float64, replicates int, confLevel float64, rng *rand.Rand) (Interval, error) {
	intervals, err := CIs(context.Background(),
		[][]float64{vals1}, [][]float64{vals2},
		&Options{Replicates: replicates, ConfLevel: confLevel, Rand: rng})
	if err != nil {
		return Interval{}, err
	}

	return intervals[0], nil
}

// diffMeanCI fills diffs with replicate mean differences, sorts them and
// applies the percentile index formulas. diffs is reused across features to
// avoid per-feature allocation.
func diffMeanCI(vals1, vals2, diffs []float64, confLevel float64, rng *rand.Rand) Interval {
	for r := range diffs {
		diffs[r] = resampledMean(vals1, rng) - resampledMean(vals2, rng)
	}
	sort.Float64s(diffs)

	replicates := float64(len(diffs))
	lo := int(math.Floor(0.5 * (1 - confLevel) * replicates))
	if lo < 0 {
		lo = 0
	}
	hi := int(math.Ceil((confLevel + 0.5*(1-confLevel)) * replicates))
	if hi > len(diffs)-1 {
		hi = len(diffs) - 1
	}

	return Interval{Lower: diffs[lo] * 100, Upper: diffs[hi] * 100}
}

// resampledMean draws len(vals) values from vals with replacement and
// returns their mean.
func resampledMean(vals []float64, rng *rand.Rand) float64 {
	var sum float64
	for range vals {
		sum += vals[rng.Intn(len(vals))]
	}

	return sum / float64(len(vals))
}
