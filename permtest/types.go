package permtest

import (
	"errors"
	"math/rand"
)

// Sentinel errors returned by the permutation engine.
var (
	// ErrNoFeatures indicates empty input groups.
	ErrNoFeatures = errors.New("permtest: no features to test")

	// ErrFeatureMismatch indicates misaligned feature counts between the two
	// groups or the raw-total vectors.
	ErrFeatureMismatch = errors.New("permtest: feature count mismatch")

	// ErrGroupSize indicates a group with fewer than two samples, or a
	// feature vector whose length disagrees with its group's sample count.
	ErrGroupSize = errors.New("permtest: each group needs at least two samples")

	// ErrPermutations indicates a non-positive permutation count.
	ErrPermutations = errors.New("permtest: permutation count must be positive")
)

// DefaultPermutations is the permutation count used when Options.Permutations
// is 0.
const DefaultPermutations = 1000

// smallSampleThreshold separates the two p-value regimes: the pooled
// small-sample estimator is used when either group has fewer samples.
const smallSampleThreshold = 8

// degenerateDenominator replaces an exactly-zero variance denominator in the
// White statistic, keeping |t| large but finite instead of NaN/Inf.
const degenerateDenominator = 1e-6

// Options configures one permutation run.
//   - Permutations: number of label permutations (0 ⇒ DefaultPermutations).
//   - Rand: explicit RNG for reproducible shuffles; nil ⇒ fixed-seed stream.
type Options struct {
	Permutations int
	Rand         *rand.Rand
}

// DefaultOptions returns the canonical configuration: 1000 permutations and
// the deterministic default RNG stream.
func DefaultOptions() Options {
	return Options{Permutations: DefaultPermutations}
}

// Result holds the per-feature outcome of one permutation run.
type Result struct {
	// T is the observed White t-statistic per feature.
	T []float64

	// DiffMeanPct is the observed difference of group mean proportions ×100.
	DiffMeanPct []float64

	// PTwoSide, PGreater, PLess are the permutation p-values per feature.
	// In the small-sample regime, features outside the high-frequency set
	// hold a 0 placeholder awaiting the exact-test override.
	PTwoSide []float64
	PGreater []float64
	PLess    []float64

	// Degenerate lists feature indices where both groups had zero variance
	// and the fixed denominator was substituted.
	Degenerate []int

	// HighFrequency marks features whose per-group total raw count reaches
	// the group's sample size in both groups. Only meaningful when
	// SmallSample is true; in the large-sample regime all features use the
	// per-feature estimator.
	HighFrequency []bool

	// SmallSample reports which p-value regime was used.
	SmallSample bool
}
