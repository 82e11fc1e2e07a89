package permtest

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Statistic computes White's two-sample t-statistic for one feature:
//
//	t = (mean1 - mean2) / sqrt(var1/n1 + var2/n2)
//
// on within-group proportion values. When both groups have zero variance the
// denominator is exactly 0; a fixed 1e-6 denominator is substituted and
// degenerate is reported true, so the caller gets a defined, very large |t|
// instead of NaN/Inf.
func Statistic(vals1, vals2 []float64) (t float64, degenerate bool) {
	n1 := float64(len(vals1))
	n2 := float64(len(vals2))

	mean1 := stat.Mean(vals1, nil)
	mean2 := stat.Mean(vals2, nil)
	var1 := stat.Variance(vals1, nil)
	var2 := stat.Variance(vals2, nil)

	denom := math.Sqrt(var1/n1 + var2/n2)
	if denom == 0 {
		return (mean1 - mean2) / degenerateDenominator, true
	}

	return (mean1 - mean2) / denom, false
}

// Run executes the full permutation test.
//
// g1 and g2 are feature-major proportion values (one []float64 per feature,
// see abundance.GroupColumns). rawTotal1 and rawTotal2 carry each feature's
// total raw count per group; they classify high-frequency features in the
// small-sample regime and must align with the feature axis.
//
// The null distribution is built from opts.Permutations reshuffles of the
// pooled proportions: group sizes stay fixed and the first n1 reshuffled
// values form group 1. P-values follow the regime described in the package
// documentation. The loop checks ctx once per permutation and returns the
// wrapped context error on cancellation.
//
// Errors:
//   - ErrNoFeatures, ErrFeatureMismatch, ErrGroupSize for malformed input.
//   - ErrPermutations for a negative permutation count.
//   - ctx.Err() wrapped, on cancellation.
//
// Complexity: O(nperm · features · (n1+n2)) time; O(features · (n1+n2))
// space, plus O(nperm · |HF|) for the pooled small-sample estimator.
func Run(ctx context.Context, g1, g2 [][]float64, rawTotal1, rawTotal2 []float64, opts *Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	resolved := DefaultOptions()
	if opts != nil {
		resolved = *opts
	}
	if resolved.Permutations == 0 {
		resolved.Permutations = DefaultPermutations
	}
	if resolved.Permutations < 0 {
		return nil, fmt.Errorf("Run: %d permutations: %w", resolved.Permutations, ErrPermutations)
	}
	rng := resolveRNG(resolved.Rand)

	nf := len(g1)
	if nf == 0 {
		return nil, fmt.Errorf("Run: %w", ErrNoFeatures)
	}
	if len(g2) != nf || len(rawTotal1) != nf || len(rawTotal2) != nf {
		return nil, fmt.Errorf("Run: features g1=%d g2=%d raw1=%d raw2=%d: %w",
			nf, len(g2), len(rawTotal1), len(rawTotal2), ErrFeatureMismatch)
	}
	n1, n2 := len(g1[0]), len(g2[0])
	if n1 < 2 || n2 < 2 {
		return nil, fmt.Errorf("Run: group sizes %d/%d: %w", n1, n2, ErrGroupSize)
	}
	for f := 0; f < nf; f++ {
		if len(g1[f]) != n1 || len(g2[f]) != n2 {
			return nil, fmt.Errorf("Run: feature %d ragged group vectors: %w", f, ErrGroupSize)
		}
	}

	res := &Result{
		T:             make([]float64, nf),
		DiffMeanPct:   make([]float64, nf),
		PTwoSide:      make([]float64, nf),
		PGreater:      make([]float64, nf),
		PLess:         make([]float64, nf),
		HighFrequency: make([]bool, nf),
		SmallSample:   n1 < smallSampleThreshold || n2 < smallSampleThreshold,
	}

	// Observed statistics and the pooled per-feature value vectors.
	pooled := make([][]float64, nf)
	hfCount := 0
	for f := 0; f < nf; f++ {
		t, degenerate := Statistic(g1[f], g2[f])
		res.T[f] = t
		res.DiffMeanPct[f] = (stat.Mean(g1[f], nil) - stat.Mean(g2[f], nil)) * 100
		if degenerate {
			res.Degenerate = append(res.Degenerate, f)
		}

		res.HighFrequency[f] = rawTotal1[f] >= float64(n1) && rawTotal2[f] >= float64(n2)
		if res.HighFrequency[f] {
			hfCount++
		}

		pooled[f] = make([]float64, 0, n1+n2)
		pooled[f] = append(pooled[f], g1[f]...)
		pooled[f] = append(pooled[f], g2[f]...)
	}

	nperm := resolved.Permutations
	idx := make([]int, n1+n2)
	for i := range idx {
		idx[i] = i
	}

	// Per-feature strict counters for the large-sample estimator.
	var gCount, lCount, twoCount []int
	// Pooled permuted statistics over high-frequency features for the
	// small-sample estimator.
	var pool []float64
	if res.SmallSample {
		pool = make([]float64, 0, nperm*hfCount)
	} else {
		gCount = make([]int, nf)
		lCount = make([]int, nf)
		twoCount = make([]int, nf)
	}

	for p := 0; p < nperm; p++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("Run: permutation %d: %w", p, err)
		}
		shuffleIndices(idx, rng)

		for f := 0; f < nf; f++ {
			if res.SmallSample && !res.HighFrequency[f] {
				continue // contributes nothing to the pooled estimator
			}
			t := permutedStatistic(pooled[f], idx, n1)
			if res.SmallSample {
				pool = append(pool, t)

				continue
			}
			if t > res.T[f] {
				gCount[f]++
			}
			if t < res.T[f] {
				lCount[f]++
			}
			if math.Abs(t) > math.Abs(res.T[f]) {
				twoCount[f]++
			}
		}
	}

	if res.SmallSample {
		smallSamplePValues(res, pool, nperm, hfCount)

		return res, nil
	}

	// Add-one smoothing keeps permutation p-values inside (0, 1].
	denom := float64(nperm + 1)
	for f := 0; f < nf; f++ {
		res.PGreater[f] = float64(gCount[f]+1) / denom
		res.PLess[f] = float64(lCount[f]+1) / denom
		res.PTwoSide[f] = float64(twoCount[f]+1) / denom
	}

	return res, nil
}

// permutedStatistic recomputes White's t for one feature under a permuted
// group assignment: pooled[idx[0..n1)] forms group 1, the rest group 2.
// Uses sum/sum-of-squares accumulation with variances clamped at 0, and the
// same fixed-denominator substitution as Statistic.
func permutedStatistic(pooled []float64, idx []int, n1 int) float64 {
	n := len(pooled)
	n2 := n - n1

	var sum1, sq1 float64
	for _, i := range idx[:n1] {
		v := pooled[i]
		sum1 += v
		sq1 += v * v
	}
	var sum2, sq2 float64
	for _, i := range idx[n1:] {
		v := pooled[i]
		sum2 += v
		sq2 += v * v
	}

	fn1, fn2 := float64(n1), float64(n2)
	mean1 := sum1 / fn1
	mean2 := sum2 / fn2
	// The single-pass form can round to a tiny negative value for a constant
	// group; clamp so the degenerate substitution below fires instead of
	// Sqrt(negative) = NaN leaking into the null distribution.
	var1 := (sq1 - fn1*mean1*mean1) / (fn1 - 1)
	if var1 < 0 {
		var1 = 0
	}
	var2 := (sq2 - fn2*mean2*mean2) / (fn2 - 1)
	if var2 < 0 {
		var2 = 0
	}

	denom := math.Sqrt(var1/fn1 + var2/fn2)
	if denom == 0 {
		denom = degenerateDenominator
	}

	return (mean1 - mean2) / denom
}

// smallSamplePValues fills the pooled small-sample estimator: statistics of
// all high-frequency features across all permutations are ranked jointly, and
// each high-frequency feature's p-value is the strict exceedance count over
// that joint pool. Non-high-frequency features keep the p=0 placeholder for
// the exact-test fallback.
func smallSamplePValues(res *Result, pool []float64, nperm, hfCount int) {
	if hfCount == 0 {
		return // everything is a fallback candidate
	}

	sorted := append([]float64(nil), pool...)
	sort.Float64s(sorted)

	absSorted := make([]float64, len(pool))
	for i, v := range pool {
		absSorted[i] = math.Abs(v)
	}
	sort.Float64s(absSorted)

	denom := float64(nperm * hfCount)
	for f := range res.T {
		if !res.HighFrequency[f] {
			continue
		}
		t := res.T[f]
		res.PGreater[f] = float64(countGreater(sorted, t)) / denom
		res.PLess[f] = float64(sort.SearchFloat64s(sorted, t)) / denom
		res.PTwoSide[f] = float64(countGreater(absSorted, math.Abs(t))) / denom
	}
}

// countGreater reports how many values in the ascending slice are strictly
// greater than x.
func countGreater(sorted []float64, x float64) int {
	return len(sorted) - sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
}
