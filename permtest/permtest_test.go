package permtest_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/biomark/permtest"
)

// evenSpread returns n values centered on mid with step 0.02, a convenient
// proportion vector with non-zero variance.
func evenSpread(mid float64, n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = mid + 0.02*(float64(i)-float64(n-1)/2)
	}

	return vals
}

// TestStatistic_KnownValue pins White's t on the exact-by-construction case:
// means 0.5 vs 0.1, se = 0.01 ⇒ t = 40.
func TestStatistic_KnownValue(t *testing.T) {
	g1 := []float64{0.48, 0.49, 0.50, 0.51, 0.52}
	g2 := []float64{0.08, 0.09, 0.10, 0.11, 0.12}

	stat, degenerate := permtest.Statistic(g1, g2)
	assert.False(t, degenerate)
	assert.InDelta(t, 40.0, stat, 1e-9)
}

// TestStatistic_DegenerateVariance: two constant groups have a zero
// denominator; the fixed 1e-6 substitute must yield a large finite value and
// the degenerate flag, never NaN/Inf.
func TestStatistic_DegenerateVariance(t *testing.T) {
	g1 := []float64{0.2, 0.2, 0.2}
	g2 := []float64{0.4, 0.4, 0.4}

	stat, degenerate := permtest.Statistic(g1, g2)
	assert.True(t, degenerate)
	assert.False(t, math.IsNaN(stat))
	assert.False(t, math.IsInf(stat, 0))
	assert.InDelta(t, -200000.0, stat, 1e-6, "(-0.2)/1e-6")
}

// TestRun_LargeSampleRegime: with 8 samples per group the per-feature
// add-one estimator is used; p-values lie in (0, 1] and a fully separated
// feature comes out significant.
func TestRun_LargeSampleRegime(t *testing.T) {
	g1 := [][]float64{evenSpread(0.5, 8), evenSpread(0.3, 8)}
	g2 := [][]float64{evenSpread(0.1, 8), evenSpread(0.3, 8)}
	totals := []float64{100, 100}

	res, err := permtest.Run(context.Background(), g1, g2, totals, totals,
		&permtest.Options{Permutations: 200, Rand: rand.New(rand.NewSource(7))})
	require.NoError(t, err)

	assert.False(t, res.SmallSample)
	for f := 0; f < 2; f++ {
		for _, p := range []float64{res.PTwoSide[f], res.PGreater[f], res.PLess[f]} {
			assert.Greater(t, p, 0.0, "add-one smoothing forbids p=0")
			assert.LessOrEqual(t, p, 1.0)
		}
	}
	assert.Less(t, res.PTwoSide[0], 0.05, "separated feature must be significant")
	assert.Greater(t, res.PTwoSide[1], 0.05, "identical feature must not be significant")
	assert.InDelta(t, 40.0, res.DiffMeanPct[0], 1e-9)
}

// TestRun_Deterministic: same inputs and seed produce identical results.
func TestRun_Deterministic(t *testing.T) {
	g1 := [][]float64{evenSpread(0.5, 8)}
	g2 := [][]float64{evenSpread(0.2, 8)}
	totals := []float64{50}

	run := func() *permtest.Result {
		res, err := permtest.Run(context.Background(), g1, g2, totals, totals,
			&permtest.Options{Permutations: 100, Rand: rand.New(rand.NewSource(42))})
		require.NoError(t, err)

		return res
	}

	assert.Equal(t, run(), run())
}

// TestRun_SmallSampleRegime: with 5 samples per group the pooled estimator
// engages; non-high-frequency features keep the p=0 placeholder for the
// exact-test fallback.
func TestRun_SmallSampleRegime(t *testing.T) {
	g1 := [][]float64{evenSpread(0.5, 5), {0.01, 0, 0, 0, 0}}
	g2 := [][]float64{evenSpread(0.1, 5), {0, 0, 0.01, 0, 0}}
	// Feature 0 is high-frequency (totals ≥ 5 in both groups); feature 1
	// totals 1 < 5 on both sides.
	total1 := []float64{60, 1}
	total2 := []float64{40, 1}

	res, err := permtest.Run(context.Background(), g1, g2, total1, total2,
		&permtest.Options{Permutations: 100, Rand: rand.New(rand.NewSource(3))})
	require.NoError(t, err)

	assert.True(t, res.SmallSample)
	assert.Equal(t, []bool{true, false}, res.HighFrequency)

	assert.GreaterOrEqual(t, res.PTwoSide[0], 0.0)
	assert.LessOrEqual(t, res.PTwoSide[0], 1.0)
	assert.Zero(t, res.PTwoSide[1], "non-high-frequency placeholder")
	assert.Zero(t, res.PGreater[1])
	assert.Zero(t, res.PLess[1])
}

// TestRun_Cancellation: an already-cancelled context aborts the permutation
// loop with the wrapped context error.
func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g1 := [][]float64{evenSpread(0.5, 8)}
	g2 := [][]float64{evenSpread(0.1, 8)}
	totals := []float64{10}

	_, err := permtest.Run(ctx, g1, g2, totals, totals, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestRun_Validation covers the fail-fast sentinels.
func TestRun_Validation(t *testing.T) {
	ctx := context.Background()
	ok := [][]float64{{0.1, 0.2, 0.3}}
	totals := []float64{5}

	_, err := permtest.Run(ctx, nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, permtest.ErrNoFeatures)

	_, err = permtest.Run(ctx, ok, [][]float64{}, totals, totals, nil)
	assert.ErrorIs(t, err, permtest.ErrFeatureMismatch)

	_, err = permtest.Run(ctx, ok, [][]float64{{0.1}}, totals, totals, nil)
	assert.ErrorIs(t, err, permtest.ErrGroupSize)

	_, err = permtest.Run(ctx, ok, ok, totals, totals, &permtest.Options{Permutations: -1})
	assert.ErrorIs(t, err, permtest.ErrPermutations)
}

// TestRun_ConstantGroupsNullDistribution: with two constant groups the
// permuted statistics must use the same fixed-denominator substitution as
// the observed one. Shuffles that reassemble the constant groups yield
// t = ±200000, never NaN; with observed t = -200000 every non-reassembled
// shuffle exceeds it, nothing falls below it, and the reassembly
// probability (1/20 per side on 3v3) shows up in the one-sided p-values.
func TestRun_ConstantGroupsNullDistribution(t *testing.T) {
	g1 := [][]float64{{0.2, 0.2, 0.2}}
	g2 := [][]float64{{0.4, 0.4, 0.4}}
	totals := []float64{10}

	res, err := permtest.Run(context.Background(), g1, g2, totals, totals,
		&permtest.Options{Permutations: 2000, Rand: rand.New(rand.NewSource(13))})
	require.NoError(t, err)

	require.True(t, res.SmallSample)
	require.Equal(t, []int{0}, res.Degenerate)
	assert.InDelta(t, -200000.0, res.T[0], 1e-6)

	for _, p := range []float64{res.PTwoSide[0], res.PGreater[0], res.PLess[0]} {
		assert.False(t, math.IsNaN(p))
	}
	assert.Zero(t, res.PLess[0], "no permuted statistic can fall below the observed minimum")
	assert.Zero(t, res.PTwoSide[0], "no permuted statistic exceeds the observed |t|")
	assert.InDelta(t, 0.95, res.PGreater[0], 0.03,
		"all shuffles except the exact reassembly (1/20) sit above the observed t")
}

// TestRun_DegenerateFeatureReported: a zero-variance-both-groups feature is
// listed in Result.Degenerate while the run still completes.
func TestRun_DegenerateFeatureReported(t *testing.T) {
	flat1 := []float64{0.2, 0.2, 0.2, 0.2, 0.2, 0.2, 0.2, 0.2}
	flat2 := []float64{0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4}
	g1 := [][]float64{flat1, evenSpread(0.3, 8)}
	g2 := [][]float64{flat2, evenSpread(0.3, 8)}
	totals := []float64{100, 100}

	res, err := permtest.Run(context.Background(), g1, g2, totals, totals,
		&permtest.Options{Permutations: 50, Rand: rand.New(rand.NewSource(1))})
	require.NoError(t, err)

	assert.Equal(t, []int{0}, res.Degenerate)
	assert.False(t, math.IsNaN(res.T[0]))
	assert.False(t, math.IsInf(res.T[0], 0))
}
