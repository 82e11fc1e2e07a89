package effectsize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/biomark/effectsize"
)

// Two well-separated proportion groups: means 0.50 and 0.10, equal spread.
// Welch numbers are exact by construction: se = 0.01, t = 40, df = 8.
var (
	sepG1 = []float64{0.48, 0.49, 0.50, 0.51, 0.52}
	sepG2 = []float64{0.08, 0.09, 0.10, 0.11, 0.12}
)

// TestTTest_WelchKnownValues pins the percentage-unit outputs on a case
// whose t-statistic and degrees of freedom are exact by construction.
func TestTTest_WelchKnownValues(t *testing.T) {
	res, err := effectsize.TTest([][]float64{sepG1}, [][]float64{sepG2}, effectsize.Welch, 0.95)
	require.NoError(t, err)
	require.Len(t, res, 1)

	r := res[0]
	assert.InDelta(t, 50.0, r.Mean1, 1e-9)
	assert.InDelta(t, 10.0, r.Mean2, 1e-9)
	assert.InDelta(t, 40.0, r.Diff, 1e-9)
	assert.Less(t, r.P, 1e-8, "t=40 on 8 df must be overwhelmingly significant")
	assert.Greater(t, r.P, 0.0)

	// t_{0.975, 8} = 2.306004; the standard error is exactly 1 pct.
	assert.InDelta(t, 40.0-2.306004, r.CILower, 1e-3)
	assert.InDelta(t, 40.0+2.306004, r.CIUpper, 1e-3)
}

// TestTTest_StudentMatchesWelchOnEqualVariance: with equal group sizes and
// equal variances the pooled and Welch variants coincide.
func TestTTest_StudentMatchesWelchOnEqualVariance(t *testing.T) {
	welch, err := effectsize.TTest([][]float64{sepG1}, [][]float64{sepG2}, effectsize.Welch, 0.95)
	require.NoError(t, err)
	student, err := effectsize.TTest([][]float64{sepG1}, [][]float64{sepG2}, effectsize.Student, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, welch[0].P, student[0].P, 1e-12)
	assert.InDelta(t, welch[0].CILower, student[0].CILower, 1e-9)
	assert.InDelta(t, welch[0].CIUpper, student[0].CIUpper, 1e-9)
}

// TestTTest_DegenerateCoercion: two constant, identical groups have a 0/0
// statistic; the p-value must be coerced to 1 and the interval must collapse
// to the observed difference, never NaN.
func TestTTest_DegenerateCoercion(t *testing.T) {
	flat := []float64{0.2, 0.2, 0.2, 0.2}
	res, err := effectsize.TTest([][]float64{flat}, [][]float64{flat}, effectsize.Welch, 0.95)
	require.NoError(t, err)

	r := res[0]
	assert.Equal(t, 1.0, r.P)
	assert.Zero(t, r.Diff)
	assert.Zero(t, r.CILower)
	assert.Zero(t, r.CIUpper)
}

// TestTTest_ConfigErrors covers the fail-fast sentinels.
func TestTTest_ConfigErrors(t *testing.T) {
	g := [][]float64{{0.1, 0.2}}

	_, err := effectsize.TTest(g, g, effectsize.Kind(42), 0.95)
	assert.ErrorIs(t, err, effectsize.ErrUnknownKind)

	_, err = effectsize.TTest(g, g, effectsize.Welch, 1.0)
	assert.ErrorIs(t, err, effectsize.ErrConfLevel)

	_, err = effectsize.TTest(g, [][]float64{}, effectsize.Welch, 0.95)
	assert.ErrorIs(t, err, effectsize.ErrFeatureMismatch)

	_, err = effectsize.TTest([][]float64{{0.1}}, g, effectsize.Welch, 0.95)
	assert.ErrorIs(t, err, effectsize.ErrGroupSize)
}

// TestRatioProportion_Symmetry: ratio(a,b) == 1/ratio(b,a) when neither
// mean is zero.
func TestRatioProportion_Symmetry(t *testing.T) {
	a := []float64{0.1, 0.3, 0.2}
	b := []float64{0.4, 0.6, 0.5}

	ab := effectsize.RatioProportion(a, b, effectsize.DefaultPseudocount)
	ba := effectsize.RatioProportion(b, a, effectsize.DefaultPseudocount)
	assert.InDelta(t, 1.0, ab*ba, 1e-12)
	assert.InDelta(t, 0.4, ab, 1e-12, "0.2/0.5")
}

// TestRatioProportion_ZeroPolicies: both-zero yields 0 (never NaN); a single
// zero mean engages the rescaled shared pseudocount.
func TestRatioProportion_ZeroPolicies(t *testing.T) {
	zero := []float64{0, 0, 0}

	assert.Zero(t, effectsize.RatioProportion(zero, zero, effectsize.DefaultPseudocount))

	// mean1 = 0.2, mean2 = 0: shared = 0.5/0.2 = 2.5 ⇒ 2.7/2.5 = 1.08.
	nonzero := []float64{0.1, 0.2, 0.3}
	got := effectsize.RatioProportion(nonzero, zero, effectsize.DefaultPseudocount)
	assert.InDelta(t, 1.08, got, 1e-12)
}

// TestRatioProportions_Mismatch covers the vectorised sentinel.
func TestRatioProportions_Mismatch(t *testing.T) {
	_, err := effectsize.RatioProportions([][]float64{{1}}, nil, 0.5)
	assert.ErrorIs(t, err, effectsize.ErrFeatureMismatch)
}
