package padjust_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/biomark/padjust"
)

// The evenly spaced vector used throughout; R's p.adjust outputs on it are
// exact rationals.
var pvec = []float64{0.01, 0.02, 0.03, 0.04, 0.05}

// TestAdjust_AgainstR pins each method against R's p.adjust on pvec.
func TestAdjust_AgainstR(t *testing.T) {
	cases := []struct {
		method padjust.Method
		want   []float64
	}{
		{padjust.None, []float64{0.01, 0.02, 0.03, 0.04, 0.05}},
		{padjust.Bonferroni, []float64{0.05, 0.10, 0.15, 0.20, 0.25}},
		{padjust.Holm, []float64{0.05, 0.08, 0.09, 0.09, 0.09}},
		{padjust.Hochberg, []float64{0.05, 0.05, 0.05, 0.05, 0.05}},
		{padjust.BH, []float64{0.05, 0.05, 0.05, 0.05, 0.05}},
		{padjust.FDR, []float64{0.05, 0.05, 0.05, 0.05, 0.05}},
	}

	for _, tc := range cases {
		got, err := padjust.Adjust(pvec, tc.method)
		require.NoError(t, err, tc.method)
		require.Len(t, got, len(tc.want), tc.method)
		for i := range got {
			assert.InDelta(t, tc.want[i], got[i], 1e-12, "%s[%d]", tc.method, i)
		}
	}
}

// TestAdjust_BY: the Benjamini–Yekutieli penalty is sum(1/i) = 137/60; on
// pvec every BH value is 0.05, so BY is uniformly 0.05·137/60.
func TestAdjust_BY(t *testing.T) {
	got, err := padjust.Adjust(pvec, padjust.BY)
	require.NoError(t, err)

	want := 0.05 * (1 + 0.5 + 1.0/3 + 0.25 + 0.2)
	for i := range got {
		assert.InDelta(t, want, got[i], 1e-12)
	}
}

// TestAdjust_HommelProperties: Hommel dominates Hochberg (never larger,
// elementwise) and never undercuts the raw p-values.
func TestAdjust_HommelProperties(t *testing.T) {
	p := []float64{0.001, 0.008, 0.039, 0.041, 0.042, 0.06, 0.074, 0.205, 0.212, 0.216}

	hommel, err := padjust.Adjust(p, padjust.Hommel)
	require.NoError(t, err)
	hochberg, err := padjust.Adjust(p, padjust.Hochberg)
	require.NoError(t, err)

	for i := range p {
		assert.LessOrEqual(t, hommel[i], hochberg[i]+1e-12, "index %d", i)
		assert.GreaterOrEqual(t, hommel[i], p[i], "index %d", i)
		assert.LessOrEqual(t, hommel[i], 1.0)
	}
}

// TestAdjust_PreservesOrderAndClamps: outputs stay aligned with inputs and
// never exceed 1.
func TestAdjust_PreservesOrderAndClamps(t *testing.T) {
	p := []float64{0.9, 0.001, 0.5}
	got, err := padjust.Adjust(p, padjust.Bonferroni)
	require.NoError(t, err)

	assert.Equal(t, []float64{1.0, 0.003, 1.0}, got)

	empty, err := padjust.Adjust(nil, padjust.Holm)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// TestAdjust_Errors covers the sentinels.
func TestAdjust_Errors(t *testing.T) {
	_, err := padjust.Adjust([]float64{1.5}, padjust.None)
	assert.ErrorIs(t, err, padjust.ErrInvalidP)

	_, err = padjust.Adjust([]float64{math.NaN()}, padjust.None)
	assert.ErrorIs(t, err, padjust.ErrInvalidP)

	_, err = padjust.Adjust([]float64{0.5}, padjust.Method("bogus"))
	assert.ErrorIs(t, err, padjust.ErrUnknownMethod)
}

// TestParseMethod: empty means no correction; unknown names error.
func TestParseMethod(t *testing.T) {
	m, err := padjust.ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, padjust.None, m)

	m, err = padjust.ParseMethod("BH")
	require.NoError(t, err)
	assert.Equal(t, padjust.BH, m)

	_, err = padjust.ParseMethod("bh")
	assert.ErrorIs(t, err, padjust.ErrUnknownMethod, "method names are case-sensitive, as in R")
}
