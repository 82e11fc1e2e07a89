package effectsize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sentinel errors returned by the effect-size engine.
var (
	// ErrUnknownKind indicates an unrecognized test kind.
	ErrUnknownKind = errors.New("effectsize: unknown t-test kind")

	// ErrConfLevel indicates a confidence level outside (0, 1).
	ErrConfLevel = errors.New("effectsize: confidence level must be in (0, 1)")

	// ErrFeatureMismatch indicates the two groups carry different feature counts.
	ErrFeatureMismatch = errors.New("effectsize: groups have different feature counts")

	// ErrGroupSize indicates a group with fewer than two samples; a two-sample
	// t-test needs at least two observations per group.
	ErrGroupSize = errors.New("effectsize: each group needs at least two samples")
)

// Kind selects the t-test variant. It is a tagged enum validated before any
// computation; there is no string dispatch inside the engine.
type Kind int

const (
	// Welch uses per-group variances with the Welch–Satterthwaite
	// degrees-of-freedom approximation (the default for proportions).
	Welch Kind = iota

	// Student pools the two group variances (classic equal-variance t-test).
	Student
)

// String implements fmt.Stringer for diagnostics.
func (k Kind) String() string {
	switch k {
	case Welch:
		return "welch"
	case Student:
		return "student"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// percentScale converts proportion units into the percentage units used by
// every output table in this module.
const percentScale = 100.0

// Result holds one feature's classic t-test outcome, in percentage units.
type Result struct {
	// P is the two-sided p-value; NaN inputs are coerced to 1.
	P float64

	// Mean1, Mean2 are the per-group mean proportions ×100.
	Mean1, Mean2 float64

	// Diff is Mean1 - Mean2.
	Diff float64

	// CILower, CIUpper bound the t-interval for Diff at the requested
	// confidence level. Degenerate (zero standard error) intervals collapse
	// to [Diff, Diff].
	CILower, CIUpper float64
}

// TTest runs a per-feature two-sample t-test on proportion values.
//
// g1 and g2 are feature-major: one []float64 per feature, holding that
// feature's proportion values within the group (see abundance.GroupColumns).
//
// Policy for undefined statistics: when both groups have zero variance the
// t-statistic is 0/0; the p-value is coerced to 1 and the interval collapses
// to the observed difference. This is "no evidence of difference", never a
// missing value.
//
// Errors:
//   - ErrUnknownKind, ErrConfLevel for invalid configuration.
//   - ErrFeatureMismatch when len(g1) != len(g2).
//   - ErrGroupSize when either group has < 2 samples.
//
// Complexity: O(features·(n1+n2)).
func TTest(g1, g2 [][]float64, kind Kind, confLevel float64) ([]Result, error) {
	if kind != Welch && kind != Student {
		return nil, fmt.Errorf("TTest: kind %d: %w", int(kind), ErrUnknownKind)
	}
	if confLevel <= 0 || confLevel >= 1 {
		return nil, fmt.Errorf("TTest: confLevel %g: %w", confLevel, ErrConfLevel)
	}
	if len(g1) != len(g2) {
		return nil, fmt.Errorf("TTest: %d vs %d features: %w", len(g1), len(g2), ErrFeatureMismatch)
	}

	out := make([]Result, len(g1))
	for f := range g1 {
		n1, n2 := len(g1[f]), len(g2[f])
		if n1 < 2 || n2 < 2 {
			return nil, fmt.Errorf("TTest: feature %d sizes %d/%d: %w", f, n1, n2, ErrGroupSize)
		}
		out[f] = tTestOne(g1[f], g2[f], kind, confLevel)
	}

	return out, nil
}

// tTestOne computes a single feature's t-test. All degeneracy handling is
// local: NaN p → 1, NaN/zero-width interval → [diff, diff].
func tTestOne(vals1, vals2 []float64, kind Kind, confLevel float64) Result {
	n1 := float64(len(vals1))
	n2 := float64(len(vals2))

	mean1 := stat.Mean(vals1, nil)
	mean2 := stat.Mean(vals2, nil)
	var1 := stat.Variance(vals1, nil)
	var2 := stat.Variance(vals2, nil)
	diff := mean1 - mean2

	// Standard error and degrees of freedom per variant.
	var se, df float64
	if kind == Student {
		pooled := ((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2)
		se = math.Sqrt(pooled * (1/n1 + 1/n2))
		df = n1 + n2 - 2
	} else {
		a, b := var1/n1, var2/n2
		se = math.Sqrt(a + b)
		df = (a + b) * (a + b) / (a*a/(n1-1) + b*b/(n2-1))
	}

	res := Result{
		Mean1: mean1 * percentScale,
		Mean2: mean2 * percentScale,
		Diff:  diff * percentScale,
	}

	t := diff / se
	if se == 0 || math.IsNaN(t) || math.IsNaN(df) || df <= 0 {
		// Degenerate: no variability to test against.
		res.P = 1
		res.CILower = res.Diff
		res.CIUpper = res.Diff

		return res
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	if math.IsNaN(p) {
		p = 1
	}
	if p > 1 {
		p = 1
	}
	res.P = p

	q := dist.Quantile(1 - (1-confLevel)/2)
	res.CILower = (diff - q*se) * percentScale
	res.CIUpper = (diff + q*se) * percentScale

	return res
}
