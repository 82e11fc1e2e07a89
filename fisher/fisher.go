package fisher

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// Sentinel errors returned by the exact-test engine.
var (
	// ErrNegativeCell indicates a negative or non-finite contingency cell.
	ErrNegativeCell = errors.New("fisher: negative or non-finite cell")

	// ErrConfLevel indicates a confidence level outside (0, 1).
	ErrConfLevel = errors.New("fisher: confidence level must be in (0, 1)")

	// ErrFeatureMismatch indicates misaligned feature axes in SparseFeatures.
	ErrFeatureMismatch = errors.New("fisher: feature count mismatch")
)

// relativeTolerance matches R fisher.test: point masses within a factor of
// (1+1e-7) of the observed mass still count toward the two-sided p-value.
const relativeTolerance = 1 + 1e-7

// logOrBound bounds the bisection for odds-ratio bounds; e^±50 is far beyond
// any odds ratio a finite table can support.
const logOrBound = 50.0

// bisectionSteps gives ~1e-13 relative precision on the log odds ratio.
const bisectionSteps = 100

// Result holds one exact-test outcome.
type Result struct {
	// P is the two-sided p-value (sum of point masses ≤ observed).
	P float64

	// PGreater, PLess are the one-sided tail p-values P(X ≥ a), P(X ≤ a).
	PGreater, PLess float64

	// OddsRatio is the conditional maximum-likelihood estimate; 0 and +Inf
	// mark tables at the support boundary.
	OddsRatio float64

	// CILower, CIUpper bound the odds ratio at the requested confidence
	// level (exact, from the noncentral hypergeometric tails).
	CILower, CIUpper float64
}

// table is a validated integer 2×2 contingency table conditioned on its
// margins, with the hypergeometric support of the top-left cell.
type table struct {
	a          int // observed top-left cell
	colTotal   int // a + c
	rowTotal   int // a + b
	grandTotal int // a + b + c + d
	lo, hi     int // support bounds for the top-left cell

	// logBase holds log C(K,k) + log C(N-K, n-k) for k in [lo, hi].
	logBase []float64
}

// ExactTest runs Fisher's exact test on the 2×2 table {a, b; c, d}.
// Cells are pooled raw counts; fractional inputs are rounded to the nearest
// integer first (exact tests are defined on counts).
//
// Errors:
//   - ErrNegativeCell for negative, NaN or ±Inf cells.
//   - ErrConfLevel for a confidence level outside (0, 1).
//
// Complexity: O(support) per tail evaluation, O(support·bisectionSteps) for
// each interval bound; support ≤ min(a+c, a+b)+1.
func ExactTest(a, b, c, d float64, confLevel float64) (Result, error) {
	if confLevel <= 0 || confLevel >= 1 {
		return Result{}, fmt.Errorf("ExactTest: confidence level %g: %w", confLevel, ErrConfLevel)
	}
	cells := [4]float64{a, b, c, d}
	var rounded [4]int
	for i, v := range cells {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}, fmt.Errorf("ExactTest: cell %d value %g: %w", i, v, ErrNegativeCell)
		}
		rounded[i] = int(math.Round(v))
	}

	tb := newTable(rounded[0], rounded[1], rounded[2], rounded[3])
	if tb.grandTotal == 0 {
		// Empty table: no information, "no difference" by policy.
		return Result{P: 1, PGreater: 1, PLess: 1, OddsRatio: 0, CILower: 0, CIUpper: math.Inf(1)}, nil
	}

	res := Result{
		P:        tb.twoSidedP(),
		PGreater: tb.tailP(tb.a, true, 1),
		PLess:    tb.tailP(tb.a, false, 1),
	}
	if math.IsNaN(res.P) {
		res.P = 1
	}
	res.OddsRatio = tb.conditionalMLE()
	res.CILower, res.CIUpper = tb.oddsRatioCI(confLevel)

	return res, nil
}

// newTable precomputes the log binomial terms over the support.
func newTable(a, b, c, d int) table {
	tb := table{
		a:          a,
		colTotal:   a + c,
		rowTotal:   a + b,
		grandTotal: a + b + c + d,
	}
	tb.lo = tb.colTotal + tb.rowTotal - tb.grandTotal
	if tb.lo < 0 {
		tb.lo = 0
	}
	tb.hi = tb.colTotal
	if tb.rowTotal < tb.hi {
		tb.hi = tb.rowTotal
	}

	if tb.grandTotal == 0 {
		return tb
	}
	tb.logBase = make([]float64, tb.hi-tb.lo+1)
	for k := tb.lo; k <= tb.hi; k++ {
		tb.logBase[k-tb.lo] = combin.LogGeneralizedBinomial(float64(tb.colTotal), float64(k)) +
			combin.LogGeneralizedBinomial(float64(tb.grandTotal-tb.colTotal), float64(tb.rowTotal-k))
	}

	return tb
}

// logProbs returns the normalized log point masses of the (possibly
// noncentral, odds ratio = e^logOr) hypergeometric over the support.
func (tb table) logProbs(logOr float64) []float64 {
	lp := make([]float64, len(tb.logBase))
	maxLp := math.Inf(-1)
	for i := range tb.logBase {
		lp[i] = tb.logBase[i] + float64(tb.lo+i)*logOr
		if lp[i] > maxLp {
			maxLp = lp[i]
		}
	}
	var sum float64
	for i := range lp {
		lp[i] -= maxLp
		sum += math.Exp(lp[i])
	}
	logSum := math.Log(sum)
	for i := range lp {
		lp[i] -= logSum
	}

	return lp
}

// twoSidedP sums all central point masses not exceeding the observed one,
// within the customary relative tolerance.
func (tb table) twoSidedP() float64 {
	lp := tb.logProbs(0)
	observed := math.Exp(lp[tb.a-tb.lo])

	var p float64
	for _, v := range lp {
		if mass := math.Exp(v); mass <= observed*relativeTolerance {
			p += mass
		}
	}
	if p > 1 {
		p = 1
	}

	return p
}

// tailP computes P(X ≥ x) (upper=true) or P(X ≤ x) under odds ratio e^logOr.
func (tb table) tailP(x int, upper bool, or float64) float64 {
	return tb.tailPLog(x, upper, math.Log(or))
}

func (tb table) tailPLog(x int, upper bool, logOr float64) float64 {
	lp := tb.logProbs(logOr)
	var p float64
	for k := tb.lo; k <= tb.hi; k++ {
		if (upper && k >= x) || (!upper && k <= x) {
			p += math.Exp(lp[k-tb.lo])
		}
	}
	if p > 1 {
		p = 1
	}

	return p
}

// conditionalMLE solves E[X | or] = a for the odds ratio. The conditional
// mean is strictly increasing in the odds ratio, so bisection on log-or
// converges unconditionally. Boundary tables map to 0 and +Inf.
func (tb table) conditionalMLE() float64 {
	if tb.a == tb.lo && tb.a == tb.hi {
		return math.NaN() // degenerate support: OR not identifiable
	}
	if tb.a == tb.lo {
		return 0
	}
	if tb.a == tb.hi {
		return math.Inf(1)
	}

	target := float64(tb.a)
	lo, hi := -logOrBound, logOrBound
	for i := 0; i < bisectionSteps; i++ {
		mid := (lo + hi) / 2
		if tb.conditionalMean(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}

	return math.Exp((lo + hi) / 2)
}

// conditionalMean is E[X] under odds ratio e^logOr.
func (tb table) conditionalMean(logOr float64) float64 {
	lp := tb.logProbs(logOr)
	var mean float64
	for k := tb.lo; k <= tb.hi; k++ {
		mean += float64(k) * math.Exp(lp[k-tb.lo])
	}

	return mean
}

// oddsRatioCI inverts the noncentral hypergeometric tails at level
// (1-confLevel)/2 each side, the fisher.test exact interval.
func (tb table) oddsRatioCI(confLevel float64) (lower, upper float64) {
	alpha := (1 - confLevel) / 2

	// Lower bound: the odds ratio whose upper tail at the observed cell
	// equals alpha. At the support floor there is no lower tail mass to
	// trade away and the bound is 0.
	if tb.a == tb.lo {
		lower = 0
	} else {
		lower = tb.solveTail(tb.a, true, alpha)
	}

	// Upper bound: symmetric, with the lower tail.
	if tb.a == tb.hi {
		upper = math.Inf(1)
	} else {
		upper = tb.solveTail(tb.a, false, alpha)
	}

	return lower, upper
}

// solveTail finds the odds ratio where the requested tail probability at x
// equals alpha. P(X ≥ x | or) is increasing in or and P(X ≤ x | or) is
// decreasing, so each is a one-root bisection on log-or.
func (tb table) solveTail(x int, upper bool, alpha float64) float64 {
	lo, hi := -logOrBound, logOrBound
	for i := 0; i < bisectionSteps; i++ {
		mid := (lo + hi) / 2
		p := tb.tailPLog(x, upper, mid)
		increasing := upper // upper tail grows with the odds ratio
		if (increasing && p < alpha) || (!increasing && p > alpha) {
			lo = mid
		} else {
			hi = mid
		}
	}

	return math.Exp((lo + hi) / 2)
}
