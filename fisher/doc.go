// Package fisher implements Fisher's exact test for 2×2 contingency tables
// and the sparse-feature detection that routes features to it.
//
// The permutation test has no power on features whose mean count per sample
// is below 1 in both groups: their proportion vectors are almost all zeros.
// SparseFeatures finds those features, and ExactTest substitutes exact
// inference on pooled raw counts:
//
//	          feature   rest
//	group 1      a       b
//	group 2      c       d
//
// Conditioning on the margins makes a hypergeometric: the two-sided p-value
// sums all point masses not exceeding the observed one (with the customary
// (1+1e-7) tolerance), matching R's fisher.test. The odds-ratio point
// estimate is the conditional MLE and the confidence interval inverts the
// tails of Fisher's noncentral hypergeometric distribution by bisection on
// the log odds ratio — again the fisher.test contract, so results line up
// with the reference implementation bit-for-bit on integer tables.
//
// Degenerate tables (all four cells zero) coerce the p-value to 1 rather
// than NaN, consistent with the module-wide numeric-degeneracy policy.
package fisher
