// Package effectsize computes parametric two-sample statistics and the
// ratio-of-proportions effect size for differential-abundance testing.
//
// TTest runs the classic per-feature two-sample t-test on relative
// proportions, either with the Welch–Satterthwaite degrees-of-freedom
// approximation (unequal variances) or with a pooled variance (Student).
// Results are reported in percentage units (×100): group means, mean
// difference and its t-interval, plus the two-sided p-value.
//
// Numeric-degeneracy policy: a NaN p-value (zero variance in both groups,
// 0/0 statistics) is coerced to 1 — "no evidence of difference" — and its
// confidence interval collapses to the observed difference. NaN is never
// propagated to callers.
//
// RatioProportion computes mean(abd1)/mean(abd2) with a pseudocount
// redistribution that prevents division by zero while keeping the total
// pseudo-mass constant; a 0/0 ratio is coerced to 0.
package effectsize
