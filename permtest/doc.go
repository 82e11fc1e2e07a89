// Package permtest implements White's non-parametric two-sample test:
// a difference-of-means t-statistic whose significance comes from label
// permutations rather than a t table.
//
// 🚀 What is White's test?
//
//	For each feature, the observed statistic is
//
//	    t = (mean1 - mean2) / sqrt(var1/n1 + var2/n2)
//
//	computed on relative proportions. The null distribution is built by
//	reshuffling the pooled samples across the two groups nperm times
//	(group sizes fixed) and recomputing the statistic for every feature.
//
// Two p-value regimes, selected by sample size:
//
//   - Large samples (both groups ≥ 8): per-feature counts of permuted
//     statistics beyond the observed one, with the add-one smoothed
//     estimator p = (count+1)/(nperm+1) (Davison & Hinkley). Never 0.
//   - Small samples (either group < 8): permuted statistics are pooled
//     across all "high-frequency" features — per-group total raw count at
//     least the group's sample size in both groups — to recover power from
//     limited permutations. Features outside the high-frequency set receive
//     a p=0 placeholder at this level; callers route them through the exact
//     -test fallback (see the fisher and marker packages).
//
// Degenerate-variance policy: when both groups have zero variance the
// denominator is exactly 0; the statistic substitutes a fixed 1e-6
// denominator instead of failing, producing a large finite |t|, and the
// feature index is reported in Result.Degenerate so callers can warn.
//
// Determinism: all shuffling flows through the explicit *rand.Rand in
// Options; a nil RNG falls back to a fixed-seed stream. Same inputs, same
// seed ⇒ identical results. The permutation loop honors context
// cancellation once per permutation.
package permtest
