// Package bootstrap builds percentile confidence intervals for the
// difference of group mean proportions, one feature at a time.
//
// Each replicate resamples both groups independently with replacement,
// records the difference of the resampled means, and the sorted replicate
// differences yield the interval:
//
//	lower = sorted[floor(0.5·(1-cl)·R)]              (clamped to ≥ 0)
//	upper = sorted[ceil((cl + 0.5·(1-cl))·R)]        (clamped to ≤ R-1)
//
// — a standard percentile bootstrap at confidence level cl with R
// replicates, computed independently per feature (no joint correction).
// Output is in percentage units to match the rest of the module.
//
// Determinism mirrors the permutation engine: an explicit *rand.Rand in
// Options, nil resolving to a fixed-seed stream; the replicate loop honors
// context cancellation.
package bootstrap
