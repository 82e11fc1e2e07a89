// Package biomark discovers differential-abundance biomarkers between two
// groups of samples in microbiome abundance data.
//
// 🚀 What is biomark?
//
//	A deterministic, in-memory statistics engine that brings together:
//		• Abundance transforms: raw counts → relative proportions, group splits
//		• Effect sizes: Welch/Student t-tests, ratio of proportions
//		• White's non-parametric test: permutation-based significance with
//		  large- and small-sample regimes
//		• Bootstrap percentile confidence intervals for mean differences
//		• Exact-test fallback (Fisher) for sparse, zero-inflated features
//		• Multiple-testing correction (Holm, Hochberg, Hommel, BH, BY, ...)
//		• A single assembler producing one ranked, filtered marker table
//
// ✨ Why choose biomark?
//
//   - Deterministic – every resampling call takes an explicit seedable RNG
//   - Rock-solid guarantees – sentinel errors, documented degeneracy policies
//   - Cancellable – permutation and bootstrap loops honor context deadlines
//   - Minimal API – one orchestrator, small focused engine packages
//
// Everything is organized under focused subpackages:
//
//	dataset/    — samples×features counts + metadata + taxonomy boundary
//	abundance/  — proportions and two-group splits
//	effectsize/ — classic t-tests and ratio-of-proportions effect size
//	permtest/   — White's non-parametric permutation test (the core)
//	bootstrap/  — percentile bootstrap confidence intervals
//	fisher/     — Fisher's exact test and sparse-feature detection
//	padjust/    — multiple-testing p-value correction
//	marker/     — result assembly, filtering, and the TestTwoGroups entry point
//
// Quick sketch:
//
//	counts (samples × features)
//	   │ abundance.Proportions
//	   ▼
//	proportions ──► permtest / effectsize ──► fisher overrides ──► marker.Table
//
// Dive into marker.TestTwoGroups for the end-to-end contract.
//
//	go get github.com/katalvlaran/biomark/marker
package biomark
