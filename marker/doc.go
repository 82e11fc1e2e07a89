// Package marker assembles differential-abundance test results into a
// single ranked, filtered biomarker table and hosts the end-to-end entry
// point, TestTwoGroups.
//
// The pipeline is a sequence of immutable stages, so override ordering is
// obvious and each stage is independently testable:
//
//	validate configuration (fail fast)
//	  → proportions + two-group split          (abundance)
//	  → per-feature statistics                  (effectsize or permtest)
//	  → bootstrap intervals + exact overrides   (bootstrap, fisher; White only)
//	  → ratio-of-proportions attach             (effectsize)
//	  → p==1 ⇒ interval collapsed to [0,0]
//	  → multiple-testing correction             (padjust)
//	  → significance / effect-size filtering
//	  → empty result ⇒ warning + full table
//
// The test method is a tagged enum resolved once into one of three pure
// test functions sharing a single output contract; no string dispatch
// survives past configuration validation.
//
// Non-fatal conditions (degenerate variances, an empty filter result) are
// reported through the injected zap logger — zap.NewNop() by default — and
// never abort a run. Configuration problems abort before any computation
// with sentinel errors from this package or the packages they originate in
// (dataset.ErrUnknownRank, abundance.ErrGroupCardinality, ...).
package marker
