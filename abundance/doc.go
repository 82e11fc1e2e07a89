// Package abundance converts raw abundance counts into relative proportions
// and partitions sample rows into the two compared groups.
//
// Proportions performs per-row L1 normalization of a samples×features matrix:
// every row sums to 1 afterwards, except all-zero rows which stay all-zero
// (a deliberate degenerate-row policy that keeps NaN out of every downstream
// engine). SplitTwoGroups validates the grouping label vector — exactly two
// distinct values, one per sample — and GroupColumns extracts the
// feature-major [][]float64 shape that all statistical engines consume.
//
// Errors are package-level sentinels matched via errors.Is; no function in
// this package panics on user input.
package abundance
