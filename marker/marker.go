package marker

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/biomark/abundance"
	"github.com/katalvlaran/biomark/bootstrap"
	"github.com/katalvlaran/biomark/dataset"
	"github.com/katalvlaran/biomark/effectsize"
	"github.com/katalvlaran/biomark/fisher"
	"github.com/katalvlaran/biomark/permtest"
)

// testInput is the prepared, feature-major view of one run that every test
// function consumes.
type testInput struct {
	prop1, prop2 [][]float64 // relative proportions per feature, per group
	raw1, raw2   [][]float64 // raw counts per feature, per group
}

// featureStats is the single output contract shared by all three test
// functions: one row per feature, percentage units throughout except for
// exact-fallback intervals (odds-ratio scale, see Marker).
type featureStats struct {
	p                  float64
	mean1, mean2, diff float64
	ciLower, ciUpper   float64
}

// testFunc is one of the three pure test implementations.
type testFunc func(ctx context.Context, cfg config, in testInput) ([]featureStats, error)

// testFuncFor maps the validated method tag to its implementation.
// Dispatch happens exactly once, here.
func testFuncFor(m Method) testFunc {
	switch m {
	case Student:
		return studentTest
	case White:
		return whitesTest
	default:
		return welchTest
	}
}

// TestTwoGroups computes differential-abundance statistics between the two
// groups defined by groupField and returns the ranked, filtered marker
// table, with features labeled by taxonomy at the given rank.
//
// Preconditions (checked before any computation, sentinel errors):
//   - ds non-nil; groupField registered (dataset.ErrUnknownVariable);
//   - rank registered (dataset.ErrUnknownRank);
//   - the grouping variable has exactly two distinct values
//     (abundance.ErrGroupCardinality);
//   - every option within its documented range.
//
// The permutation and bootstrap loops honor ctx; a nil ctx disables
// cancellation. Non-fatal numeric degeneracies never abort the run — see the
// package documentation for the substitution policies.
func TestTwoGroups(ctx context.Context, ds *dataset.Dataset, groupField, rank string, opts ...Option) (*Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ds == nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", ErrNilDataset)
	}
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}

	labels, err := ds.Variable(groupField)
	if err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}
	taxa, err := ds.Taxa(rank)
	if err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}

	counts := ds.Counts()
	props, err := abundance.Proportions(counts)
	if err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}
	gs, err := abundance.SplitTwoGroups(labels)
	if err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}

	in := testInput{}
	if in.prop1, err = abundance.GroupColumns(props, gs.Rows(0)); err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}
	if in.prop2, err = abundance.GroupColumns(props, gs.Rows(1)); err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}
	if in.raw1, err = abundance.GroupColumns(counts, gs.Rows(0)); err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}
	if in.raw2, err = abundance.GroupColumns(counts, gs.Rows(1)); err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}

	stats, err := testFuncFor(cfg.method)(ctx, cfg, in)
	if err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}

	table, err := assemble(cfg, in, gs, ds, taxa, props, stats)
	if err != nil {
		return nil, fmt.Errorf("TestTwoGroups: %w", err)
	}

	return table, nil
}

// welchTest and studentTest wrap the classic per-feature t-test.
func welchTest(_ context.Context, cfg config, in testInput) ([]featureStats, error) {
	return classicTest(cfg, in, effectsize.Welch)
}

func studentTest(_ context.Context, cfg config, in testInput) ([]featureStats, error) {
	return classicTest(cfg, in, effectsize.Student)
}

func classicTest(cfg config, in testInput, kind effectsize.Kind) ([]featureStats, error) {
	results, err := effectsize.TTest(in.prop1, in.prop2, kind, cfg.confLevel)
	if err != nil {
		return nil, err
	}

	stats := make([]featureStats, len(results))
	for f, r := range results {
		stats[f] = featureStats{
			p:       r.P,
			mean1:   r.Mean1,
			mean2:   r.Mean2,
			diff:    r.Diff,
			ciLower: r.CILower,
			ciUpper: r.CIUpper,
		}
	}

	return stats, nil
}

// whitesTest runs the non-parametric path: permutation p-values, bootstrap
// intervals, then exact-test overrides for features the permutation test has
// no power on.
func whitesTest(ctx context.Context, cfg config, in testInput) ([]featureStats, error) {
	permRNG := deriveRNG(cfg.rng, permutationStream)
	bootRNG := deriveRNG(cfg.rng, bootstrapStream)

	total1 := fisher.GroupTotals(in.raw1)
	total2 := fisher.GroupTotals(in.raw2)

	perm, err := permtest.Run(ctx, in.prop1, in.prop2, total1, total2,
		&permtest.Options{Permutations: cfg.nperm, Rand: permRNG})
	if err != nil {
		return nil, err
	}
	if len(perm.Degenerate) > 0 {
		cfg.logger.Warn("zero variance in both groups; substituted fixed denominator in White statistic",
			zap.Ints("features", perm.Degenerate))
	}

	cis, err := bootstrap.CIs(ctx, in.prop1, in.prop2,
		&bootstrap.Options{Replicates: cfg.nperm, ConfLevel: cfg.confLevel, Rand: bootRNG})
	if err != nil {
		return nil, err
	}

	stats := make([]featureStats, len(in.prop1))
	for f := range stats {
		stats[f] = featureStats{
			p:       perm.PTwoSide[f],
			mean1:   stat.Mean(in.prop1[f], nil) * 100,
			mean2:   stat.Mean(in.prop2[f], nil) * 100,
			diff:    perm.DiffMeanPct[f],
			ciLower: cis[f].Lower,
			ciUpper: cis[f].Upper,
		}
	}

	if err = exactOverrides(cfg, in, perm, total1, total2, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// exactOverrides substitutes Fisher's exact test on pooled counts for every
// feature the permutation estimator cannot serve: the sparse index always,
// plus — in the small-sample regime — features outside the high-frequency
// pool, which would otherwise keep their p=0 placeholder.
func exactOverrides(cfg config, in testInput, perm *permtest.Result, total1, total2 []float64, stats []featureStats) error {
	sparse, err := fisher.SparseFeatures(in.raw1, in.raw2)
	if err != nil {
		return err
	}

	override := make(map[int]bool, len(sparse))
	for _, f := range sparse {
		override[f] = true
	}
	if perm.SmallSample {
		for f, hf := range perm.HighFrequency {
			if !hf {
				override[f] = true
			}
		}
	}
	if len(override) == 0 {
		return nil
	}

	targets := make([]int, 0, len(override))
	for f := range override {
		targets = append(targets, f)
	}
	sort.Ints(targets)
	cfg.logger.Debug("exact-test fallback engaged", zap.Ints("features", targets))

	grand1 := floats.Sum(total1)
	grand2 := floats.Sum(total2)
	for _, f := range targets {
		x1, x2 := total1[f], total2[f]
		exact, err := fisher.ExactTest(x1, grand1-x1, x2, grand2-x2, cfg.confLevel)
		if err != nil {
			return err
		}

		// Pooled-total proportions, not per-sample means: the exact test
		// conditions on pooled counts, so its effect size must too.
		var diff float64
		if grand1 > 0 {
			diff += x1 / grand1
		}
		if grand2 > 0 {
			diff -= x2 / grand2
		}

		stats[f].p = exact.P
		stats[f].diff = diff * 100
		stats[f].ciLower = exact.CILower
		stats[f].ciUpper = exact.CIUpper
	}

	return nil
}
