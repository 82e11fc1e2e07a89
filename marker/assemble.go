package marker

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/biomark/abundance"
	"github.com/katalvlaran/biomark/dataset"
	"github.com/katalvlaran/biomark/effectsize"
	"github.com/katalvlaran/biomark/padjust"
)

// assemble merges the per-feature statistics into the final table:
// ratio attach → p==1 interval collapse → multiple-testing correction →
// filtering → empty-result fallback → abundance slice packaging.
// Each stage reads the previous stage's output and never mutates it after
// emission, so the override ordering stays obvious.
func assemble(cfg config, in testInput, gs abundance.GroupSplit, ds *dataset.Dataset, taxa []string, props *mat.Dense, stats []featureStats) (*Table, error) {
	ratios, err := effectsize.RatioProportions(in.prop1, in.prop2, cfg.pseudocount)
	if err != nil {
		return nil, err
	}

	// A p-value of exactly 1 means no detectable difference; an interval for
	// a non-difference is not reported.
	pvalues := make([]float64, len(stats))
	for f := range stats {
		pvalues[f] = stats[f].p
		if stats[f].p == 1 {
			stats[f].ciLower = 0
			stats[f].ciUpper = 0
		}
	}

	corrected, err := padjust.Adjust(pvalues, cfg.adjust)
	if err != nil {
		return nil, err
	}

	features := ds.Features()
	rows := make([]Marker, len(stats))
	for f := range stats {
		rows[f] = Marker{
			Feature:         features[f],
			Taxon:           taxa[f],
			Pvalue:          stats[f].p,
			PvalueCorrected: corrected[f],
			Group1MeanPct:   stats[f].mean1,
			Group2MeanPct:   stats[f].mean2,
			DiffMeanPct:     stats[f].diff,
			CILowerPct:      stats[f].ciLower,
			CIUpperPct:      stats[f].ciUpper,
			RatioProportion: ratios[f],
		}
	}

	kept := make([]int, 0, len(rows))
	for f := range rows {
		if cfg.passes(rows[f]) {
			kept = append(kept, f)
		}
	}

	table := &Table{
		Group1:  gs.Name(0),
		Group2:  gs.Name(1),
		Samples: ds.Samples(),
	}
	if len(kept) == 0 {
		// Explicit policy: never return an empty marker set silently.
		cfg.logger.Warn("no feature passed the significance filters; returning the full unfiltered table")
		table.Unfiltered = true
		kept = kept[:0]
		for f := range rows {
			kept = append(kept, f)
		}
	}

	table.Markers = make([]Marker, len(kept))
	for i, f := range kept {
		table.Markers[i] = rows[f]
	}
	table.Proportions = proportionSlice(props, kept)

	return table, nil
}

// passes applies the significance and effect-size filters to one row.
func (c config) passes(m Marker) bool {
	if m.PvalueCorrected > c.pCutoff {
		return false
	}
	if c.diffCutoff > 0 && math.Abs(m.DiffMeanPct) < c.diffCutoff {
		return false
	}
	if c.ratioCutoff > 0 && m.RatioProportion < c.ratioCutoff && m.RatioProportion > 1/c.ratioCutoff {
		return false
	}

	return true
}

// proportionSlice packages the surviving features' relative abundances ×100,
// samples × kept features, for downstream reporting.
func proportionSlice(props *mat.Dense, kept []int) *mat.Dense {
	r, _ := props.Dims()
	out := mat.NewDense(r, len(kept), nil)
	for i := 0; i < r; i++ {
		for k, f := range kept {
			out.Set(i, k, props.At(i, f)*100)
		}
	}

	return out
}
