package marker_test

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/biomark/dataset"
	"github.com/katalvlaran/biomark/marker"
	"github.com/katalvlaran/biomark/padjust"
)

// ExampleTestTwoGroups runs the default Welch pipeline with BH correction on
// a small two-group study and prints the surviving markers.
func ExampleTestTwoGroups() {
	counts := mat.NewDense(10, 4, []float64{
		48, 28, 1, 23,
		49, 29, 0, 22,
		50, 30, 0, 20,
		51, 31, 0, 18,
		52, 32, 0, 16,
		8, 32, 0, 60,
		9, 31, 0, 60,
		10, 30, 0, 60,
		11, 29, 0, 60,
		12, 28, 0, 60,
	})
	ds, err := dataset.New(counts,
		[]string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10"},
		[]string{"f0", "f1", "f2", "f3"},
		dataset.WithVariable("group", []string{
			"case", "case", "case", "case", "case",
			"control", "control", "control", "control", "control",
		}),
		dataset.WithRank("Genus", []string{
			"Bacteroides", "Prevotella", "Akkermansia", "Faecalibacterium",
		}),
	)
	if err != nil {
		fmt.Println("dataset:", err)
		return
	}

	table, err := marker.TestTwoGroups(context.Background(), ds, "group", "Genus",
		marker.WithPAdjust(padjust.BH))
	if err != nil {
		fmt.Println("test:", err)
		return
	}

	fmt.Printf("%s vs %s\n", table.Group1, table.Group2)
	for _, m := range table.Markers {
		fmt.Printf("%s (%s): diff %.1f pct, ratio %.2f\n",
			m.Feature, m.Taxon, m.DiffMeanPct, m.RatioProportion)
	}

	// Output:
	// case vs control
	// f0 (Bacteroides): diff 40.0 pct, ratio 5.00
	// f3 (Faecalibacterium): diff -40.2 pct, ratio 0.33
}
