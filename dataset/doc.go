// Package dataset defines the in-memory boundary between biomark's
// statistical engines and whatever produced the data.
//
// A Dataset holds three aligned tables:
//
//   - a samples×features count matrix (non-negative, finite values),
//   - per-sample metadata variables keyed by field name (e.g. "group"),
//   - per-feature taxonomy labels keyed by rank name (e.g. "Genus").
//
// Loading, parsing and taxonomic agglomeration are external collaborators:
// this package only validates alignment at construction time so that every
// downstream engine can assume consistent shapes and never re-check them.
//
// Construction uses functional options:
//
//	ds, err := dataset.New(counts, samples, features,
//	    dataset.WithVariable("group", labels),
//	    dataset.WithRank("Genus", genera),
//	)
//
// All lookup failures are sentinel errors (ErrUnknownVariable, ErrUnknownRank)
// matched with errors.Is, so the orchestrator can fail fast on configuration
// mistakes before any computation starts.
package dataset
