package marker

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/biomark/effectsize"
	"github.com/katalvlaran/biomark/padjust"
	"github.com/katalvlaran/biomark/permtest"
)

// Sentinel errors for configuration problems detected before computation.
var (
	// ErrNilDataset indicates a nil dataset.
	ErrNilDataset = errors.New("marker: dataset is nil")

	// ErrUnknownMethod indicates an unrecognized test method name.
	ErrUnknownMethod = errors.New("marker: unknown test method")

	// ErrPValueCutoff indicates a significance cutoff outside (0, 1].
	ErrPValueCutoff = errors.New("marker: p-value cutoff must be in (0, 1]")

	// ErrConfLevel indicates a confidence level outside (0, 1).
	ErrConfLevel = errors.New("marker: confidence level must be in (0, 1)")

	// ErrRatioCutoff indicates a non-positive ratio cutoff.
	ErrRatioCutoff = errors.New("marker: ratio cutoff must be positive")

	// ErrDiffMeanCutoff indicates a negative difference-of-means cutoff.
	ErrDiffMeanCutoff = errors.New("marker: diff-mean cutoff must be non-negative")

	// ErrPermutations indicates a negative permutation count.
	ErrPermutations = errors.New("marker: permutation count must be positive")
)

// Method selects the two-group test. It is a tagged enum: ParseMethod (or
// WithMethod) resolves the name once, and dispatch happens through a pure
// function table rather than string matching inside the pipeline.
type Method int

const (
	// Welch runs the classic t-test with the Welch–Satterthwaite
	// approximation (the default).
	Welch Method = iota

	// Student runs the classic t-test with pooled variance.
	Student

	// White runs White's non-parametric permutation test with bootstrap
	// intervals and the sparse-feature exact fallback.
	White
)

// String implements fmt.Stringer for diagnostics.
func (m Method) String() string {
	switch m {
	case Welch:
		return "welch.test"
	case Student:
		return "t.test"
	case White:
		return "white.test"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod resolves a method name. Both the bare and ".test"-suffixed
// spellings are accepted.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "welch", "welch.test":
		return Welch, nil
	case "t", "t.test", "student":
		return Student, nil
	case "white", "white.test":
		return White, nil
	default:
		return 0, fmt.Errorf("ParseMethod(%q): %w", name, ErrUnknownMethod)
	}
}

// Marker is one surviving feature with its full statistics row.
// Percentages refer to relative abundance ×100; the interval is the
// bootstrap/t interval for DiffMeanPct, except for exact-fallback features
// where it bounds the odds ratio (the exact test's native scale).
type Marker struct {
	Feature string
	Taxon   string

	Pvalue          float64
	PvalueCorrected float64

	Group1MeanPct float64
	Group2MeanPct float64
	DiffMeanPct   float64

	CILowerPct float64
	CIUpperPct float64

	RatioProportion float64
}

// Table is the terminal artifact: the filtered (or, when the filter matched
// nothing, full) marker set plus the abundance slice downstream reporting
// needs.
type Table struct {
	// Group1, Group2 are the grouping labels, preserved end-to-end.
	Group1, Group2 string

	// Markers holds one row per surviving feature, in feature order.
	Markers []Marker

	// Unfiltered is true when the significance filter matched nothing and
	// the full table was returned instead (never an empty set, silently).
	Unfiltered bool

	// Samples and Proportions carry the relative abundances (×100) of the
	// surviving features across all samples: rows follow Samples, columns
	// follow Markers.
	Samples     []string
	Proportions *mat.Dense
}

// config is the resolved, immutable run configuration.
type config struct {
	method      Method
	adjust      padjust.Method
	pCutoff     float64
	diffCutoff  float64 // 0 ⇒ disabled
	ratioCutoff float64 // 0 ⇒ disabled
	confLevel   float64
	nperm       int
	pseudocount float64
	rng         *rand.Rand
	logger      *zap.Logger
}

// Option customizes one TestTwoGroups run. Option constructors validate and
// panic on meaningless inputs (programmer errors); run-time configuration
// problems surface as sentinel errors from TestTwoGroups instead.
type Option func(*config)

// WithMethod selects the test variant (default Welch).
func WithMethod(m Method) Option {
	return func(c *config) { c.method = m }
}

// WithPAdjust selects the multiple-testing correction (default none).
func WithPAdjust(m padjust.Method) Option {
	return func(c *config) { c.adjust = m }
}

// WithPValueCutoff sets the corrected-p significance cutoff (default 0.05).
func WithPValueCutoff(cutoff float64) Option {
	return func(c *config) { c.pCutoff = cutoff }
}

// WithDiffMeanCutoff additionally requires |diff of mean pct| ≥ cutoff.
// Zero disables the filter (the default).
func WithDiffMeanCutoff(cutoff float64) Option {
	return func(c *config) { c.diffCutoff = cutoff }
}

// WithRatioCutoff additionally requires ratio ≥ cutoff or ratio ≤ 1/cutoff.
// Zero disables the filter (the default).
func WithRatioCutoff(cutoff float64) Option {
	return func(c *config) { c.ratioCutoff = cutoff }
}

// WithConfLevel sets the confidence level for every interval (default 0.95).
func WithConfLevel(level float64) Option {
	return func(c *config) { c.confLevel = level }
}

// WithPermutations sets the permutation count for White's test; it is also
// the bootstrap replicate count (default 1000).
func WithPermutations(n int) Option {
	return func(c *config) { c.nperm = n }
}

// WithPseudocount overrides the ratio-of-proportions pseudocount
// (default effectsize.DefaultPseudocount).
func WithPseudocount(pc float64) Option {
	return func(c *config) { c.pseudocount = pc }
}

// WithSeed fixes the RNG seed for all resampling (deterministic runs).
// Seed 0 selects the default stream.
func WithSeed(seed int64) Option {
	return func(c *config) { c.rng = rngFromSeed(seed) }
}

// WithRand provides an explicit RNG. Panics on nil; prefer WithSeed for
// reproducible runs.
func WithRand(rng *rand.Rand) Option {
	if rng == nil {
		panic("marker: WithRand(nil)")
	}

	return func(c *config) { c.rng = rng }
}

// WithLogger injects the logger for non-fatal warnings. Panics on nil; the
// default is zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	if logger == nil {
		panic("marker: WithLogger(nil)")
	}

	return func(c *config) { c.logger = logger }
}

// newConfig resolves options over defaults and validates every knob before
// any computation starts.
func newConfig(opts ...Option) (config, error) {
	c := config{
		method:      Welch,
		adjust:      padjust.None,
		pCutoff:     0.05,
		confLevel:   0.95,
		nperm:       permtest.DefaultPermutations,
		pseudocount: effectsize.DefaultPseudocount,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.method != Welch && c.method != Student && c.method != White {
		return config{}, fmt.Errorf("newConfig: method %d: %w", int(c.method), ErrUnknownMethod)
	}
	if _, err := padjust.ParseMethod(string(c.adjust)); err != nil {
		return config{}, fmt.Errorf("newConfig: %w", err)
	}
	if c.pCutoff <= 0 || c.pCutoff > 1 {
		return config{}, fmt.Errorf("newConfig: p-value cutoff %g: %w", c.pCutoff, ErrPValueCutoff)
	}
	if c.confLevel <= 0 || c.confLevel >= 1 {
		return config{}, fmt.Errorf("newConfig: confidence level %g: %w", c.confLevel, ErrConfLevel)
	}
	if c.ratioCutoff < 0 {
		return config{}, fmt.Errorf("newConfig: ratio cutoff %g: %w", c.ratioCutoff, ErrRatioCutoff)
	}
	if c.diffCutoff < 0 {
		return config{}, fmt.Errorf("newConfig: diff-mean cutoff %g: %w", c.diffCutoff, ErrDiffMeanCutoff)
	}
	if c.nperm <= 0 {
		return config{}, fmt.Errorf("newConfig: %d permutations: %w", c.nperm, ErrPermutations)
	}
	if c.rng == nil {
		c.rng = rngFromSeed(0)
	}

	return c, nil
}
