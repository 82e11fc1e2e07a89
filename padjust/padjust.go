// Package padjust corrects p-values for multiple testing.
//
// The eight methods mirror R's p.adjust family and reproduce its numbers
// exactly: none, bonferroni, holm (step-down), hochberg and hommel
// (step-up), BH/fdr (Benjamini–Hochberg) and BY (Benjamini–Yekutieli).
// Adjusted values are clamped to [0,1] and preserve the input order.
package padjust

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Sentinel errors returned by Adjust and ParseMethod.
var (
	// ErrUnknownMethod indicates an unrecognized correction method name.
	ErrUnknownMethod = errors.New("padjust: unknown correction method")

	// ErrInvalidP indicates a p-value outside [0, 1] or NaN.
	ErrInvalidP = errors.New("padjust: p-value outside [0, 1]")
)

// Method names a multiple-testing correction. The zero value is None.
type Method string

// Supported correction methods.
const (
	None       Method = "none"
	Bonferroni Method = "bonferroni"
	Holm       Method = "holm"
	Hochberg   Method = "hochberg"
	Hommel     Method = "hommel"
	BH         Method = "BH"
	BY         Method = "BY"
	FDR        Method = "fdr" // alias of BH
)

// ParseMethod validates a method name. The empty string resolves to None so
// that "no correction" needs no explicit configuration.
func ParseMethod(name string) (Method, error) {
	switch Method(name) {
	case "":
		return None, nil
	case None, Bonferroni, Holm, Hochberg, Hommel, BH, BY, FDR:
		return Method(name), nil
	default:
		return "", fmt.Errorf("ParseMethod(%q): %w", name, ErrUnknownMethod)
	}
}

// Adjust returns the corrected p-values, in input order.
//
// Errors:
//   - ErrUnknownMethod for a method not produced by ParseMethod.
//   - ErrInvalidP for NaN or out-of-range inputs.
//
// Complexity: O(n log n) for the order statistics; Hommel is O(n²).
func Adjust(p []float64, m Method) ([]float64, error) {
	for i, v := range p {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return nil, fmt.Errorf("Adjust: p[%d]=%g: %w", i, v, ErrInvalidP)
		}
	}
	n := len(p)
	if n == 0 {
		return []float64{}, nil
	}

	switch m {
	case None, "":
		return append([]float64(nil), p...), nil
	case Bonferroni:
		out := make([]float64, n)
		for i, v := range p {
			out[i] = math.Min(1, v*float64(n))
		}

		return out, nil
	case Holm:
		return holm(p), nil
	case Hochberg:
		return hochberg(p), nil
	case Hommel:
		return hommel(p), nil
	case BH, FDR:
		return benjaminiHochberg(p, 1), nil
	case BY:
		// The BY penalty sum(1/i) makes the FDR bound valid under arbitrary
		// dependence.
		var penalty float64
		for i := 1; i <= n; i++ {
			penalty += 1 / float64(i)
		}

		return benjaminiHochberg(p, penalty), nil
	default:
		return nil, fmt.Errorf("Adjust: method %q: %w", m, ErrUnknownMethod)
	}
}

// ascending returns the permutation ordering p ascending.
func ascending(p []float64) []int {
	order := make([]int, len(p))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return p[order[a]] < p[order[b]] })

	return order
}

// holm: step-down, cumulative maximum of (n-i)·p over ascending p.
func holm(p []float64) []float64 {
	n := len(p)
	order := ascending(p)
	out := make([]float64, n)

	running := 0.0
	for i, idx := range order {
		v := math.Min(1, float64(n-i)*p[idx])
		if v > running {
			running = v
		}
		out[idx] = running
	}

	return out
}

// hochberg: step-up, cumulative minimum of (n-i)·p over descending p.
func hochberg(p []float64) []float64 {
	n := len(p)
	order := ascending(p)
	out := make([]float64, n)

	running := 1.0
	for i := n - 1; i >= 0; i-- {
		idx := order[i]
		v := math.Min(1, float64(n-i)*p[idx])
		if v < running {
			running = v
		}
		out[idx] = running
	}

	return out
}

// benjaminiHochberg: step-up with the n/i scaling, times an extra penalty
// factor (1 for BH, sum(1/i) for BY).
func benjaminiHochberg(p []float64, penalty float64) []float64 {
	n := len(p)
	order := ascending(p)
	out := make([]float64, n)

	running := 1.0
	for i := n - 1; i >= 0; i-- {
		idx := order[i]
		v := math.Min(1, penalty*float64(n)/float64(i+1)*p[idx])
		if v < running {
			running = v
		}
		out[idx] = running
	}

	return out
}

// hommel implements Hommel's sharper step-up procedure, following the
// q-vector formulation used by R's p.adjust.
func hommel(p []float64) []float64 {
	n := len(p)
	if n == 1 {
		return append([]float64(nil), p...)
	}
	order := ascending(p)
	sorted := make([]float64, n)
	for i, idx := range order {
		sorted[i] = p[idx]
	}

	// pa and q start at min over i of n·p_i/i.
	minNP := math.Inf(1)
	for i := 0; i < n; i++ {
		if v := float64(n) * sorted[i] / float64(i+1); v < minNP {
			minNP = v
		}
	}
	pa := make([]float64, n)
	q := make([]float64, n)
	for i := range pa {
		pa[i] = minNP
		q[i] = minNP
	}

	for m := n - 1; m >= 2; m-- {
		cut := n - m + 1 // i1 = [0, cut), i2 = [cut, n)

		q1 := math.Inf(1)
		for j := 1; j < m; j++ { // permissible divisors 2..m over the tail
			if v := float64(m) * sorted[cut+j-1] / float64(j+1); v < q1 {
				q1 = v
			}
		}
		for i := 0; i < cut; i++ {
			q[i] = math.Min(float64(m)*sorted[i], q1)
		}
		for i := cut; i < n; i++ {
			q[i] = q[cut-1]
		}
		for i := 0; i < n; i++ {
			if q[i] > pa[i] {
				pa[i] = q[i]
			}
		}
	}

	out := make([]float64, n)
	for i, idx := range order {
		out[idx] = math.Max(pa[i], sorted[i])
	}

	return out
}
