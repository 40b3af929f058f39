// Package correlation implements multi-method pairwise correlation
// scoring, lag search, and causal network synthesis over a batch of
// pattern-like sequence sources.
package correlation

import (
	"math"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

// MethodWeights are the fixed per-method weights used when blending
// multiple correlation methods into a single score.
var MethodWeights = map[domain.CorrelationMethod]float64{
	domain.MethodPearson:           1.0,
	domain.MethodSpearman:          0.9,
	domain.MethodKendall:           0.8,
	domain.MethodMutualInformation: 1.1,
}

// DefaultMethods is the method set used when the caller does not
// restrict to a subset.
var DefaultMethods = []domain.CorrelationMethod{
	domain.MethodPearson,
	domain.MethodSpearman,
	domain.MethodKendall,
	domain.MethodMutualInformation,
}

// scoreMethod dispatches one method over two already-aligned sequences.
// MutualInformation is requested in its normalized-to-[0,1] form so it
// blends on the same scale as the others, then re-signed to match the
// sign of Pearson (MI itself carries no sign).
func scoreMethod(method domain.CorrelationMethod, a, b []float64) float64 {
	switch method {
	case domain.MethodPearson:
		return stats.Pearson(a, b)
	case domain.MethodSpearman:
		return stats.Spearman(a, b)
	case domain.MethodKendall:
		return stats.KendallTau(a, b)
	case domain.MethodMutualInformation:
		mi := stats.MutualInformation(a, b, true)
		if stats.Pearson(a, b) < 0 {
			return -mi
		}
		return mi
	default:
		return 0
	}
}

// MultiMethodCorrelation blends the selected methods (default: all four)
// with their fixed weights: sum(r*w)/sum(w).
func MultiMethodCorrelation(a, b []float64, methods ...domain.CorrelationMethod) float64 {
	if len(methods) == 0 {
		methods = DefaultMethods
	}
	var weightedSum, totalWeight float64
	for _, m := range methods {
		w, ok := MethodWeights[m]
		if !ok {
			continue
		}
		weightedSum += scoreMethod(m, a, b) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// BuildMatrix constructs the dense, symmetric, unit-diagonal correlation
// matrix over a set of sequences.
func BuildMatrix(sequences [][]float64, methods ...domain.CorrelationMethod) domain.CorrelationMatrix {
	n := len(sequences)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := MultiMethodCorrelation(sequences[i], sequences[j], methods...)
			values[i][j] = r
			values[j][i] = r
		}
	}
	return domain.CorrelationMatrix{Size: n, Values: values}
}

// fisherConfidence computes a confidence in [0,1] from the width of the
// Fisher-transformed 95% interval around r, for n samples.
func fisherConfidence(r float64, n int) float64 {
	if n < 4 {
		return 0
	}
	// clamp r away from +/-1 to keep atanh finite.
	rc := r
	if rc > 0.999999 {
		rc = 0.999999
	}
	if rc < -0.999999 {
		rc = -0.999999
	}
	z := math.Atanh(rc)
	se := 1.0 / math.Sqrt(float64(n-3))
	lower := math.Tanh(z - 1.96*se)
	upper := math.Tanh(z + 1.96*se)
	width := upper - lower
	if width > 1 {
		width = 1
	}
	return 1 - width
}
