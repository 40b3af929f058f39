package anomaly

import (
	"math"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

// InsufficientVarietyRatio and ExcessiveVarietyRatio are the variety-ratio
// bounds defining a viable system.
const (
	InsufficientVarietyRatio = 0.5
	ExcessiveVarietyRatio    = 2.0

	// RecursionDepth is fixed at 5 in this engine.
	RecursionDepth = 5
)

// Variety is the information-theoretic complexity surrogate: for a
// scalar, |x|*ln(|x|+1); for a sequence, the count of distinct values;
// anything else defaults to 1.
func Variety(v any) float64 {
	switch x := v.(type) {
	case float64:
		av := math.Abs(x)
		return av * math.Log(av+1)
	case []float64:
		seen := map[float64]struct{}{}
		for _, e := range x {
			seen[e] = struct{}{}
		}
		return float64(len(seen))
	default:
		return 1
	}
}

// VSMBaseline is the set of statistics the vsm_based method scores
// against: expected variety, its spread, the fixed recursion depth, the
// algedonic trigger threshold, and the viable value range.
type VSMBaseline struct {
	ExpectedVariety    float64
	VarietyStdDev      float64
	RecursionDepth     int
	AlgedonicThreshold float64
	ViableLow          float64
	ViableHigh         float64
}

// NewVSMBaseline derives a VSMBaseline from a raw baseline sequence.
func NewVSMBaseline(baseline []float64) VSMBaseline {
	if len(baseline) == 0 {
		return VSMBaseline{RecursionDepth: RecursionDepth}
	}
	varieties := make([]float64, len(baseline))
	absValues := make([]float64, len(baseline))
	for i, v := range baseline {
		varieties[i] = Variety(v)
		absValues[i] = math.Abs(v)
	}
	q1, q3 := stats.Quartiles(baseline)
	iqr := q3 - q1

	return VSMBaseline{
		ExpectedVariety:    stats.Mean(varieties),
		VarietyStdDev:      stats.StdDev(varieties),
		RecursionDepth:     RecursionDepth,
		AlgedonicThreshold: stats.Mean(absValues) + 4*stats.StdDev(absValues),
		ViableLow:          q1 - 1.5*iqr,
		ViableHigh:         q3 + 1.5*iqr,
	}
}

// VSMBaselineFromState derives a VSMBaseline from the current VSM
// recursion-level varieties, for use when no explicit baseline sequence
// is supplied explicitly for the vsm_based method.
func VSMBaselineFromState(state domain.VSMState) VSMBaseline {
	varieties := make([]float64, len(state.Levels))
	for i, l := range state.Levels {
		varieties[i] = l.Variety
	}
	return NewVSMBaseline(varieties)
}

// DetectVSM classifies each value in data against baseline, applying the
// variety-violation rules in this order: insufficient variety, algedonic
// alert, excessive variety, recursion breakdown. The first rule a value trips is the one
// recorded -- a value that would also trip a later rule is reported only
// under the earlier rule.
//
// Algedonic alert is checked before excessive variety because
// Variety(v)=|v|*ln(|v|+1) grows fast enough that any value past
// AlgedonicThreshold also has a variety ratio well past
// ExcessiveVarietyRatio; evaluating excessive variety first would make
// algedonic alert unreachable.
func DetectVSM(data []float64, baseline VSMBaseline) []domain.ClassifiedAnomaly {
	var out []domain.ClassifiedAnomaly
	for i, v := range data {
		variety := Variety(v)
		var ratio float64
		if baseline.ExpectedVariety != 0 {
			ratio = variety / baseline.ExpectedVariety
		}

		var violation domain.VarietyViolation
		matched := true
		switch {
		case ratio < InsufficientVarietyRatio:
			violation = domain.ViolationInsufficientVariety
		case math.Abs(v) > baseline.AlgedonicThreshold:
			violation = domain.ViolationAlgedonicAlert
		case ratio > ExcessiveVarietyRatio:
			violation = domain.ViolationExcessiveVariety
		case math.Abs(math.Log2(math.Abs(v)+1)-float64(RecursionDepth)) > 2:
			violation = domain.ViolationRecursionBreakdown
		default:
			matched = false
		}
		if !matched {
			continue
		}

		out = append(out, domain.ClassifiedAnomaly{
			Index: i,
			Value: v,
			VSM: &domain.VSMDetail{
				Variety:      variety,
				VarietyRatio: ratio,
				Violation:    violation,
			},
		})
	}
	return out
}
