package anomaly

import (
	"math"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

// classifySeverity assigns a Severity to one ClassifiedAnomaly based on
// its method-specific detail, in priority order: algedonic_alert ->
// critical; recursion_breakdown -> high; |z|>4 -> high; isolation
// score>0.8 -> high; LOF>2 -> medium; otherwise low.
func classifySeverity(a *domain.ClassifiedAnomaly) domain.Severity {
	if a.VSM != nil {
		switch a.VSM.Violation {
		case domain.ViolationAlgedonicAlert:
			return domain.SeverityCritical
		case domain.ViolationRecursionBreakdown:
			return domain.SeverityHigh
		}
	}
	if a.Statistical != nil && math.Abs(a.Statistical.Z) > 4 {
		return domain.SeverityHigh
	}
	if a.Isolation != nil && a.Isolation.Score > 0.8 {
		return domain.SeverityHigh
	}
	if a.LOF != nil && a.LOF.Score > 2 {
		return domain.SeverityMedium
	}
	return domain.SeverityLow
}

// overallSeverity is the highest severity among a set of anomalies, or
// SeverityNone if the set is empty.
func overallSeverity(anomalies []domain.ClassifiedAnomaly) domain.Severity {
	sev := domain.SeverityNone
	for _, a := range anomalies {
		sev = domain.MaxSeverity(sev, a.Severity)
	}
	return sev
}

// recommendationsFor derives operator recommendations from the violation
// types and rate present in a result.
func recommendationsFor(anomalies []domain.ClassifiedAnomaly, inputSize int, critical bool) []string {
	seen := map[string]bool{}
	var recs []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			recs = append(recs, s)
		}
	}

	for _, a := range anomalies {
		if a.VSM == nil {
			continue
		}
		switch a.VSM.Violation {
		case domain.ViolationInsufficientVariety:
			add("increase variety")
		case domain.ViolationExcessiveVariety:
			add("apply variety filters")
		case domain.ViolationRecursionBreakdown:
			add("check recursion channels")
		}
	}
	if critical {
		add("activate algedonic response")
	}
	if inputSize > 0 && float64(len(anomalies))/float64(inputSize) > 0.2 {
		add("review baseline")
	}
	return recs
}

// describe builds a short human-readable summary mentioning the first
// anomaly's index.
func describe(method domain.AnomalyMethod, anomalies []domain.ClassifiedAnomaly, inputSize int) string {
	if len(anomalies) == 0 {
		return "no anomalies detected"
	}
	if len(anomalies) == 1 {
		return formatSingle(method, anomalies[0], inputSize)
	}
	return formatMultiple(method, anomalies, inputSize)
}
