package anomaly

import (
	"fmt"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
)

func formatSingle(method domain.AnomalyMethod, a domain.ClassifiedAnomaly, inputSize int) string {
	switch method {
	case domain.MethodStatistical:
		return fmt.Sprintf("1 anomaly detected at index %d (value %.4g, z=%.2f) out of %d points",
			a.Index, a.Value, a.Statistical.Z, inputSize)
	case domain.MethodIsolationForest:
		return fmt.Sprintf("1 anomaly detected at index %d (value %.4g, isolation score %.2f) out of %d points",
			a.Index, a.Value, a.Isolation.Score, inputSize)
	case domain.MethodLOF:
		return fmt.Sprintf("1 anomaly detected at index %d (value %.4g, LOF %.2f) out of %d points",
			a.Index, a.Value, a.LOF.Score, inputSize)
	case domain.MethodVSMBased:
		return fmt.Sprintf("1 anomaly detected at index %d (value %.4g, violation %s) out of %d points",
			a.Index, a.Value, a.VSM.Violation, inputSize)
	default:
		return fmt.Sprintf("1 anomaly detected at index %d out of %d points", a.Index, inputSize)
	}
}

func formatMultiple(method domain.AnomalyMethod, anomalies []domain.ClassifiedAnomaly, inputSize int) string {
	return fmt.Sprintf("%d anomalies detected via %s out of %d points, first at index %d",
		len(anomalies), method, inputSize, anomalies[0].Index)
}
