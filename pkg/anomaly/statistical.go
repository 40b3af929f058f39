// Package anomaly implements the four anomaly-detection strategies this
// engine supports -- statistical z-score, isolation forest, local
// outlier factor, and VSM variety-ratio -- plus severity classification
// and recommendation synthesis.
package anomaly

import (
	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

// DefaultStatisticalThreshold is the base z-score threshold before
// heavy/light-tail adjustment, corresponding to the configured
// anomaly_threshold default of 0.8.
const DefaultStatisticalThreshold = 3.0

// DefaultAnomalyThreshold is the configured anomaly_threshold value
// DefaultStatisticalThreshold was calibrated against.
const DefaultAnomalyThreshold = 0.8

// dynamicStatisticalThreshold adjusts base by the baseline's IQR/std
// ratio: heavy-tailed baselines (high IQR/std) lower the threshold by
// 0.5, light-tailed baselines raise it by 0.5.
//
// This polarity is counterintuitive -- lowering the threshold for
// heavy-tailed data makes the detector MORE sensitive exactly when
// extreme values are already more expected, the opposite of what the
// literature on robust z-scores would suggest. Kept as specified rather
// than silently corrected.
func dynamicStatisticalThreshold(baseline []float64, base float64) float64 {
	threshold := base
	std := stats.StdDev(baseline)
	if std == 0 {
		return threshold
	}
	ratio := stats.IQR(baseline) / std
	switch {
	case ratio > 1.5:
		threshold -= 0.5
	case ratio < 0.8:
		threshold += 0.5
	}
	return threshold
}

// statisticalBaseThreshold maps the configured anomaly_threshold knob
// (nominally in (0,1], default 0.8) onto the base z-score threshold
// DetectStatistical starts from, preserving DefaultStatisticalThreshold
// at the default anomaly_threshold. A zero or negative value is treated
// as "unset" and falls back to the default.
func statisticalBaseThreshold(anomalyThreshold float64) float64 {
	if anomalyThreshold <= 0 {
		return DefaultStatisticalThreshold
	}
	return DefaultStatisticalThreshold * (anomalyThreshold / DefaultAnomalyThreshold)
}

// DetectStatistical flags every value in data whose z-score against the
// baseline's mean/std exceeds the dynamic threshold. anomalyThreshold is
// the configured sensitivity knob (0 uses the built-in default).
func DetectStatistical(data, baseline []float64, anomalyThreshold float64) []domain.ClassifiedAnomaly {
	if len(baseline) == 0 {
		return nil
	}
	mean := stats.Mean(baseline)
	std := stats.StdDev(baseline)
	if std == 0 {
		// an all-identical baseline has no notion of deviation; report
		// no anomalies regardless of data.
		return nil
	}

	threshold := dynamicStatisticalThreshold(baseline, statisticalBaseThreshold(anomalyThreshold))

	var out []domain.ClassifiedAnomaly
	for i, v := range data {
		z := (v - mean) / std
		if z < 0 {
			z = -z
		}
		if z <= threshold {
			continue
		}
		out = append(out, domain.ClassifiedAnomaly{
			Index: i,
			Value: v,
			Statistical: &domain.StatisticalDetail{
				Z:         z,
				Deviation: v - mean,
			},
		})
	}
	return out
}
