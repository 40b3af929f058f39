package temporal

import (
	"math"

	"github.com/viable-systems/vsm-pattern-engine/pkg/domain"
	"github.com/viable-systems/vsm-pattern-engine/pkg/stats"
)

// detectBurst flags every index above mean+2*std as a burst instance.
// Total strength is the share of the window's absolute mass the bursts
// account for, clamped to 1. Emits nothing if no index crosses the
// threshold.
func detectBurst(window []float64) *domain.PatternRecord {
	if len(window) == 0 {
		return nil
	}
	mean := stats.Mean(window)
	std := stats.StdDev(window)
	threshold := mean + 2*std

	var instances []domain.BurstInstance
	var burstMagnitude, totalAbs float64
	for i, v := range window {
		totalAbs += math.Abs(v)
		if v > threshold {
			mag := v - mean
			instances = append(instances, domain.BurstInstance{Index: i, Magnitude: mag})
			burstMagnitude += mag
		}
	}
	if len(instances) == 0 {
		return nil
	}

	strength := 1.0
	if totalAbs > 0 {
		strength = burstMagnitude / totalAbs
	}
	strength = clamp01(strength)

	return &domain.PatternRecord{
		Type:     domain.PatternTypeBurst,
		Strength: strength,
		Burst: &domain.BurstPattern{
			Instances:        instances,
			BurstCount:       len(instances),
			AverageMagnitude: burstMagnitude / float64(len(instances)),
		},
	}
}
